// Package diag is the shared diagnostics model for both the graph compiler
// and the assembler (spec.md §4.5, §7): a Locator/Severity/Kind/Message
// record whose Locator is either a source line or a block/port pair.
package diag

import (
	"fmt"
	"strings"
)

// Severity distinguishes diagnostics that abort code emission from ones
// that don't.
type Severity int

const (
	Warning Severity = iota
	Fatal
)

func (s Severity) String() string {
	if s == Fatal {
		return "error"
	}
	return "warning"
}

// Kind categorizes a diagnostic per the taxonomy in spec.md §7.
type Kind int

const (
	KindStructural Kind = iota
	KindResource
	KindSemantic
	KindTemplate
	KindCompatibility
)

// Locator pinpoints where a diagnostic applies: either a 1-based source
// line (assembler) or a block/port pair (graph compiler).
type Locator interface {
	fmt.Stringer
	isLocator()
}

// Line is a 1-based source line locator.
type Line struct {
	Line int
}

func (l Line) String() string { return fmt.Sprintf("line %d", l.Line) }
func (Line) isLocator()       {}

// BlockPort locates a diagnostic at a block, optionally at one of its ports.
type BlockPort struct {
	BlockID string
	PortID  string // empty if the diagnostic isn't port-specific
}

func (b BlockPort) String() string {
	if b.PortID == "" {
		return fmt.Sprintf("block %q", b.BlockID)
	}
	return fmt.Sprintf("block %q port %q", b.BlockID, b.PortID)
}
func (BlockPort) isLocator() {}

// Diagnostic is one structured problem report.
type Diagnostic struct {
	Locator  Locator
	Severity Severity
	Kind     Kind
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Locator, d.Severity, d.Message)
}

// List accumulates diagnostics across a compile (Add/Fatalf/Warnf/
// HasFatal).
type List struct {
	items []Diagnostic
}

func (l *List) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

func (l *List) Fatalf(loc Locator, kind Kind, format string, args ...any) {
	l.Add(Diagnostic{Locator: loc, Severity: Fatal, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

func (l *List) Warnf(loc Locator, kind Kind, format string, args ...any) {
	l.Add(Diagnostic{Locator: loc, Severity: Warning, Kind: kind, Message: fmt.Sprintf(format, args...)})
}

// HasFatal reports whether any accumulated diagnostic is fatal.
func (l *List) HasFatal() bool {
	for _, d := range l.items {
		if d.Severity == Fatal {
			return true
		}
	}
	return false
}

// All returns every accumulated diagnostic, in emission order.
func (l *List) All() []Diagnostic {
	return l.items
}

// Fatals and Warnings split the accumulated diagnostics by severity, the
// shape the compile result (spec.md §4.5 "(success, assembly?, statistics?,
// errors, warnings)") actually wants to report.
func (l *List) Fatals() []Diagnostic {
	return filter(l.items, Fatal)
}

func (l *List) Warnings() []Diagnostic {
	return filter(l.items, Warning)
}

func filter(items []Diagnostic, sev Severity) []Diagnostic {
	out := make([]Diagnostic, 0, len(items))
	for _, d := range items {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

func (l *List) String() string {
	var sb strings.Builder
	for _, d := range l.items {
		sb.WriteString(d.String())
		sb.WriteString("\n")
	}
	return sb.String()
}
