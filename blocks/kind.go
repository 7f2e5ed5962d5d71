// Package blocks is the block registry (spec.md §3 BlockKind, §4.4 "Block
// kinds and their codegen responsibilities"). A Kind is a tagged variant:
// either one of the imperative kinds in this package (a Go function per
// concern) or a template.Kind wrapping the declarative ATL engine — both
// satisfy the same Kind interface, per spec.md §9's "reframe as a tagged
// variant... plus a trait/interface".
package blocks

import (
	"github.com/fv1fab/fv1compile/alloc"
	"github.com/fv1fab/fv1compile/diag"
	"github.com/fv1fab/fv1compile/graph"
)

// PortSpec and ParamSpec describe a kind's static metadata.
type PortSpec = graph.PortSpec

type ParamDataType int

const (
	ParamNumber ParamDataType = iota
	ParamBoolean
	ParamSelect
	ParamString
)

// Conversion names the display-unit conversion applied to a numeric
// parameter before it reaches codegen (spec.md §3 BlockKind: "optional
// display-unit conversions").
type Conversion int

const (
	ConvIdentity Conversion = iota
	ConvLogFreq               // Hz <-> coefficient
	ConvDBLevel               // dB <-> linear
	ConvSamplesMS             // samples <-> ms
)

type ParamSpec struct {
	ID         string
	Name       string
	DataType   ParamDataType
	Default    graph.ParamValue
	Min, Max   *float64
	Options    []string
	Conversion Conversion
}

// Context is the interface every block kind's codegen sees (spec.md §4.4
// "Code-generation context"). compiler.Context is the concrete
// implementation; defining the interface here (rather than in compiler)
// lets blocks/ and template/ depend on it without importing compiler/.
type Context interface {
	BlockID() string
	BlockType() string

	GetInputRegister(port string) (string, bool)
	IsOutputConnected(port string) bool
	AllocateRegister(port, aliasHint string) (string, error)
	GetScratchRegister() (string, error)
	AllocateMemory(size int) (alloc.MemRegion, error)
	GetStandardConstant(v float64) string
	RegisterEqu(name, value string) error
	HasEqu(name string) bool
	GetParameter(paramID string) graph.ParamValue

	PushInitCode(line string)
	PushMainCode(line string)
	PushHeaderComment(line string)

	Warnf(kind diag.Kind, format string, args ...any)
}

// Kind is the tagged-variant trait every block kind implements: static
// metadata plus the three codegen hooks (spec.md §3 BlockKind, §4.4).
// GenEqu and GenInit are optional contributions — most kinds only need
// GenMain — so a kind embedding NoEqu/NoInit gets safe no-ops.
type Kind interface {
	Type() string
	Category() string
	Inputs() []PortSpec
	Outputs() []PortSpec
	Params() []ParamSpec

	GenEqu(ctx Context) error
	GenInit(ctx Context) error
	GenMain(ctx Context) error
}

// NoEqu and NoInit are embeddable no-op implementations for kinds that
// don't need an EQU or init contribution.
type NoEqu struct{}

func (NoEqu) GenEqu(Context) error { return nil }

type NoInit struct{}

func (NoInit) GenInit(Context) error { return nil }
