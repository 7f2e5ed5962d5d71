// Package inspector is a read-only TUI browser over a compiled program
// (spec.md §A.6): assembly text, encoded words and diagnostics, laid out
// with tcell/tview panes as a passive viewer rather than a stepping
// debugger.
package inspector

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/fv1fab/fv1compile/compiler"
	"github.com/fv1fab/fv1compile/diag"
)

// Inspector wraps the tview application and the panes it drives.
type Inspector struct {
	app        *tview.Application
	pages      *tview.Pages
	assembly   *tview.TextView
	words      *tview.TextView
	diagnostic *tview.TextView
	statusBar  *tview.TextView
}

// New builds an Inspector over a compiled Program, ready for Run.
func New(prog *compiler.Program, warnings []diag.Diagnostic) *Inspector {
	ins := &Inspector{
		app:        tview.NewApplication(),
		assembly:   tview.NewTextView().SetDynamicColors(true).SetScrollable(true),
		words:      tview.NewTextView().SetDynamicColors(true).SetScrollable(true),
		diagnostic: tview.NewTextView().SetDynamicColors(true).SetScrollable(true),
		statusBar:  tview.NewTextView().SetDynamicColors(true),
	}

	ins.assembly.SetBorder(true).SetTitle(" Assembly ")
	ins.words.SetBorder(true).SetTitle(" Encoded words ")
	ins.diagnostic.SetBorder(true).SetTitle(" Diagnostics ")

	ins.assembly.SetText(tview.Escape(prog.Assembly))
	ins.words.SetText(formatWords(prog.Words))
	ins.diagnostic.SetText(formatDiagnostics(warnings))
	ins.statusBar.SetText(fmt.Sprintf(" instructions=%d registers=%d memory=%d blocks=%d | q: quit, tab: switch pane ",
		prog.Statistics.InstructionsUsed, prog.Statistics.RegistersUsed, prog.Statistics.MemoryUsed, prog.Statistics.BlocksProcessed))

	top := tview.NewFlex().
		AddItem(ins.assembly, 0, 2, true).
		AddItem(ins.words, 0, 1, false)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(top, 0, 3, true).
		AddItem(ins.diagnostic, 0, 1, false).
		AddItem(ins.statusBar, 1, 0, false)

	ins.pages = tview.NewPages().AddPage("main", root, true, true)

	panes := []tview.Primitive{ins.assembly, ins.words, ins.diagnostic}
	focus := 0
	ins.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyTab:
			focus = (focus + 1) % len(panes)
			ins.app.SetFocus(panes[focus])
			return nil
		case event.Rune() == 'q':
			ins.app.Stop()
			return nil
		}
		return event
	})

	ins.app.SetRoot(ins.pages, true).SetFocus(ins.assembly)
	return ins
}

// Run blocks until the user quits.
func (ins *Inspector) Run() error {
	return ins.app.Run()
}

func formatWords(words []uint32) string {
	var sb strings.Builder
	for i, w := range words {
		if w == 0x00000000 {
			continue // skip every all-zero word for readability (NOP padding is not zero and is listed)
		}
		fmt.Fprintf(&sb, "%3d: [yellow]0x%08X[white]\n", i, w)
	}
	if sb.Len() == 0 {
		return "(empty program)"
	}
	return sb.String()
}

func formatDiagnostics(diags []diag.Diagnostic) string {
	if len(diags) == 0 {
		return "(none)"
	}
	var sb strings.Builder
	for _, d := range diags {
		color := "yellow"
		if d.Severity == diag.Fatal {
			color = "red"
		}
		fmt.Fprintf(&sb, "[%s]%s[white]: %s: %s\n", color, d.Severity, d.Locator, d.Message)
	}
	return sb.String()
}
