package blocks

import (
	"fmt"

	"github.com/fv1fab/fv1compile/graph"
)

// lfo drives one of the FV-1's two sine oscillators and exposes its current
// value as a control-rate output (spec.md §4.4 "LFO blocks": "LFO
// initialization (WLDS/WLDR) runs once, guarded by a label and skp run,
// label... reads of sine/cosine values use CHO RDAL").
type lfo struct {
	NoEqu
}

func (b *lfo) Type() string       { return "lfo" }
func (b *lfo) Category() string   { return "modulation" }
func (b *lfo) Inputs() []PortSpec { return nil }

func (b *lfo) Outputs() []PortSpec {
	return []PortSpec{{ID: "out", Name: "Out", Class: graph.Control}}
}

func (b *lfo) Params() []ParamSpec {
	zero := 0.0
	return []ParamSpec{
		{ID: "index", Name: "Oscillator", DataType: ParamSelect, Default: graph.StringParam("SIN0"), Options: []string{"SIN0", "SIN1"}},
		{ID: "rate", Name: "Rate", DataType: ParamNumber, Default: graph.NumberParam(0), Min: &zero},
		{ID: "amplitude", Name: "Amplitude", DataType: ParamNumber, Default: graph.NumberParam(0.5), Min: &zero},
	}
}

func (b *lfo) index(ctx Context) (lfoBit string, selector string) {
	if ctx.GetParameter("index").AsString() == "SIN1" {
		return "1", "SIN1"
	}
	return "0", "SIN0"
}

// GenInit emits the WLDS load, guarded so it only runs on the very first
// sample (spec.md's "skp run, label" convention) — every subsequent sample
// jumps straight past it.
func (b *lfo) GenInit(ctx Context) error {
	bit, _ := b.index(ctx)
	rate := ctx.GetParameter("rate").AsNumber()
	amp := ctx.GetParameter("amplitude").AsNumber()
	label := fmt.Sprintf("lfo_%s_loaded", ctx.BlockID())
	ctx.PushInitCode(fmt.Sprintf("skp run, %s", label))
	ctx.PushInitCode(fmt.Sprintf("wlds %s, %v, %v", bit, rate, amp))
	ctx.PushInitCode(label + ":")
	return nil
}

func (b *lfo) GenMain(ctx Context) error {
	if !ctx.IsOutputConnected("out") {
		return nil
	}
	_, selector := b.index(ctx)
	alias, err := ctx.AllocateRegister("out", fmt.Sprintf("lfo_%s_out", ctx.BlockID()))
	if err != nil {
		return err
	}
	ctx.PushHeaderComment(fmt.Sprintf("lfo (%s): %s", ctx.BlockID(), selector))
	ctx.PushMainCode(fmt.Sprintf("cho rdal, %s", selector))
	ctx.PushMainCode(fmt.Sprintf("wrax %s, 0.0", alias))
	return nil
}
