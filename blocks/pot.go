package blocks

import (
	"fmt"

	"github.com/fv1fab/fv1compile/diag"
	"github.com/fv1fab/fv1compile/graph"
)

// pot reads one of the three hardware potentiometers, optionally smoothing
// it with a single-pole high-shelf filter and/or inverting it (spec.md §4.4
// "Pot smoothing").
type pot struct {
	NoEqu
}

func (b *pot) Type() string     { return "pot" }
func (b *pot) Category() string { return "control" }
func (b *pot) Inputs() []PortSpec { return nil }

func (b *pot) Outputs() []PortSpec {
	return []PortSpec{{ID: "out", Name: "Out", Class: graph.Control}}
}

func (b *pot) Params() []ParamSpec {
	return []ParamSpec{
		{ID: "pot", Name: "Pot", DataType: ParamSelect, Default: graph.StringParam("POT0"), Options: []string{"POT0", "POT1", "POT2"}},
		{ID: "smoothing", Name: "Smoothing", DataType: ParamBoolean, Default: graph.BoolParam(true)},
		{ID: "invert", Name: "Invert", DataType: ParamBoolean, Default: graph.BoolParam(false)},
	}
}

func (b *pot) potRegister(ctx Context) string {
	name := ctx.GetParameter("pot").AsString()
	switch name {
	case "POT1", "POT2":
		return name
	default:
		return "POT0"
	}
}

// GenInit allocates the smoothing state register once, before the main body
// runs, so GenMain (visited every sample) can read/write it idempotently.
func (b *pot) GenInit(ctx Context) error {
	if !ctx.GetParameter("smoothing").AsBool() {
		return nil
	}
	_, err := ctx.AllocateRegister("smooth_state", fmt.Sprintf("pot_%s_smooth", ctx.BlockID()))
	return err
}

func (b *pot) GenMain(ctx Context) error {
	if !ctx.IsOutputConnected("out") {
		return nil
	}
	smoothing := ctx.GetParameter("smoothing").AsBool()
	invert := ctx.GetParameter("invert").AsBool()
	potReg := b.potRegister(ctx)

	ctx.PushHeaderComment(fmt.Sprintf("pot (%s): read %s smoothing=%v invert=%v", ctx.BlockID(), potReg, smoothing, invert))
	ctx.PushMainCode(fmt.Sprintf("rdax %s, 1.0", potReg))

	if smoothing {
		state, err := ctx.AllocateRegister("smooth_state", fmt.Sprintf("pot_%s_smooth", ctx.BlockID()))
		if err != nil {
			return err
		}
		ctx.PushMainCode(fmt.Sprintf("sof %s, 0.0", ctx.GetStandardConstant(0.001)))
		ctx.PushMainCode(fmt.Sprintf("rdfx %s, %s", state, ctx.GetStandardConstant(-0.75)))
		ctx.PushMainCode(fmt.Sprintf("wrlx %s, %s", state, ctx.GetStandardConstant(0.75)))
	} else {
		ctx.Warnf(diag.KindCompatibility, "%s: pot smoothing disabled, raw pot value used", ctx.BlockID())
	}

	if invert {
		ctx.PushMainCode(fmt.Sprintf("sof %s, 1.0", ctx.GetStandardConstant(-1.0)))
	}

	alias, err := ctx.AllocateRegister("out", fmt.Sprintf("pot_%s_out", ctx.BlockID()))
	if err != nil {
		return err
	}
	ctx.PushMainCode(fmt.Sprintf("wrax %s, 0.0", alias))
	return nil
}
