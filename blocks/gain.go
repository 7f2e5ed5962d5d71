package blocks

import (
	"fmt"

	"github.com/fv1fab/fv1compile/graph"
)

// gain scales its audio input by a fixed coefficient, or by a control-rate
// CV input when one is connected (spec.md §8 scenario 2: "POT-controlled
// gain").
type gain struct {
	NoEqu
	NoInit
}

func (b *gain) Type() string     { return "gain" }
func (b *gain) Category() string { return "dynamics" }

func (b *gain) Inputs() []PortSpec {
	return []PortSpec{
		{ID: "in", Name: "In", Class: graph.Audio, Required: true},
		{ID: "cv", Name: "Gain CV", Class: graph.Control},
	}
}

func (b *gain) Outputs() []PortSpec {
	return []PortSpec{{ID: "out", Name: "Out", Class: graph.Audio}}
}

func (b *gain) Params() []ParamSpec {
	one := 1.0
	return []ParamSpec{{ID: "gain", Name: "Gain", DataType: ParamNumber, Default: graph.NumberParam(1.0), Max: &one}}
}

func (b *gain) GenMain(ctx Context) error {
	in, ok := ctx.GetInputRegister("in")
	if !ok {
		return fmt.Errorf("%s: required input %q not connected", ctx.BlockID(), "in")
	}
	ctx.PushHeaderComment(fmt.Sprintf("gain (%s)", ctx.BlockID()))
	ctx.PushMainCode(fmt.Sprintf("rdax %s, 1.0", in))

	if cv, ok := ctx.GetInputRegister("cv"); ok {
		ctx.PushMainCode(fmt.Sprintf("mulx %s", cv))
	} else {
		g := ctx.GetParameter("gain").AsNumber()
		ctx.PushMainCode(fmt.Sprintf("sof %s, 0.0", ctx.GetStandardConstant(g)))
	}

	if !ctx.IsOutputConnected("out") {
		return nil
	}
	alias, err := ctx.AllocateRegister("out", fmt.Sprintf("gain_%s_out", ctx.BlockID()))
	if err != nil {
		return err
	}
	ctx.PushMainCode(fmt.Sprintf("wrax %s, 0.0", alias))
	return nil
}
