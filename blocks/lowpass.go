package blocks

import (
	"fmt"

	"github.com/fv1fab/fv1compile/graph"
)

// lowPass is a single-pole low-pass filter: out[n] = out[n-1] + coef *
// (in[n] - out[n-1]), the standard FV-1 RDFX/WRAX leaky-integrator idiom.
type lowPass struct {
	NoEqu
}

func (b *lowPass) Type() string     { return "low_pass" }
func (b *lowPass) Category() string { return "filter" }

func (b *lowPass) Inputs() []PortSpec {
	return []PortSpec{{ID: "in", Name: "In", Class: graph.Audio, Required: true}}
}

func (b *lowPass) Outputs() []PortSpec {
	return []PortSpec{{ID: "out", Name: "Out", Class: graph.Audio}}
}

func (b *lowPass) Params() []ParamSpec {
	zero, one := 0.0, 1.0
	return []ParamSpec{
		{ID: "coef", Name: "Cutoff coefficient", DataType: ParamNumber, Default: graph.NumberParam(0.25), Min: &zero, Max: &one, Conversion: ConvLogFreq},
	}
}

// GenInit allocates the filter's running-state register before GenMain
// reads and rewrites it every sample.
func (b *lowPass) GenInit(ctx Context) error {
	_, err := ctx.AllocateRegister("state", fmt.Sprintf("lpf_%s_state", ctx.BlockID()))
	return err
}

func (b *lowPass) GenMain(ctx Context) error {
	in, ok := ctx.GetInputRegister("in")
	if !ok {
		return fmt.Errorf("%s: required input %q not connected", ctx.BlockID(), "in")
	}
	state, err := ctx.AllocateRegister("state", fmt.Sprintf("lpf_%s_state", ctx.BlockID()))
	if err != nil {
		return err
	}
	coef := ctx.GetParameter("coef").AsNumber()

	ctx.PushHeaderComment(fmt.Sprintf("low_pass (%s): coef=%v", ctx.BlockID(), coef))
	ctx.PushMainCode(fmt.Sprintf("rdax %s, 1.0", in))
	ctx.PushMainCode(fmt.Sprintf("rdfx %s, %s", state, ctx.GetStandardConstant(coef)))
	ctx.PushMainCode(fmt.Sprintf("wrax %s, 1.0", state))

	if !ctx.IsOutputConnected("out") {
		return nil
	}
	alias, err := ctx.AllocateRegister("out", fmt.Sprintf("lpf_%s_out", ctx.BlockID()))
	if err != nil {
		return err
	}
	ctx.PushMainCode(fmt.Sprintf("wrax %s, 0.0", alias))
	return nil
}
