package blocks

import (
	"fmt"

	"github.com/fv1fab/fv1compile/graph"
)

// adcIn reads one stereo codec input channel (spec.md §4.4 "hardware
// registers... referenced directly by their reserved names").
type adcIn struct {
	NoEqu
	NoInit
	channel string // "ADCL" or "ADCR"
}

func (b *adcIn) Type() string       { return "adc_" + lowerChannel(b.channel) }
func (b *adcIn) Category() string   { return "io" }
func (b *adcIn) Inputs() []PortSpec { return nil }
func (b *adcIn) Outputs() []PortSpec {
	return []PortSpec{{ID: "out", Name: "Out", Class: graph.Audio}}
}
func (b *adcIn) Params() []ParamSpec { return nil }

func (b *adcIn) GenMain(ctx Context) error {
	if !ctx.IsOutputConnected("out") {
		return nil // spec.md §4.4: an unconnected output still just emits nothing extra
	}
	alias, err := ctx.AllocateRegister("out", fmt.Sprintf("%s_%s_out", b.Type(), ctx.BlockID()))
	if err != nil {
		return err
	}
	ctx.PushHeaderComment(fmt.Sprintf("%s (%s): read %s", b.Type(), ctx.BlockID(), b.channel))
	ctx.PushMainCode(fmt.Sprintf("rdax %s, 1.0", b.channel))
	ctx.PushMainCode(fmt.Sprintf("wrax %s, 0.0", alias))
	return nil
}

// dacOut writes one stereo codec output channel.
type dacOut struct {
	NoEqu
	NoInit
	channel string // "DACL" or "DACR"
}

func (b *dacOut) Type() string     { return "dac_" + lowerChannel(b.channel) }
func (b *dacOut) Category() string { return "io" }
func (b *dacOut) Inputs() []PortSpec {
	return []PortSpec{{ID: "in", Name: "In", Class: graph.Audio, Required: true}}
}
func (b *dacOut) Outputs() []PortSpec { return nil }
func (b *dacOut) Params() []ParamSpec { return nil }

func (b *dacOut) GenMain(ctx Context) error {
	in, ok := ctx.GetInputRegister("in")
	if !ok {
		// Validation (§4.4 step 1) guarantees a required input is connected
		// before codegen ever runs; this is unreachable in a validated
		// graph and is therefore never a silent "no code, no error" path
		// (spec.md §9's note on the copy/paste early-return bug).
		return fmt.Errorf("%s: required input %q not connected", ctx.BlockID(), "in")
	}
	ctx.PushHeaderComment(fmt.Sprintf("%s (%s): write %s", b.Type(), ctx.BlockID(), b.channel))
	ctx.PushMainCode(fmt.Sprintf("rdax %s, 1.0", in))
	ctx.PushMainCode(fmt.Sprintf("wrax %s, 0.0", b.channel))
	return nil
}

func lowerChannel(ch string) string {
	switch ch {
	case "ADCL", "DACL":
		return "l"
	case "ADCR", "DACR":
		return "r"
	default:
		return "x"
	}
}
