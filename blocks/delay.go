package blocks

import (
	"fmt"

	"github.com/fv1fab/fv1compile/graph"
)

// sampleRateHz is the FV-1's fixed audio sample rate, used only to convert a
// delay block's millisecond parameter into a word count (spec.md §4.4
// "Delay-based effects"; the rate itself isn't spelled out there, so this
// mirrors the DSP's well-known ~32.768kHz clock).
const sampleRateHz = 32768.0

// delay is a single fixed-length delay line: it writes its input (plus
// whatever a feedback connection sums into that same input) to a delay-RAM
// region and reads the delayed tap back out (spec.md §4.4 "Delay-based
// effects write the summed input... via WRA memName, 0 and read... taps").
type delay struct {
	NoEqu
}

func (b *delay) Type() string     { return "delay" }
func (b *delay) Category() string { return "delay" }

func (b *delay) Inputs() []PortSpec {
	return []PortSpec{{ID: "in", Name: "In", Class: graph.Audio, Required: true}}
}

func (b *delay) Outputs() []PortSpec {
	return []PortSpec{{ID: "out", Name: "Out", Class: graph.Audio}}
}

func (b *delay) Params() []ParamSpec {
	zero := 0.0
	return []ParamSpec{
		{ID: "time_ms", Name: "Delay time (ms)", DataType: ParamNumber, Default: graph.NumberParam(250), Min: &zero, Conversion: ConvSamplesMS},
	}
}

func (b *delay) sizeWords(ctx Context) int {
	ms := ctx.GetParameter("time_ms").AsNumber()
	n := int(ms / 1000.0 * sampleRateHz)
	if n < 1 {
		n = 1
	}
	return n
}

// GenInit reserves the delay-memory region once, up front, so both the
// write and read sides of GenMain see the same region without re-deriving
// its size.
func (b *delay) GenInit(ctx Context) error {
	_, err := ctx.AllocateMemory(b.sizeWords(ctx))
	return err
}

func (b *delay) GenMain(ctx Context) error {
	in, ok := ctx.GetInputRegister("in")
	if !ok {
		return fmt.Errorf("%s: required input %q not connected", ctx.BlockID(), "in")
	}
	region, err := ctx.AllocateMemory(b.sizeWords(ctx))
	if err != nil {
		return err
	}

	ctx.PushHeaderComment(fmt.Sprintf("delay (%s): %s, %d words", ctx.BlockID(), region.Name, region.Size))
	ctx.PushMainCode(fmt.Sprintf("rdax %s, 1.0", in))
	ctx.PushMainCode(fmt.Sprintf("wra %s, 0.0", region.Name))
	ctx.PushMainCode(fmt.Sprintf("rda %s, 1.0", region.Name))

	if !ctx.IsOutputConnected("out") {
		return nil
	}
	alias, err := ctx.AllocateRegister("out", fmt.Sprintf("delay_%s_out", ctx.BlockID()))
	if err != nil {
		return err
	}
	ctx.PushMainCode(fmt.Sprintf("wrax %s, 0.0", alias))
	return nil
}
