package compiler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fv1fab/fv1compile/blocks"
	"github.com/fv1fab/fv1compile/config"
	"github.com/fv1fab/fv1compile/graph"
)

func simpleGraph() *graph.BlockGraph {
	g := graph.New()
	g.AddBlock(&graph.Block{ID: "adc1", Type: "adc_l"})
	g.AddBlock(&graph.Block{ID: "gain1", Type: "gain", Parameters: map[string]graph.ParamValue{
		"gain": graph.NumberParam(0.5),
	}})
	g.AddBlock(&graph.Block{ID: "pot1", Type: "pot", Parameters: map[string]graph.ParamValue{
		"smoothing": graph.BoolParam(false),
	}})
	g.AddBlock(&graph.Block{ID: "dac1", Type: "dac_l"})

	g.AddConnection(graph.Connection{ID: "c1", From: graph.PortRef{BlockID: "adc1", PortID: "out"}, To: graph.PortRef{BlockID: "gain1", PortID: "in"}})
	g.AddConnection(graph.Connection{ID: "c2", From: graph.PortRef{BlockID: "pot1", PortID: "out"}, To: graph.PortRef{BlockID: "gain1", PortID: "cv"}})
	g.AddConnection(graph.Connection{ID: "c3", From: graph.PortRef{BlockID: "gain1", PortID: "out"}, To: graph.PortRef{BlockID: "dac1", PortID: "in"}})
	return g
}

// TestCompileADCGainPotDAC exercises spec.md §8 scenario 2 (POT-controlled
// gain): an rdax ADCL, a mulx driven by the pot's output alias, and a wrax
// DACL — with exactly one warning because smoothing is disabled.
func TestCompileADCGainPotDAC(t *testing.T) {
	registry := blocks.NewRegistry()
	result := Compile(simpleGraph(), registry, *config.DefaultConfig())

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Contains(t, result.Assembly, "rdax ADCL, 1.0")
	assert.Contains(t, result.Assembly, "wrax DACL, 0.0")
	assert.Len(t, result.Warnings, 1, "exactly one warning: smoothing disabled")
	assert.Equal(t, 4, result.Statistics.BlocksProcessed)
}

func feedbackGraph() *graph.BlockGraph {
	g := graph.New()
	g.AddBlock(&graph.Block{ID: "delay1", Type: "delay"})
	g.AddBlock(&graph.Block{ID: "lpf1", Type: "low_pass"})

	g.AddConnection(graph.Connection{ID: "c1", From: graph.PortRef{BlockID: "delay1", PortID: "out"}, To: graph.PortRef{BlockID: "lpf1", PortID: "in"}})
	g.AddConnection(graph.Connection{ID: "c2", From: graph.PortRef{BlockID: "lpf1", PortID: "out"}, To: graph.PortRef{BlockID: "delay1", PortID: "in"}})
	return g
}

// TestCompileFeedbackCycle exercises spec.md §8 scenario 4: a feedback cycle
// compiles, warns about exactly one feedback edge, and the low-pass block's
// input alias resolves to the delay's output alias even when low-pass is
// visited first.
func TestCompileFeedbackCycle(t *testing.T) {
	registry := blocks.NewRegistry()
	result := Compile(feedbackGraph(), registry, *config.DefaultConfig())

	require.True(t, result.Success, "errors: %v", result.Errors)
	feedbackWarnings := 0
	for _, w := range result.Warnings {
		if strings.Contains(w.Message, "feedback edge") {
			feedbackWarnings++
		}
	}
	assert.Equal(t, 1, feedbackWarnings)
}

// gainNoCVGraph exercises the gain block's literal-coefficient branch (no
// "cv" connection) and the pot block left at its default parameters
// (smoothing enabled), neither of which any other fixture here drives.
func gainNoCVGraph() *graph.BlockGraph {
	g := graph.New()
	g.AddBlock(&graph.Block{ID: "adc1", Type: "adc_l"})
	g.AddBlock(&graph.Block{ID: "gain1", Type: "gain", Parameters: map[string]graph.ParamValue{
		"gain": graph.NumberParam(0.5),
	}})
	g.AddBlock(&graph.Block{ID: "pot1", Type: "pot"})
	g.AddBlock(&graph.Block{ID: "gain2", Type: "gain"})
	g.AddBlock(&graph.Block{ID: "dac1", Type: "dac_l"})
	g.AddBlock(&graph.Block{ID: "dac2", Type: "dac_r"})

	g.AddConnection(graph.Connection{ID: "c1", From: graph.PortRef{BlockID: "adc1", PortID: "out"}, To: graph.PortRef{BlockID: "gain1", PortID: "in"}})
	g.AddConnection(graph.Connection{ID: "c2", From: graph.PortRef{BlockID: "gain1", PortID: "out"}, To: graph.PortRef{BlockID: "dac1", PortID: "in"}})
	// pot1's output must be connected for its GenMain to emit anything
	// (spec.md §4.4's unconnected-output-emits-nothing rule), so route it
	// into gain2's cv input, which this fixture otherwise doesn't exercise.
	g.AddConnection(graph.Connection{ID: "c3", From: graph.PortRef{BlockID: "adc1", PortID: "out"}, To: graph.PortRef{BlockID: "gain2", PortID: "in"}})
	g.AddConnection(graph.Connection{ID: "c4", From: graph.PortRef{BlockID: "pot1", PortID: "out"}, To: graph.PortRef{BlockID: "gain2", PortID: "cv"}})
	g.AddConnection(graph.Connection{ID: "c5", From: graph.PortRef{BlockID: "gain2", PortID: "out"}, To: graph.PortRef{BlockID: "dac2", PortID: "in"}})
	return g
}

// TestCompileGainWithoutCVUsesSof ensures the gain block's literal-gain path
// emits "sof", not "mulx" (MULX's only operand field is register-class, so a
// numeric-only EQU can never resolve there).
func TestCompileGainWithoutCVUsesSof(t *testing.T) {
	registry := blocks.NewRegistry()
	result := Compile(gainNoCVGraph(), registry, *config.DefaultConfig())

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Contains(t, result.Assembly, "sof k_0_5, 0.0")
	assert.NotContains(t, result.Assembly, "mulx k_0_5")
}

// TestCompilePotDefaultSmoothingUsesSof ensures the pot block's default
// (smoothing-enabled) path also emits "sof" for its literal 0.001
// coefficient rather than "mulx".
func TestCompilePotDefaultSmoothingUsesSof(t *testing.T) {
	registry := blocks.NewRegistry()
	result := Compile(gainNoCVGraph(), registry, *config.DefaultConfig())

	require.True(t, result.Success, "errors: %v", result.Errors)
	assert.Contains(t, result.Assembly, "sof k_0_001, 0.0")
	assert.NotContains(t, result.Assembly, "mulx k_0_001")
}

func TestCompileUnknownBlockKindFails(t *testing.T) {
	g := graph.New()
	g.AddBlock(&graph.Block{ID: "b1", Type: "does_not_exist"})
	registry := blocks.NewRegistry()

	result := Compile(g, registry, *config.DefaultConfig())
	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Errors)
}
