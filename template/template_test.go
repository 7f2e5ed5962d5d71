package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleTemplate = `---
{
  "type": "tremolo",
  "category": "modulation",
  "name": "Tremolo",
  "inputs": [{"id": "in", "name": "In", "type": "audio"}],
  "outputs": [{"id": "out", "name": "Out", "type": "audio"}],
  "parameters": [{"id": "depth", "name": "Depth", "type": "number", "default": 0.5}],
  "registers": [{"id": "state"}]
}
---
@section header
; tremolo init
@section main
rdax ${input.in}, 1.0
@if pinConnected(in)
mulx ${reg.state}
@else
mulx 1.0
@endif
wrax ${output.out}, 0.0
`

func TestParseFrontmatterAndBody(t *testing.T) {
	tmpl, err := Parse(sampleTemplate)
	require.NoError(t, err)
	assert.Equal(t, "tremolo", tmpl.Meta.Type)
	assert.Len(t, tmpl.Meta.Inputs, 1)
	assert.Len(t, tmpl.Main, 3) // rdax line, @if block, wrax line
}

type fakeCtx struct {
	inputs    map[string]string
	outputs   map[string]bool
	params    map[string]string
	registers map[string]string
	init      []string
	main      []string
	header    []string
}

func newFakeCtx() *fakeCtx {
	return &fakeCtx{
		inputs:    map[string]string{},
		outputs:   map[string]bool{},
		params:    map[string]string{},
		registers: map[string]string{},
	}
}

func (f *fakeCtx) BlockID() string { return "trem1" }
func (f *fakeCtx) GetInputRegister(port string) (string, bool) {
	v, ok := f.inputs[port]
	return v, ok
}
func (f *fakeCtx) IsOutputConnected(port string) bool { return f.outputs[port] }
func (f *fakeCtx) AllocateRegister(port, alias string) (string, error) {
	if v, ok := f.registers[port]; ok {
		return v, nil
	}
	f.registers[port] = alias
	return alias, nil
}
func (f *fakeCtx) GetScratchRegister() (string, error) { return "REG31", nil }
func (f *fakeCtx) GetParameterText(id string) string    { return f.params[id] }
func (f *fakeCtx) PushInitCode(l string)                { f.init = append(f.init, l) }
func (f *fakeCtx) PushMainCode(l string)                { f.main = append(f.main, l) }
func (f *fakeCtx) PushHeaderComment(l string)            { f.header = append(f.header, l) }

func TestExpandMainResolvesPlaceholdersAndConditionals(t *testing.T) {
	tmpl, err := Parse(sampleTemplate)
	require.NoError(t, err)

	ctx := newFakeCtx()
	ctx.inputs["in"] = "REG0"
	ctx.outputs["out"] = true

	require.NoError(t, ExpandMain(tmpl, ctx, map[string]string{"state": "REG5"}, nil))
	assert.Equal(t, []string{"rdax REG0, 1.0", "mulx REG5", "wrax trem1_out, 0.0"}, ctx.main)
}

func TestExpandMainUnresolvedPlaceholderIsFatal(t *testing.T) {
	tmpl, err := Parse(sampleTemplate)
	require.NoError(t, err)

	ctx := newFakeCtx() // "in" left unconnected
	err = ExpandMain(tmpl, ctx, map[string]string{"state": "REG5"}, nil)
	assert.Error(t, err)
}

func TestEvalEquality(t *testing.T) {
	ctx := newFakeCtx()
	ctx.params["mode"] = "bright"
	ok, err := Eval(`mode == "bright"`, &ctxEvaluator{ctx: ctx})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Eval(`mode == "dark" || pinConnected(in)`, &ctxEvaluator{ctx: ctx})
	require.NoError(t, err)
	assert.False(t, ok)
}
