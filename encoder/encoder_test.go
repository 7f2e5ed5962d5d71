package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fv1fab/fv1compile/config"
	"github.com/fv1fab/fv1compile/fixedpoint"
	"github.com/fv1fab/fv1compile/parser"
	"github.com/fv1fab/fv1compile/schema"
)

func compileSource(t *testing.T, src string) []uint32 {
	t.Helper()
	cfg := *config.DefaultConfig()
	p := parser.NewParser(src, cfg)
	prog, err := p.Parse()
	require.NoError(t, err)
	enc := NewEncoder(prog.SymbolTable, cfg)
	words, err := enc.EncodeProgram(prog)
	require.NoError(t, err)
	return words
}

func TestEncodeRdaxWraxRoundTrip(t *testing.T) {
	words := compileSource(t, "rdax ADCL, 0.5\nwrax DACL, 0.0\n")

	inst := schema.Table["RDAX"]
	regField, coefField := inst.Fields[1], inst.Fields[2]
	reg := (words[0] >> regField.Offset) & regField.Mask()
	coefBits := (words[0] >> coefField.Offset) & coefField.Mask()
	coef := fixedpoint.Decode(fixedpoint.S1_14, coefBits)

	assert.Equal(t, uint32(43), reg) // ADCL reserved address
	assert.InDelta(t, 0.5, coef, 1e-4)
}

func TestEncodeEquAliasedRegister(t *testing.T) {
	words := compileSource(t, "equ gain1_out REG5\nrdax gain1_out, 1.0\n")

	inst := schema.Table["RDAX"]
	regField := inst.Fields[1]
	reg := (words[0] >> regField.Offset) & regField.Mask()
	assert.Equal(t, uint32(5), reg)
}

func TestEncodeMemDelayReadWriteWithModifiers(t *testing.T) {
	words := compileSource(t, "mem delay 100\nrda delay^, 0.5\nwra delay#, 0.5\n")

	inst := schema.Table["RDA"]
	addrField := inst.Fields[1]
	rdaAddr := (words[0] >> addrField.Offset) & addrField.Mask()
	wraAddr := (words[1] >> addrField.Offset) & addrField.Mask()

	assert.Equal(t, uint32(50), rdaAddr) // midpoint of a 100-word region starting at 0
	assert.Equal(t, uint32(99), wraAddr) // last word of the region
}

func TestEncodeSkpToLabel(t *testing.T) {
	words := compileSource(t, "skp zro, target\nrdax ADCL, 1.0\ntarget:\nrdax ADCR, 1.0\n")

	inst := schema.Table["SKP"]
	flagsField, countField := inst.Fields[1], inst.Fields[2]
	flags := (words[0] >> flagsField.Offset) & flagsField.Mask()
	count := (words[0] >> countField.Offset) & countField.Mask()

	assert.Equal(t, uint32(0x04), flags) // ZRO
	assert.Equal(t, uint32(1), count)    // one instruction to skip over
}

func TestEncodeChoRdal(t *testing.T) {
	words := compileSource(t, "cho rdal, SIN0\n")

	inst := schema.Table["CHO"]
	modeField, lfoField := inst.Fields[1], inst.Fields[2]
	mode := (words[0] >> modeField.Offset) & modeField.Mask()
	lfo := (words[0] >> lfoField.Offset) & lfoField.Mask()

	assert.Equal(t, uint32(2), mode) // RDAL
	assert.Equal(t, uint32(0), lfo)  // SIN0
}

func TestEncodePseudoOps(t *testing.T) {
	words := compileSource(t, "clr\nnot\nabsa\nnop\n")

	assert.Equal(t, schema.PseudoOps["CLR"], words[0])
	assert.Equal(t, schema.PseudoOps["NOT"], words[1])
	assert.Equal(t, schema.PseudoOps["ABSA"], words[2])
	assert.Equal(t, schema.PseudoOps["NOP"], words[3])
	assert.NotEqual(t, words[0], words[1])
}

func TestEncodePseudoOpRejectsOperands(t *testing.T) {
	cfg := *config.DefaultConfig()
	p := parser.NewParser("clr 1\n", cfg)
	prog, err := p.Parse()
	require.NoError(t, err)
	enc := NewEncoder(prog.SymbolTable, cfg)
	_, err = enc.EncodeProgram(prog)
	assert.Error(t, err)
}

func TestEncodeUnknownMnemonicFails(t *testing.T) {
	cfg := *config.DefaultConfig()
	p := parser.NewParser("bogus 1, 2\n", cfg)
	prog, err := p.Parse()
	require.NoError(t, err)
	enc := NewEncoder(prog.SymbolTable, cfg)
	_, err = enc.EncodeProgram(prog)
	assert.Error(t, err)
}

// TestEncodeClampRealsWiring exercises cfg.Compile.ClampReals: the same
// out-of-range coefficient fails without clamping and succeeds with it.
func TestEncodeClampRealsWiring(t *testing.T) {
	src := "sof 3.0, 0.0\n"

	noClamp := *config.DefaultConfig()
	noClamp.Compile.ClampReals = false
	p := parser.NewParser(src, noClamp)
	prog, err := p.Parse()
	require.NoError(t, err)
	enc := NewEncoder(prog.SymbolTable, noClamp)
	_, err = enc.EncodeProgram(prog)
	assert.Error(t, err)

	clamp := *config.DefaultConfig()
	clamp.Compile.ClampReals = true
	p = parser.NewParser(src, clamp)
	prog, err = p.Parse()
	require.NoError(t, err)
	enc = NewEncoder(prog.SymbolTable, clamp)
	_, err = enc.EncodeProgram(prog)
	assert.NoError(t, err)
}

// TestEncodeProgSizeWiring exercises cfg.Compile.ProgSize: the encoder's
// image length follows the override rather than the hardware-default 128.
func TestEncodeProgSizeWiring(t *testing.T) {
	cfg := *config.DefaultConfig()
	cfg.Compile.ProgSize = 4
	p := parser.NewParser("nop\nnop\nnop\n", cfg)
	prog, err := p.Parse()
	require.NoError(t, err)
	enc := NewEncoder(prog.SymbolTable, cfg)
	words, err := enc.EncodeProgram(prog)
	require.NoError(t, err)
	assert.Len(t, words, 4)
}
