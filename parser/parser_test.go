package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fv1fab/fv1compile/config"
)

func TestParseEquMemAndLabel(t *testing.T) {
	src := `
equ LEVEL 0.5
mem delay 100

start:
rdax ADCL, 1.0
mulx LEVEL
wra delay, 0.0
rda delay^, 0.5
skp run, start
wrax DACL, 0.0
`
	p := NewParser(src, *config.DefaultConfig())
	prog, err := p.Parse()
	require.NoError(t, err)

	level, err := prog.SymbolTable.Get("LEVEL")
	require.NoError(t, err)
	assert.InDelta(t, 0.5, level, 1e-9)

	start, err := prog.SymbolTable.Get("delay")
	require.NoError(t, err)
	assert.Equal(t, 0.0, start)

	mid, err := prog.SymbolTable.Get("delay^")
	require.NoError(t, err)
	assert.Equal(t, 50.0, mid)

	startLabel, err := prog.SymbolTable.Get("start")
	require.NoError(t, err)
	assert.Equal(t, 0.0, startLabel)

	require.Len(t, prog.Statements, 6)
	assert.Equal(t, "rdax", prog.Statements[0].Mnemonic)
	assert.Equal(t, "ADCL", prog.Statements[0].Operands[0].Symbol)
	assert.Equal(t, 1.0, prog.Statements[0].Operands[1].Number)

	wra := prog.Statements[2]
	assert.Equal(t, "wra", wra.Mnemonic)
	assert.Equal(t, "delay", wra.Operands[0].Symbol)
	assert.Equal(t, byte(0), wra.Operands[0].Modifier)

	rda := prog.Statements[3]
	assert.Equal(t, "delay", rda.Operands[0].Symbol)
	assert.Equal(t, byte('^'), rda.Operands[0].Modifier)
}

// Reserved words like ADCL/RUN never appear in the EQU/MEM/label table;
// leaving them unresolved at parse time is expected, not an error — the
// encoder resolves those against its own reserved-word table.
func TestParseReservedWordStaysUnresolved(t *testing.T) {
	p := NewParser("skp run, start\nstart:\nrdax ADCL, 1.0\nwrax DACL, 0.0\n", *config.DefaultConfig())
	prog, err := p.Parse()
	require.NoError(t, err)
	sym, exists := prog.SymbolTable.Lookup("run")
	require.True(t, exists)
	assert.False(t, sym.Defined)
}

func TestParseDuplicateLabelFails(t *testing.T) {
	p := NewParser("a:\nrdax ADCL, 1.0\na:\nwrax DACL, 0.0\n", *config.DefaultConfig())
	_, err := p.Parse()
	require.Error(t, err)
}

// TestParseMemBudgetSpinAsmCompatBug exercises spec.md §8 scenario 6: with
// the default 32768-word delay RAM, "mem d 16384" followed by "mem e 16383"
// exactly fits (32767 words) without the compatibility bug, but overflows
// once the bug's one-extra-cell-per-region reservation is counted.
func TestParseMemBudgetSpinAsmCompatBug(t *testing.T) {
	src := "mem d 16384\nmem e 16383\n"

	withBug := *config.DefaultConfig()
	withBug.Compile.SpinAsmMemBug = true
	p := NewParser(src, withBug)
	_, err := p.Parse()
	require.Error(t, err, "16384+1 + 16383+1 = 32769 exceeds a 32768-word budget")

	withoutBug := *config.DefaultConfig()
	withoutBug.Compile.SpinAsmMemBug = false
	p = NewParser(src, withoutBug)
	_, err = p.Parse()
	require.NoError(t, err, "16384 + 16383 = 32767 fits a 32768-word budget")
}

func TestParseMemExceedsBudgetFailsRegardlessOfCompatBug(t *testing.T) {
	cfg := *config.DefaultConfig()
	cfg.Compile.SpinAsmMemBug = false
	p := NewParser("mem huge 40000\n", cfg)
	_, err := p.Parse()
	require.Error(t, err)
}
