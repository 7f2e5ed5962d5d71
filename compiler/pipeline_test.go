package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fv1fab/fv1compile/blocks"
	"github.com/fv1fab/fv1compile/config"
	"github.com/fv1fab/fv1compile/diag"
)

func TestCompileGraphProducesEncodedProgram(t *testing.T) {
	registry := blocks.NewRegistry()
	prog, diags := CompileGraph(simpleGraph(), registry, *config.DefaultConfig())

	require.Empty(t, diags, "diagnostics: %v", diags)
	require.NotNil(t, prog)
	assert.NotEmpty(t, prog.Assembly)
	assert.Len(t, prog.Words, 128)
	assert.Equal(t, 4, prog.Statistics.BlocksProcessed)
}

func TestAssembleStandaloneSource(t *testing.T) {
	prog, diags := Assemble("rdax ADCL, 1.0\nwrax DACL, 0.0\n", *config.DefaultConfig())

	require.Empty(t, diags)
	require.NotNil(t, prog)
	assert.Len(t, prog.Words, 128)
	assert.NotEqual(t, prog.Words[0], prog.Words[1])
}

func TestAssembleUndefinedMnemonicFails(t *testing.T) {
	_, diags := Assemble("bogus 1, 2\n", *config.DefaultConfig())
	require.NotEmpty(t, diags)
	assert.Equal(t, diag.Fatal, diags[0].Severity)
}
