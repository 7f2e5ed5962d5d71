package inspector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fv1fab/fv1compile/diag"
)

func TestFormatWordsSkipsZeroWords(t *testing.T) {
	out := formatWords([]uint32{0, 0, 0x12345678, 0})
	assert.Contains(t, out, "0x12345678")
	assert.NotContains(t, out, "0: ")
}

func TestFormatWordsEmpty(t *testing.T) {
	assert.Equal(t, "(empty program)", formatWords([]uint32{0, 0, 0}))
}

func TestFormatDiagnosticsNone(t *testing.T) {
	assert.Equal(t, "(none)", formatDiagnostics(nil))
}

func TestFormatDiagnosticsIncludesSeverity(t *testing.T) {
	out := formatDiagnostics([]diag.Diagnostic{
		{Locator: diag.Line{Line: 3}, Severity: diag.Fatal, Kind: diag.KindSemantic, Message: "bad operand"},
	})
	assert.Contains(t, out, "bad operand")
	assert.Contains(t, out, "line 3")
}
