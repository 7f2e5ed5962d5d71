package httpservice

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fv1fab/fv1compile/config"
)

func TestHandleHealth(t *testing.T) {
	s := NewServer(0, *config.DefaultConfig())
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestHandleCompileAssembly(t *testing.T) {
	s := NewServer(0, *config.DefaultConfig())
	body := `{"assembly": "rdax ADCL, 1.0\nwrax DACL, 0.0\n"}`
	req := httptest.NewRequest(http.MethodPost, "/compile", strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp compileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Len(t, resp.Words, 128)
}

func TestHandleCompileMissingBody(t *testing.T) {
	s := NewServer(0, *config.DefaultConfig())
	req := httptest.NewRequest(http.MethodPost, "/compile", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var resp compileResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotEmpty(t, resp.Errors)
}

func TestHandleCompileWrongMethod(t *testing.T) {
	s := NewServer(0, *config.DefaultConfig())
	req := httptest.NewRequest(http.MethodGet, "/compile", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
