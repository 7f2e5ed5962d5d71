// Package httpservice is the stateless HTTP compile service (spec.md §A.5):
// a thin POST /compile endpoint over the same pipeline the CLI drives, with
// a CORS-restricted-to-localhost ServeMux and graceful Start/Shutdown. This
// service holds no state between requests, so it carries no session or
// websocket machinery.
package httpservice

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/fv1fab/fv1compile/blocks"
	"github.com/fv1fab/fv1compile/compiler"
	"github.com/fv1fab/fv1compile/config"
	"github.com/fv1fab/fv1compile/diag"
	"github.com/fv1fab/fv1compile/graph"
)

// Server is the HTTP compile service.
type Server struct {
	registry *blocks.Registry
	baseCfg  config.Config
	mux      *http.ServeMux
	server   *http.Server
	port     int
}

// NewServer builds a Server bound to port, using baseCfg as the default
// compile configuration (spec.md §6: "any of these may be overridden per
// compile" — a request body may supply its own overrides).
func NewServer(port int, baseCfg config.Config) *Server {
	s := &Server{
		registry: blocks.NewRegistry(),
		baseCfg:  baseCfg,
		mux:      http.NewServeMux(),
		port:     port,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/compile", s.handleCompile)
}

// Handler returns the HTTP handler with the localhost-only CORS middleware
// applied.
func (s *Server) Handler() http.Handler {
	return s.corsMiddleware(s.mux)
}

// Start runs the server until it errors or is shut down.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	log.Printf("fv1compile service listening on http://127.0.0.1:%d", s.port)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if isAllowedOrigin(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return true
	}
	if strings.HasPrefix(origin, "file://") {
		return true
	}
	return strings.HasPrefix(origin, "http://localhost") ||
		strings.HasPrefix(origin, "https://localhost") ||
		strings.HasPrefix(origin, "http://127.0.0.1") ||
		strings.HasPrefix(origin, "https://127.0.0.1")
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "time": time.Now().Format(time.RFC3339)})
}

// compileRequest is the POST /compile body: either a BlockGraph (graph
// field set) or raw FV-1 assembly (assembly field set), plus optional
// per-compile config overrides (spec.md §6 "Configuration").
type compileRequest struct {
	Graph    *graph.BlockGraph `json:"graph"`
	Assembly string            `json:"assembly"`
	Config   *config.Override  `json:"config"`
}

type compileResponse struct {
	Success    bool               `json:"success"`
	Words      []uint32           `json:"words,omitempty"`
	Assembly   string             `json:"assembly,omitempty"`
	Statistics *compiler.Statistics `json:"statistics,omitempty"`
	Errors     []string           `json:"errors,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req compileRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, compileResponse{Errors: []string{err.Error()}})
		return
	}

	cfg := s.baseCfg
	if req.Config != nil {
		cfg = cfg.WithOverride(*req.Config)
	}

	var prog *compiler.Program
	var diags []diag.Diagnostic

	switch {
	case req.Graph != nil:
		prog, diags = compiler.CompileGraph(req.Graph, s.registry, cfg)
	case req.Assembly != "":
		prog, diags = compiler.Assemble(req.Assembly, cfg)
	default:
		writeJSON(w, http.StatusBadRequest, compileResponse{Errors: []string{"request must set either \"graph\" or \"assembly\""}})
		return
	}

	if len(diags) > 0 {
		writeJSON(w, http.StatusOK, compileResponse{Success: false, Errors: diagnosticStrings(diags)})
		return
	}

	writeJSON(w, http.StatusOK, compileResponse{
		Success:    true,
		Words:      prog.Words,
		Assembly:   prog.Assembly,
		Statistics: &prog.Statistics,
		Warnings:   diagnosticStrings(prog.Warnings),
	})
}

func diagnosticStrings(diags []diag.Diagnostic) []string {
	out := make([]string, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.String())
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("httpservice: error encoding JSON response: %v", err)
	}
}

func readJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 4*1024*1024))
	return decoder.Decode(v)
}
