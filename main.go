// fv1compile compiles a block-diagram audio-effect description, or raw FV-1
// assembly, into a 128-word FV-1 program image (spec.md §1 "Purpose").
//
// Flag-based dispatch between run modes rather than a cobra/urfave
// subcommand tree, using the standard library flag package throughout.
package main

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fv1fab/fv1compile/blocks"
	"github.com/fv1fab/fv1compile/compiler"
	"github.com/fv1fab/fv1compile/config"
	"github.com/fv1fab/fv1compile/diag"
	"github.com/fv1fab/fv1compile/graph"
	"github.com/fv1fab/fv1compile/httpservice"
	"github.com/fv1fab/fv1compile/inspector"
	"github.com/fv1fab/fv1compile/logging"
)

var (
	// Version information, overridable at build time:
	// go build -ldflags "-X main.Version=v1.2.3"
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		inspect     = flag.Bool("inspect", false, "Launch the TUI program inspector on the compiled result")
		serve       = flag.Bool("serve", false, "Start the HTTP compile service")
		servePort   = flag.Int("port", 8080, "HTTP compile service port (used with -serve)")
		dumpDiags   = flag.Bool("dump-diagnostics", false, "Print diagnostics as JSON instead of text")
		configPath  = flag.String("config", "", "Load a TOML config file overriding defaults")
		outPath     = flag.String("o", "", "Output program image path (default: input path with .bin extension)")

		progSize      = flag.Int("prog-size", 0, "Override compile.prog_size")
		regCount      = flag.Int("reg-count", 0, "Override compile.reg_count")
		delaySize     = flag.Int("delay-size", 0, "Override compile.delay_size")
		spinAsmMemBug = flag.Bool("spinasm-mem-bug", false, "Override compile.spin_asm_mem_bug to true")
		clampReals    = flag.Bool("clamp-reals", false, "Override compile.clamp_reals to true")
		verbose       = flag.Int("verbose", -1, "Override compile.verbose")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("fv1compile %s (%s)\n", Version, Commit)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg = applyFlagOverrides(cfg, *progSize, *regCount, *delaySize, *spinAsmMemBug, *clampReals, *verbose)

	logger := logging.New(os.Stderr, cfg.Compile.Verbose)
	slog.SetDefault(logger)

	if *serve {
		runServer(*servePort, cfg)
		return
	}

	args := flag.Args()
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: fv1compile [flags] <input.fv1g|input.spn>")
		flag.PrintDefaults()
		os.Exit(2)
	}
	inputPath := args[0]

	prog, diags, err := compileFile(inputPath, cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(diags) > 0 {
		reportDiagnostics(diags, *dumpDiags)
		os.Exit(1)
	}

	slog.Info("compile succeeded",
		"instructions", prog.Statistics.InstructionsUsed,
		"registers", prog.Statistics.RegistersUsed,
		"memory", prog.Statistics.MemoryUsed,
		"blocks", prog.Statistics.BlocksProcessed)

	if len(prog.Warnings) > 0 {
		reportDiagnostics(prog.Warnings, *dumpDiags)
	}

	if *inspect {
		ins := inspector.New(prog, prog.Warnings)
		if err := ins.Run(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	dest := *outPath
	if dest == "" {
		dest = swapExt(inputPath, ".bin")
	}
	if err := writeProgramImage(dest, prog.Words); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("wrote %s (%d words)\n", dest, len(prog.Words))
}

func loadConfig(path string) (config.Config, error) {
	if path == "" {
		cfg, err := config.Load()
		if err != nil {
			return config.Config{}, err
		}
		return *cfg, nil
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		return config.Config{}, err
	}
	return *cfg, nil
}

func applyFlagOverrides(cfg config.Config, progSize, regCount, delaySize int, spinAsmMemBug, clampReals bool, verbose int) config.Config {
	var o config.Override
	if progSize > 0 {
		o.ProgSize = &progSize
	}
	if regCount > 0 {
		o.RegCount = &regCount
	}
	if delaySize > 0 {
		o.DelaySize = &delaySize
	}
	if spinAsmMemBug {
		o.SpinAsmMemBug = &spinAsmMemBug
	}
	if clampReals {
		o.ClampReals = &clampReals
	}
	if verbose >= 0 {
		o.Verbose = &verbose
	}
	return cfg.WithOverride(o)
}

// compileFile dispatches on extension: ".fv1g" is a BlockGraph JSON document
// that goes through the full graph-compiler pipeline (spec.md §4.4);
// anything else is treated as raw FV-1 assembly and goes straight to the
// assembler (spec.md §4.3).
func compileFile(path string, cfg config.Config) (*compiler.Program, []diag.Diagnostic, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-supplied input path
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".fv1g") {
		g := graph.New()
		if err := json.Unmarshal(data, g); err != nil {
			return nil, nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		registry := blocks.NewRegistry()
		prog, diags := compiler.CompileGraph(g, registry, cfg)
		return prog, diags, nil
	}

	prog, diags := compiler.Assemble(string(data), cfg)
	return prog, diags, nil
}

func reportDiagnostics(diags []diag.Diagnostic, asJSON bool) {
	if asJSON {
		type jsonDiag struct {
			Severity string `json:"severity"`
			Kind     int    `json:"kind"`
			Location string `json:"location"`
			Message  string `json:"message"`
		}
		out := make([]jsonDiag, 0, len(diags))
		for _, d := range diags {
			out = append(out, jsonDiag{
				Severity: d.Severity.String(),
				Kind:     int(d.Kind),
				Location: d.Locator.String(),
				Message:  d.Message,
			})
		}
		enc := json.NewEncoder(os.Stderr)
		enc.SetIndent("", "  ")
		_ = enc.Encode(out)
		return
	}
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d.String())
	}
}

// writeProgramImage writes the 128-word program as little-endian uint32s
// (spec.md §6 "Compiled program (out)": "32-bit words, little-endian").
func writeProgramImage(path string, words []uint32) error {
	buf := make([]byte, 4*len(words))
	for i, w := range words {
		binary.LittleEndian.PutUint32(buf[i*4:], w)
	}
	return os.WriteFile(path, buf, 0o644) // #nosec G306 -- program image isn't sensitive
}

func swapExt(path, newExt string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + newExt
}

func runServer(port int, cfg config.Config) {
	s := httpservice.NewServer(port, cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintln(os.Stderr, err)
		}
	}
}
