package compiler

import (
	"github.com/fv1fab/fv1compile/blocks"
	"github.com/fv1fab/fv1compile/config"
	"github.com/fv1fab/fv1compile/diag"
	"github.com/fv1fab/fv1compile/encoder"
	"github.com/fv1fab/fv1compile/graph"
	"github.com/fv1fab/fv1compile/parser"
)

// Program is the final compiled artifact (spec.md §3 "Compiled program
// (out)"): the assembly text plus its encoded 128-word image.
type Program struct {
	Assembly   string
	Words      []uint32
	Statistics Statistics
	Warnings   []diag.Diagnostic
}

// CompileGraph runs the full pipeline: graph compiler, then the assembler's
// parser and encoder, over a BlockGraph source.
func CompileGraph(g *graph.BlockGraph, registry *blocks.Registry, cfg config.Config) (*Program, []diag.Diagnostic) {
	result := Compile(g, registry, cfg)
	if !result.Success {
		return nil, result.Errors
	}

	prog, diags := Assemble(result.Assembly, cfg)
	if diags != nil {
		return nil, append(result.Errors, diags...)
	}

	prog.Statistics = result.Statistics
	prog.Warnings = append(result.Warnings, prog.Warnings...)
	return prog, nil
}

// Assemble runs the assembler stage alone (parser + encoder) over assembly
// text, for the standalone ".spn in" path (spec.md §6 "Assembly program
// (in)") that doesn't go through the graph compiler at all.
func Assemble(assembly string, cfg config.Config) (*Program, []diag.Diagnostic) {
	p := parser.NewParser(assembly, cfg)
	parsed, err := p.Parse()
	if err != nil {
		return nil, []diag.Diagnostic{{
			Locator:  diag.Line{},
			Severity: diag.Fatal,
			Kind:     diag.KindSemantic,
			Message:  err.Error(),
		}}
	}

	enc := encoder.NewEncoder(parsed.SymbolTable, cfg)
	words, err := enc.EncodeProgram(parsed)
	if err != nil {
		return nil, []diag.Diagnostic{{
			Locator:  diag.Line{},
			Severity: diag.Fatal,
			Kind:     diag.KindSemantic,
			Message:  err.Error(),
		}}
	}

	return &Program{Assembly: assembly, Words: words}, nil
}
