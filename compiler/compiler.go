// Package compiler is the graph-compiler driver (spec.md §4.4 "Graph
// compiler driver"): it wires graph.Validate, graph.TopoSort, alloc.Ledger
// and a blocks.Registry together into the full
// validate -> topo-sort -> pre-allocate -> pass1 -> pass2 -> assemble
// pipeline and returns the textual FV-1 assembly program plus statistics.
package compiler

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fv1fab/fv1compile/alloc"
	"github.com/fv1fab/fv1compile/blocks"
	"github.com/fv1fab/fv1compile/config"
	"github.com/fv1fab/fv1compile/diag"
	"github.com/fv1fab/fv1compile/graph"
)

// Statistics summarizes one successful compile (spec.md §7 "User-visible
// behavior": "instructions used, registers used, memory used, blocks
// processed").
type Statistics struct {
	InstructionsUsed int
	RegistersUsed    int
	MemoryUsed       int
	BlocksProcessed  int
}

// Result is the outcome of one compile (spec.md §4.5: "(success, assembly?,
// statistics?, errors, warnings)").
type Result struct {
	Success    bool
	Assembly   string
	Statistics Statistics
	Errors     []diag.Diagnostic
	Warnings   []diag.Diagnostic
}

// Compile runs the full graph-compiler pipeline over g using registry to
// resolve block kinds and cfg for resource budgets.
func Compile(g *graph.BlockGraph, registry *blocks.Registry, cfg config.Config) Result {
	validated := graph.Validate(g, registry)
	diags := &validated
	if diags.HasFatal() {
		return failure(diags)
	}

	order, feedback := graph.TopoSort(g)
	for range feedback {
		diags.Warnf(diag.Line{}, diag.KindCompatibility, "feedback edge detected; the cycle's register symmetry is preserved but its initial-sample value is undefined")
	}

	ledger := alloc.New(cfg.Compile.RegCount, cfg.Compile.DelaySize)
	preAllocateOutputs(g, ledger)

	var headerComments, initLines, mainLines []string
	kinds := make(map[string]blocks.Kind, len(g.Blocks))

	runPass := func(run func(kind blocks.Kind, ctx *blockContext) error) error {
		for _, id := range order {
			b := g.Blocks[id]
			kind, ok := kinds[id]
			if !ok {
				kind, _ = registry.Get(b.Type)
				kinds[id] = kind
			}
			ledger.ResetScratch()
			ctx := &blockContext{
				ledger: ledger, g: g, block: b, kind: kind, cfg: cfg, diags: diags,
				header: &headerComments, init: &initLines, main: &mainLines,
			}
			if err := run(kind, ctx); err != nil {
				diags.Fatalf(diag.BlockPort{BlockID: id}, diag.KindSemantic, "%s", err)
				return err
			}
		}
		return nil
	}

	if err := runPass(func(k blocks.Kind, ctx *blockContext) error {
		if err := k.GenEqu(ctx); err != nil {
			return err
		}
		return k.GenInit(ctx)
	}); err != nil {
		return failure(diags)
	}

	if err := runPass(func(k blocks.Kind, ctx *blockContext) error {
		return k.GenMain(ctx)
	}); err != nil {
		return failure(diags)
	}

	if ledger.Err() != nil {
		diags.Fatalf(diag.Line{}, diag.KindResource, "%s", ledger.Err())
		return failure(diags)
	}

	assembly := assemble(ledger, headerComments, initLines, mainLines, len(order))
	instCount := countInstructions(initLines, mainLines)

	warnNearLimit(diags, instCount, cfg.Compile.ProgSize)
	if instCount > cfg.Compile.ProgSize {
		diags.Fatalf(diag.Line{}, diag.KindResource, "program uses %d instructions, exceeding progSize %d", instCount, cfg.Compile.ProgSize)
		return failure(diags)
	}

	if diags.HasFatal() {
		return failure(diags)
	}

	return Result{
		Success:  true,
		Assembly: assembly,
		Statistics: Statistics{
			InstructionsUsed: instCount,
			RegistersUsed:    ledger.RegistersUsed(),
			MemoryUsed:       ledger.MemoryUsed(),
			BlocksProcessed:  len(order),
		},
		Warnings: diags.Warnings(),
	}
}

func failure(diags *diag.List) Result {
	return Result{Success: false, Errors: diags.Fatals(), Warnings: diags.Warnings()}
}

// preAllocateOutputs reserves a register for every connection's source port
// before any block runs codegen, so a consumer visited before its producer
// under the chosen topological order (the feedback-cycle case, spec.md §8
// scenario 4) still resolves a stable alias via GetInputRegister.
func preAllocateOutputs(g *graph.BlockGraph, ledger *alloc.Ledger) {
	seen := make(map[string]bool)
	for _, c := range g.Connections {
		key := c.From.BlockID + "\x00" + c.From.PortID
		if seen[key] {
			continue
		}
		seen[key] = true
		b := g.Blocks[c.From.BlockID]
		if b == nil {
			continue
		}
		hint := sanitizeForAlias(fmt.Sprintf("%s_%s_%s", b.Type, b.ID, c.From.PortID))
		_, _ = ledger.AllocateRegister(b.ID, c.From.PortID, hint)
	}
}

func sanitizeForAlias(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return '_'
		}
		return r
	}, s)
}

// assemble concatenates the assembly program's sections in emission order
// (spec.md §3 "Assembly program (intermediate text)"): header comment, EQU
// declarations, MEM declarations, a skip-on-run-guarded init block, and the
// main body.
func assemble(ledger *alloc.Ledger, headerComments, initLines, mainLines []string, blockCount int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "; fv1compile generated program (%d blocks)\n", blockCount)
	for _, l := range headerComments {
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	for _, eq := range ledger.EquDefinitions() {
		fmt.Fprintf(&sb, "equ %s %s\n", eq.Name, eq.Value)
	}
	sb.WriteString("\n")

	regions := ledger.MemRegions()
	sort.SliceStable(regions, func(i, j int) bool { return regions[i].Base < regions[j].Base })
	for _, r := range regions {
		fmt.Fprintf(&sb, "mem %s %d\n", r.Name, r.Size)
	}
	sb.WriteString("\n")

	if len(initLines) > 0 {
		sb.WriteString("skp run, start\n")
		for _, l := range initLines {
			sb.WriteString(l)
			sb.WriteString("\n")
		}
	}
	sb.WriteString("start:\n")
	for _, l := range mainLines {
		sb.WriteString(l)
		sb.WriteString("\n")
	}

	return sb.String()
}

func countInstructions(initLines, mainLines []string) int {
	count := 0
	for _, l := range initLines {
		if isInstructionLine(l) {
			count++
		}
	}
	for _, l := range mainLines {
		if isInstructionLine(l) {
			count++
		}
	}
	if len(initLines) > 0 {
		count++ // the "skp run, start" guard itself
	}
	return count
}

func isInstructionLine(l string) bool {
	t := strings.TrimSpace(l)
	return t != "" && !strings.HasSuffix(t, ":")
}

func warnNearLimit(diags *diag.List, used, budget int) {
	if budget <= 0 {
		return
	}
	if float64(used) >= 0.9*float64(budget) && used <= budget {
		diags.Warnf(diag.Line{}, diag.KindCompatibility, "program uses %d/%d instruction slots (>=90%% of progSize)", used, budget)
	}
}
