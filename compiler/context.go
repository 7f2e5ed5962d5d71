package compiler

import (
	"fmt"

	"github.com/fv1fab/fv1compile/alloc"
	"github.com/fv1fab/fv1compile/blocks"
	"github.com/fv1fab/fv1compile/config"
	"github.com/fv1fab/fv1compile/diag"
	"github.com/fv1fab/fv1compile/graph"
)

// blockContext is the concrete blocks.Context for one block instance during
// one compile (spec.md §4.4 "Code-generation context"). It is re-created
// (cheaply — it's a handful of pointers) for every block visited, but wraps
// the single Ledger and diagnostic list that live for the whole compile.
type blockContext struct {
	ledger *alloc.Ledger
	g      *graph.BlockGraph
	block  *graph.Block
	kind   blocks.Kind
	cfg    config.Config
	diags  *diag.List

	header *[]string
	init   *[]string
	main   *[]string
}

func (c *blockContext) BlockID() string   { return c.block.ID }
func (c *blockContext) BlockType() string { return c.block.Type }

func (c *blockContext) GetInputRegister(port string) (string, bool) {
	conn, ok := c.g.ConnectionTo(c.block.ID, port)
	if !ok {
		return "", false
	}
	return c.ledger.LookupRegister(conn.From.BlockID, conn.From.PortID)
}

func (c *blockContext) IsOutputConnected(port string) bool {
	return len(c.g.ConnectionsFrom(c.block.ID, port)) > 0
}

func (c *blockContext) AllocateRegister(port, aliasHint string) (string, error) {
	return c.ledger.AllocateRegister(c.block.ID, port, aliasHint)
}

func (c *blockContext) GetScratchRegister() (string, error) {
	return c.ledger.ScratchRegister()
}

// memCellOverhead is the spinAsmMemBug compatibility cell (spec.md §4.2
// "Memory layout": "a delay line needs one extra cell... this is the
// historical behavior; when compatibility mode is off, the +1 is omitted").
func (c *blockContext) memCellOverhead() int {
	if c.cfg.Compile.SpinAsmMemBug {
		return 1
	}
	return 0
}

func (c *blockContext) AllocateMemory(size int) (alloc.MemRegion, error) {
	hint := fmt.Sprintf("%s_%s", c.block.Type, c.block.ID)
	return c.ledger.AllocateMemory(c.block.ID, hint, size, c.memCellOverhead())
}

func (c *blockContext) GetStandardConstant(v float64) string {
	return c.ledger.GetStandardConstant(v)
}

func (c *blockContext) RegisterEqu(name, value string) error {
	return c.ledger.RegisterEqu(name, value)
}

func (c *blockContext) HasEqu(name string) bool {
	return c.ledger.HasEqu(name)
}

// GetParameter returns the block's bound value for paramID, falling back to
// the kind's declared default when the block doesn't set it.
func (c *blockContext) GetParameter(paramID string) graph.ParamValue {
	if v, ok := c.block.Parameters[paramID]; ok {
		return v
	}
	for _, p := range c.kind.Params() {
		if p.ID == paramID {
			return p.Default
		}
	}
	return graph.ParamValue{}
}

func (c *blockContext) PushInitCode(line string)      { *c.init = append(*c.init, line) }
func (c *blockContext) PushMainCode(line string)      { *c.main = append(*c.main, line) }
func (c *blockContext) PushHeaderComment(line string) { *c.header = append(*c.header, "; "+line) }

func (c *blockContext) Warnf(kind diag.Kind, format string, args ...any) {
	c.diags.Warnf(diag.BlockPort{BlockID: c.block.ID}, kind, format, args...)
}
