package graph

import (
	"fmt"

	"github.com/fv1fab/fv1compile/diag"
)

// PortSpec is the shape of one input/output port as declared by a
// BlockKind (spec.md §3 BlockKind: "ordered inputs and outputs, each with
// id, display name, signal-class, and required flag").
type PortSpec struct {
	ID       string
	Name     string
	Class    SignalClass
	Required bool
}

// KindLookup is the subset of the block registry (blocks.Registry) that
// graph validation needs. Kept as an interface here so graph/ never
// imports blocks/ (blocks/ imports graph/, not the reverse).
type KindLookup interface {
	Inputs(blockType string) ([]PortSpec, bool)
	Outputs(blockType string) ([]PortSpec, bool)
	Known(blockType string) bool
}

// Validate checks the structural invariants of spec.md §3/§4.4 step 1:
// non-empty graph, valid connection endpoints, matching signal classes, no
// self-loops, no duplicate sinks, and every required input connected, all
// fatal. It adds a warning (not a fatal) when no block's kind declares zero
// outputs, i.e. the graph has no output block such as a DAC write.
func Validate(g *BlockGraph, kinds KindLookup) diag.List {
	var list diag.List

	if len(g.Blocks) == 0 {
		list.Fatalf(diag.BlockPort{}, diag.KindStructural, "graph has no blocks")
		return list
	}

	for _, b := range g.Blocks {
		if !kinds.Known(b.Type) {
			list.Fatalf(diag.BlockPort{BlockID: b.ID}, diag.KindStructural, "unknown block kind %q", b.Type)
		}
	}

	seenSinks := make(map[PortRef]string) // port -> connection id, to catch duplicate sinks
	for _, c := range g.Connections {
		srcBlock, srcOK := g.Blocks[c.From.BlockID]
		dstBlock, dstOK := g.Blocks[c.To.BlockID]
		if !srcOK {
			list.Fatalf(diag.BlockPort{BlockID: c.From.BlockID}, diag.KindStructural, "connection %q references unknown source block", c.ID)
			continue
		}
		if !dstOK {
			list.Fatalf(diag.BlockPort{BlockID: c.To.BlockID}, diag.KindStructural, "connection %q references unknown destination block", c.ID)
			continue
		}
		if c.From.BlockID == c.To.BlockID {
			list.Fatalf(diag.BlockPort{BlockID: c.From.BlockID}, diag.KindStructural, "block's output cannot connect to its own input")
			continue
		}

		if prev, dup := seenSinks[c.To]; dup {
			list.Fatalf(diag.BlockPort{BlockID: c.To.BlockID, PortID: c.To.PortID}, diag.KindStructural,
				"input already driven by connection %q", prev)
			continue
		}
		seenSinks[c.To] = c.ID

		if !kinds.Known(srcBlock.Type) || !kinds.Known(dstBlock.Type) {
			continue // already reported above
		}

		srcPort, srcFound := findPort(kinds, srcBlock.Type, c.From.PortID, false)
		dstPort, dstFound := findPort(kinds, dstBlock.Type, c.To.PortID, true)
		if !srcFound {
			list.Fatalf(diag.BlockPort{BlockID: c.From.BlockID, PortID: c.From.PortID}, diag.KindStructural, "unknown output port")
			continue
		}
		if !dstFound {
			list.Fatalf(diag.BlockPort{BlockID: c.To.BlockID, PortID: c.To.PortID}, diag.KindStructural, "unknown input port")
			continue
		}
		if srcPort.Class != dstPort.Class {
			list.Fatalf(diag.BlockPort{BlockID: c.To.BlockID, PortID: c.To.PortID}, diag.KindStructural,
				"port type mismatch: %s is %s, %s is %s", c.From, classString(srcPort.Class), c.To, classString(dstPort.Class))
		}
	}

	for _, b := range g.Blocks {
		if !kinds.Known(b.Type) {
			continue
		}
		inputs, _ := kinds.Inputs(b.Type)
		for _, in := range inputs {
			if !in.Required {
				continue
			}
			if _, connected := g.ConnectionTo(b.ID, in.ID); !connected {
				list.Fatalf(diag.BlockPort{BlockID: b.ID, PortID: in.ID}, diag.KindStructural,
					"required input %q is not connected", in.ID)
			}
		}
	}

	if !hasOutputBlock(g, kinds) {
		list.Warnf(diag.BlockPort{}, diag.KindCompatibility, "graph has no output blocks; no audio will leave the program")
	}

	return list
}

func findPort(kinds KindLookup, blockType, portID string, input bool) (PortSpec, bool) {
	var ports []PortSpec
	if input {
		ports, _ = kinds.Inputs(blockType)
	} else {
		ports, _ = kinds.Outputs(blockType)
	}
	for _, p := range ports {
		if p.ID == portID {
			return p, true
		}
	}
	return PortSpec{}, false
}

// hasOutputBlock reports whether any block kind declares zero outputs
// (a terminal/sink kind, e.g. the DAC write blocks) — the registry is the
// source of truth for what counts as "an output block" per spec.md §4.4
// step 1.
func hasOutputBlock(g *BlockGraph, kinds KindLookup) bool {
	for _, b := range g.Blocks {
		if !kinds.Known(b.Type) {
			continue
		}
		outs, _ := kinds.Outputs(b.Type)
		if len(outs) == 0 {
			return true
		}
	}
	return false
}

func classString(c SignalClass) string {
	if c == Audio {
		return "audio"
	}
	return "control"
}

func (p PortRef) String() string {
	return fmt.Sprintf("%s.%s", p.BlockID, p.PortID)
}
