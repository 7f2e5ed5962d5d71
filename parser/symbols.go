package parser

import "fmt"

// SymbolType distinguishes the three kinds of name an FV-1 program declares
// (spec.md §4.3: EQU constants, MEM delay-line names, and instruction
// labels all share one namespace).
type SymbolType int

const (
	SymbolLabel SymbolType = iota
	SymbolConstant
	SymbolMemory
)

// Symbol is one entry in the table: a name bound to a numeric value, plus
// every position it was referenced from (for the "undefined symbol"
// diagnostic to point at the use, not just the miss).
type Symbol struct {
	Name       string
	Type       SymbolType
	Value      float64
	AliasOf    string // set instead of Value when "equ name OTHERNAME" aliases a register/reserved symbol
	Defined    bool
	Pos        Position
	References []Position
}

// SymbolTable resolves EQU/MEM/label names during the two assembler passes:
// pass 1 populates it, pass 2 (and the encoder) only reads it. This keeps
// the same define-then-resolve shape the two-pass design calls for without
// carrying over ARM's relocation/numeric-label machinery, which FV-1's
// named-label-only grammar has no use for.
type SymbolTable struct {
	symbols map[string]*Symbol
}

func NewSymbolTable() *SymbolTable {
	return &SymbolTable{symbols: make(map[string]*Symbol)}
}

// Define binds name to value. Redefining an already-defined symbol is an
// error (spec.md §4.3 "duplicate symbol"); defining a previously-referenced
// (forward-referenced) symbol fills in its value.
func (st *SymbolTable) Define(name string, symType SymbolType, value float64, pos Position) error {
	if sym, exists := st.symbols[name]; exists && sym.Defined {
		return fmt.Errorf("symbol %q already defined at %s", name, sym.Pos)
	} else if exists {
		sym.Value, sym.Defined, sym.Pos, sym.Type = value, true, pos, symType
		return nil
	}
	st.symbols[name] = &Symbol{Name: name, Type: symType, Value: value, Defined: true, Pos: pos}
	return nil
}

// Reference marks name as used at pos, creating a forward-reference entry
// if it hasn't been defined yet.
func (st *SymbolTable) Reference(name string, pos Position) {
	if sym, exists := st.symbols[name]; exists {
		sym.References = append(sym.References, pos)
		return
	}
	st.symbols[name] = &Symbol{Name: name, Defined: false, Pos: pos, References: []Position{pos}}
}

// DefineAlias binds name to another symbol's name rather than a numeric
// value, for "equ alias REGn"-style lines where the RHS is itself a
// register or reserved-peripheral symbol the encoder resolves later.
func (st *SymbolTable) DefineAlias(name, aliasOf string, pos Position) error {
	if sym, exists := st.symbols[name]; exists && sym.Defined {
		return fmt.Errorf("symbol %q already defined at %s", name, sym.Pos)
	}
	st.symbols[name] = &Symbol{Name: name, Type: SymbolConstant, AliasOf: aliasOf, Defined: true, Pos: pos}
	return nil
}

func (st *SymbolTable) Lookup(name string) (*Symbol, bool) {
	sym, exists := st.symbols[name]
	return sym, exists
}

func (st *SymbolTable) Get(name string) (float64, error) {
	sym, exists := st.symbols[name]
	if !exists {
		return 0, fmt.Errorf("undefined symbol: %q", name)
	}
	if !sym.Defined {
		return 0, fmt.Errorf("symbol %q used but not defined", name)
	}
	return sym.Value, nil
}

// GetUndefinedSymbols returns every referenced-but-never-defined symbol.
func (st *SymbolTable) GetUndefinedSymbols() []*Symbol {
	var undefined []*Symbol
	for _, sym := range st.symbols {
		if !sym.Defined {
			undefined = append(undefined, sym)
		}
	}
	return undefined
}

// ResolveForwardReferences fails with the first undefined symbol found, if
// any remain after both passes.
func (st *SymbolTable) ResolveForwardReferences() error {
	undefined := st.GetUndefinedSymbols()
	if len(undefined) == 0 {
		return nil
	}
	sym := undefined[0]
	if len(sym.References) > 0 {
		return fmt.Errorf("undefined symbol %q referenced at %s", sym.Name, sym.References[0])
	}
	return fmt.Errorf("undefined symbol %q", sym.Name)
}

func (st *SymbolTable) GetAllSymbols() map[string]*Symbol {
	return st.symbols
}
