// Package encoder turns a parsed FV-1 assembly Program into the 128
// 32-bit instruction words the DSP executes (spec.md §4.2 "Assembler
// instruction encoder"), consulting schema.Table for each mnemonic's field
// layout and fixedpoint.Encode for the numeric fields.
package encoder

import (
	"fmt"
	"strings"

	"github.com/fv1fab/fv1compile/config"
	"github.com/fv1fab/fv1compile/fixedpoint"
	"github.com/fv1fab/fv1compile/parser"
	"github.com/fv1fab/fv1compile/schema"
)

// ProgramSize is the hardware-fixed number of instruction slots an FV-1
// program image holds (spec.md GLOSSARY "FV-1": "128 instruction slots"),
// used as NewEncoder's default when a config.Config supplies no override.
const ProgramSize = 128

// Encoder assembles one parsed Program into a word image.
type Encoder struct {
	symbolTable *parser.SymbolTable
	progSize    int
	clampReals  bool
}

// NewEncoder builds an Encoder honoring cfg.Compile.ProgSize (the image's
// slot count) and cfg.Compile.ClampReals (whether out-of-range fixed-point
// coefficients clamp instead of failing) per spec.md §4.3/§6.
func NewEncoder(symbolTable *parser.SymbolTable, cfg config.Config) *Encoder {
	progSize := cfg.Compile.ProgSize
	if progSize <= 0 {
		progSize = ProgramSize
	}
	return &Encoder{symbolTable: symbolTable, progSize: progSize, clampReals: cfg.Compile.ClampReals}
}

// EncodeProgram encodes every statement in order and pads the remainder of
// the image with NopWord (spec.md §3 "Encoded instruction program": "any
// slot beyond the program's actual length is a no-op").
func (e *Encoder) EncodeProgram(prog *parser.Program) ([]uint32, error) {
	if len(prog.Statements) > e.progSize {
		return nil, fmt.Errorf("program uses %d instruction slots, exceeding the %d-slot limit", len(prog.Statements), e.progSize)
	}

	words := make([]uint32, e.progSize)
	for i := range words {
		words[i] = schema.NopWord()
	}

	for _, stmt := range prog.Statements {
		word, err := e.encodeStatement(stmt)
		if err != nil {
			return nil, WrapEncodingError(stmt, err)
		}
		words[stmt.Address] = word
	}
	return words, nil
}

func (e *Encoder) encodeStatement(stmt *parser.Statement) (uint32, error) {
	mnemonic := strings.ToUpper(stmt.Mnemonic)

	if word, ok := schema.IsPseudo(mnemonic); ok {
		if len(stmt.Operands) != 0 {
			return 0, fmt.Errorf("%s takes no operands", stmt.Mnemonic)
		}
		return word, nil
	}

	inst, ok := schema.Lookup(mnemonic)
	if !ok {
		return 0, fmt.Errorf("unknown instruction: %s", stmt.Mnemonic)
	}

	switch mnemonic {
	case "SKP":
		return e.encodeSKP(stmt, inst)
	case "CHO":
		return e.encodeCHO(stmt, inst)
	default:
		return e.encodeGeneric(stmt, inst)
	}
}

// encodeGeneric handles every mnemonic whose operands map positionally,
// one-to-one, onto schema.Instruction.OperandFields().
func (e *Encoder) encodeGeneric(stmt *parser.Statement, inst schema.Instruction) (uint32, error) {
	fields := inst.OperandFields()
	if len(stmt.Operands) != len(fields) {
		return 0, fmt.Errorf("%s expects %d operands, got %d", stmt.Mnemonic, len(fields), len(stmt.Operands))
	}

	word := fixedWord(inst)
	for i, f := range fields {
		bits, err := e.encodeField(f, stmt.Operands[i])
		if err != nil {
			return 0, fmt.Errorf("operand %d (%s): %w", i+1, f.Name, err)
		}
		word |= bits << f.Offset
	}
	return word, nil
}

// encodeSKP handles "skp flags, count", where count may be a literal
// instruction count or a label whose forward distance is computed from the
// statement's own address (spec.md §4.3 "skip-to-label convenience").
func (e *Encoder) encodeSKP(stmt *parser.Statement, inst schema.Instruction) (uint32, error) {
	if len(stmt.Operands) != 2 {
		return 0, fmt.Errorf("skp expects 2 operands, got %d", len(stmt.Operands))
	}
	flagsOp, countOp := stmt.Operands[0], stmt.Operands[1]
	if flagsOp.Kind != parser.OperandSymbol {
		return 0, fmt.Errorf("skp flags operand must be a condition name")
	}
	flags, err := resolveFlagSet(flagsOp.Symbol, skpFlags)
	if err != nil {
		return 0, err
	}

	var count int64
	switch countOp.Kind {
	case parser.OperandNumber:
		count = int64(countOp.Number)
	case parser.OperandSymbol:
		target, err := e.symbolTable.Get(countOp.Symbol)
		if err != nil {
			return 0, err
		}
		count = int64(target) - int64(stmt.Address) - 1
	}

	word := fixedWord(inst)
	flagsField := inst.Fields[1]
	countField := inst.Fields[2]
	word |= (flags & flagsField.Mask()) << flagsField.Offset
	word |= signedBits(count, countField.Width) << countField.Offset
	return word, nil
}

// encodeCHO handles the three CHO sub-instructions (spec.md §4.3 "CHO flag
// names"): "cho rdal, lfo" (read, no memory access), and the longer
// "cho rda/sof, lfo, flags[, addr]" forms.
func (e *Encoder) encodeCHO(stmt *parser.Statement, inst schema.Instruction) (uint32, error) {
	if len(stmt.Operands) < 2 {
		return 0, fmt.Errorf("cho expects at least 2 operands, got %d", len(stmt.Operands))
	}
	modeOp, lfoOp := stmt.Operands[0], stmt.Operands[1]
	if modeOp.Kind != parser.OperandSymbol {
		return 0, fmt.Errorf("cho's first operand must be a mode keyword (rda, sof, rdal)")
	}
	mode, ok := choModes[strings.ToUpper(modeOp.Symbol)]
	if !ok {
		return 0, fmt.Errorf("unrecognized cho mode %q", modeOp.Symbol)
	}
	if lfoOp.Kind != parser.OperandSymbol {
		return 0, fmt.Errorf("cho's second operand must be an LFO selector")
	}
	lfo, ok := lfoSelectors[strings.ToUpper(lfoOp.Symbol)]
	if !ok {
		return 0, fmt.Errorf("unrecognized cho LFO selector %q", lfoOp.Symbol)
	}
	var flags uint32
	if strings.HasPrefix(strings.ToUpper(lfoOp.Symbol), "COS") {
		flags |= choFlags["COS"]
	}

	var addr uint32
	if len(stmt.Operands) >= 3 {
		extra, err := resolveFlagSet(stmt.Operands[2].Symbol, choFlags)
		if err != nil {
			return 0, err
		}
		flags |= extra
	}
	if len(stmt.Operands) >= 4 {
		a, err := e.resolveAddress(stmt.Operands[3])
		if err != nil {
			return 0, err
		}
		addr = a
	}

	word := fixedWord(inst)
	modeField, lfoField, flagsField, addrField := inst.Fields[1], inst.Fields[2], inst.Fields[3], inst.Fields[4]
	word |= (mode & modeField.Mask()) << modeField.Offset
	word |= (lfo & lfoField.Mask()) << lfoField.Offset
	word |= (flags & flagsField.Mask()) << flagsField.Offset
	word |= (addr & addrField.Mask()) << addrField.Offset
	return word, nil
}

func fixedWord(inst schema.Instruction) uint32 {
	var word uint32
	for _, f := range inst.Fields {
		if f.Kind == schema.FieldFixed {
			word |= (f.Fixed & f.Mask()) << f.Offset
		}
	}
	return word
}

// encodeField resolves and bit-packs one operand according to its field's
// Kind. Returned bits are already masked to f.Width but not yet shifted.
func (e *Encoder) encodeField(f schema.Field, op parser.Operand) (uint32, error) {
	switch f.Kind {
	case schema.FieldRegister:
		addr, err := e.resolveRegister(op)
		if err != nil {
			return 0, err
		}
		return addr & f.Mask(), nil

	case schema.FieldMemAddress, schema.FieldInstAddress:
		addr, err := e.resolveAddress(op)
		if err != nil {
			return 0, err
		}
		return addr & f.Mask(), nil

	case schema.FieldUnsigned:
		v, err := e.resolveNumber(op)
		if err != nil {
			return 0, err
		}
		return uint32(int64(v)) & f.Mask(), nil

	case schema.FieldSigned:
		v, err := e.resolveNumber(op)
		if err != nil {
			return 0, err
		}
		return signedBits(int64(v), f.Width), nil

	case schema.FieldS1_14, schema.FieldS15, schema.FieldS1_9, schema.FieldS10, schema.FieldS4_6:
		v, err := e.resolveNumber(op)
		if err != nil {
			return 0, err
		}
		return fixedpoint.Encode(fixedPointFormat(f.Kind), v, e.clampReals)

	default:
		return 0, fmt.Errorf("unsupported field kind for %s", f.Name)
	}
}

func fixedPointFormat(kind schema.FieldKind) fixedpoint.Format {
	switch kind {
	case schema.FieldS1_14:
		return fixedpoint.S1_14
	case schema.FieldS15:
		return fixedpoint.S15
	case schema.FieldS1_9:
		return fixedpoint.S1_9
	case schema.FieldS10:
		return fixedpoint.S10
	default:
		return fixedpoint.S4_6
	}
}

// resolveRegister resolves a register-class operand: a direct reserved or
// general-register name, or an EQU alias chain that bottoms out at one.
func (e *Encoder) resolveRegister(op parser.Operand) (uint32, error) {
	if op.Kind != parser.OperandSymbol {
		return 0, fmt.Errorf("expected a register name, got a number")
	}
	return e.resolveRegisterName(op.Symbol, 0)
}

func (e *Encoder) resolveRegisterName(name string, depth int) (uint32, error) {
	if depth > 8 {
		return 0, fmt.Errorf("alias chain for %q too deep (circular equ?)", name)
	}
	if addr, ok := registerAddress(name); ok {
		return addr, nil
	}
	if sym, exists := e.symbolTable.Lookup(name); exists && sym.Defined && sym.AliasOf != "" {
		return e.resolveRegisterName(sym.AliasOf, depth+1)
	}
	return 0, fmt.Errorf("undefined register or alias %q", name)
}

// resolveAddress resolves a MEM-name (with optional '^'/'#' modifier) or
// instruction label to its numeric address, or passes a bare numeric
// literal straight through.
func (e *Encoder) resolveAddress(op parser.Operand) (uint32, error) {
	if op.Kind == parser.OperandNumber {
		return uint32(int64(op.Number)), nil
	}
	key := op.Symbol
	if op.Modifier != 0 {
		key += string(op.Modifier)
	}
	v, err := e.symbolTable.Get(key)
	if err != nil {
		return 0, err
	}
	return uint32(int64(v)), nil
}

// resolveNumber resolves a numeric-field operand: a literal, or a symbol
// bound (directly or through an EQU alias chain) to a numeric value.
func (e *Encoder) resolveNumber(op parser.Operand) (float64, error) {
	if op.Kind == parser.OperandNumber {
		return op.Number, nil
	}
	v, err := e.resolveNumberName(op.Symbol, 0)
	if err != nil {
		return 0, err
	}
	if op.Negative {
		v = -v
	}
	return v, nil
}

func (e *Encoder) resolveNumberName(name string, depth int) (float64, error) {
	if depth > 8 {
		return 0, fmt.Errorf("alias chain for %q too deep (circular equ?)", name)
	}
	sym, exists := e.symbolTable.Lookup(name)
	if !exists || !sym.Defined {
		return 0, fmt.Errorf("undefined symbol %q", name)
	}
	if sym.AliasOf != "" {
		return e.resolveNumberName(sym.AliasOf, depth+1)
	}
	return sym.Value, nil
}

// signedBits two's-complements v within width bits, matching
// fixedpoint.Encode's own truncate-then-wrap convention for the plain
// integer (non fixed-point) signed fields (SKP's count, AND/OR/XOR never
// use this — those are unsigned masks).
func signedBits(v int64, width uint) uint32 {
	mask := uint32(1)<<width - 1
	return uint32(v) & mask
}
