// Package schema is the static table of FV-1 instruction mnemonics: each
// mnemonic maps to an ordered list of 32-bit word fields (spec.md §4.2).
// The schema only describes layout; the encoder package's field walk
// (encodeGeneric and its SKP/CHO special cases) does the actual bit-packing.
package schema

// FieldKind is the semantic type of one instruction field.
type FieldKind int

const (
	// FieldFixed fields contribute a constant value and consume no operand.
	FieldFixed FieldKind = iota
	FieldS1_14
	FieldS15
	FieldS1_9
	FieldS10
	FieldS4_6
	FieldUnsigned
	FieldSigned
	FieldRegister    // a REGn address (0..RegCount-1) or a reserved peripheral address (32..47)
	FieldMemAddress  // a delay-memory cell address
	FieldInstAddress // an instruction-slot index (JMP target)
)

// Field is one bit-range of an instruction word.
type Field struct {
	Name   string
	Width  uint
	Offset uint
	Kind   FieldKind
	Fixed  uint32 // meaningful only when Kind == FieldFixed
}

// Mask is the field's all-ones mask at bit 0 (before shifting).
func (f Field) Mask() uint32 {
	if f.Width >= 32 {
		return 0xFFFFFFFF
	}
	return uint32(1)<<f.Width - 1
}

// Instruction is one mnemonic's field layout. Fields appear in the order
// operands must be supplied; FieldFixed entries (including the opcode
// itself) are interleaved at their natural bit position but never consume
// an operand.
type Instruction struct {
	Mnemonic string
	Opcode   uint32
	Fields   []Field
}

// OperandFields returns the subset of Fields that consume an operand, in
// the order operands must appear in source.
func (i Instruction) OperandFields() []Field {
	out := make([]Field, 0, len(i.Fields))
	for _, f := range i.Fields {
		if f.Kind != FieldFixed {
			out = append(out, f)
		}
	}
	return out
}

const opcodeWidth = 5

// build lays fields out sequentially starting right after the opcode field,
// then pads the remainder of the 32-bit word with a reserved fixed-zero
// field. This mirrors the schema table's declared intent (§4.2: "an
// ordered list of fields... name, width, offset") while keeping bit
// bookkeeping in one place instead of hand-computed per instruction.
func build(mnemonic string, opcode uint32, operands ...Field) Instruction {
	fields := make([]Field, 0, len(operands)+2)
	fields = append(fields, Field{Name: "opcode", Width: opcodeWidth, Offset: 0, Kind: FieldFixed, Fixed: opcode})

	cursor := uint(opcodeWidth)
	for _, f := range operands {
		f.Offset = cursor
		fields = append(fields, f)
		cursor += f.Width
	}
	if cursor > 32 {
		panic("schema: " + mnemonic + " fields exceed 32 bits")
	}
	if cursor < 32 {
		fields = append(fields, Field{Name: "reserved", Width: 32 - cursor, Offset: cursor, Kind: FieldFixed, Fixed: 0})
	}
	return Instruction{Mnemonic: mnemonic, Opcode: opcode, Fields: fields}
}

func field(name string, width uint, kind FieldKind) Field {
	return Field{Name: name, Width: width, Kind: kind}
}

// Real-instruction opcodes. SOF=13 (0b01101) is fixed by spec.md §8
// scenario 3's worked example; the rest are assigned sequentially and are
// internally consistent (this core never round-trips against real FV-1
// EEPROM images, only against itself — see DESIGN.md).
const (
	opRDA  = 0
	opRMPA = 1
	opWRA  = 2
	opWRAP = 3
	opRDAX = 4
	opRDFX = 5
	opWRLX = 6
	opWRHX = 7
	opMAXX = 8
	opMULX = 9
	opLOG  = 10
	opEXP  = 11
	opSKP  = 12
	opSOF  = 13
	opAND  = 14
	opOR   = 15
	opXOR  = 16
	opLDAX = 17
	opWRAX = 18
	opWLDS = 19
	opJAM  = 20
	opWLDR = 21
	opCHO  = 22
	opJMP  = 23
)

// Table is the static mnemonic -> Instruction catalogue (spec.md §4.2).
var Table = buildTable()

func buildTable() map[string]Instruction {
	t := map[string]Instruction{
		"RDA":  build("RDA", opRDA, field("addr", 16, FieldMemAddress), field("coef", 11, FieldS1_9)),
		"RMPA": build("RMPA", opRMPA, field("coef", 11, FieldS1_9)),
		"WRA":  build("WRA", opWRA, field("addr", 16, FieldMemAddress), field("coef", 11, FieldS1_9)),
		"WRAP": build("WRAP", opWRAP, field("addr", 16, FieldMemAddress), field("coef", 11, FieldS1_9)),
		"RDAX": build("RDAX", opRDAX, field("reg", 6, FieldRegister), field("coef", 16, FieldS1_14)),
		"RDFX": build("RDFX", opRDFX, field("reg", 6, FieldRegister), field("coef", 16, FieldS1_14)),
		"WRLX": build("WRLX", opWRLX, field("reg", 6, FieldRegister), field("coef", 16, FieldS1_14)),
		"WRHX": build("WRHX", opWRHX, field("reg", 6, FieldRegister), field("coef", 16, FieldS1_14)),
		"MAXX": build("MAXX", opMAXX, field("reg", 6, FieldRegister), field("coef", 16, FieldS1_14)),
		"MULX": build("MULX", opMULX, field("reg", 6, FieldRegister)),
		"LDAX": build("LDAX", opLDAX, field("reg", 6, FieldRegister)),
		"LOG":  build("LOG", opLOG, field("coef", 16, FieldS1_14), field("offset", 11, FieldS4_6)),
		"EXP":  build("EXP", opEXP, field("coef", 16, FieldS1_14), field("offset", 11, FieldS4_6)),
		"SOF":  build("SOF", opSOF, field("coef", 16, FieldS1_14), field("offset", 11, FieldS10)),
		"AND":  build("AND", opAND, field("mask", 24, FieldUnsigned)),
		"OR":   build("OR", opOR, field("mask", 24, FieldUnsigned)),
		"XOR":  build("XOR", opXOR, field("mask", 24, FieldUnsigned)),
		"WRAX": build("WRAX", opWRAX, field("reg", 6, FieldRegister), field("coef", 16, FieldS1_14)),
		"SKP":  build("SKP", opSKP, field("flags", 5, FieldUnsigned), field("count", 6, FieldSigned)),
		"WLDS": build("WLDS", opWLDS, field("lfo", 1, FieldUnsigned), field("freq", 9, FieldUnsigned), field("amp", 15, FieldUnsigned)),
		"WLDR": build("WLDR", opWLDR, field("lfo", 1, FieldUnsigned), field("freq", 16, FieldSigned), field("amp", 10, FieldUnsigned)),
		"JAM":  build("JAM", opJAM, field("lfo", 1, FieldUnsigned)),
		"CHO":  build("CHO", opCHO, field("mode", 2, FieldUnsigned), field("lfo", 3, FieldUnsigned), field("flags", 6, FieldUnsigned), field("addr", 16, FieldMemAddress)),
		"JMP":  build("JMP", opJMP, field("target", 16, FieldInstAddress)),
	}
	return t
}

// NopWord is the canonical padding instruction: SKP with a zero flag set
// and a zero skip count, i.e. a true no-op (spec.md §3 "Encoded instruction").
func NopWord() uint32 {
	return PseudoOps["NOP"]
}

// Lookup returns an instruction's schema entry.
func Lookup(mnemonic string) (Instruction, bool) {
	i, ok := Table[mnemonic]
	return i, ok
}
