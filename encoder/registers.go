package encoder

import (
	"fmt"
	"strconv"
	"strings"
)

// reservedRegisters is the fixed peripheral address space FV-1 assembly
// exposes alongside the general register file (spec.md §4.3 "Symbol table":
// "Pre-populated with reserved names: potentiometer inputs..., codec
// I/O..., LFO control registers..., indirect-address register, ... LFO
// selectors..."). General registers REG0..REG(RegCount-1) occupy addresses
// 0..RegCount-1 of the reg field (schema.go's FieldRegister); these
// peripheral names are assigned the addresses above that window so the two
// spaces never collide, rather than the 0..31 vs 32..63 split the real
// chip uses — this core only has to be self-consistent (see DESIGN.md).
var reservedRegisters = map[string]uint32{
	"SIN0_RATE":  32,
	"SIN0_RANGE": 33,
	"SIN1_RATE":  34,
	"SIN1_RANGE": 35,
	"RMP0_RATE":  36,
	"RMP0_RANGE": 37,
	"RMP1_RATE":  38,
	"RMP1_RANGE": 39,
	"POT0":       40,
	"POT1":       41,
	"POT2":       42,
	"ADCL":       43,
	"ADCR":       44,
	"DACL":       45,
	"DACR":       46,
	"ADDR_PTR":   47,
}

// lfoSelectors maps a CHO instruction's LFO-selector operand to the 3-bit
// lfo field value (spec.md §4.3's "LFO selectors (SIN0, SIN1, COS0, COS1,
// RMP0, RMP1)"); COS0/COS1 select the same oscillator as SIN0/SIN1 with a
// quadrature flag, folded into the flags operand rather than a distinct
// lfo index (there are only 4 physical LFOs).
var lfoSelectors = map[string]uint32{
	"SIN0": 0,
	"COS0": 0,
	"SIN1": 1,
	"COS1": 1,
	"RMP0": 2,
	"RMP1": 3,
}

// choFlags are the CHO "flags" operand bits a program may OR together,
// written as one or more '|'-joined names (e.g. "COS|COMPC").
var choFlags = map[string]uint32{
	"SIN":   0x00,
	"COS":   0x01,
	"REG":   0x02,
	"COMPC": 0x04,
	"COMPA": 0x08,
	"RPTR2": 0x10,
	"NA":    0x20,
}

// choModes are the keyword that names which CHO sub-instruction a line
// uses; it occupies the 2-bit mode field.
var choModes = map[string]uint32{
	"RDA":  0,
	"SOF":  1,
	"RDAL": 2,
}

// skpFlags are SKP's condition-flag names, one or more '|'-joined, in the
// 5-bit flags field (spec.md §4.3 "SKP condition names").
var skpFlags = map[string]uint32{
	"RUN": 0x10,
	"ZRC": 0x08,
	"ZRO": 0x04,
	"GEZ": 0x02,
	"NEG": 0x01,
}

// IsReservedName reports whether name is a hardware-reserved symbol that a
// user EQU may not rebind (spec.md §4.3: "User EQU bindings may shadow user
// names but not reserved register names of the hardware").
func IsReservedName(name string) bool {
	upper := strings.ToUpper(name)
	if _, ok := reservedRegisters[upper]; ok {
		return true
	}
	if _, ok := lfoSelectors[upper]; ok {
		return true
	}
	if isGeneralRegisterName(upper) {
		return true
	}
	return false
}

func isGeneralRegisterName(upper string) (ok bool) {
	if !strings.HasPrefix(upper, "REG") {
		return false
	}
	_, err := strconv.Atoi(upper[3:])
	return err == nil
}

// resolveFlagSet ORs together one or more '|'-separated names looked up in
// table, failing on any unrecognized name.
func resolveFlagSet(expr string, table map[string]uint32) (uint32, error) {
	var bits uint32
	for _, part := range strings.Split(expr, "|") {
		name := strings.ToUpper(strings.TrimSpace(part))
		v, ok := table[name]
		if !ok {
			return 0, fmt.Errorf("unrecognized flag name %q", part)
		}
		bits |= v
	}
	return bits, nil
}

// registerAddress resolves a register-class symbol (general or reserved
// peripheral) to its fixed numeric address.
func registerAddress(name string) (uint32, bool) {
	upper := strings.ToUpper(name)
	if addr, ok := reservedRegisters[upper]; ok {
		return addr, true
	}
	if isGeneralRegisterName(upper) {
		n, _ := strconv.Atoi(upper[3:])
		return uint32(n), true
	}
	return 0, false
}
