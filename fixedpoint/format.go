// Package fixedpoint encodes and decodes the signed fixed-point numeric
// formats used by FV-1 instruction fields: S1.14, S.15, S1.9, S.10 and S4.6.
package fixedpoint

import "fmt"

// Format describes one of the FV-1 Sm.n fixed-point layouts: 1 sign bit,
// IntBits integer bits and FracBits fraction bits.
type Format struct {
	Name     string
	IntBits  uint
	FracBits uint
}

// Width is the total bit width of the field (sign + integer + fraction).
func (f Format) Width() uint {
	return 1 + f.IntBits + f.FracBits
}

// Mask is the all-ones mask covering Width bits.
func (f Format) Mask() uint32 {
	return uint32((uint64(1) << f.Width()) - 1)
}

// scale is the number of LSBs per unit; encoding multiplies a real value by
// this before truncating, matching the reference assembler's Q(IntBits).
// (FracBits) convention: a value is an integer count of 1/scale steps.
func (f Format) scale() float64 {
	return float64(uint64(1) << f.FracBits)
}

// Max is the largest representable value (inclusive); Min is the
// representable bottom of the range.
func (f Format) Max() float64 {
	top := float64(uint64(1) << f.IntBits)
	return top - 1/f.scale()
}

func (f Format) Min() float64 {
	return -float64(uint64(1) << f.IntBits)
}

// Named formats from spec.md §4.1 / GLOSSARY.
var (
	S1_14 = Format{Name: "S1.14", IntBits: 1, FracBits: 14} // coefficients
	S15   = Format{Name: "S.15", IntBits: 0, FracBits: 15}  // register values
	S1_9  = Format{Name: "S1.9", IntBits: 1, FracBits: 9}   // delay coefficients
	S10   = Format{Name: "S.10", IntBits: 0, FracBits: 10}  // small offsets
	S4_6  = Format{Name: "S4.6", IntBits: 4, FracBits: 6}   // wide scale factors
)

// RangeError reports an input outside [Min, Max] when clamping is disabled.
type RangeError struct {
	Format Format
	Value  float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("value %g out of range for %s (valid [%g, %g])", e.Value, e.Format.Name, e.Format.Min(), e.Format.Max())
}

// Encode converts v into the field's unsigned bit pattern (already masked
// to Width bits, ready to be shifted into an instruction word).
//
// Steps, kept distinct per spec.md §9 "Bit-exact numeric encoding":
//  1. clamp (only if clamp is true; otherwise out-of-range is an error)
//  2. truncate toward zero to an integer count of LSBs
//  3. two's-complement within Width bits
//  4. mask to Width bits
func Encode(f Format, v float64, clamp bool) (uint32, error) {
	if v < f.Min() || v > f.Max() {
		if !clamp {
			return 0, &RangeError{Format: f, Value: v}
		}
		if v < f.Min() {
			v = f.Min()
		} else {
			v = f.Max()
		}
	}

	count := int64(v * f.scale()) // truncation toward zero, not rounding

	var bits uint32
	if count < 0 {
		bits = uint32(uint64(count) & uint64(f.Mask()))
	} else {
		bits = uint32(count) & f.Mask()
	}
	return bits, nil
}

// Decode converts a field's bit pattern back to a real value, inverting
// Encode. Used by round-trip tests and the program inspector.
func Decode(f Format, bits uint32) float64 {
	bits &= f.Mask()
	signBit := uint32(1) << (f.Width() - 1)
	var count int64
	if bits&signBit != 0 {
		// sign-extend into a 64-bit two's complement value
		count = int64(bits) - int64(signBit)<<1
	} else {
		count = int64(bits)
	}
	return float64(count) / f.scale()
}
