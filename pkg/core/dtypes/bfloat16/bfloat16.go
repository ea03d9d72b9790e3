// Package bfloat16 converts between float32 and the bfloat16 bit pattern.
//
// A BFloat16 is only a bit pattern here: GPU kernels keep it in a 16-bit integer container, and
// the lowering only needs exact conversions to and from float32 to materialize constants.
package bfloat16

import "math"

// BFloat16 (brain floating point) is a 16-bit version of the IEEE 754 single-precision format:
// 1 bit of sign, 8 bits of exponent and 7 bits of mantissa.
type BFloat16 uint16

// Float32 converts the BFloat16 to a float32. The conversion is exact.
func (f BFloat16) Float32() float32 {
	return math.Float32frombits(uint32(f) << 16)
}

// FromFloat32 converts a float32 to a BFloat16, rounding to the nearest even value.
// NaNs are kept as (quiet) NaNs.
func FromFloat32(x float32) BFloat16 {
	bits := math.Float32bits(x)
	if x != x { // NaN
		return BFloat16(bits>>16 | 0x0040)
	}
	rounding := uint32(0x7FFF) + (bits>>16)&1
	return BFloat16((bits + rounding) >> 16)
}

// FromFloat64 converts a float64 to a BFloat16, going through float32.
func FromFloat64(x float64) BFloat16 {
	return FromFloat32(float32(x))
}

// FromBits returns the BFloat16 with the given bit pattern.
func FromBits(bits uint16) BFloat16 { return BFloat16(bits) }

// Bits returns the bit pattern of f.
func (f BFloat16) Bits() uint16 { return uint16(f) }
