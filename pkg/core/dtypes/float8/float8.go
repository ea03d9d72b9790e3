// Package float8 implements the two 8-bit floating point formats GPU tensor cores accept:
// E5M2 (a float16 with the lower 8 bits of mantissa dropped) and E4M3FN (finite only, max 448).
//
// Like bfloat16, they are bit patterns only: kernels store them in 8-bit integer containers,
// and these conversions are used to materialize constants.
package float8

import (
	"math"
	"strconv"

	"github.com/x448/float16"
)

// E5M2 has 1 bit of sign, 5 bits of exponent (bias 15) and 2 bits of mantissa. It has infinities and NaNs.
type E5M2 uint8

// E5M2FromFloat32 converts x to E5M2, rounding to the nearest even value. Values beyond the range become infinities.
func E5M2FromFloat32(x float32) E5M2 {
	h := float16.Fromfloat32(x).Bits()
	upper, lower := h>>8, h&0xFF
	if h&0x7C00 == 0x7C00 && h&0x03FF != 0 { // NaN
		return E5M2(upper | 0x02)
	}
	if lower > 0x80 || (lower == 0x80 && upper&1 == 1) {
		upper++
	}
	return E5M2(upper)
}

// Float32 converts to float32. The conversion is exact.
func (f E5M2) Float32() float32 {
	return float16.Frombits(uint16(f) << 8).Float32()
}

// String implements fmt.Stringer.
func (f E5M2) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'g', -1, 32)
}

// E4M3FN has 1 bit of sign, 4 bits of exponent (bias 7) and 3 bits of mantissa.
// There are no infinities, and S.1111.111 is NaN.
type E4M3FN uint8

const (
	e4m3Bias       = 7
	e4m3MaxFinite  = E4M3FN(0x7E) // 448
	e4m3NaN        = E4M3FN(0x7F)
	e4m3MinExp     = 1 - e4m3Bias // -6
	e4m3Subnormal  = -9           // exponent of the smallest subnormal: 2^-9
	e4m3MaxExp     = 8
	e4m3MantBits   = 3
	e4m3MantValues = 1 << e4m3MantBits
)

// E4M3FNFromFloat32 converts x to E4M3FN, rounding to the nearest even value.
// Out of range values saturate to ±448, NaN maps to NaN.
func E4M3FNFromFloat32(x float32) E4M3FN {
	var sign E4M3FN
	if math.Signbit(float64(x)) {
		sign = 0x80
	}
	if x != x {
		return sign | e4m3NaN
	}
	abs := math.Abs(float64(x))
	if math.IsInf(abs, 0) {
		return sign | e4m3MaxFinite
	}
	frac, exp := math.Frexp(abs) // abs = frac * 2^exp, frac in [0.5, 1)
	e := exp - 1
	if abs == 0 || e < e4m3MinExp {
		// Subnormal (or zero): multiples of 2^-9. A result of 8 is the smallest normal number,
		// whose encoding is also 8.
		m := math.RoundToEven(math.Ldexp(abs, -e4m3Subnormal))
		return sign | E4M3FN(m)
	}
	m := math.RoundToEven((2*frac - 1) * e4m3MantValues)
	if m == e4m3MantValues {
		m = 0
		e++
	}
	if e > e4m3MaxExp || (e == e4m3MaxExp && m >= e4m3MantValues-1) {
		return sign | e4m3MaxFinite
	}
	return sign | E4M3FN((e+e4m3Bias)<<e4m3MantBits) | E4M3FN(m)
}

// IsNaN reports whether f is NaN.
func (f E4M3FN) IsNaN() bool {
	return f&0x7F == e4m3NaN
}

// Float32 converts to float32. The conversion is exact.
func (f E4M3FN) Float32() float32 {
	if f.IsNaN() {
		return float32(math.NaN())
	}
	e := int(f>>e4m3MantBits) & 0xF
	m := float64(f & (e4m3MantValues - 1))
	var v float64
	if e == 0 {
		v = math.Ldexp(m, e4m3Subnormal)
	} else {
		v = math.Ldexp(1+m/e4m3MantValues, e-e4m3Bias)
	}
	if f&0x80 != 0 {
		v = -v
	}
	return float32(v)
}

// String implements fmt.Stringer.
func (f E4M3FN) String() string {
	return strconv.FormatFloat(float64(f.Float32()), 'g', -1, 32)
}
