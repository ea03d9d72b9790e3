package dtypes

import (
	"math"

	"github.com/gomlx/gpulower/pkg/core/dtypes/bfloat16"
	"github.com/gomlx/gpulower/pkg/core/dtypes/float8"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// EncodeFloat returns the bit pattern of value converted to the float dtype, right-aligned in an uint64.
// The bits are the contents of the dtype's storage container.
func EncodeFloat(dtype DType, value float64) (uint64, error) {
	switch dtype {
	case Float64:
		return math.Float64bits(value), nil
	case Float32:
		return uint64(math.Float32bits(float32(value))), nil
	case Float16:
		return uint64(float16.Fromfloat32(float32(value)).Bits()), nil
	case BFloat16:
		return uint64(bfloat16.FromFloat64(value).Bits()), nil
	case F8E5M2:
		return uint64(float8.E5M2FromFloat32(float32(value))), nil
	case F8E4M3FN:
		return uint64(float8.E4M3FNFromFloat32(float32(value))), nil
	default:
		return 0, errors.Errorf("EncodeFloat: dtype %s is not a float", dtype)
	}
}

// DecodeFloat is the inverse of EncodeFloat for bit patterns produced by it.
func DecodeFloat(dtype DType, bits uint64) (float64, error) {
	switch dtype {
	case Float64:
		return math.Float64frombits(bits), nil
	case Float32:
		return float64(math.Float32frombits(uint32(bits))), nil
	case Float16:
		return float64(float16.Frombits(uint16(bits)).Float32()), nil
	case BFloat16:
		return float64(bfloat16.FromBits(uint16(bits)).Float32()), nil
	case F8E5M2:
		return float64(float8.E5M2(bits).Float32()), nil
	case F8E4M3FN:
		return float64(float8.E4M3FN(bits).Float32()), nil
	default:
		return 0, errors.Errorf("DecodeFloat: dtype %s is not a float", dtype)
	}
}

// EncodeInt returns the two's complement bit pattern of value truncated to the integer (or Bool) dtype width.
func EncodeInt(dtype DType, value int64) (uint64, error) {
	if !dtype.IsInt() && dtype != Bool {
		return 0, errors.Errorf("EncodeInt: dtype %s is not an integer", dtype)
	}
	bits := dtype.Bits()
	if bits == 64 {
		return uint64(value), nil
	}
	return uint64(value) & (1<<bits - 1), nil
}

// DecodeInt is the inverse of EncodeInt: signed dtypes are sign-extended, unsigned ones (and Bool) are zero-extended.
func DecodeInt(dtype DType, bits uint64) (int64, error) {
	if !dtype.IsInt() && dtype != Bool {
		return 0, errors.Errorf("DecodeInt: dtype %s is not an integer", dtype)
	}
	width := dtype.Bits()
	if width == 64 {
		return int64(bits), nil
	}
	bits &= 1<<width - 1
	if !dtype.IsUnsigned() && dtype != Bool && bits&(1<<(width-1)) != 0 {
		return int64(bits) - 1<<width, nil
	}
	return int64(bits), nil
}
