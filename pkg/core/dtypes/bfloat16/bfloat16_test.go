package bfloat16

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConversions(t *testing.T) {
	for _, v := range []float32{0, 1, -2, 0.5, 3.140625, 65536, -0.0078125} {
		b := FromFloat32(v)
		require.Equalf(t, v, b.Float32(), "value %g should be exactly representable", v)
		require.Equal(t, b, FromBits(b.Bits()))
	}
	assert.Equal(t, uint16(0x3F80), FromFloat32(1).Bits())
	assert.Equal(t, uint16(0xC000), FromFloat64(-2).Bits())

	// 1 + 2^-8 is exactly half-way between 1 and 1 + 2^-7: rounds to the even mantissa (1).
	assert.Equal(t, float32(1), FromFloat32(1+1.0/256).Float32())
	// Slightly above half-way rounds up.
	assert.Equal(t, float32(1+1.0/128), FromFloat32(1+1.0/256+1.0/4096).Float32())

	assert.True(t, math.IsNaN(float64(FromFloat32(float32(math.NaN())).Float32())))
	assert.True(t, math.IsInf(float64(FromFloat32(float32(math.Inf(-1))).Float32()), -1))
}
