package float8

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestE4M3FN(t *testing.T) {
	// Exactly representable values round-trip.
	for _, v := range []float32{0, 1, -1, 0.5, 1.125, 448, -448, 0.015625, 0.001953125, 240} {
		f := E4M3FNFromFloat32(v)
		require.Equalf(t, v, f.Float32(), "value %g (encoded 0x%02x)", v, uint8(f))
	}
	assert.Equal(t, E4M3FN(0x38), E4M3FNFromFloat32(1))
	assert.Equal(t, E4M3FN(0x7E), E4M3FNFromFloat32(448))
	assert.Equal(t, E4M3FN(0x01), E4M3FNFromFloat32(0.001953125)) // 2^-9, smallest subnormal.
	assert.Equal(t, E4M3FN(0x08), E4M3FNFromFloat32(0.015625))    // 2^-6, smallest normal.

	// Saturation and NaN.
	assert.Equal(t, float32(448), E4M3FNFromFloat32(1e6).Float32())
	assert.Equal(t, float32(-448), E4M3FNFromFloat32(float32(math.Inf(-1))).Float32())
	assert.True(t, E4M3FNFromFloat32(float32(math.NaN())).IsNaN())

	// 1 + 1/16 is half-way between 1 and 1.125: rounds to even.
	assert.Equal(t, float32(1), E4M3FNFromFloat32(1+1.0/16).Float32())
	assert.Equal(t, float32(1.25), E4M3FNFromFloat32(1.1875).Float32())
}

func TestE5M2(t *testing.T) {
	for _, v := range []float32{0, 1, -1, 1.5, 0.75, 57344, -2} {
		f := E5M2FromFloat32(v)
		require.Equalf(t, v, f.Float32(), "value %g (encoded 0x%02x)", v, uint8(f))
	}
	assert.Equal(t, E5M2(0x3C), E5M2FromFloat32(1))
	// 1 + 1/8 is half-way between 1 and 1.25: rounds to even.
	assert.Equal(t, float32(1), E5M2FromFloat32(1.125).Float32())
	assert.Equal(t, float32(1.5), E5M2FromFloat32(1.375).Float32())
	assert.True(t, math.IsInf(float64(E5M2FromFloat32(1e6).Float32()), 1))
	assert.True(t, math.IsNaN(float64(E5M2FromFloat32(float32(math.NaN())).Float32())))
	assert.Equal(t, "1.5", E5M2FromFloat32(1.5).String())
}
