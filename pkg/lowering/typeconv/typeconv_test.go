package typeconv

import (
	"fmt"
	"testing"

	"github.com/gomlx/gpulower/pkg/core/dtypes"
	"github.com/gomlx/gpulower/pkg/core/layouts"
	"github.com/gomlx/gpulower/pkg/core/shapes"
	"github.com/gomlx/gpulower/pkg/lowering/lltypes"
	"github.com/janpfeifer/must"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	blocked4x8 = layouts.NewBlocked([]int{1, 1}, []int{4, 8}, []int{1, 1}, []int{1, 0})
	blocked2x2 = layouts.NewBlocked([]int{2, 2}, []int{4, 8}, []int{2, 2}, []int{1, 0})
	ampere1x1  = layouts.NewAmpereMMA([]int{1, 1})
	ampere2x2  = layouts.NewAmpereMMA([]int{2, 2})
)

func tensorType(l layouts.Layout, dtype dtypes.DType, dims ...int) layouts.TensorType {
	return layouts.MakeTensorType(l, shapes.Make(dtype, dims...))
}

func TestConvertElementType(t *testing.T) {
	c := New()
	for _, tc := range []struct {
		dtype dtypes.DType
		want  lltypes.Type
	}{
		{dtypes.Bool, lltypes.I1},
		{dtypes.Int8, lltypes.I8},
		{dtypes.Uint16, lltypes.I16},
		{dtypes.Int64, lltypes.I64},
		{dtypes.Float16, lltypes.F16},
		{dtypes.Float32, lltypes.F32},
		{dtypes.Float64, lltypes.F64},
		{dtypes.BFloat16, lltypes.I16},
		{dtypes.F8E5M2, lltypes.I8},
		{dtypes.F8E4M3FN, lltypes.I8},
	} {
		got, err := c.ConvertElementType(tc.dtype)
		require.NoError(t, err, "dtype %s", tc.dtype)
		assert.True(t, tc.want.Equal(got), "dtype %s: want %s, got %s", tc.dtype, tc.want, got)
	}
	_, err := c.ConvertElementType(dtypes.InvalidDType)
	require.ErrorIs(t, err, ErrUnsupported)

	ptr := must.M1(c.ConvertPointer(dtypes.BFloat16, 1))
	assert.Equal(t, "ptr<i16, 1>", ptr.String())
}

func TestConvertTensorType(t *testing.T) {
	c := New()
	for _, tc := range []struct {
		name string
		typ  layouts.TensorType
		want string
	}{
		{"blocked", tensorType(blocked4x8, dtypes.Float32, 4, 8), "struct<(f32)>"},
		{"blocked-bf16", tensorType(blocked2x2, dtypes.BFloat16, 16, 32), "struct<(4 x i16)>"},
		{"slice", tensorType(layouts.NewSlice(1, blocked4x8), dtypes.Int32, 4), "struct<(i32)>"},
		{"mma", tensorType(ampere1x1, dtypes.Float16, 16, 8), "struct<(4 x f16)>"},
		{"shared", tensorType(layouts.NewShared([]int{1, 0}), dtypes.Float16, 64, 64), "struct<(ptr<f16, 3>, 4 x i32)>"},
		{"shared-f8", tensorType(layouts.NewShared([]int{0}), dtypes.F8E5M2, 128), "struct<(ptr<i8, 3>, i32, i32)>"},
		{"scalar", tensorType(nil, dtypes.Float32), "f32"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got, err := c.ConvertTensorType(tc.typ)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got.String())
		})
	}

	// Register group length matches the layout query.
	typ := tensorType(blocked2x2, dtypes.Float32, 64, 128)
	lowered := must.M1(c.ConvertTensorType(typ))
	assert.Equal(t, must.M1(layouts.ElemsPerThread(typ)), lowered.NumFields())
	assert.Equal(t, lowered.NumFields(), must.M1(c.ElemsPerThread(typ)))

	// Shared memory address space and index type are configurable.
	c2 := &Converter{SharedAddressSpace: 1, IndexType: lltypes.I64}
	lowered = must.M1(c2.ConvertTensorType(tensorType(layouts.NewShared([]int{1, 0}), dtypes.Float32, 8, 8)))
	assert.Equal(t, "struct<(ptr<f32, 1>, 4 x i64)>", lowered.String())
}

func TestConvertTensorTypeErrors(t *testing.T) {
	c := New()
	_, err := c.ConvertTensorType(tensorType(nil, dtypes.Float32, 4, 8))
	require.ErrorIs(t, err, ErrUnsupported)

	// Rank mismatch.
	_, err = c.ConvertTensorType(tensorType(blocked4x8, dtypes.Float32, 4, 8, 2))
	require.ErrorIs(t, err, layouts.ErrInvalid)

	// Warps of 16 threads.
	blocked16 := layouts.NewBlocked([]int{1, 1}, []int{2, 8}, []int{1, 1}, []int{1, 0})
	_, err = c.ConvertTensorType(tensorType(blocked16, dtypes.Float32, 4, 8))
	require.ErrorIs(t, err, layouts.ErrInvalid)
	_, err = c.ConvertTensorType(tensorType(layouts.NewSlice(0, blocked16), dtypes.Float32, 8))
	require.ErrorIs(t, err, layouts.ErrInvalid)
	c16 := &Converter{WarpSize: 16, IndexType: lltypes.I32}
	_, err = c16.ConvertTensorType(tensorType(blocked16, dtypes.Float32, 4, 8))
	require.NoError(t, err)

	// Number of warps is only checked when configured.
	c4 := New()
	c4.NumWarps = 4
	_, err = c4.ConvertTensorType(tensorType(blocked2x2, dtypes.Float32, 16, 32))
	require.NoError(t, err)
	_, err = c4.ConvertTensorType(tensorType(blocked4x8, dtypes.Float32, 16, 32))
	require.ErrorIs(t, err, layouts.ErrInvalid)

	// Error messages name the type.
	assert.Contains(t, err.Error(), "tensor<16x32xFloat32")
}

func TestDotOperandFMA(t *testing.T) {
	c := New()
	a := tensorType(layouts.NewDotOperand(0, blocked4x8, 0), dtypes.Float16, 16, 32)
	lowered := must.M1(c.ConvertTensorType(a))
	assert.True(t, lowered.Equal(lltypes.Repeat(lltypes.F32, 32*4)), "got %s", lowered)

	b := tensorType(layouts.NewDotOperand(1, blocked4x8, 0), dtypes.Float16, 32, 16)
	lowered = must.M1(c.ConvertTensorType(b))
	assert.True(t, lowered.Equal(lltypes.Repeat(lltypes.F32, 32*2)), "got %s", lowered)

	// Operand smaller than the CTA tile.
	b = tensorType(layouts.NewDotOperand(1, blocked4x8, 0), dtypes.Float32, 8, 4)
	assert.Equal(t, 8, must.M1(c.ElemsPerThread(b)))

	// Column-major parent: A takes the tile along order[1] (axis 1), B along order[0] (axis 0).
	colMajor := layouts.NewBlocked([]int{1, 2}, []int{4, 8}, []int{1, 1}, []int{0, 1})
	a = tensorType(layouts.NewDotOperand(0, colMajor, 0), dtypes.Float32, 16, 32)
	assert.Equal(t, 32*1*2, must.M1(c.ElemsPerThread(a)))
	b = tensorType(layouts.NewDotOperand(1, colMajor, 0), dtypes.Float32, 32, 16)
	assert.Equal(t, 32*4*1, must.M1(c.ElemsPerThread(b)))
}

func TestDotOperandAmpere(t *testing.T) {
	c := New()
	for _, tc := range []struct {
		opIdx int
		mma   layouts.MMA
		dtype dtypes.DType
		dims  []int
		slot  lltypes.Type
		elems int
	}{
		{0, ampere2x2, dtypes.Float16, []int{64, 32}, lltypes.Vector(lltypes.F16, 2), 16},
		{1, ampere2x2, dtypes.Float16, []int{32, 64}, lltypes.Vector(lltypes.F16, 2), 16},
		{0, ampere1x1, dtypes.Float32, []int{16, 8}, lltypes.Vector(lltypes.F32, 1), 4},
		{0, ampere1x1, dtypes.Int8, []int{32, 64}, lltypes.I32, 16},
		{1, ampere1x1, dtypes.Int8, []int{32, 8}, lltypes.I32, 4},
		{0, ampere1x1, dtypes.BFloat16, []int{16, 16}, lltypes.I32, 4},
		{0, ampere1x1, dtypes.F8E4M3FN, []int{16, 32}, lltypes.I32, 4},
		{0, ampere1x1, dtypes.Int32, []int{16, 8}, lltypes.Vector(lltypes.I32, 1), 4},
	} {
		t.Run(fmt.Sprintf("%d-%s-%v", tc.opIdx, tc.dtype, tc.dims), func(t *testing.T) {
			typ := tensorType(layouts.NewDotOperand(tc.opIdx, tc.mma, 1), tc.dtype, tc.dims...)
			lowered, err := c.ConvertTensorType(typ)
			require.NoError(t, err)
			want := lltypes.Repeat(tc.slot, tc.elems)
			assert.True(t, want.Equal(lowered), "want %s, got %s", want, lowered)
		})
	}

	for _, dtype := range []dtypes.DType{dtypes.Float64, dtypes.Bool} {
		_, err := c.ConvertTensorType(tensorType(layouts.NewDotOperand(0, ampere1x1, 1), dtype, 16, 16))
		require.ErrorIs(t, err, ErrUnsupported, "dtype %s", dtype)
	}
}

func TestDotOperandVolta(t *testing.T) {
	c := New()
	x2 := lltypes.Vector(lltypes.F16, 2)
	for _, tc := range []struct {
		opIdx int
		state layouts.VoltaState
		dims  []int
		elems int
	}{
		{0, layouts.VoltaState{}, []int{32, 16}, 16},
		{0, layouts.VoltaState{}, []int{64, 16}, 32},
		{0, layouts.VoltaState{IsARow: true}, []int{64, 16}, 32},
		{0, layouts.VoltaState{IsAVec4: true}, []int{32, 8}, 8},
		{1, layouts.VoltaState{IsBRow: true}, []int{16, 32}, 16},
		{1, layouts.VoltaState{}, []int{16, 32}, 16},
		{1, layouts.VoltaState{IsBRow: true, IsBVec4: true}, []int{16, 64}, 32},
	} {
		t.Run(fmt.Sprintf("%d-%+v-%v", tc.opIdx, tc.state, tc.dims), func(t *testing.T) {
			volta := layouts.NewVoltaMMA([]int{1, 1}, tc.state)
			typ := tensorType(layouts.NewDotOperand(tc.opIdx, volta, 1), dtypes.Float16, tc.dims...)
			lowered, err := c.ConvertTensorType(typ)
			require.NoError(t, err)
			want := lltypes.Repeat(x2, tc.elems)
			assert.True(t, want.Equal(lowered), "want %s, got %s", want, lowered)
		})
	}

	// Smaller than a tile.
	volta := layouts.NewVoltaMMA([]int{1, 1}, layouts.VoltaState{IsARow: true})
	_, err := c.ConvertTensorType(tensorType(layouts.NewDotOperand(0, volta, 1), dtypes.Float16, 8, 16))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrUnsupported))
}

func TestVoltaLoadCount(t *testing.T) {
	// Without vectorization each (row, k-step) is one load of 2 elements.
	assert.Equal(t, 2*2*4, voltaLoadCount(4, 16, 4, false))
	// Vectorized along M: the second load covers the next row, which is then skipped.
	assert.Equal(t, 2*2*4, voltaLoadCount(4, 16, 8, false))
	// Vectorized along K: the second load covers the next k-step, which is then skipped.
	assert.Equal(t, 2*2*4, voltaLoadCount(4, 16, 8, true))
	// Odd number of k-steps: the last load still reads past K.
	assert.Equal(t, 2*2*4, voltaLoadCount(4, 12, 8, true))
	assert.Equal(t, 0, voltaLoadCount(1, 16, 8, true))
}
