package viewops_test

import (
	"testing"

	"github.com/gomlx/gpulower/pkg/core/dtypes"
	"github.com/gomlx/gpulower/pkg/core/layouts"
	"github.com/gomlx/gpulower/pkg/core/program"
	"github.com/gomlx/gpulower/pkg/core/shapes"
	"github.com/gomlx/gpulower/pkg/lowering/conversion"
	"github.com/gomlx/gpulower/pkg/lowering/llir"
	"github.com/gomlx/gpulower/pkg/lowering/viewops"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	blocked4x8 = layouts.NewBlocked([]int{1, 1}, []int{4, 8}, []int{1, 1}, []int{1, 0})
	blocked1D  = layouts.NewBlocked([]int{1}, []int{32}, []int{1}, []int{0})
	blockedRow = layouts.NewBlocked([]int{1, 1}, []int{1, 32}, []int{1, 1}, []int{1, 0})
	sharedRow  = layouts.NewShared([]int{1, 0})
	sharedCol  = layouts.NewShared([]int{0, 1})
)

func legalize(fn *program.Function) (*conversion.Result, error) {
	ps := conversion.NewPatternSet()
	viewops.Populate(ps)
	return conversion.Legalize(fn, ps, conversion.DefaultOptions())
}

func scalarParameter(fn *program.Function, name string, dtype dtypes.DType) *program.Node {
	return must.M1(fn.Parameter(name, layouts.MakeTensorType(nil, shapes.Scalar(dtype))))
}

func TestSplat(t *testing.T) {
	fn := program.NewFunction("splat")
	x := scalarParameter(fn, "x", dtypes.Float32)
	y := must.M1(fn.Splat(x, []int{4, 8}, blocked4x8))
	z := must.M1(fn.Splat(x, []int{128}, blocked1D))
	require.NoError(t, fn.Return(y, z))
	res := must.M1(legalize(fn))

	assert.Equal(t, "struct<(f32)>", res.Lowered(y).Type().String())
	elems := res.Builder.UnpackStruct(res.Lowered(y))
	require.Len(t, elems, 1)
	assert.Same(t, res.Lowered(x), elems[0])

	elems = res.Builder.UnpackStruct(res.Lowered(z))
	require.Len(t, elems, 4)
	for _, elem := range elems {
		assert.Same(t, res.Lowered(x), elem)
	}
	assert.Equal(t, []*llir.Value{res.Lowered(y), res.Lowered(z)}, res.Outputs)
}

func TestConstantSplat(t *testing.T) {
	fn := program.NewFunction("constants")
	f16 := must.M1(fn.ConstantSplat(1.0, dtypes.Float16, []int{4, 8}, blocked4x8))
	bf16 := must.M1(fn.ConstantSplat(1.0, dtypes.BFloat16, []int{4, 8}, blocked4x8))
	i32 := must.M1(fn.ConstantSplat(-1, dtypes.Int32, []int{128}, blocked1D))
	f32 := must.M1(fn.ConstantSplat(2, dtypes.Float32, []int{4, 8}, blocked4x8))
	res := must.M1(legalize(fn))

	// Float16: materialized as an i16 and reinterpreted as f16.
	elem := res.Builder.UnpackStruct(res.Lowered(f16))[0]
	assert.Equal(t, "f16", elem.Type().String())
	require.Equal(t, llir.OpTypeBitcast, elem.OpType())
	constant := elem.Operands()[0]
	assert.Equal(t, "i16", constant.Type().String())
	assert.Equal(t, uint64(0x3c00), constant.ConstantBits())

	// BFloat16 is held in an i16: no reinterpretation needed.
	elem = res.Builder.UnpackStruct(res.Lowered(bf16))[0]
	require.Equal(t, llir.OpTypeConstant, elem.OpType())
	assert.Equal(t, "i16", elem.Type().String())
	assert.Equal(t, uint64(0x3f80), elem.ConstantBits())

	elems := res.Builder.UnpackStruct(res.Lowered(i32))
	require.Len(t, elems, 4)
	assert.Equal(t, uint64(0xffff_ffff), elems[3].ConstantBits())
	assert.Same(t, elems[0], elems[3])

	elem = res.Builder.UnpackStruct(res.Lowered(f32))[0]
	assert.Equal(t, uint64(0x4000_0000), elem.Operands()[0].ConstantBits())
}

func TestConstantSplatUnsupported(t *testing.T) {
	fn := program.NewFunction("bool")
	_ = must.M1(fn.ConstantSplat(true, dtypes.Bool, []int{4, 8}, blocked4x8))
	_, err := legalize(fn)
	require.ErrorIs(t, err, viewops.ErrUnsupported)
	assert.Contains(t, err.Error(), "constant_splat")
}

func TestCat(t *testing.T) {
	fn := program.NewFunction("cat")
	lhs := must.M1(fn.Parameter("lhs", layouts.MakeTensorType(blocked1D, shapes.Make(dtypes.Float16, 128))))
	rhs := must.M1(fn.Parameter("rhs", layouts.MakeTensorType(blocked1D, shapes.Make(dtypes.Float16, 192))))
	cat := must.M1(fn.Cat(lhs, rhs, blocked1D))
	res := must.M1(legalize(fn))

	loweredLHS := res.Builder.UnpackStruct(res.Lowered(lhs))
	loweredRHS := res.Builder.UnpackStruct(res.Lowered(rhs))
	require.Len(t, loweredLHS, 4)
	require.Len(t, loweredRHS, 6)
	elems := res.Builder.UnpackStruct(res.Lowered(cat))
	require.Len(t, elems, 10)
	for ii := range elems {
		var want *llir.Value
		if ii < 4 {
			want = res.Lowered(lhs)
		} else {
			want = res.Lowered(rhs)
		}
		// Elements of the parameters are extracted from them, in order.
		require.Equal(t, llir.OpTypeExtractValue, elems[ii].OpType())
		assert.Same(t, want, elems[ii].Operands()[0], "element #%d", ii)
	}
	for ii := range 4 {
		assert.Equal(t, ii, elems[ii].FieldIndex())
	}
	for ii := range 6 {
		assert.Equal(t, ii, elems[4+ii].FieldIndex())
	}
}

func TestCatLengthMismatch(t *testing.T) {
	fn := program.NewFunction("cat")
	twoWarps := layouts.NewBlocked([]int{1}, []int{32}, []int{2}, []int{0})
	lhs := must.M1(fn.Parameter("lhs", layouts.MakeTensorType(blocked1D, shapes.Make(dtypes.Float32, 128))))
	rhs := must.M1(fn.Parameter("rhs", layouts.MakeTensorType(twoWarps, shapes.Make(dtypes.Float32, 192))))
	_ = must.M1(fn.Cat(lhs, rhs, blocked1D))
	_, err := legalize(fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "4 and 3 elements per thread")
}

func TestViewLike(t *testing.T) {
	fn := program.NewFunction("views")
	x := must.M1(fn.Parameter("x", layouts.MakeTensorType(blocked1D, shapes.Make(dtypes.Int8, 128))))
	view := must.M1(fn.View(x, []int{4, 32}, blockedRow))
	back := must.M1(fn.View(view, []int{128}, blocked1D))

	row := must.M1(fn.Parameter("row", layouts.MakeTensorType(layouts.NewSlice(0, blockedRow), shapes.Make(dtypes.Int8, 32))))
	expanded := must.M1(fn.ExpandDims(row, 0, blockedRow))
	res := must.M1(legalize(fn))

	// Elements keep their order: they are the fields of the parameter, extracted once.
	elems := res.Builder.UnpackStruct(res.Lowered(view))
	assert.Equal(t, []int{0, 1, 2, 3}, extractedFields(t, elems, res.Lowered(x)))
	assert.Equal(t, elems, res.Builder.UnpackStruct(res.Lowered(back)))
	assert.True(t, res.Lowered(x).Type().Equal(res.Lowered(back).Type()))

	assert.Equal(t, "struct<(i8)>", res.Lowered(expanded).Type().String())
	elems = res.Builder.UnpackStruct(res.Lowered(expanded))
	assert.Equal(t, []int{0}, extractedFields(t, elems, res.Lowered(row)))
	assert.Equal(t, 2, res.OpCounts[program.OpTypeView])
	assert.Equal(t, 1, res.OpCounts[program.OpTypeExpandDims])
}

// extractedFields checks that the elements were extracted from the struct source, and returns their field indices.
func extractedFields(t *testing.T, elems []*llir.Value, source *llir.Value) []int {
	fields := make([]int, len(elems))
	for ii, elem := range elems {
		require.Equal(t, llir.OpTypeExtractValue, elem.OpType(), "element #%d", ii)
		require.Same(t, source, elem.Operands()[0], "element #%d", ii)
		fields[ii] = elem.FieldIndex()
	}
	return fields
}

func TestViewLengthMismatch(t *testing.T) {
	fn := program.NewFunction("view")
	x := must.M1(fn.Parameter("x", layouts.MakeTensorType(blocked1D, shapes.Make(dtypes.Float32, 128))))
	wider := layouts.NewBlocked([]int{1, 2}, []int{1, 32}, []int{1, 1}, []int{1, 0})
	_ = must.M1(fn.View(x, []int{4, 32}, wider))
	_, err := legalize(fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operand has 4 elements per thread")
}

func TestTrans(t *testing.T) {
	fn := program.NewFunction("trans")
	x := must.M1(fn.Parameter("x", layouts.MakeTensorType(sharedRow, shapes.Make(dtypes.Float16, 16, 64))))
	xt := must.M1(fn.Trans(x, sharedCol))
	xtt := must.M1(fn.Trans(xt, sharedRow))
	res := must.M1(legalize(fn))

	param := res.Lowered(x)
	assert.Equal(t, "struct<(ptr<f16, 3>, 4 x i32)>", param.Type().String())
	fieldOf := func(v *llir.Value) int {
		require.Equal(t, llir.OpTypeExtractValue, v.OpType())
		require.Same(t, param, v.Operands()[0])
		return v.FieldIndex()
	}

	transposed := must.M1(res.Builder.UnpackSharedMemoryObject(res.Lowered(xt)))
	assert.Equal(t, 0, fieldOf(transposed.Base))
	assert.Equal(t, []int{2, 1}, []int{fieldOf(transposed.Strides[0]), fieldOf(transposed.Strides[1])})
	assert.Equal(t, []int{4, 3}, []int{fieldOf(transposed.Offsets[0]), fieldOf(transposed.Offsets[1])})

	// Transposing twice gives back the original strides and offsets.
	twice := must.M1(res.Builder.UnpackSharedMemoryObject(res.Lowered(xtt)))
	assert.Same(t, transposed.Base, twice.Base)
	assert.Equal(t, []int{1, 2}, []int{fieldOf(twice.Strides[0]), fieldOf(twice.Strides[1])})
	assert.Equal(t, []int{3, 4}, []int{fieldOf(twice.Offsets[0]), fieldOf(twice.Offsets[1])})

	assert.Equal(t, 3, res.NumSharedObjects)
	assert.Equal(t, uint64(3*16*64*2), res.SharedBytes)
}

func TestUnsupported(t *testing.T) {
	// Transposing registers.
	fn := program.NewFunction("trans")
	x := must.M1(fn.Parameter("x", layouts.MakeTensorType(blocked4x8, shapes.Make(dtypes.Float32, 4, 8))))
	_ = must.M1(fn.Trans(x, blockedRow))
	_, err := legalize(fn)
	require.ErrorIs(t, err, viewops.ErrUnsupported)

	// Splat to a dot operand.
	fn = program.NewFunction("splat")
	s := scalarParameter(fn, "s", dtypes.Float16)
	_ = must.M1(fn.Splat(s, []int{16, 16}, layouts.NewDotOperand(0, layouts.NewAmpereMMA([]int{1, 1}), 1)))
	_, err = legalize(fn)
	require.ErrorIs(t, err, layouts.ErrUnsupported)

	// Dot operand element width with no tensor core slot.
	fn = program.NewFunction("f64")
	_ = must.M1(fn.Parameter("x", layouts.MakeTensorType(
		layouts.NewDotOperand(1, layouts.NewAmpereMMA([]int{1, 1}), 1), shapes.Make(dtypes.Float64, 16, 16))))
	_, err = legalize(fn)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "64 bits elements")

	// Splat to shared memory.
	fn = program.NewFunction("shared")
	s = scalarParameter(fn, "s", dtypes.Float16)
	_ = must.M1(fn.Splat(s, []int{16, 16}, sharedRow))
	_, err = legalize(fn)
	require.ErrorIs(t, err, layouts.ErrUnsupported)
}
