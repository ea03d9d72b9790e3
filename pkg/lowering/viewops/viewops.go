// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package viewops lowers the ops that only move tensor elements around: Splat, ConstantSplat, Cat,
// View, ExpandDims and Trans.
//
// Distributed results are built from the per-thread elements of the operands, in their order: no
// element is computed or exchanged between threads. Trans only applies to tensors in shared memory,
// where it swaps the strides and offsets of the two dimensions.
//
// Register them with Populate.
package viewops

import (
	"github.com/gomlx/gpulower/pkg/core/dtypes"
	"github.com/gomlx/gpulower/pkg/core/layouts"
	"github.com/gomlx/gpulower/pkg/core/program"
	"github.com/gomlx/gpulower/pkg/lowering/conversion"
	"github.com/gomlx/gpulower/pkg/lowering/llir"
	"github.com/gomlx/gpulower/pkg/lowering/lltypes"
	"github.com/pkg/errors"
)

// ErrUnsupported is returned (wrapped) when an op can't be lowered for its types.
var ErrUnsupported = errors.New("unsupported op")

// Populate adds the patterns of this package to ps.
func Populate(ps *conversion.PatternSet) {
	ps.Add(
		conversion.NewPattern("view", program.OpTypeView, ViewLike),
		conversion.NewPattern("expand_dims", program.OpTypeExpandDims, ViewLike),
		conversion.NewPattern("splat", program.OpTypeSplat, Splat),
		conversion.NewPattern("constant_splat", program.OpTypeConstantSplat, ConstantSplat),
		conversion.NewPattern("cat", program.OpTypeCat, Cat),
		conversion.NewPattern("trans", program.OpTypeTrans, Trans),
	)
}

// registerGroupType returns the struct type of ElemsPerThread elements of the converted element type of t.
func registerGroupType(r *conversion.Rewriter, t layouts.TensorType) (lltypes.Type, error) {
	elems, err := layouts.ElemsPerThread(t)
	if err != nil {
		return lltypes.Type{}, err
	}
	elemType, err := r.Converter.ConvertElementType(t.Shape.DType)
	if err != nil {
		return lltypes.Type{}, err
	}
	return lltypes.Repeat(elemType, elems), nil
}

// splatLike returns a register group with all elements set to scalar, reinterpreted as the converted element type.
func splatLike(r *conversion.Rewriter, resultType layouts.TensorType, scalar *llir.Value) (*llir.Value, error) {
	structType, err := registerGroupType(r, resultType)
	if err != nil {
		return nil, err
	}
	elem := r.Builder.Bitcast(scalar, structType.Fields[0])
	elems := make([]*llir.Value, structType.NumFields())
	for ii := range elems {
		elems[ii] = elem
	}
	return r.Builder.PackStruct(structType, elems)
}

// Splat lowers program.OpTypeSplat: every element owned by the thread is the scalar operand.
func Splat(r *conversion.Rewriter, node *program.Node, operands []*llir.Value) (*llir.Value, error) {
	return splatLike(r, node.Type(), operands[0])
}

// ConstantSplat lowers program.OpTypeConstantSplat: the constant is materialized once, in an integer with the
// width of the element type, and reinterpreted as the element type.
//
// Only float (including bfloat16 and float8) and integer element types are supported.
func ConstantSplat(r *conversion.Rewriter, node *program.Node, _ []*llir.Value) (*llir.Value, error) {
	dtype := node.Type().Shape.DType
	var bits uint64
	var err error
	switch {
	case dtype.IsFloat():
		bits, err = dtypes.EncodeFloat(dtype, node.ConstantValue().(float64))
	case dtype.IsInt():
		bits, err = dtypes.EncodeInt(dtype, node.ConstantValue().(int64))
	default:
		return nil, errors.Wrapf(ErrUnsupported, "ConstantSplat of type %s", dtype)
	}
	if err != nil {
		return nil, err
	}
	constant := r.Builder.Constant(lltypes.Int(dtype.Bits()), bits)
	return splatLike(r, node.Type(), constant)
}

// Cat lowers program.OpTypeCat: the elements of the left operand followed by those of the right operand.
// The result must own as many elements per thread as both operands together.
func Cat(r *conversion.Rewriter, node *program.Node, operands []*llir.Value) (*llir.Value, error) {
	structType, err := registerGroupType(r, node.Type())
	if err != nil {
		return nil, err
	}
	lhs, rhs := operands[0], operands[1]
	if !lhs.Type().IsStruct() || !rhs.Type().IsStruct() {
		return nil, errors.Wrapf(ErrUnsupported, "Cat of operands lowered to %s and %s, expected register groups",
			lhs.Type(), rhs.Type())
	}
	if numLHS, numRHS := lhs.Type().NumFields(), rhs.Type().NumFields(); numLHS+numRHS != structType.NumFields() {
		return nil, errors.Errorf("Cat: operands have %d and %d elements per thread, but the result %s has %d",
			numLHS, numRHS, node.Type(), structType.NumFields())
	}
	elems := r.Builder.UnpackStruct(lhs)
	elems = append(elems, r.Builder.UnpackStruct(rhs)...)
	return r.Builder.PackStruct(structType, elems)
}

// ViewLike lowers program.OpTypeView and program.OpTypeExpandDims: the elements of the operand, in the same
// order, repacked with the result type.
func ViewLike(r *conversion.Rewriter, node *program.Node, operands []*llir.Value) (*llir.Value, error) {
	structType, err := registerGroupType(r, node.Type())
	if err != nil {
		return nil, err
	}
	src := operands[0]
	if !src.Type().IsStruct() {
		return nil, errors.Wrapf(ErrUnsupported, "%s of an operand lowered to %s, expected a register group",
			node.OpType(), src.Type())
	}
	if src.Type().NumFields() != structType.NumFields() {
		return nil, errors.Errorf("%s: operand has %d elements per thread, but the result %s has %d",
			node.OpType(), src.Type().NumFields(), node.Type(), structType.NumFields())
	}
	return r.Builder.PackStruct(structType, r.Builder.UnpackStruct(src))
}

// Trans lowers program.OpTypeTrans of a tensor in shared memory: the same base pointer, with the strides and
// offsets of the two dimensions swapped.
func Trans(r *conversion.Rewriter, node *program.Node, operands []*llir.Value) (*llir.Value, error) {
	if _, isShared := node.Type().Encoding.(layouts.Shared); !isShared {
		return nil, errors.Wrapf(ErrUnsupported, "Trans to %s, only tensors in shared memory can be transposed",
			node.Type())
	}
	src, err := r.Builder.UnpackSharedMemoryObject(operands[0])
	if err != nil {
		return nil, err
	}
	if src.Rank() != 2 {
		return nil, errors.Errorf("Trans: expected a rank-2 shared memory object, got rank %d", src.Rank())
	}
	dst := llir.SharedMemoryObject{
		Base:    src.Base,
		Strides: []*llir.Value{src.Strides[1], src.Strides[0]},
		Offsets: []*llir.Value{src.Offsets[1], src.Offsets[0]},
	}
	return r.Builder.PackSharedMemoryObject(dst)
}
