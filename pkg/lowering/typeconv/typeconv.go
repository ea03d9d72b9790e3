// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package typeconv lowers tensor types, with their layouts, to the low-level types that represent
// them in each thread.
//
// The rules, by layout:
//
//   - Blocked, Slice and MMA: a struct of ElemsPerThread slots of the converted element type (the
//     thread's "register group").
//   - Shared: a struct with the base pointer (in the shared address space) followed by rank strides
//     and rank offsets, see llir.SharedMemoryObject.
//   - DotOperand: the number and type of slots depend on the parent layout and on the element type,
//     see ConvertDotOperand.
//
// Narrow floats without native registers (bfloat16 and float8) are held in integers of the same width.
package typeconv

import (
	"github.com/gomlx/gpulower/pkg/core/dtypes"
	"github.com/gomlx/gpulower/pkg/core/layouts"
	"github.com/gomlx/gpulower/pkg/lowering/llir"
	"github.com/gomlx/gpulower/pkg/lowering/lltypes"
	"github.com/gomlx/gpulower/pkg/support/xslices"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrUnsupported is returned (wrapped) when a combination of layout and element type cannot be lowered.
var ErrUnsupported = errors.New("cannot lower type")

// DefaultSharedAddressSpace is the address space of pointers to shared memory.
const DefaultSharedAddressSpace = 3

// Converter lowers tensor types. Create it with New, and don't change it after it is in use.
type Converter struct {
	// SharedAddressSpace of the base pointer of tensors in shared memory.
	SharedAddressSpace int

	// IndexType of the strides and offsets of tensors in shared memory.
	IndexType lltypes.Type

	// WarpSize is the number of threads per warp: the threadsPerWarp of every distributed layout must
	// multiply to it. If 0 it is not checked.
	WarpSize int

	// NumWarps is the number of warps per CTA: the warpsPerCTA of every distributed layout must
	// multiply to it. If 0 it is not checked.
	NumWarps int
}

// New returns a Converter with the default configuration: shared address space 3, 32 bits
// indices, warps of 32 threads and any number of warps.
func New() *Converter {
	return &Converter{
		SharedAddressSpace: DefaultSharedAddressSpace,
		IndexType:          lltypes.I32,
		WarpSize:           32,
	}
}

// ConvertElementType returns the low-level type holding one element of dtype.
func (c *Converter) ConvertElementType(dtype dtypes.DType) (lltypes.Type, error) {
	storage := dtype.StorageDType()
	switch {
	case storage == dtypes.Bool:
		return lltypes.I1, nil
	case storage.IsInt():
		return lltypes.Int(storage.Bits()), nil
	case storage == dtypes.Float16 || storage == dtypes.Float32 || storage == dtypes.Float64:
		return lltypes.Float(storage.Bits()), nil
	default:
		return lltypes.Type{}, errors.Wrapf(ErrUnsupported, "element type %s", dtype)
	}
}

// ConvertPointer returns the pointer to the converted pointee dtype, in the given address space.
func (c *Converter) ConvertPointer(pointee dtypes.DType, addressSpace int) (lltypes.Type, error) {
	elemType, err := c.ConvertElementType(pointee)
	if err != nil {
		return lltypes.Type{}, errors.WithMessage(err, "ConvertPointer")
	}
	return lltypes.Pointer(elemType, addressSpace), nil
}

// ConvertTensorType returns the low-level type of a tensor.
//
// A scalar without layout is converted to its element type. Any other tensor must have a layout.
func (c *Converter) ConvertTensorType(t layouts.TensorType) (lltypes.Type, error) {
	result, err := c.convertTensorType(t)
	if err != nil {
		return lltypes.Type{}, errors.WithMessagef(err, "lowering %s", t)
	}
	if klog.V(2).Enabled() {
		klog.Infof("typeconv: %s -> %s", t, result)
	}
	return result, nil
}

func (c *Converter) convertTensorType(t layouts.TensorType) (lltypes.Type, error) {
	if !t.Shape.Ok() {
		return lltypes.Type{}, errors.Errorf("invalid shape")
	}
	elemType, err := c.ConvertElementType(t.Shape.DType)
	if err != nil {
		return lltypes.Type{}, err
	}
	if t.Encoding == nil {
		if t.Shape.IsScalar() {
			return elemType, nil
		}
		return lltypes.Type{}, errors.Wrapf(ErrUnsupported, "tensor without a layout")
	}

	switch l := t.Encoding.(type) {
	case layouts.Blocked, layouts.Slice, layouts.MMA:
		if err := c.checkThreads(l); err != nil {
			return lltypes.Type{}, err
		}
		elems, err := layouts.ElemsPerThread(t)
		if err != nil {
			return lltypes.Type{}, err
		}
		return lltypes.Repeat(elemType, elems), nil

	case layouts.Shared:
		if err := layouts.Validate(l, t.Rank()); err != nil {
			return lltypes.Type{}, err
		}
		return llir.SharedMemoryStructType(lltypes.Pointer(elemType, c.SharedAddressSpace), t.Rank(), c.IndexType), nil

	case layouts.DotOperand:
		if err := c.checkThreads(l); err != nil {
			return lltypes.Type{}, err
		}
		return c.ConvertDotOperand(t.Shape, l)

	default:
		return lltypes.Type{}, errors.Wrapf(layouts.ErrInvalid, "unknown layout %v", l)
	}
}

// checkThreads verifies the layout uses the configured number of threads per warp and warps per CTA.
// Slice and DotOperand layouts use the threads of their parents.
func (c *Converter) checkThreads(l layouts.Layout) error {
	switch l := l.(type) {
	case layouts.Slice:
		return c.checkThreads(l.Parent)
	case layouts.DotOperand:
		return c.checkThreads(l.Parent)
	}
	if c.WarpSize > 0 {
		tpw, err := layouts.ThreadsPerWarp(l)
		if err != nil {
			return err
		}
		if xslices.Product(tpw) != c.WarpSize {
			return errors.Wrapf(layouts.ErrInvalid, "%s has %v threads per warp, but warps have %d threads",
				l, tpw, c.WarpSize)
		}
	}
	if c.NumWarps > 0 {
		wpc, err := layouts.WarpsPerCTA(l)
		if err != nil {
			return err
		}
		if xslices.Product(wpc) != c.NumWarps {
			return errors.Wrapf(layouts.ErrInvalid, "%s has %v warps per CTA, but CTAs have %d warps",
				l, wpc, c.NumWarps)
		}
	}
	return nil
}

// ElemsPerThread returns the number of slots of the lowered type of t, for any layout other than Shared.
//
// It differs from layouts.ElemsPerThread only for DotOperand layouts, whose count depends on the element type.
func (c *Converter) ElemsPerThread(t layouts.TensorType) (int, error) {
	if _, isShared := t.Encoding.(layouts.Shared); isShared || t.Encoding == nil {
		return layouts.ElemsPerThread(t)
	}
	lowered, err := c.ConvertTensorType(t)
	if err != nil {
		return 0, err
	}
	return lowered.NumFields(), nil
}
