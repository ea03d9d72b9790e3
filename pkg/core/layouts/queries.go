// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package layouts

import (
	"slices"

	"github.com/gomlx/gpulower/pkg/support/xslices"
	"github.com/pkg/errors"
)

// The queries below return one entry per tensor dimension, in the order of the tensor's
// declared dimensions (not the layout's Order).
//
// Each query validates the layout first (see Validate). Register-only queries fail with
// ErrUnsupported for Shared layouts.

// SizePerThread returns the number of contiguous elements each thread owns along each dimension,
// in one tile of the layout.
func SizePerThread(l Layout) ([]int, error) {
	if err := validateSelf(l); err != nil {
		return nil, err
	}
	return sizePerThread(l)
}

func sizePerThread(l Layout) ([]int, error) {
	switch l := l.(type) {
	case Blocked:
		return slices.Clone(l.SizePerThread), nil
	case Slice:
		parent, err := sizePerThread(l.Parent)
		if err != nil {
			return nil, err
		}
		return xslices.RemoveAt(parent, l.Dim), nil
	case MMA:
		if l.IsVolta() {
			return slices.Clone(voltaSizePerThread), nil
		}
		return slices.Clone(ampereSizePerThread), nil
	case DotOperand:
		parent, err := sizePerThread(l.Parent)
		if err != nil {
			return nil, err
		}
		parent[l.ContractedDim()] = l.KWidth()
		return parent, nil
	case Shared:
		return nil, errors.Wrapf(ErrUnsupported, "SizePerThread: %s is not distributed over threads", l)
	default:
		return nil, unhandled("SizePerThread", l)
	}
}

// ThreadsPerWarp returns how many threads of a warp are laid out along each dimension.
func ThreadsPerWarp(l Layout) ([]int, error) {
	if err := validateSelf(l); err != nil {
		return nil, err
	}
	return threadsPerWarp(l)
}

func threadsPerWarp(l Layout) ([]int, error) {
	switch l := l.(type) {
	case Blocked:
		return slices.Clone(l.ThreadsPerWarp), nil
	case Slice:
		parent, err := threadsPerWarp(l.Parent)
		if err != nil {
			return nil, err
		}
		return xslices.RemoveAt(parent, l.Dim), nil
	case MMA:
		if l.IsVolta() {
			return slices.Clone(voltaThreadsPerWarp), nil
		}
		return slices.Clone(ampereThreadsPerWarp), nil
	case DotOperand:
		return threadsPerWarp(l.Parent)
	case Shared:
		return nil, errors.Wrapf(ErrUnsupported, "ThreadsPerWarp: %s is not distributed over threads", l)
	default:
		return nil, unhandled("ThreadsPerWarp", l)
	}
}

// WarpsPerCTA returns how many warps of a CTA are laid out along each dimension.
func WarpsPerCTA(l Layout) ([]int, error) {
	if err := validateSelf(l); err != nil {
		return nil, err
	}
	return warpsPerCTA(l)
}

func warpsPerCTA(l Layout) ([]int, error) {
	switch l := l.(type) {
	case Blocked:
		return slices.Clone(l.WarpsPerCTA), nil
	case Slice:
		parent, err := warpsPerCTA(l.Parent)
		if err != nil {
			return nil, err
		}
		return xslices.RemoveAt(parent, l.Dim), nil
	case MMA:
		return slices.Clone(l.WarpsPerCTA), nil
	case DotOperand:
		// All warps along the contracted dimension hold the same values.
		parent, err := warpsPerCTA(l.Parent)
		if err != nil {
			return nil, err
		}
		parent[l.ContractedDim()] = 1
		return parent, nil
	case Shared:
		return nil, errors.Wrapf(ErrUnsupported, "WarpsPerCTA: %s is not distributed over threads", l)
	default:
		return nil, unhandled("WarpsPerCTA", l)
	}
}

// ContigPerThread returns the number of elements each thread owns that are contiguous in memory,
// along each dimension. It's usually the same as SizePerThread, except for MMA layouts, where each
// thread owns pairs of adjacent elements of a row.
func ContigPerThread(l Layout) ([]int, error) {
	if err := validateSelf(l); err != nil {
		return nil, err
	}
	switch l := l.(type) {
	case Slice:
		parent, err := ContigPerThread(l.Parent)
		if err != nil {
			return nil, err
		}
		return xslices.RemoveAt(parent, l.Dim), nil
	case MMA:
		return slices.Clone(mmaContigPerThread), nil
	default:
		return sizePerThread(l)
	}
}

// ThreadsPerCTA returns the number of threads of the CTA laid out along each dimension,
// that is threadsPerWarp * warpsPerCTA.
func ThreadsPerCTA(l Layout) ([]int, error) {
	tpw, err := ThreadsPerWarp(l)
	if err != nil {
		return nil, err
	}
	wpc, err := warpsPerCTA(l)
	if err != nil {
		return nil, err
	}
	for ii := range tpw {
		tpw[ii] *= wpc[ii]
	}
	return tpw, nil
}

// Order returns the dimension traversal order of the layout, fastest-varying dimension first.
// It is defined for every variant, including Shared, where it is the order in memory.
func Order(l Layout) ([]int, error) {
	if err := validateSelf(l); err != nil {
		return nil, err
	}
	return order(l)
}

func order(l Layout) ([]int, error) {
	switch l := l.(type) {
	case Blocked:
		return slices.Clone(l.Order), nil
	case Slice:
		parent, err := order(l.Parent)
		if err != nil {
			return nil, err
		}
		result := make([]int, 0, len(parent)-1)
		for _, axis := range parent {
			switch {
			case axis == l.Dim:
				continue
			case axis > l.Dim:
				result = append(result, axis-1)
			default:
				result = append(result, axis)
			}
		}
		return result, nil
	case MMA:
		return slices.Clone(mmaOrder), nil
	case DotOperand:
		return order(l.Parent)
	case Shared:
		return slices.Clone(l.Order), nil
	default:
		return nil, unhandled("Order", l)
	}
}

// IsDistributed returns whether tensors with this layout live in thread registers (Blocked, Slice and MMA).
// Shared layouts live in shared memory, and DotOperand layouts have their own operand-specific lowering.
func IsDistributed(l Layout) bool {
	switch l.(type) {
	case Blocked, Slice, MMA:
		return true
	default:
		return false
	}
}

// naturalShapePerCTA returns sizePerThread * threadsPerWarp * warpsPerCTA, the tile covered by
// all the threads of a CTA, before clipping to a tensor shape.
func naturalShapePerCTA(l Layout) ([]int, error) {
	spt, err := sizePerThread(l)
	if err != nil {
		return nil, err
	}
	tpw, err := threadsPerWarp(l)
	if err != nil {
		return nil, err
	}
	wpc, err := warpsPerCTA(l)
	if err != nil {
		return nil, err
	}
	natural := make([]int, len(spt))
	for ii := range natural {
		natural[ii] = spt[ii] * tpw[ii] * wpc[ii]
	}
	return natural, nil
}

// ShapePerCTA returns the portion of the tensor covered by the threads of one CTA along each dimension:
// sizePerThread * threadsPerWarp * warpsPerCTA, clipped to the tensor dimension when the tensor is smaller.
func ShapePerCTA(l Layout, dimensions []int) ([]int, error) {
	if err := validateForShape(l, dimensions); err != nil {
		return nil, err
	}
	natural, err := naturalShapePerCTA(l)
	if err != nil {
		return nil, errors.WithMessage(err, "ShapePerCTA")
	}
	for ii, dim := range dimensions {
		natural[ii] = min(natural[ii], dim)
	}
	return natural, nil
}

// ElemsPerThread returns the number of elements of the tensor owned by each thread, which is also
// the length of its lowered register group.
//
// It fails with ErrUnsupported for Shared layouts, which are not held in registers, and for
// DotOperand layouts, whose counts depend on the element type and are computed by the type lowering.
func ElemsPerThread(t TensorType) (int, error) {
	if t.Encoding == nil {
		return 0, errors.Wrapf(ErrInvalid, "ElemsPerThread: %s has no layout", t)
	}
	n, err := ElemsPerThreadForShape(t.Encoding, t.Shape.Dimensions)
	if err != nil {
		return 0, errors.WithMessagef(err, "ElemsPerThread(%s)", t)
	}
	return n, nil
}

// ElemsPerThreadForShape is like ElemsPerThread, but takes the layout and tensor dimensions separately.
func ElemsPerThreadForShape(l Layout, dimensions []int) (int, error) {
	if err := validateForShape(l, dimensions); err != nil {
		return 0, err
	}
	switch l := l.(type) {
	case Blocked, Slice:
		return genericElemsPerThread(l, dimensions)
	case MMA:
		return l.elemsPerThread(dimensions)
	case DotOperand:
		return 0, errors.Wrapf(ErrUnsupported,
			"ElemsPerThread: %s depends on the element type, it is only defined by the type lowering", l)
	case Shared:
		return 0, errors.Wrapf(ErrUnsupported, "ElemsPerThread: %s is not distributed over threads", l)
	default:
		return 0, unhandled("ElemsPerThread", l)
	}
}

// genericElemsPerThread is prod_d ceil(shape[d] / shapePerCTA[d]) * prod_d sizePerThread[d].
func genericElemsPerThread(l Layout, dimensions []int) (int, error) {
	natural, err := naturalShapePerCTA(l)
	if err != nil {
		return 0, err
	}
	spt, err := sizePerThread(l)
	if err != nil {
		return 0, err
	}
	elems := xslices.Product(spt)
	for ii, dim := range dimensions {
		elems *= xslices.CeilDiv(dim, min(natural[ii], dim))
	}
	return elems, nil
}

func validateForShape(l Layout, dimensions []int) error {
	for _, dim := range dimensions {
		if dim <= 0 {
			return errors.Wrapf(ErrInvalid, "tensor dimensions %v must be positive", dimensions)
		}
	}
	return Validate(l, len(dimensions))
}
