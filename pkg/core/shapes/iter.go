package shapes

import (
	"iter"

	"github.com/pkg/errors"
)

// Strides returns the strides for each axis of the shape, assuming a "row-major" layout
// in memory (the last axis is contiguous).
//
// Notice the strides are **not in bytes**, but in indices.
func (s Shape) Strides() (strides []int) {
	rank := s.Rank()
	if rank == 0 {
		return
	}
	strides = make([]int, rank)
	currentStride := 1
	for dim := rank - 1; dim >= 0; dim-- {
		strides[dim] = currentStride
		currentStride *= s.Dimensions[dim]
	}
	return
}

// FlatIndex returns the row-major flat index of the given indices.
func (s Shape) FlatIndex(indices []int) (int, error) {
	if len(indices) != s.Rank() {
		return 0, errors.Errorf("Shape.FlatIndex given %d indices for shape %s", len(indices), s)
	}
	flat := 0
	for axis, idx := range indices {
		if idx < 0 || idx >= s.Dimensions[axis] {
			return 0, errors.Errorf("Shape.FlatIndex: index %d out of bounds for axis %d of shape %s", idx, axis, s)
		}
		flat = flat*s.Dimensions[axis] + idx
	}
	return flat, nil
}

// Iter iterates sequentially over all possible indices of the given shape, in row-major order.
//
// It yields the flat index (counter) and a slice of indices for each axis.
//
// To avoid allocating the slice of indices, the yielded indices is owned by the Iter() method:
// don't change it inside the loop.
func (s Shape) Iter() iter.Seq2[int, []int] {
	return func(yield func(int, []int) bool) {
		if !s.Ok() {
			return
		}
		rank := s.Rank()
		indices := make([]int, rank)
		for flatIdx := 0; ; flatIdx++ {
			if !yield(flatIdx, indices) {
				return
			}
			// Increment indices to the next set of coordinates (the last index changes fastest).
			axis := rank - 1
			for ; axis >= 0; axis-- {
				indices[axis]++
				if indices[axis] < s.Dimensions[axis] {
					break
				}
				indices[axis] = 0
			}
			if axis < 0 {
				return
			}
		}
	}
}
