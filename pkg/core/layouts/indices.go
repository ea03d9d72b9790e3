package layouts

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gpulower/pkg/core/dtypes"
	"github.com/gomlx/gpulower/pkg/core/shapes"
	"github.com/gomlx/gpulower/pkg/support/sets"
	"github.com/gomlx/gpulower/pkg/support/xslices"
	"github.com/pkg/errors"
)

// NumThreads returns the number of threads of the CTA the layout distributes the tensor over.
// A Slice or DotOperand layout uses the same threads as its parent.
func NumThreads(l Layout) (int, error) {
	if err := validateSelf(l); err != nil {
		return 0, err
	}
	return numThreads(l)
}

func numThreads(l Layout) (int, error) {
	switch l := l.(type) {
	case Blocked:
		return xslices.Product(l.ThreadsPerWarp) * xslices.Product(l.WarpsPerCTA), nil
	case MMA:
		tpw, _ := threadsPerWarp(l)
		return xslices.Product(tpw) * xslices.Product(l.WarpsPerCTA), nil
	case Slice:
		return numThreads(l.Parent)
	case DotOperand:
		return numThreads(l.Parent)
	case Shared:
		return 0, errors.Wrapf(ErrUnsupported, "NumThreads: %s is not distributed over threads", l)
	default:
		return 0, unhandled("NumThreads", l)
	}
}

// delinearize converts a linear index into a coordinate over dims, where order lists the
// dimensions from the fastest to the slowest varying.
func delinearize(index int, dims, order []int) []int {
	coord := make([]int, len(dims))
	for _, axis := range order {
		coord[axis] = index % dims[axis]
		index /= dims[axis]
	}
	return coord
}

// threadCoords returns the coordinates of the thread's lane within its warp, and of its warp within
// the CTA, one entry per tensor dimension.
func threadCoords(l Layout, thread int) (lane, warp []int) {
	switch l := l.(type) {
	case Blocked:
		warpSize := xslices.Product(l.ThreadsPerWarp)
		lane = delinearize(thread%warpSize, l.ThreadsPerWarp, l.Order)
		warp = delinearize(thread/warpSize, l.WarpsPerCTA, l.Order)
	case MMA:
		// Lanes are laid out row-major, warps column-major.
		tpw, _ := threadsPerWarp(l)
		warpSize := xslices.Product(tpw)
		lane = delinearize(thread%warpSize, tpw, []int{1, 0})
		warp = delinearize(thread/warpSize, l.WarpsPerCTA, []int{0, 1})
	default:
		exceptions.Panicf("threadCoords: not defined for %s", l)
	}
	return
}

// ThreadOffsets returns the logical coordinates of the tensor elements held by the given thread,
// one per slot of its register group, in register order.
//
// Tensors smaller than the CTA tile wrap around, so the same element is held by more than one
// thread (or more than once by the same thread).
//
// It is defined for Blocked, Ampere MMA, and Slice of those. Other layouts return ErrUnsupported.
func ThreadOffsets(l Layout, dimensions []int, thread int) ([][]int, error) {
	if err := validateForShape(l, dimensions); err != nil {
		return nil, err
	}
	n, err := numThreads(l)
	if err != nil {
		return nil, err
	}
	if thread < 0 || thread >= n {
		return nil, errors.Errorf("ThreadOffsets: thread %d out of range, %s has %d threads", thread, l, n)
	}
	offsets, err := unwrappedThreadOffsets(l, dimensions, thread)
	if err != nil {
		return nil, err
	}
	for _, coord := range offsets {
		for axis := range coord {
			coord[axis] %= dimensions[axis]
		}
	}
	return offsets, nil
}

// unwrappedThreadOffsets returns the thread's coordinates before wrapping them around the tensor
// dimensions.
func unwrappedThreadOffsets(l Layout, dimensions []int, thread int) ([][]int, error) {
	switch l := l.(type) {
	case Blocked:
		return blockedThreadOffsets(l, dimensions, thread)
	case MMA:
		if !l.IsAmpere() {
			return nil, errors.Wrapf(ErrUnsupported, "ThreadOffsets: not defined for %s", l)
		}
		return ampereThreadOffsets(l, dimensions, thread), nil
	case Slice:
		return sliceThreadOffsets(l, dimensions, thread)
	case DotOperand, Shared:
		return nil, errors.Wrapf(ErrUnsupported, "ThreadOffsets: not defined for %s", l)
	default:
		return nil, unhandled("ThreadOffsets", l)
	}
}

// blockedThreadOffsets enumerates the elements of a thread tile by tile (each tile is the CTA's natural
// coverage), and within a tile its sizePerThread block, both in the layout order.
func blockedThreadOffsets(b Blocked, dimensions []int, thread int) ([][]int, error) {
	lane, warp := threadCoords(b, thread)
	natural, err := naturalShapePerCTA(b)
	if err != nil {
		return nil, err
	}
	spt, tpw := b.SizePerThread, b.ThreadsPerWarp

	rank := len(dimensions)
	base := make([]int, rank)
	tilesPerDim := make([]int, rank)
	for axis := range rank {
		base[axis] = (warp[axis]*tpw[axis] + lane[axis]) * spt[axis]
		tilesPerDim[axis] = xslices.CeilDiv(dimensions[axis], min(natural[axis], dimensions[axis]))
	}
	totalSpt := xslices.Product(spt)
	numElems := xslices.Product(tilesPerDim) * totalSpt

	offsets := make([][]int, numElems)
	for n := range numElems {
		tile := delinearize(n/totalSpt, tilesPerDim, b.Order)
		elem := delinearize(n%totalSpt, spt, b.Order)
		coord := make([]int, rank)
		for axis := range rank {
			coord[axis] = base[axis] + tile[axis]*natural[axis] + elem[axis]
		}
		offsets[n] = coord
	}
	return offsets, nil
}

// ampereThreadOffsets follows the accumulator fragment of the m16n8 instructions: each thread holds
// rows lane/4 and lane/4+8, columns 2*(lane%4) and 2*(lane%4)+1 of each 16x8 warp tile.
func ampereThreadOffsets(m MMA, dimensions []int, thread int) [][]int {
	lane, warp := threadCoords(m, thread)
	w0, w1 := m.WarpsPerCTA[0], m.WarpsPerCTA[1]
	row := lane[0] + warp[0]*16
	col := 2*lane[1] + warp[1]*8

	var offsets [][]int
	for i := 0; i < dimensions[0]; i += 16 * w0 {
		for j := 0; j < dimensions[1]; j += 8 * w1 {
			for _, delta := range [][2]int{{0, 0}, {0, 1}, {8, 0}, {8, 1}} {
				offsets = append(offsets, []int{row + i + delta[0], col + j + delta[1]})
			}
		}
	}
	return offsets
}

// sliceThreadOffsets projects the offsets of the parent, over the tensor with a dimension of size 1
// inserted at the sliced dimension. Of the parent slots along the sliced dimension only the first one
// is kept, the others hold the same elements of the slice.
func sliceThreadOffsets(s Slice, dimensions []int, thread int) ([][]int, error) {
	parentOffsets, err := unwrappedThreadOffsets(s.Parent, xslices.InsertAt(dimensions, s.Dim, 1), thread)
	if err != nil {
		return nil, err
	}
	first := parentOffsets[0][s.Dim]
	for _, coord := range parentOffsets {
		first = min(first, coord[s.Dim])
	}
	var offsets [][]int
	for _, coord := range parentOffsets {
		if coord[s.Dim] == first {
			offsets = append(offsets, xslices.RemoveAt(coord, s.Dim))
		}
	}
	return offsets, nil
}

// CheckPartition verifies that the layout distributes a tensor with the given dimensions consistently:
//
//   - Every thread holds exactly ElemsPerThread elements.
//   - Every element of the tensor is held by at least one thread.
//   - If the tensor dimensions are multiples of the CTA tile (no clipping), no thread holds the same
//     element twice, and every element is held by the same number of threads (1 for Blocked and MMA,
//     more for Slice layouts, whose removed dimension is replicated).
//
// It returns an error describing the first violation found.
func CheckPartition(l Layout, dimensions []int) error {
	elems, err := ElemsPerThreadForShape(l, dimensions)
	if err != nil {
		return err
	}
	n, err := numThreads(l)
	if err != nil {
		return err
	}
	natural, err := naturalShapePerCTA(l)
	if err != nil {
		return err
	}
	exact := true
	for axis, dim := range dimensions {
		if dim%natural[axis] != 0 {
			exact = false
		}
	}

	// Only the coordinates matter: the dtype is a placeholder.
	shape := shapes.Make(dtypes.Bool, dimensions...)
	owners := make([]int, shape.Size())
	for thread := range n {
		offsets, err := ThreadOffsets(l, dimensions, thread)
		if err != nil {
			return err
		}
		if len(offsets) != elems {
			return errors.Errorf("%s: thread %d holds %d elements, expected %d", l, thread, len(offsets), elems)
		}
		seen := sets.Make[int](len(offsets))
		for _, coord := range offsets {
			flat, err := shape.FlatIndex(coord)
			if err != nil {
				return errors.WithMessagef(err, "%s: thread %d", l, thread)
			}
			if !seen.InsertNew(flat) && exact {
				return errors.Errorf("%s: thread %d holds element %v more than once", l, thread, coord)
			}
			owners[flat]++
		}
	}

	for flat, coord := range shape.Iter() {
		count := owners[flat]
		if count == 0 {
			return errors.Errorf("%s: element %v of %v is not held by any thread", l, coord, dimensions)
		}
		if exact && count != owners[0] {
			return errors.Errorf("%s: element %v of %v is held by %d threads, but element 0 by %d",
				l, coord, dimensions, count, owners[0])
		}
	}
	return nil
}

// IsReplicated returns the dimensions along which the layout, applied to a tensor with the given dimensions,
// has more threads than elements, so elements are held by more than one thread.
func IsReplicated(l Layout, dimensions []int) ([]bool, error) {
	shapePerCTA, err := ShapePerCTA(l, dimensions)
	if err != nil {
		return nil, err
	}
	natural, _ := naturalShapePerCTA(l)
	replicated := make([]bool, len(dimensions))
	for axis := range dimensions {
		replicated[axis] = natural[axis] > shapePerCTA[axis]
	}
	return replicated, nil
}
