package layouts

import (
	"fmt"
	"slices"
)

// Blocked layout: each thread owns SizePerThread[d] contiguous elements along dimension d, ThreadsPerWarp[d]
// threads of a warp are laid out along dimension d, and WarpsPerCTA[d] warps.
//
// Order is the dimension-traversal order, fastest-varying dimension first: for a row-major
// rank-2 tensor it is [1, 0].
//
// If the tensor is larger than SizePerThread × ThreadsPerWarp × WarpsPerCTA in some dimension, the
// pattern repeats (each thread owns more elements). If it is smaller, elements are replicated
// across threads.
type Blocked struct {
	SizePerThread  []int
	ThreadsPerWarp []int
	WarpsPerCTA    []int
	Order          []int
}

// NewBlocked returns a Blocked layout. The slices are copied.
func NewBlocked(sizePerThread, threadsPerWarp, warpsPerCTA, order []int) Blocked {
	return Blocked{
		SizePerThread:  slices.Clone(sizePerThread),
		ThreadsPerWarp: slices.Clone(threadsPerWarp),
		WarpsPerCTA:    slices.Clone(warpsPerCTA),
		Order:          slices.Clone(order),
	}
}

// Kind implements Layout.
func (b Blocked) Kind() Kind { return KindBlocked }

func (b Blocked) isLayout() {}

// String implements Layout.
func (b Blocked) String() string {
	return fmt.Sprintf("#blocked<{sizePerThread = %s, threadsPerWarp = %s, warpsPerCTA = %s, order = %s}>",
		formatInts(b.SizePerThread), formatInts(b.ThreadsPerWarp), formatInts(b.WarpsPerCTA), formatInts(b.Order))
}
