package layouts

import (
	"fmt"
	"slices"
)

// Shared is the layout of a tensor resident in shared memory. It has no notion of threads or warps.
//
// Order is the order of the dimensions in memory, fastest-varying first. Vec, PerPhase and MaxPhase are
// the swizzling parameters: rows are XOR-swizzled in vectors of Vec elements, with PerPhase rows sharing
// the same phase, and MaxPhase phases. MaxPhase == 1 means no swizzling.
type Shared struct {
	Vec      int
	PerPhase int
	MaxPhase int
	Order    []int
}

// NewShared returns a non-swizzled Shared layout with the given order.
func NewShared(order []int) Shared {
	return Shared{Vec: 1, PerPhase: 1, MaxPhase: 1, Order: slices.Clone(order)}
}

// NewSwizzledShared returns a Shared layout swizzled with the given parameters.
func NewSwizzledShared(vec, perPhase, maxPhase int, order []int) Shared {
	return Shared{Vec: vec, PerPhase: perPhase, MaxPhase: maxPhase, Order: slices.Clone(order)}
}

// Kind implements Layout.
func (s Shared) Kind() Kind { return KindShared }

func (s Shared) isLayout() {}

// String implements Layout.
func (s Shared) String() string {
	return fmt.Sprintf("#shared<{vec = %d, perPhase = %d, maxPhase = %d, order = %s}>",
		s.Vec, s.PerPhase, s.MaxPhase, formatInts(s.Order))
}

// IsSwizzled returns whether the rows are swizzled.
func (s Shared) IsSwizzled() bool {
	return s.MaxPhase > 1
}
