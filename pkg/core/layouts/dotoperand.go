package layouts

import "fmt"

// DotOperand is the layout of operand OpIdx of a dot product (0 for the left multiplicand "A" of
// shape [M, K], 1 for the right multiplicand "B" of shape [K, N]) whose result uses the Parent
// layout (Blocked or MMA).
//
// KWidthLog2 is the base-2 exponent of the number of consecutive elements of the contracted
// dimension K held by each thread (see KWidth).
//
// Its physical distribution is derived from the parent: along the non-contracted dimension it
// follows the parent, and along K each thread holds KWidth elements and all warps hold the
// same values.
type DotOperand struct {
	OpIdx      int
	Parent     Layout
	KWidthLog2 int
}

// NewDotOperand returns the layout of operand opIdx (0 or 1) of a dot product with the given result layout.
func NewDotOperand(opIdx int, parent Layout, kWidthLog2 int) DotOperand {
	return DotOperand{OpIdx: opIdx, Parent: parent, KWidthLog2: kWidthLog2}
}

// Kind implements Layout.
func (d DotOperand) Kind() Kind { return KindDotOperand }

func (d DotOperand) isLayout() {}

// String implements Layout.
func (d DotOperand) String() string {
	return fmt.Sprintf("#dot_op<{opIdx = %d, parent = %s, kWidthLog2 = %d}>", d.OpIdx, Key(d.Parent), d.KWidthLog2)
}

// KWidth returns the number of elements along the contracted dimension held contiguously by a thread.
func (d DotOperand) KWidth() int {
	return 1 << d.KWidthLog2
}

// ContractedDim returns the axis of the operand that is contracted by the dot product:
// 1 for A ([M, K]) and 0 for B ([K, N]).
func (d DotOperand) ContractedDim() int {
	if d.OpIdx == 0 {
		return 1
	}
	return 0
}
