package layouts

import "fmt"

// Slice is the layout of a tensor that results from removing dimension Dim of a tensor laid out with Parent,
// typically by a reduction. The threads that only differed in the removed dimension now hold the
// same elements.
//
// Parent must be a Blocked or MMA layout.
type Slice struct {
	Dim    int
	Parent Layout
}

// NewSlice returns the layout of parent with dimension dim removed.
func NewSlice(dim int, parent Layout) Slice {
	return Slice{Dim: dim, Parent: parent}
}

// Kind implements Layout.
func (s Slice) Kind() Kind { return KindSlice }

func (s Slice) isLayout() {}

// String implements Layout.
func (s Slice) String() string {
	return fmt.Sprintf("#slice<{dim = %d, parent = %s}>", s.Dim, Key(s.Parent))
}
