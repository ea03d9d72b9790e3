// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package layouts defines the distribution descriptors ("layouts", or "encodings") that say how
// the elements of a logical tensor are spread over the execution hierarchy of a GPU: elements per
// thread, threads per warp, warps per CTA (cooperative thread array), or, for tensors living in
// shared memory, how they are ordered there.
//
// Layout is a closed sum type over five variants:
//
//   - Blocked: each thread owns runs of contiguous elements, tiled over the threads of a warp and the
//     warps of a CTA.
//   - Slice: the layout of a tensor obtained by removing (reducing) one dimension of a tensor with the
//     parent layout.
//   - MMA: the accumulator layout of the tensor core matrix-multiply instructions, for the
//     Volta (version 1) and Ampere (version 2) hardware generations.
//   - DotOperand: the layout of an operand (A or B) of a dot product whose result has the parent layout.
//   - Shared: a tensor resident in shared memory, not distributed over thread registers.
//
// Descriptors are immutable values. Equality is structural, see Equal and Key.
//
// The query functions (SizePerThread, ThreadsPerWarp, WarpsPerCTA, Order, ShapePerCTA,
// ElemsPerThread, ...) are pure functions over a descriptor, dispatched with an exhaustive switch
// over the variants. They validate the descriptor (and its compatibility with the tensor shape) when
// they are called, since the shape is usually not known when the descriptor is built.
package layouts

import (
	"fmt"
	"strings"

	"github.com/gomlx/gpulower/pkg/core/shapes"
	"github.com/pkg/errors"
)

// Kind enumerates the variants of Layout.
type Kind int

//go:generate go tool enumer -type=Kind -trimprefix=Kind -output=gen_kind_enumer.go layouts.go

const (
	KindInvalid Kind = iota
	KindBlocked
	KindSlice
	KindMMA
	KindDotOperand
	KindShared
)

// Layout is a distribution descriptor. The concrete types are Blocked, Slice, MMA, DotOperand and Shared:
// the interface is sealed, no other implementations exist.
type Layout interface {
	// Kind returns the variant of the layout.
	Kind() Kind

	// String returns the textual form of the layout, which fully describes it.
	String() string

	isLayout()
}

var (
	// ErrUnsupported is returned (wrapped) when a query or lowering is not defined for the given
	// layout, or combination of layout and element type.
	ErrUnsupported = errors.New("unsupported layout")

	// ErrInvalid is returned (wrapped) when a layout is malformed, or incompatible with the tensor shape.
	ErrInvalid = errors.New("invalid layout")
)

// Key returns a canonical string for the layout, usable as a map key: two layouts describing
// the same distribution have the same key. A nil layout returns "".
func Key(l Layout) string {
	if l == nil {
		return ""
	}
	return l.String()
}

// Equal returns whether the two layouts describe the same distribution.
func Equal(a, b Layout) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() && Key(a) == Key(b)
}

// TensorType is a tensor shape (dtype and dimensions) with an attached distribution descriptor.
// A nil Encoding means a tensor that is not distributed (host tensors, or scalars).
type TensorType struct {
	Shape    shapes.Shape
	Encoding Layout
}

// MakeTensorType returns a TensorType for the given layout, dtype and dimensions.
func MakeTensorType(encoding Layout, shape shapes.Shape) TensorType {
	return TensorType{Shape: shape, Encoding: encoding}
}

// Rank of the tensor.
func (t TensorType) Rank() int { return t.Shape.Rank() }

// Equal returns whether both the shapes and the layouts are equal.
func (t TensorType) Equal(t2 TensorType) bool {
	return t.Shape.Equal(t2.Shape) && Equal(t.Encoding, t2.Encoding)
}

// String returns the type in the textual form of the kernel IR, e.g.: "tensor<64x32xFloat16, #blocked<...>>".
func (t TensorType) String() string {
	var sb strings.Builder
	sb.WriteString("tensor<")
	for _, dim := range t.Shape.Dimensions {
		_, _ = fmt.Fprintf(&sb, "%dx", dim)
	}
	sb.WriteString(t.Shape.DType.String())
	if t.Encoding != nil {
		sb.WriteString(", ")
		sb.WriteString(t.Encoding.String())
	}
	sb.WriteString(">")
	return sb.String()
}

// formatInts prints a list of ints as "[a, b, c]".
func formatInts(values []int) string {
	parts := make([]string, len(values))
	for ii, v := range values {
		parts[ii] = fmt.Sprint(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// unhandled returns the error for a layout variant a query doesn't know about. The variants are closed,
// so this is only reachable with a nil Layout or if a new variant is added without updating the queries.
func unhandled(query string, l Layout) error {
	if l == nil {
		return errors.Wrapf(ErrInvalid, "%s: nil layout", query)
	}
	return errors.Errorf("%s: unhandled layout kind %s (%T)", query, l.Kind(), l)
}
