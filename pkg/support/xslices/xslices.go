// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package xslices provide missing functionality to the slices package, used mostly
// to manipulate the per-dimension lists (shapes, strides, orders) of the layout algebra.
package xslices

import (
	"slices"

	"golang.org/x/exp/constraints"
)

// Map executes the given function sequentially for every element on in, and returns a mapped slice.
func Map[In, Out any](in []In, fn func(e In) Out) (out []Out) {
	out = make([]Out, len(in))
	for ii, e := range in {
		out[ii] = fn(e)
	}
	return
}

// Product returns the product of all elements. The product of an empty slice is 1.
func Product[T constraints.Integer](slice []T) T {
	p := T(1)
	for _, e := range slice {
		p *= e
	}
	return p
}

// CeilDiv returns ceil(a/b) for positive integers.
func CeilDiv[T constraints.Integer](a, b T) T {
	return (a + b - 1) / b
}

// RemoveAt returns a copy of slice without the element at index.
// The original slice is not modified.
func RemoveAt[T any](slice []T, index int) []T {
	out := make([]T, 0, len(slice)-1)
	out = append(out, slice[:index]...)
	return append(out, slice[index+1:]...)
}

// InsertAt returns a copy of slice with value inserted at index.
func InsertAt[T any](slice []T, index int, value T) []T {
	out := make([]T, 0, len(slice)+1)
	out = append(out, slice[:index]...)
	out = append(out, value)
	return append(out, slice[index:]...)
}

// Iota returns a slice of incremental values, starting with start and of length len.
// Eg: Iota(3, 2) -> []int{3, 4}
func Iota[T constraints.Integer](start T, len int) (slice []T) {
	slice = make([]T, len)
	for ii := range slice {
		slice[ii] = start + T(ii)
	}
	return
}

// IsPermutation returns whether slice holds each of the values 0..len(slice)-1 exactly once.
func IsPermutation[T constraints.Integer](slice []T) bool {
	sorted := slices.Clone(slice)
	slices.Sort(sorted)
	for ii, v := range sorted {
		if v != T(ii) {
			return false
		}
	}
	return true
}

// Convert returns a copy of slice with every element converted to Out.
func Convert[Out, In constraints.Integer](slice []In) []Out {
	return Map(slice, func(e In) Out { return Out(e) })
}
