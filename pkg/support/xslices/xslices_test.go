// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package xslices

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProduct(t *testing.T) {
	assert.Equal(t, 1, Product([]int{}))
	assert.Equal(t, uint32(32), Product([]uint32{4, 8}))
	assert.Equal(t, int64(24), Product([]int64{2, 3, 4}))
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 1, CeilDiv(1, 32))
	assert.Equal(t, 2, CeilDiv(33, 32))
	assert.Equal(t, uint32(4), CeilDiv(uint32(16), 4))
}

func TestRemoveAndInsertAt(t *testing.T) {
	s := []int{4, 8, 16}
	require.Equal(t, []int{4, 16}, RemoveAt(s, 1))
	require.Equal(t, []int{4, 8, 16}, s, "RemoveAt must not modify its input")
	require.Equal(t, []int{1, 4, 8, 16}, InsertAt(s, 0, 1))
	require.Equal(t, []int{4, 8, 16, 1}, InsertAt(s, 3, 1))
}

func TestIsPermutation(t *testing.T) {
	assert.True(t, IsPermutation([]int{1, 0}))
	assert.True(t, IsPermutation([]uint32{2, 0, 1}))
	assert.True(t, IsPermutation([]int{}))
	assert.False(t, IsPermutation([]int{1, 1}))
	assert.False(t, IsPermutation([]int{0, 2}))
}

func TestMapAndConvert(t *testing.T) {
	assert.Equal(t, []int{2, 4}, Map([]int{1, 2}, func(e int) int { return 2 * e }))
	assert.Equal(t, []int{3, 4}, Convert[int]([]uint32{3, 4}))
	assert.Equal(t, []int{5, 6, 7}, Iota(5, 3))
}
