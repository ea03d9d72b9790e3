// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package shapes

import (
	"slices"
	"testing"

	"github.com/gomlx/gpulower/pkg/core/dtypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShape(t *testing.T) {
	s := Make(dtypes.Float16, 64, 32)
	assert.Equal(t, 2, s.Rank())
	assert.Equal(t, 2048, s.Size())
	assert.Equal(t, uintptr(4096), s.Memory())
	assert.Equal(t, 32, s.Dim(-1))
	assert.Equal(t, "(Float16)[64 32]", s.String())
	assert.True(t, s.Equal(Make(dtypes.Float16, 64, 32)))
	assert.False(t, s.Equal(Make(dtypes.BFloat16, 64, 32)))
	assert.True(t, s.EqualDimensions(s.WithDType(dtypes.BFloat16)))

	scalar := Scalar(dtypes.Int32)
	assert.True(t, scalar.IsScalar())
	assert.Equal(t, 1, scalar.Size())
	assert.Equal(t, "(Int32)", scalar.String())
	assert.False(t, Invalid().Ok())

	require.Panics(t, func() { _ = Make(dtypes.Float32, 4, 0) })
	require.Panics(t, func() { _ = s.Dim(2) })

	// Clone is deep.
	c := s.Clone()
	c.Dimensions[0] = 1
	assert.Equal(t, 64, s.Dimensions[0])
}

func TestShape_Strides(t *testing.T) {
	require.Equal(t, []int{12, 4, 1}, Make(dtypes.Float32, 2, 3, 4).Strides())
	require.Equal(t, []int{1}, Make(dtypes.Float32, 5).Strides())
	require.Equal(t, []int{2, 2, 1}, Make(dtypes.Float32, 3, 1, 2).Strides())
}

func TestShape_Iter(t *testing.T) {
	shape := Make(dtypes.Float32, 2, 3)
	var collect [][]int
	for flatIdx, indices := range shape.Iter() {
		require.Equal(t, len(collect), flatIdx)
		flat, err := shape.FlatIndex(indices)
		require.NoError(t, err)
		require.Equal(t, flatIdx, flat)
		collect = append(collect, slices.Clone(indices))
	}
	require.Equal(t, [][]int{{0, 0}, {0, 1}, {0, 2}, {1, 0}, {1, 1}, {1, 2}}, collect)

	// Scalar yields a single empty index.
	count := 0
	for _, indices := range Scalar(dtypes.Float32).Iter() {
		require.Empty(t, indices)
		count++
	}
	require.Equal(t, 1, count)

	// Early stop.
	count = 0
	for range Make(dtypes.Float32, 10, 10).Iter() {
		count++
		if count == 3 {
			break
		}
	}
	require.Equal(t, 3, count)

	_, err := shape.FlatIndex([]int{2, 0})
	require.Error(t, err)
}
