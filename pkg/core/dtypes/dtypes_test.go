// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package dtypes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapOfNames(t *testing.T) {
	for name, want := range map[string]DType{
		"Float16": Float16, "float16": Float16, "F16": Float16, "f16": Float16,
		"BFloat16": BFloat16, "bfloat16": BFloat16, "bf16": BFloat16,
		"f8e5m2": F8E5M2, "F8E4M3FN": F8E4M3FN, "i1": Bool,
	} {
		got, err := FromName(name)
		require.NoError(t, err)
		assert.Equalf(t, want, got, "FromName(%q)", name)
	}
	_, err := FromName("complex64")
	require.Error(t, err)
}

func TestString(t *testing.T) {
	for _, dtype := range DTypeValues() {
		got, err := FromName(dtype.String())
		require.NoError(t, err)
		assert.Equal(t, dtype, got)
	}
	assert.Equal(t, "DType(14)", DType(14).String())
}

func TestBits(t *testing.T) {
	assert.Equal(t, 1, Bool.Bits())
	assert.Equal(t, 8, F8E4M3FN.Bits())
	assert.Equal(t, 16, BFloat16.Bits())
	assert.Equal(t, 32, Float32.Bits())
	assert.Equal(t, 64, Uint64.Bits())
	assert.Equal(t, 0, InvalidDType.Bits())
	assert.Equal(t, 1, Bool.Size())
	assert.False(t, InvalidDType.IsSupported())
	for _, dtype := range DTypeValues()[1:] {
		assert.Truef(t, dtype.IsSupported(), "dtype %s", dtype)
	}
}

func TestStorageDType(t *testing.T) {
	assert.Equal(t, Int16, BFloat16.StorageDType())
	assert.Equal(t, Int8, F8E5M2.StorageDType())
	assert.Equal(t, Int8, F8E4M3FN.StorageDType())
	assert.Equal(t, Float16, Float16.StorageDType())
	assert.Equal(t, Int32, Int32.StorageDType())

	// LogicalDType is the inverse of StorageDType for every dtype.
	for _, dtype := range DTypeValues()[1:] {
		storage := dtype.StorageDType()
		require.Equal(t, dtype.Bits(), storage.Bits())
		logical, err := LogicalDType(storage, dtype)
		require.NoError(t, err)
		require.Equal(t, dtype, logical)
	}
	_, err := LogicalDType(Int16, F8E5M2)
	require.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	for _, dtype := range []DType{Float64, Float32, Float16, BFloat16, F8E5M2, F8E4M3FN} {
		for _, value := range []float64{0, 1, -1.5, 0.25, 12} {
			bits, err := EncodeFloat(dtype, value)
			require.NoError(t, err)
			decoded, err := DecodeFloat(dtype, bits)
			require.NoError(t, err)
			require.Equalf(t, value, decoded, "dtype=%s", dtype)
		}
	}
	bits, err := EncodeFloat(BFloat16, 1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0x3F80), bits)
	_, err = EncodeFloat(Int32, 1)
	require.Error(t, err)

	bits, err = EncodeInt(Int8, -1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0xFF), bits)
	v, err := DecodeInt(Int8, bits)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), v)
	v, err = DecodeInt(Uint8, bits)
	require.NoError(t, err)
	assert.Equal(t, int64(255), v)
	bits, err = EncodeInt(Int64, -7)
	require.NoError(t, err)
	v, err = DecodeInt(Int64, bits)
	require.NoError(t, err)
	assert.Equal(t, int64(-7), v)
	_, err = EncodeInt(Float32, 1)
	require.Error(t, err)
}
