// Package dtypes includes the DType enum for the element types of GPU kernel tensors.
//
// It is forked from github.com/gomlx/gomlx/pkg/core/dtypes, trimmed to the element types a kernel
// tensor can hold, and extended with the "storage" layer: narrow floating point types that the
// hardware has no native scalar registers for (bfloat16, float8) are stored in integer containers of the
// same width. StorageDType and LogicalDType convert between the two views; the conversion is a
// reinterpretation (same bits) and never a numeric transformation.
package dtypes

import (
	"maps"
	"slices"
	"strings"

	"github.com/pkg/errors"
)

func init() {
	// Add a mapping to the lower-case version of dtypes.
	keys := slices.Collect(maps.Keys(MapOfNames))
	for _, key := range keys {
		lowerKey := strings.ToLower(key)
		if lowerKey == key {
			continue
		}
		if _, found := MapOfNames[lowerKey]; found {
			continue
		}
		MapOfNames[lowerKey] = MapOfNames[key]
	}
}

// FromName returns the DType for the given name or alias (case-insensitive for the names listed in MapOfNames).
func FromName(name string) (DType, error) {
	if dtype, found := MapOfNames[name]; found {
		return dtype, nil
	}
	if dtype, found := MapOfNames[strings.ToLower(name)]; found {
		return dtype, nil
	}
	return InvalidDType, errors.Errorf("unknown dtype %q", name)
}

// Bits returns the number of bits for the given DType. Bool uses 1 bit.
// It returns 0 for InvalidDType.
func (dtype DType) Bits() int {
	switch dtype {
	case Bool:
		return 1
	case Int8, Uint8, F8E5M2, F8E4M3FN:
		return 8
	case Int16, Uint16, Float16, BFloat16:
		return 16
	case Int32, Uint32, Float32:
		return 32
	case Int64, Uint64, Float64:
		return 64
	default:
		return 0
	}
}

// Size returns the number of bytes for the given DType, rounded up (so Bool takes 1 byte).
func (dtype DType) Size() int {
	return (dtype.Bits() + 7) / 8
}

// IsFloat returns whether dtype is a floating point type, including the narrow ones (bfloat16, float8).
func (dtype DType) IsFloat() bool {
	return dtype == Float32 || dtype == Float64 || dtype == Float16 || dtype.IsStorageReinterpreted()
}

// IsFloat16 returns whether dtype is a supported float with 16 bits: [Float16] or [BFloat16].
func (dtype DType) IsFloat16() bool {
	return dtype == Float16 || dtype == BFloat16
}

// IsFloat8 returns whether dtype is one of the 8-bit float types.
func (dtype DType) IsFloat8() bool {
	return dtype == F8E5M2 || dtype == F8E4M3FN
}

// IsInt returns whether dtype is a supported integer type. Bool is not considered an integer.
func (dtype DType) IsInt() bool {
	return dtype == Int64 || dtype == Int32 || dtype == Int16 || dtype == Int8 ||
		dtype == Uint8 || dtype == Uint16 || dtype == Uint32 || dtype == Uint64
}

// IsUnsigned returns whether dtype is one of the unsigned int types.
func (dtype DType) IsUnsigned() bool {
	return dtype == Uint8 || dtype == Uint16 || dtype == Uint32 || dtype == Uint64
}

// IsSupported returns whether dtype is one of the values of the enum, other than InvalidDType.
func (dtype DType) IsSupported() bool {
	return dtype != InvalidDType && dtype.Bits() > 0
}

// IsStorageReinterpreted returns whether the dtype is kept internally in an integer container
// of the same width (see StorageDType).
func (dtype DType) IsStorageReinterpreted() bool {
	return dtype == BFloat16 || dtype.IsFloat8()
}

// StorageDType returns the dtype used to hold values of the logical dtype:
//
//   - BFloat16 is stored as Int16.
//   - F8E5M2 and F8E4M3FN are stored as Int8.
//   - Every other dtype is stored as itself.
func (dtype DType) StorageDType() DType {
	switch dtype {
	case BFloat16:
		return Int16
	case F8E5M2, F8E4M3FN:
		return Int8
	default:
		return dtype
	}
}

// LogicalDType reinterprets a storage dtype back to the logical dtype it holds.
// It is the inverse of StorageDType: LogicalDType(logical.StorageDType(), logical) == logical for every
// logical dtype, and it fails if storage is not the container of logical.
func LogicalDType(storage, logical DType) (DType, error) {
	if logical.StorageDType() != storage {
		return InvalidDType, errors.Errorf("dtype %s is not stored as %s (it is stored as %s)",
			logical, storage, logical.StorageDType())
	}
	return logical, nil
}
