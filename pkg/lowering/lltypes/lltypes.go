// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package lltypes defines the types of the low-level (register level) representation that
// tensors are lowered to: integers and floats of a given width, short vectors, pointers
// tagged with an address space, and literal structs grouping the per-thread slots of a tensor.
//
// Types are plain values: compare them with Equal.
package lltypes

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
)

// Kind of low-level type.
type Kind int

//go:generate go tool enumer -type=Kind -trimprefix=Kind -output=gen_kind_enumer.go lltypes.go

const (
	KindInvalid Kind = iota
	KindInt
	KindFloat
	KindVector
	KindPointer
	KindStruct
)

// Type of a low-level value.
type Type struct {
	Kind Kind

	// Bits is the width of KindInt and KindFloat types.
	Bits int

	// Elem is the element type of KindVector and the pointee of KindPointer.
	Elem *Type

	// Len is the number of elements of a KindVector.
	Len int

	// AddressSpace of a KindPointer.
	AddressSpace int

	// Fields of a KindStruct.
	Fields []Type
}

// Scalar types.
var (
	I1  = Int(1)
	I8  = Int(8)
	I16 = Int(16)
	I32 = Int(32)
	I64 = Int(64)
	F16 = Float(16)
	F32 = Float(32)
	F64 = Float(64)
)

// Int returns an integer type of the given width.
func Int(bits int) Type {
	if bits <= 0 {
		exceptions.Panicf("lltypes.Int(%d): width must be positive", bits)
	}
	return Type{Kind: KindInt, Bits: bits}
}

// Float returns a float type of the given width: 16, 32 or 64.
func Float(bits int) Type {
	if bits != 16 && bits != 32 && bits != 64 {
		exceptions.Panicf("lltypes.Float(%d): only 16, 32 and 64 bits floats are supported", bits)
	}
	return Type{Kind: KindFloat, Bits: bits}
}

// Vector returns a vector type of length elements of the scalar type elem.
func Vector(elem Type, length int) Type {
	if !elem.IsScalar() || length <= 0 {
		exceptions.Panicf("lltypes.Vector(%s, %d): vectors must have a positive length of scalars", elem, length)
	}
	return Type{Kind: KindVector, Elem: &elem, Len: length}
}

// Pointer returns a pointer to pointee in the given address space.
func Pointer(pointee Type, addressSpace int) Type {
	return Type{Kind: KindPointer, Elem: &pointee, AddressSpace: addressSpace}
}

// Struct returns a literal struct with the given fields. The slice is copied.
func Struct(fields ...Type) Type {
	return Type{Kind: KindStruct, Fields: slices.Clone(fields)}
}

// Repeat returns a literal struct with n fields of type t.
func Repeat(t Type, n int) Type {
	fields := make([]Type, n)
	for ii := range fields {
		fields[ii] = t
	}
	return Type{Kind: KindStruct, Fields: fields}
}

// Ok returns whether the type is valid.
func (t Type) Ok() bool { return t.Kind != KindInvalid }

// IsScalar returns whether it is an integer or a float.
func (t Type) IsScalar() bool { return t.Kind == KindInt || t.Kind == KindFloat }

// IsStruct returns whether t is a struct.
func (t Type) IsStruct() bool { return t.Kind == KindStruct }

// NumFields of a struct type. It returns 0 for other kinds.
func (t Type) NumFields() int { return len(t.Fields) }

// BitWidth returns the total number of bits of a scalar or vector type.
// Pointers and structs have no fixed width and return 0.
func (t Type) BitWidth() int {
	switch t.Kind {
	case KindInt, KindFloat:
		return t.Bits
	case KindVector:
		return t.Elem.Bits * t.Len
	default:
		return 0
	}
}

// Equal returns whether both types are the same.
func (t Type) Equal(t2 Type) bool {
	if t.Kind != t2.Kind {
		return false
	}
	switch t.Kind {
	case KindInt, KindFloat:
		return t.Bits == t2.Bits
	case KindVector:
		return t.Len == t2.Len && t.Elem.Equal(*t2.Elem)
	case KindPointer:
		return t.AddressSpace == t2.AddressSpace && t.Elem.Equal(*t2.Elem)
	case KindStruct:
		return slices.EqualFunc(t.Fields, t2.Fields, Type.Equal)
	default:
		return true
	}
}

// String returns the textual form of the type: "i32", "f16", "vector<2xf16>", "ptr<f16, 3>",
// "struct<(f32, f32)>".
func (t Type) String() string {
	switch t.Kind {
	case KindInt:
		return fmt.Sprintf("i%d", t.Bits)
	case KindFloat:
		return fmt.Sprintf("f%d", t.Bits)
	case KindVector:
		return fmt.Sprintf("vector<%dx%s>", t.Len, t.Elem)
	case KindPointer:
		return fmt.Sprintf("ptr<%s, %d>", t.Elem, t.AddressSpace)
	case KindStruct:
		return "struct<(" + t.fieldsString() + ")>"
	default:
		return "invalid"
	}
}

// fieldsString prints the fields, grouping runs of equal types as "N x type" to keep the
// register groups readable.
func (t Type) fieldsString() string {
	var parts []string
	for ii := 0; ii < len(t.Fields); {
		jj := ii + 1
		for jj < len(t.Fields) && t.Fields[jj].Equal(t.Fields[ii]) {
			jj++
		}
		if count := jj - ii; count > 2 {
			parts = append(parts, fmt.Sprintf("%d x %s", count, t.Fields[ii]))
		} else {
			for range count {
				parts = append(parts, t.Fields[ii].String())
			}
		}
		ii = jj
	}
	return strings.Join(parts, ", ")
}
