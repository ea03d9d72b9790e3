// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package llir is the low-level (register level) representation that tensors are lowered to.
//
// A Builder accumulates Values in creation order, each one produced by a simple operation:
// parameters, constants, undef, bitcasts, and insertion/extraction of struct fields. Distributed
// tensors become structs with one field per element owned by the thread (a "register group"),
// and shared memory tensors become a struct with the base pointer, strides and offsets
// (see SharedMemoryObject).
//
// Misusing the Builder (mixing values of different builders, mismatched field types, etc.) is a bug
// in the caller, and panics with an exception. Failures that depend on the input program, like the
// number of elements not matching the struct type, are returned as errors.
package llir

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gpulower/pkg/lowering/lltypes"
)

// Builder of low-level values.
type Builder struct {
	name string

	// values are only created when their operands have already been created, so this is a natural
	// def-before-use ordering.
	values []*Value

	parameters []*Value
}

// NewBuilder returns an empty Builder.
func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// Name of the builder.
func (b *Builder) Name() string {
	return b.name
}

// Values returns all values created so far, in creation order.
func (b *Builder) Values() []*Value {
	return slices.Clone(b.values)
}

// NumValues returns the number of values created so far.
func (b *Builder) NumValues() int {
	return len(b.values)
}

// Parameters returns the parameter values, in order.
func (b *Builder) Parameters() []*Value {
	return slices.Clone(b.parameters)
}

// String prints all values, one per line.
func (b *Builder) String() string {
	var sb strings.Builder
	_, _ = fmt.Fprintf(&sb, "llvm.func @%s {\n", b.name)
	for _, v := range b.values {
		_, _ = fmt.Fprintf(&sb, "  %s\n", v)
	}
	sb.WriteString("}")
	return sb.String()
}

// Value is a low-level value, produced by one operation.
type Value struct {
	builder  *Builder
	idx      int
	opType   OpType
	typ      lltypes.Type
	operands []*Value

	// data for the specific op type: parameter name, constant bits or field index.
	data any
}

// Type of the value.
func (v *Value) Type() lltypes.Type { return v.typ }

// OpType of the operation that produced the value.
func (v *Value) OpType() OpType { return v.opType }

// Operands of the operation that produced the value. The returned slice must not be modified.
func (v *Value) Operands() []*Value { return v.operands }

// Index of the value in its Builder.
func (v *Value) Index() int { return v.idx }

// Builder that owns the value.
func (v *Value) Builder() *Builder { return v.builder }

// Name of the value, e.g. "%3".
func (v *Value) Name() string { return fmt.Sprintf("%%%d", v.idx) }

// ConstantBits returns the bits of an OpTypeConstant value. It panics for other values.
func (v *Value) ConstantBits() uint64 {
	if v.opType != OpTypeConstant {
		exceptions.Panicf("ConstantBits() called on %s, which is not a constant", v)
	}
	return v.data.(uint64)
}

// FieldIndex returns the struct field index of an InsertValue or ExtractValue, and -1 for other values.
func (v *Value) FieldIndex() int {
	if v.opType != OpTypeInsertValue && v.opType != OpTypeExtractValue {
		return -1
	}
	return v.data.(int)
}

// String prints the value as "%idx = op operands : type".
func (v *Value) String() string {
	var args string
	switch v.opType {
	case OpTypeParameter:
		args = fmt.Sprintf(" %q", v.data)
	case OpTypeConstant:
		args = fmt.Sprintf(" 0x%x", v.data)
	case OpTypeBitcast:
		args = " " + v.operands[0].Name()
	case OpTypeInsertValue:
		args = fmt.Sprintf(" %s[%d], %s", v.operands[0].Name(), v.data, v.operands[1].Name())
	case OpTypeExtractValue:
		args = fmt.Sprintf(" %s[%d]", v.operands[0].Name(), v.data)
	default:
	}
	return fmt.Sprintf("%s = %s%s : %s", v.Name(), strings.ToLower(v.opType.String()), args, v.typ)
}

// newValue adds a new value to the builder.
func (b *Builder) newValue(opType OpType, typ lltypes.Type, data any, operands ...*Value) *Value {
	v := &Value{
		builder:  b,
		idx:      len(b.values),
		opType:   opType,
		typ:      typ,
		operands: slices.Clone(operands),
		data:     data,
	}
	b.values = append(b.values, v)
	return v
}

// checkValues panics if the values are nil or were created by a different builder.
func (b *Builder) checkValues(opName string, values ...*Value) {
	if b == nil {
		exceptions.Panicf("%s: Builder is nil", opName)
	}
	for idx, v := range values {
		if v == nil {
			exceptions.Panicf("%s: operand #%d is nil", opName, idx)
		}
		if v.builder != b {
			exceptions.Panicf("%s: operand #%d (%s) was created with a different builder (%q), cannot use it with builder %q",
				opName, idx, v.Name(), v.builder.name, b.name)
		}
	}
}
