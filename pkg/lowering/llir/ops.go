package llir

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gpulower/pkg/lowering/lltypes"
	"github.com/pkg/errors"
)

// Parameter creates an input value of the function being built.
func (b *Builder) Parameter(name string, typ lltypes.Type) *Value {
	b.checkValues("Parameter")
	if !typ.Ok() {
		exceptions.Panicf("Parameter %q: invalid type", name)
	}
	v := b.newValue(OpTypeParameter, typ, name)
	b.parameters = append(b.parameters, v)
	return v
}

// Constant creates a scalar constant of type typ with the given bit pattern (right-aligned).
func (b *Builder) Constant(typ lltypes.Type, bits uint64) *Value {
	b.checkValues("Constant")
	if !typ.IsScalar() {
		exceptions.Panicf("Constant: only scalar constants are supported, got type %s", typ)
	}
	if typ.Bits < 64 {
		bits &= 1<<typ.Bits - 1
	}
	return b.newValue(OpTypeConstant, typ, bits)
}

// Undef creates a value of type typ with unspecified contents.
func (b *Builder) Undef(typ lltypes.Type) *Value {
	b.checkValues("Undef")
	return b.newValue(OpTypeUndef, typ, nil)
}

// Bitcast reinterprets the bits of v as type typ, which must have the same bit width.
// If v already has type typ, v is returned.
func (b *Builder) Bitcast(v *Value, typ lltypes.Type) *Value {
	b.checkValues("Bitcast", v)
	if v.typ.Equal(typ) {
		return v
	}
	if v.typ.BitWidth() == 0 || v.typ.BitWidth() != typ.BitWidth() {
		exceptions.Panicf("Bitcast: cannot reinterpret %s as %s", v, typ)
	}
	return b.newValue(OpTypeBitcast, typ, nil, v)
}

// InsertValue returns the struct agg with field index replaced by elem.
func (b *Builder) InsertValue(agg, elem *Value, index int) *Value {
	b.checkValues("InsertValue", agg, elem)
	checkField("InsertValue", agg, index)
	if field := agg.typ.Fields[index]; !field.Equal(elem.typ) {
		exceptions.Panicf("InsertValue: field %d of %s has type %s, cannot insert %s",
			index, agg.typ, field, elem)
	}
	return b.newValue(OpTypeInsertValue, agg.typ, index, agg, elem)
}

// ExtractValue returns field index of the struct agg.
//
// If the field was set by a chain of InsertValue, the inserted value is returned directly.
func (b *Builder) ExtractValue(agg *Value, index int) *Value {
	b.checkValues("ExtractValue", agg)
	checkField("ExtractValue", agg, index)
	source := agg
	for source.opType == OpTypeInsertValue {
		if source.data.(int) == index {
			return source.operands[1]
		}
		source = source.operands[0]
	}
	return b.newValue(OpTypeExtractValue, agg.typ.Fields[index], index, source)
}

func checkField(opName string, agg *Value, index int) {
	if !agg.typ.IsStruct() {
		exceptions.Panicf("%s: %s is not a struct", opName, agg)
	}
	if index < 0 || index >= agg.typ.NumFields() {
		exceptions.Panicf("%s: field index %d out of range for %s", opName, index, agg.typ)
	}
}

// PackStruct builds a value of the struct type structType from its fields, in order.
//
// It fails if the number of elements or their types don't match the struct fields.
func (b *Builder) PackStruct(structType lltypes.Type, elems []*Value) (*Value, error) {
	b.checkValues("PackStruct", elems...)
	if !structType.IsStruct() {
		return nil, errors.Errorf("PackStruct: %s is not a struct type", structType)
	}
	if len(elems) != structType.NumFields() {
		return nil, errors.Errorf("PackStruct: %d elements given for %s, which has %d fields",
			len(elems), structType, structType.NumFields())
	}
	for ii, elem := range elems {
		if !elem.typ.Equal(structType.Fields[ii]) {
			return nil, errors.Errorf("PackStruct: element #%d has type %s, but field %d of %s has type %s",
				ii, elem.typ, ii, structType, structType.Fields[ii])
		}
	}
	packed := b.Undef(structType)
	for ii, elem := range elems {
		packed = b.InsertValue(packed, elem, ii)
	}
	return packed, nil
}

// UnpackStruct returns the fields of the struct value v, in order.
func (b *Builder) UnpackStruct(v *Value) []*Value {
	b.checkValues("UnpackStruct", v)
	if !v.typ.IsStruct() {
		exceptions.Panicf("UnpackStruct: %s is not a struct", v)
	}
	elems := make([]*Value, v.typ.NumFields())
	for ii := range elems {
		elems[ii] = b.ExtractValue(v, ii)
	}
	return elems
}
