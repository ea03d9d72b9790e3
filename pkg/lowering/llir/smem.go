package llir

import (
	"github.com/gomlx/gpulower/pkg/lowering/lltypes"
	"github.com/pkg/errors"
)

// SharedMemoryObject describes a tensor resident in shared memory: the base pointer, and one
// stride and one offset (in elements) per dimension.
type SharedMemoryObject struct {
	Base    *Value
	Strides []*Value
	Offsets []*Value
}

// Rank of the tensor described.
func (smem SharedMemoryObject) Rank() int {
	return len(smem.Strides)
}

// SharedMemoryStructType returns the struct type a shared memory object of the given rank is packed into:
// the base pointer, followed by rank strides and then rank offsets, all of indexType.
func SharedMemoryStructType(basePointer lltypes.Type, rank int, indexType lltypes.Type) lltypes.Type {
	fields := make([]lltypes.Type, 0, 1+2*rank)
	fields = append(fields, basePointer)
	for range 2 * rank {
		fields = append(fields, indexType)
	}
	return lltypes.Struct(fields...)
}

// PackSharedMemoryObject packs the object into a struct value: base pointer, strides, offsets.
func (b *Builder) PackSharedMemoryObject(smem SharedMemoryObject) (*Value, error) {
	if smem.Base == nil || len(smem.Offsets) != len(smem.Strides) {
		return nil, errors.Errorf("PackSharedMemoryObject: malformed object with %d strides and %d offsets",
			len(smem.Strides), len(smem.Offsets))
	}
	elems := make([]*Value, 0, 1+2*smem.Rank())
	elems = append(elems, smem.Base)
	elems = append(elems, smem.Strides...)
	elems = append(elems, smem.Offsets...)
	fieldTypes := make([]lltypes.Type, len(elems))
	for ii, elem := range elems {
		fieldTypes[ii] = elem.typ
	}
	return b.PackStruct(lltypes.Struct(fieldTypes...), elems)
}

// UnpackSharedMemoryObject is the inverse of PackSharedMemoryObject.
func (b *Builder) UnpackSharedMemoryObject(v *Value) (SharedMemoryObject, error) {
	b.checkValues("UnpackSharedMemoryObject", v)
	numFields := v.typ.NumFields()
	if !v.typ.IsStruct() || numFields%2 != 1 || v.typ.Fields[0].Kind != lltypes.KindPointer {
		return SharedMemoryObject{}, errors.Errorf("UnpackSharedMemoryObject: %s is not a shared memory object", v.typ)
	}
	elems := b.UnpackStruct(v)
	rank := (numFields - 1) / 2
	return SharedMemoryObject{
		Base:    elems[0],
		Strides: elems[1 : 1+rank],
		Offsets: elems[1+rank:],
	}, nil
}
