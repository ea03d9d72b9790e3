package dtypes

import "strconv"

// DType is an enum represents the logical data type of a tensor element.
//
// The values follow the XLA/PJRT numbering, so serialized programs using those numbers can be read
// directly. Only the types a GPU kernel tensor can hold are listed.
type DType int32

const (
	// InvalidDType is the zero value, and it is not a valid element type.
	InvalidDType DType = 0

	// Bool are two-state predicates, stored as 1-bit integers when lowered.
	Bool DType = 1

	// Int8 is a signed integral value of fixed width.
	Int8 DType = 2

	Int16 DType = 3
	Int32 DType = 4
	Int64 DType = 5

	// Uint8 is an unsigned integral value of fixed width.
	Uint8 DType = 6

	Uint16 DType = 7
	Uint32 DType = 8
	Uint64 DType = 9

	// Float16 is the IEEE 754 half-precision floating-point type.
	Float16 DType = 10

	Float32 DType = 11
	Float64 DType = 12

	// BFloat16 is the truncated 16 bit floating-point format: 1 bit for the sign, 8 bits for the exponent
	// and 7 bits for the mantissa. It is stored internally in a 16-bit integer container.
	BFloat16 DType = 13

	// F8E5M2 is the 8-bit floating point with 5 bits of exponent and 2 of mantissa.
	// It is stored internally in an 8-bit integer container.
	F8E5M2 DType = 16

	// F8E4M3FN is the 8-bit floating point with 4 bits of exponent and 3 of mantissa, finite only
	// (no infinities, a single NaN encoding per sign). It is stored internally in an 8-bit integer container.
	F8E4M3FN DType = 17
)

// Aliases.
const (
	F16      = Float16
	F32      = Float32
	F64      = Float64
	BF16     = BFloat16
	Float8   = F8E5M2
	Float8E5 = F8E5M2
	Float8E4 = F8E4M3FN
)

const _DTypeName = "InvalidDTypeBoolInt8Int16Int32Int64Uint8Uint16Uint32Uint64Float16Float32Float64BFloat16F8E5M2F8E4M3FN"

var _DTypeMap = map[DType]string{
	0:  _DTypeName[0:12],
	1:  _DTypeName[12:16],
	2:  _DTypeName[16:20],
	3:  _DTypeName[20:25],
	4:  _DTypeName[25:30],
	5:  _DTypeName[30:35],
	6:  _DTypeName[35:40],
	7:  _DTypeName[40:46],
	8:  _DTypeName[46:52],
	9:  _DTypeName[52:58],
	10: _DTypeName[58:65],
	11: _DTypeName[65:72],
	12: _DTypeName[72:79],
	13: _DTypeName[79:87],
	16: _DTypeName[87:93],
	17: _DTypeName[93:101],
}

func (i DType) String() string {
	if str, ok := _DTypeMap[i]; ok {
		return str
	}
	return "DType(" + strconv.FormatInt(int64(i), 10) + ")"
}

// DTypeValues returns all values of the enum, in increasing order.
func DTypeValues() []DType {
	return []DType{InvalidDType, Bool, Int8, Int16, Int32, Int64, Uint8, Uint16, Uint32, Uint64,
		Float16, Float32, Float64, BFloat16, F8E5M2, F8E4M3FN}
}

// MapOfNames maps the names (and some common aliases) to the corresponding DType.
// Lower-case versions of every name are added during initialization.
var MapOfNames = map[string]DType{
	"InvalidDType": InvalidDType,
	"Bool":         Bool,
	"Int8":         Int8,
	"Int16":        Int16,
	"Int32":        Int32,
	"Int64":        Int64,
	"Uint8":        Uint8,
	"Uint16":       Uint16,
	"Uint32":       Uint32,
	"Uint64":       Uint64,
	"Float16":      Float16,
	"Float32":      Float32,
	"Float64":      Float64,
	"BFloat16":     BFloat16,
	"F8E5M2":       F8E5M2,
	"F8E4M3FN":     F8E4M3FN,

	"I1":   Bool,
	"I8":   Int8,
	"I16":  Int16,
	"I32":  Int32,
	"I64":  Int64,
	"U8":   Uint8,
	"U16":  Uint16,
	"U32":  Uint32,
	"U64":  Uint64,
	"F16":  Float16,
	"F32":  Float32,
	"F64":  Float64,
	"BF16": BFloat16,
}
