package llir

// OpType enumerates the low-level operations a Builder can emit.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType -output=gen_optype_enumer.go optype.go

const (
	OpTypeInvalid OpType = iota
	OpTypeParameter
	OpTypeConstant
	OpTypeUndef
	OpTypeBitcast
	OpTypeInsertValue
	OpTypeExtractValue
)
