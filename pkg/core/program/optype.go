package program

// OpType enumerates the tensor operations of a Function.
type OpType int

//go:generate go tool enumer -type=OpType -trimprefix=OpType -output=gen_optype_enumer.go optype.go

const (
	OpTypeInvalid OpType = iota
	OpTypeParameter
	OpTypeSplat
	OpTypeConstantSplat
	OpTypeCat
	OpTypeView
	OpTypeExpandDims
	OpTypeTrans
)
