package program

import (
	"github.com/gomlx/gpulower/pkg/core/dtypes"
	"github.com/gomlx/gpulower/pkg/core/layouts"
	"github.com/gomlx/gpulower/pkg/core/shapes"
	"github.com/pkg/errors"
)

// Parameter creates an input of the function with the given type.
// Scalars are given with a rank-0 shape and no layout.
func (f *Function) Parameter(name string, typ layouts.TensorType) (*Node, error) {
	if _, err := f.verifyValues("Parameter"); err != nil {
		return nil, err
	}
	if !typ.Shape.DType.IsSupported() {
		return nil, errors.Errorf("invalid type %s for Parameter %q", typ, name)
	}
	if typ.Encoding != nil {
		if err := layouts.Validate(typ.Encoding, typ.Rank()); err != nil {
			return nil, errors.WithMessagef(err, "Parameter %q", name)
		}
	}
	data := &nodeParameter{name: name, inputIdx: len(f.parameters)}
	node := f.newNode(OpTypeParameter, typ, data)
	f.parameters = append(f.parameters, node)
	return node, nil
}

// resultType builds the type of an op result, checking that the layout is given and fits the shape.
func resultType(opType OpType, shape shapes.Shape, encoding layouts.Layout) (layouts.TensorType, error) {
	if encoding == nil {
		return layouts.TensorType{}, errors.Errorf("%s: the layout of the result %s must be given", opType, shape)
	}
	if err := layouts.Validate(encoding, shape.Rank()); err != nil {
		return layouts.TensorType{}, errors.WithMessagef(err, "%s: result layout", opType)
	}
	return layouts.MakeTensorType(encoding, shape), nil
}

// Splat broadcasts a scalar to a tensor with the given dimensions and layout.
func (f *Function) Splat(scalar *Node, dims []int, encoding layouts.Layout) (*Node, error) {
	opType := OpTypeSplat
	inputs, err := f.verifyValues(opType.String(), scalar)
	if err != nil {
		return nil, err
	}
	operand := inputs[0]
	if !operand.typ.Shape.IsScalar() {
		return nil, errors.Errorf("%s: operand %s must be a scalar, got %s", opType, operand.Name(), operand.typ)
	}
	shape, err := broadcastShape(operand.typ.Shape, dims)
	if err != nil {
		return nil, errors.WithMessage(err, opType.String())
	}
	typ, err := resultType(opType, shape, encoding)
	if err != nil {
		return nil, err
	}
	return f.newNode(opType, typ, nil, operand), nil
}

// ConstantSplat creates a tensor with every element set to value.
//
// The value must be a Go number or bool matching the dtype kind: floats (or integers) for float
// dtypes, integers for integer dtypes and bool for Bool.
func (f *Function) ConstantSplat(value any, dtype dtypes.DType, dims []int, encoding layouts.Layout) (*Node, error) {
	opType := OpTypeConstantSplat
	if _, err := f.verifyValues(opType.String()); err != nil {
		return nil, err
	}
	normalized, err := normalizeConstant(value, dtype)
	if err != nil {
		return nil, errors.WithMessage(err, opType.String())
	}
	shape, err := broadcastShape(shapes.Scalar(dtype), dims)
	if err != nil {
		return nil, errors.WithMessage(err, opType.String())
	}
	typ, err := resultType(opType, shape, encoding)
	if err != nil {
		return nil, err
	}
	return f.newNode(opType, typ, normalized), nil
}

// Cat concatenates lhs and rhs along the first axis.
func (f *Function) Cat(lhs, rhs *Node, encoding layouts.Layout) (*Node, error) {
	opType := OpTypeCat
	inputs, err := f.verifyValues(opType.String(), lhs, rhs)
	if err != nil {
		return nil, err
	}
	shape, err := concatenateShape(inputs[0].typ.Shape, inputs[1].typ.Shape)
	if err != nil {
		return nil, err
	}
	typ, err := resultType(opType, shape, encoding)
	if err != nil {
		return nil, err
	}
	return f.newNode(opType, typ, nil, inputs...), nil
}

// View reshapes the operand to the given dimensions, with the same number of elements.
func (f *Function) View(operand *Node, dims []int, encoding layouts.Layout) (*Node, error) {
	opType := OpTypeView
	inputs, err := f.verifyValues(opType.String(), operand)
	if err != nil {
		return nil, err
	}
	shape, err := reshapeShape(inputs[0].typ.Shape, dims)
	if err != nil {
		return nil, err
	}
	typ, err := resultType(opType, shape, encoding)
	if err != nil {
		return nil, err
	}
	return f.newNode(opType, typ, nil, inputs...), nil
}

// ExpandDims inserts a new axis of dimension 1 at position axis.
func (f *Function) ExpandDims(operand *Node, axis int, encoding layouts.Layout) (*Node, error) {
	opType := OpTypeExpandDims
	inputs, err := f.verifyValues(opType.String(), operand)
	if err != nil {
		return nil, err
	}
	shape, err := expandDimsShape(inputs[0].typ.Shape, axis)
	if err != nil {
		return nil, err
	}
	typ, err := resultType(opType, shape, encoding)
	if err != nil {
		return nil, err
	}
	return f.newNode(opType, typ, axis, inputs...), nil
}

// Trans transposes a rank-2 operand.
func (f *Function) Trans(operand *Node, encoding layouts.Layout) (*Node, error) {
	opType := OpTypeTrans
	inputs, err := f.verifyValues(opType.String(), operand)
	if err != nil {
		return nil, err
	}
	shape, err := transposeShape(inputs[0].typ.Shape)
	if err != nil {
		return nil, err
	}
	typ, err := resultType(opType, shape, encoding)
	if err != nil {
		return nil, err
	}
	return f.newNode(opType, typ, nil, inputs...), nil
}

// normalizeConstant converts the Go value to a float64 (float dtypes), int64 (integer dtypes) or bool.
func normalizeConstant(value any, dtype dtypes.DType) (any, error) {
	var (
		asFloat float64
		asInt   int64
		isFloat bool
	)
	switch v := value.(type) {
	case bool:
		if dtype != dtypes.Bool {
			return nil, errors.Errorf("bool constant given for dtype %s", dtype)
		}
		return v, nil
	case float32:
		asFloat, isFloat = float64(v), true
	case float64:
		asFloat, isFloat = v, true
	case int:
		asInt = int64(v)
	case int8:
		asInt = int64(v)
	case int16:
		asInt = int64(v)
	case int32:
		asInt = int64(v)
	case int64:
		asInt = v
	case uint8:
		asInt = int64(v)
	case uint16:
		asInt = int64(v)
	case uint32:
		asInt = int64(v)
	case uint64:
		asInt = int64(v)
	default:
		return nil, errors.Errorf("constant of type %T not supported", value)
	}
	switch {
	case dtype.IsFloat():
		if isFloat {
			return asFloat, nil
		}
		return float64(asInt), nil
	case dtype.IsInt():
		if isFloat {
			return nil, errors.Errorf("float constant %g given for integer dtype %s", asFloat, dtype)
		}
		return asInt, nil
	default:
		return nil, errors.Errorf("constant %v not supported for dtype %s", value, dtype)
	}
}
