package program

import (
	"slices"

	"github.com/gomlx/gpulower/pkg/core/dtypes"
	"github.com/gomlx/gpulower/pkg/core/shapes"
	"github.com/pkg/errors"
)

// concatenateShape returns the shape of the concatenation of lhs and rhs along axis 0.
func concatenateShape(lhs, rhs shapes.Shape) (output shapes.Shape, err error) {
	if lhs.DType == dtypes.InvalidDType || rhs.DType == dtypes.InvalidDType {
		return shapes.Invalid(), errors.Errorf("invalid shapes %s and %s for Cat", lhs, rhs)
	}
	if lhs.DType != rhs.DType {
		return shapes.Invalid(), errors.Errorf("mismatched DTypes for Cat: %s and %s", lhs.DType, rhs.DType)
	}
	if lhs.Rank() == 0 || lhs.Rank() != rhs.Rank() {
		return shapes.Invalid(), errors.Errorf("Cat requires operands of the same rank >= 1, got %s and %s", lhs, rhs)
	}
	output = lhs.Clone()
	output.Dimensions[0] += rhs.Dimensions[0]
	for axis := 1; axis < lhs.Rank(); axis++ {
		if lhs.Dimensions[axis] != rhs.Dimensions[axis] {
			return shapes.Invalid(), errors.Errorf("mismatched dimensions for Cat at axis %d (non-concatenation axis): %s and %s",
				axis, lhs, rhs)
		}
	}
	return output, nil
}

// reshapeShape returns the operand reshaped to dims, checking that the sizes are the same.
func reshapeShape(operand shapes.Shape, dims []int) (output shapes.Shape, err error) {
	for _, dim := range dims {
		if dim <= 0 {
			return shapes.Invalid(), errors.Errorf("View: dimensions %v must be positive", dims)
		}
	}
	output = shapes.Make(operand.DType, dims...)
	if operand.Size() != output.Size() {
		return shapes.Invalid(), errors.Errorf("View cannot reshape %s to dimensions %v, their size don't match",
			operand, dims)
	}
	return output, nil
}

// expandDimsShape inserts a new axis of dimension 1 at the given position.
func expandDimsShape(operand shapes.Shape, axis int) (output shapes.Shape, err error) {
	if axis < 0 || axis > operand.Rank() {
		return shapes.Invalid(), errors.Errorf("ExpandDims: axis %d out of range for %s", axis, operand)
	}
	output = operand.Clone()
	output.Dimensions = slices.Insert(output.Dimensions, axis, 1)
	return output, nil
}

// transposeShape swaps the two axes of a rank-2 operand.
func transposeShape(operand shapes.Shape) (output shapes.Shape, err error) {
	if operand.Rank() != 2 {
		return shapes.Invalid(), errors.Errorf("Trans requires a rank-2 operand, got %s", operand)
	}
	output = operand.Clone()
	output.Dimensions[0], output.Dimensions[1] = operand.Dimensions[1], operand.Dimensions[0]
	return output, nil
}

// broadcastShape returns the shape of the scalar operand broadcast to dims.
func broadcastShape(operand shapes.Shape, dims []int) (output shapes.Shape, err error) {
	if !operand.IsScalar() {
		return shapes.Invalid(), errors.Errorf("only scalars can be broadcast, got %s", operand)
	}
	if len(dims) == 0 {
		return shapes.Invalid(), errors.Errorf("broadcast requires at least one dimension")
	}
	for _, dim := range dims {
		if dim <= 0 {
			return shapes.Invalid(), errors.Errorf("invalid dimensions %v for broadcast, they must be positive", dims)
		}
	}
	return shapes.Make(operand.DType, dims...), nil
}
