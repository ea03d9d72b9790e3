package typeconv

import (
	"github.com/gomlx/gpulower/pkg/core/layouts"
	"github.com/gomlx/gpulower/pkg/core/shapes"
	"github.com/gomlx/gpulower/pkg/lowering/lltypes"
	"github.com/gomlx/gpulower/pkg/support/sets"
	"github.com/pkg/errors"
)

// Instruction tile of the Ampere mma.m16n8 instructions along M and N.
const (
	ampereInstrM = 16
	ampereInstrN = 8
)

// ConvertDotOperand returns the lowered type of the dot product operand with the given shape.
//
//   - Blocked parent (FMA dot product): float32 slots, whatever the element type.
//   - Ampere parent: slots packing 32 bits of elements (1 x 32 bits, 2 x 16 bits or 4 x 8 bits). Packed
//     8 and 16 bits integers (which include bfloat16 and float8 storage) are held in an i32 instead.
//   - Volta parent: slots of 2 elements, counted from the operand's row/column majorness and vectorization.
func (c *Converter) ConvertDotOperand(shape shapes.Shape, d layouts.DotOperand) (lltypes.Type, error) {
	dims := shape.Dimensions
	if err := layouts.Validate(d, len(dims)); err != nil {
		return lltypes.Type{}, err
	}
	switch parent := d.Parent.(type) {
	case layouts.Blocked:
		return lltypes.Repeat(lltypes.F32, fmaElemsPerThread(dims, d.OpIdx, parent)), nil

	case layouts.MMA:
		elemType, err := c.ConvertElementType(shape.DType)
		if err != nil {
			return lltypes.Type{}, err
		}
		switch {
		case parent.IsAmpere():
			return ampereOperandType(dims, d.OpIdx, parent.WarpsPerCTA, elemType)
		case parent.IsVolta():
			state, err := parent.DecodeVoltaState()
			if err != nil {
				return lltypes.Type{}, err
			}
			var elems int
			if d.OpIdx == 0 {
				elems = voltaElemsPerThreadA(dims, parent.WarpsPerCTA, state)
			} else {
				elems = voltaElemsPerThreadB(dims, parent.WarpsPerCTA, state)
			}
			if elems == 0 {
				return lltypes.Type{}, errors.Wrapf(ErrUnsupported,
					"operand %v is smaller than one %s tile", dims, parent)
			}
			return lltypes.Repeat(lltypes.Vector(elemType, 2), elems), nil
		}
	}
	return lltypes.Type{}, errors.Wrapf(ErrUnsupported, "unexpected dot operand layout %s", d)
}

// fmaElemsPerThread is K * max(otherDim / shapePerCTA, 1) * sizePerThread, where otherDim is M (axis 0)
// for A and N (axis 1) for B. The parent's shapePerCTA and sizePerThread are taken along order[1] for A
// and order[0] for B.
func fmaElemsPerThread(dims []int, opIdx int, parent layouts.Blocked) int {
	k, other, axis := dims[1], dims[0], parent.Order[1]
	if opIdx == 1 {
		k, other, axis = dims[0], dims[1], parent.Order[0]
	}
	shapePerCTA := parent.SizePerThread[axis] * parent.ThreadsPerWarp[axis] * parent.WarpsPerCTA[axis]
	return k * max(other/shapePerCTA, 1) * parent.SizePerThread[axis]
}

// ampereOperandType returns the struct of 32 bits slots holding an Ampere dot operand.
func ampereOperandType(dims []int, opIdx int, warpsPerCTA []int, elemType lltypes.Type) (lltypes.Type, error) {
	bits := elemType.BitWidth()
	var slotType lltypes.Type
	switch bits {
	case 32:
		slotType = lltypes.Vector(elemType, 1)
	case 16, 8:
		if elemType.Kind == lltypes.KindInt {
			slotType = lltypes.I32
		} else {
			slotType = lltypes.Vector(elemType, 32/bits)
		}
	default:
		return lltypes.Type{}, errors.Wrapf(ErrUnsupported, "%d bits elements for tensor core dot operands", bits)
	}

	// The instruction covers 256 bits per thread along K.
	instrK := 4 * 64 / bits
	var elems int
	if opIdx == 0 {
		repM := max(dims[0]/(warpsPerCTA[0]*ampereInstrM), 1)
		repK := max(dims[1]/instrK, 1)
		elems = 4 * repM * repK
	} else {
		repN := max(dims[1]/(warpsPerCTA[1]*ampereInstrN), 1)
		repK := max(dims[0]/instrK, 1)
		elems = 4 * max(repN/2, 1) * repK
	}
	return lltypes.Repeat(slotType, elems), nil
}

// voltaFragmentsPerWarp is the number of quad-pairs of a warp along M and N.
var voltaFragmentsPerWarp = [2]int{2, 2}

type loadCoord struct{ mn, k int }

// voltaLoadCount counts the distinct 2-elements loads a thread issues for an operand, mimicking the
// order the loads are emitted: for each K step of 4, for each of the numMN/2 rows (or columns) of fragments,
// one load, plus a second one (along extraAlongK or along M/N) when vectorized over more than 4 elements.
func voltaLoadCount(numMN, numK, vec int, extraAlongK bool) int {
	visited := sets.Make[loadCoord]()
	for k := 0; k < numK; k += 4 {
		for mn := range numMN / 2 {
			if visited.Has(loadCoord{mn, k}) {
				continue
			}
			visited.Insert(loadCoord{mn, k})
			if vec > 4 {
				if extraAlongK {
					visited.Insert(loadCoord{mn, k + 4})
				} else {
					visited.Insert(loadCoord{mn + 1, k})
				}
			}
		}
	}
	return len(visited) * 2
}

// voltaElemsPerThreadA returns the number of 2-elements slots of operand A ([M, K]).
func voltaElemsPerThreadA(dims, warpsPerCTA []int, state layouts.VoltaState) int {
	packSize := 2
	if state.IsARow || state.IsAVec4 {
		packSize = 1
	}
	repM := 2 * packSize
	spwM := voltaFragmentsPerWarp[0] * 4 * repM
	vec := 2 * repM
	numM := repM * dims[0] / (spwM * warpsPerCTA[0])
	return voltaLoadCount(numM, dims[1], vec, state.IsARow)
}

// voltaElemsPerThreadB returns the number of 2-elements slots of operand B ([K, N]).
func voltaElemsPerThreadB(dims, warpsPerCTA []int, state layouts.VoltaState) int {
	packSize := 1
	if state.IsBRow && !state.IsBVec4 {
		packSize = 2
	}
	repN := 2 * packSize
	spwN := voltaFragmentsPerWarp[1] * 4 * repN
	vec := 2 * repN
	numN := repN * dims[1] / (spwN * warpsPerCTA[1])
	return voltaLoadCount(numN, dims[0], vec, !state.IsBRow)
}
