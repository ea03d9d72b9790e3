package layouts

import (
	"fmt"
	"slices"

	"github.com/gomlx/gpulower/pkg/support/xslices"
	"github.com/pkg/errors"
)

// MMA is the layout of the accumulator (result) of tensor core matrix-multiply-accumulate instructions.
//
// VersionMajor selects the hardware generation: 1 for Volta, 2 for Ampere. For Volta, VersionMinor
// encodes the operand layout states (see VoltaState); for Ampere it is 0.
type MMA struct {
	VersionMajor int
	VersionMinor int
	WarpsPerCTA  []int
}

// Hardware generations for MMA.VersionMajor.
const (
	MMAVolta  = 1
	MMAAmpere = 2
)

// NewAmpereMMA returns an MMA layout for the Ampere generation.
func NewAmpereMMA(warpsPerCTA []int) MMA {
	return MMA{VersionMajor: MMAAmpere, WarpsPerCTA: slices.Clone(warpsPerCTA)}
}

// NewVoltaMMA returns an MMA layout for the Volta generation with the given operand layout states.
func NewVoltaMMA(warpsPerCTA []int, state VoltaState) MMA {
	return MMA{VersionMajor: MMAVolta, VersionMinor: state.EncodeVersionMinor(), WarpsPerCTA: slices.Clone(warpsPerCTA)}
}

// Kind implements Layout.
func (m MMA) Kind() Kind { return KindMMA }

func (m MMA) isLayout() {}

// String implements Layout.
func (m MMA) String() string {
	return fmt.Sprintf("#mma<{versionMajor = %d, versionMinor = %d, warpsPerCTA = %s}>",
		m.VersionMajor, m.VersionMinor, formatInts(m.WarpsPerCTA))
}

// IsVolta returns whether it is a Volta (version 1) layout.
func (m MMA) IsVolta() bool { return m.VersionMajor == MMAVolta }

// IsAmpere returns whether it is an Ampere (version 2) layout.
func (m MMA) IsAmpere() bool { return m.VersionMajor == MMAAmpere }

// VoltaState is the operand layout state of a Volta MMA, packed into its VersionMinor.
type VoltaState struct {
	// IsARow and IsBRow indicate whether operand A / B are row-major.
	IsARow, IsBRow bool

	// IsAVec4 and IsBVec4 indicate whether operand A / B are loaded in groups of 4 elements.
	IsAVec4, IsBVec4 bool

	// ID distinguishes the sub-tile arrangements of different dot products. It uses VoltaIDBits bits.
	ID int
}

// VoltaIDBits is the number of bits of VersionMinor used by VoltaState.ID.
const VoltaIDBits = 5

// EncodeVersionMinor packs the state: bits 0 to 3 hold IsARow, IsBRow, IsAVec4 and IsBVec4,
// and the following VoltaIDBits bits hold the ID.
func (s VoltaState) EncodeVersionMinor() int {
	minor := 0
	for bit, flag := range []bool{s.IsARow, s.IsBRow, s.IsAVec4, s.IsBVec4} {
		if flag {
			minor |= 1 << bit
		}
	}
	return minor | (s.ID&(1<<VoltaIDBits-1))<<4
}

// DecodeVoltaState unpacks the VoltaState from VersionMinor. It fails if the layout is not Volta.
func (m MMA) DecodeVoltaState() (VoltaState, error) {
	if !m.IsVolta() {
		return VoltaState{}, errors.Wrapf(ErrUnsupported, "DecodeVoltaState: %s is not a Volta layout", m)
	}
	minor := m.VersionMinor
	return VoltaState{
		IsARow:  minor&(1<<0) != 0,
		IsBRow:  minor&(1<<1) != 0,
		IsAVec4: minor&(1<<2) != 0,
		IsBVec4: minor&(1<<3) != 0,
		ID:      (minor >> 4) & (1<<VoltaIDBits - 1),
	}, nil
}

// Hardware constants of the per-warp tiling of each generation.
var (
	ampereSizePerThread  = []int{2, 2}
	ampereThreadsPerWarp = []int{8, 4}
	voltaSizePerThread   = []int{2, 4}
	voltaThreadsPerWarp  = []int{4, 8}
	mmaContigPerThread   = []int{1, 2}
	mmaOrder             = []int{1, 0}
)

// voltaFragmentsPerWarp is the number of quad-pairs per warp along M and N.
var voltaFragmentsPerWarp = [2]int{2, 2}

// elemsPerThread implements the closed-form counts for each generation.
func (m MMA) elemsPerThread(shape []int) (int, error) {
	switch m.VersionMajor {
	case MMAAmpere:
		elemsCol := xslices.CeilDiv(shape[0], 16*m.WarpsPerCTA[0]) * 2
		elemsRow := xslices.CeilDiv(shape[1], 8*m.WarpsPerCTA[1]) * 2
		return elemsCol * elemsRow, nil

	case MMAVolta:
		state, err := m.DecodeVoltaState()
		if err != nil {
			return 0, err
		}
		packSize0, packSize1 := 2, 1
		if state.IsARow || state.IsAVec4 {
			packSize0 = 1
		}
		if state.IsBRow && !state.IsBVec4 {
			packSize1 = 2
		}
		repM, repN := 2*packSize0, 2*packSize1
		spwM := voltaFragmentsPerWarp[0] * 4 * repM
		spwN := voltaFragmentsPerWarp[1] * 4 * repN
		resM := repM * max(1, shape[0]/(spwM*m.WarpsPerCTA[0]))
		resN := 2 * repN * max(1, shape[1]/(spwN*m.WarpsPerCTA[1]))
		return resM * resN, nil

	default:
		return 0, errors.Wrapf(ErrUnsupported, "unknown MMA version %d in %s", m.VersionMajor, m)
	}
}
