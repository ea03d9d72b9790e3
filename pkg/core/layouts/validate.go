package layouts

import (
	"github.com/gomlx/gpulower/pkg/support/xslices"
	"github.com/pkg/errors"
)

// Rank returns the rank of the tensors the layout can describe, as implied by its fields.
// Blocked and Shared use the length of their order, MMA and DotOperand are always rank 2,
// and Slice is one less than its parent.
func Rank(l Layout) (int, error) {
	switch l := l.(type) {
	case Blocked:
		return len(l.Order), nil
	case Slice:
		parentRank, err := Rank(l.Parent)
		if err != nil {
			return 0, errors.WithMessagef(err, "parent of %s", l)
		}
		return parentRank - 1, nil
	case MMA, DotOperand:
		return 2, nil
	case Shared:
		return len(l.Order), nil
	default:
		return 0, unhandled("Rank", l)
	}
}

// Validate checks that the layout is well-formed and can describe a tensor of the given rank.
// Layouts are not validated at construction, since the tensor shape is often not known then:
// every query validates its layout before answering.
//
// The returned error wraps ErrInvalid.
func Validate(l Layout, rank int) error {
	switch l := l.(type) {
	case Blocked:
		for _, field := range []struct {
			name   string
			values []int
		}{
			{"sizePerThread", l.SizePerThread},
			{"threadsPerWarp", l.ThreadsPerWarp},
			{"warpsPerCTA", l.WarpsPerCTA},
		} {
			if err := checkPositiveOfRank(field.values, rank); err != nil {
				return errors.WithMessagef(err, "%s of %s", field.name, l)
			}
		}
		return checkOrder(l.Order, rank, l)

	case Slice:
		if l.Dim < 0 || l.Dim > rank {
			return errors.Wrapf(ErrInvalid, "%s: dim %d out of range for a rank-%d tensor", l, l.Dim, rank)
		}
		switch l.Parent.(type) {
		case Blocked, MMA:
		default:
			return errors.Wrapf(ErrInvalid, "%s: parent must be a blocked or mma layout", l)
		}
		if err := Validate(l.Parent, rank+1); err != nil {
			return errors.WithMessagef(err, "parent of %s", l)
		}
		return nil

	case MMA:
		if rank != 2 {
			return errors.Wrapf(ErrInvalid, "%s: mma layouts are only defined for rank 2 tensors, got rank %d", l, rank)
		}
		if l.VersionMajor != MMAVolta && l.VersionMajor != MMAAmpere {
			return errors.Wrapf(ErrInvalid, "%s: versionMajor must be %d (Volta) or %d (Ampere)", l, MMAVolta, MMAAmpere)
		}
		if l.VersionMinor < 0 || l.VersionMinor >= 1<<(4+VoltaIDBits) {
			return errors.Wrapf(ErrInvalid, "%s: versionMinor out of range", l)
		}
		if err := checkPositiveOfRank(l.WarpsPerCTA, 2); err != nil {
			return errors.WithMessagef(err, "warpsPerCTA of %s", l)
		}
		return nil

	case DotOperand:
		if rank != 2 {
			return errors.Wrapf(ErrInvalid, "%s: dot operands are only defined for rank 2 tensors, got rank %d", l, rank)
		}
		if l.OpIdx != 0 && l.OpIdx != 1 {
			return errors.Wrapf(ErrInvalid, "%s: opIdx must be 0 or 1", l)
		}
		if l.KWidthLog2 < 0 {
			return errors.Wrapf(ErrInvalid, "%s: kWidthLog2 must be >= 0", l)
		}
		switch l.Parent.(type) {
		case Blocked, MMA:
		default:
			return errors.Wrapf(ErrInvalid, "%s: parent must be a blocked or mma layout", l)
		}
		if err := Validate(l.Parent, 2); err != nil {
			return errors.WithMessagef(err, "parent of %s", l)
		}
		return nil

	case Shared:
		if l.Vec < 1 || l.PerPhase < 1 || l.MaxPhase < 1 {
			return errors.Wrapf(ErrInvalid, "%s: vec, perPhase and maxPhase must be >= 1", l)
		}
		return checkOrder(l.Order, rank, l)

	default:
		return unhandled("Validate", l)
	}
}

func checkPositiveOfRank(values []int, rank int) error {
	if len(values) != rank {
		return errors.Wrapf(ErrInvalid, "%v has %d entries, expected %d (the rank)", values, len(values), rank)
	}
	for _, v := range values {
		if v <= 0 {
			return errors.Wrapf(ErrInvalid, "%v has non-positive entries", values)
		}
	}
	return nil
}

func checkOrder(order []int, rank int, l Layout) error {
	if len(order) != rank {
		return errors.Wrapf(ErrInvalid, "%s: order has %d entries, expected rank %d", l, len(order), rank)
	}
	if !xslices.IsPermutation(order) {
		return errors.Wrapf(ErrInvalid, "%s: order %v is not a permutation", l, order)
	}
	return nil
}

// validateSelf validates the layout against the rank implied by its own fields.
func validateSelf(l Layout) error {
	rank, err := Rank(l)
	if err != nil {
		return err
	}
	return Validate(l, rank)
}
