package inter

import (
	"errors"
	"math/bits"
)

// ErrWeightLimitReached is returned by TryConsume when the requested weight
// does not fit into what is left of the limit.
var ErrWeightLimitReached = errors.New("weight limit reached")

// WeightMeter keeps track of how much of a fixed Weight limit has already
// been spent.
//
// The meter is the only accounting primitive of the runtime: callers reserve
// the declared cost of an operation with TryConsume before they perform the
// operation itself, because the work (a storage read, a hash loop) can not be
// undone afterwards. A reservation that does not fit is rejected as a whole,
// so Consumed never exceeds Limit in either dimension.
//
// A WeightMeter is not safe for concurrent use. It is meant to be created for
// a single invocation and thrown away once its Consumed value is reported.
type WeightMeter struct {
	limit    Weight
	consumed Weight
}

// NewWeightMeter creates a meter with nothing consumed yet.
func NewWeightMeter(limit Weight) *WeightMeter {
	return &WeightMeter{limit: limit}
}

// Limit returns the hard limit the meter was created with.
func (m *WeightMeter) Limit() Weight {
	return m.limit
}

// Consumed returns everything reserved so far.
func (m *WeightMeter) Consumed() Weight {
	return m.consumed
}

// Remaining returns limit - consumed.
func (m *WeightMeter) Remaining() Weight {
	return m.limit.SaturatingSub(m.consumed)
}

// CanConsume reports whether w fits into the remaining weight in both
// dimensions.
func (m *WeightMeter) CanConsume(w Weight) bool {
	return w.AllLTE(m.Remaining())
}

// TryConsume reserves w if it fits and returns ErrWeightLimitReached
// otherwise, leaving the meter untouched.
func (m *WeightMeter) TryConsume(w Weight) error {
	if !m.CanConsume(w) {
		return ErrWeightLimitReached
	}
	m.consumed = m.consumed.SaturatingAdd(w).Min(m.limit)
	return nil
}

// ConsumedRatio returns which fraction of the limit has been spent in each
// dimension. A zero limit reports zero.
func (m *WeightMeter) ConsumedRatio() (refTime, proofSize Perbill) {
	return ratio(m.consumed.RefTime, m.limit.RefTime), ratio(m.consumed.ProofSize, m.limit.ProofSize)
}

func ratio(part, whole uint64) Perbill {
	if whole == 0 {
		return 0
	}
	if part >= whole {
		return One()
	}
	// part < whole keeps the high word below the divisor.
	hi, lo := bits.Mul64(part, PerbillAccuracy)
	q, _ := bits.Div64(hi, lo, whole)
	return FromParts(uint32(q))
}
