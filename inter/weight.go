// Package inter holds the resource accounting primitives shared by the
// runtime: the two-dimensional Weight, the Perbill fraction and the
// WeightMeter that reservations are checked against.
package inter

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/math"
)

// Weight is the two-dimensional resource vector used for every budget and
// cost in the runtime.
//
// The protocol limits a slot in two independent ways:
// - RefTime is the compute time, in picoseconds of reference hardware.
// - ProofSize is the size of the witness (storage proof) that must ship with
//   the slot so it can be verified by someone who does not hold the state.
//
// A Weight is a plain value. Every method returns a new Weight and all
// arithmetic saturates at the representable bound instead of wrapping.
type Weight struct {
	RefTime   uint64 `json:"refTime" yaml:"refTime"`
	ProofSize uint64 `json:"proofSize" yaml:"proofSize"`
}

// NewWeight builds a Weight from its two components.
func NewWeight(refTime, proofSize uint64) Weight {
	return Weight{RefTime: refTime, ProofSize: proofSize}
}

// FromRefTime builds a Weight that only costs compute time.
func FromRefTime(refTime uint64) Weight {
	return Weight{RefTime: refTime}
}

// FromProofSize builds a Weight that only costs witness size.
func FromProofSize(proofSize uint64) Weight {
	return Weight{ProofSize: proofSize}
}

// Zero returns the empty Weight.
func Zero() Weight {
	return Weight{}
}

// IsZero reports whether both components are zero.
func (w Weight) IsZero() bool {
	return w.RefTime == 0 && w.ProofSize == 0
}

// SaturatingAdd adds component-wise, clamping each component at MaxUint64.
func (w Weight) SaturatingAdd(o Weight) Weight {
	return Weight{
		RefTime:   saturatingAdd(w.RefTime, o.RefTime),
		ProofSize: saturatingAdd(w.ProofSize, o.ProofSize),
	}
}

// SaturatingSub subtracts component-wise, clamping each component at zero.
func (w Weight) SaturatingSub(o Weight) Weight {
	return Weight{
		RefTime:   saturatingSub(w.RefTime, o.RefTime),
		ProofSize: saturatingSub(w.ProofSize, o.ProofSize),
	}
}

// Sub is SaturatingSub. Weights can not go negative, so there is no
// checked variant that could fail.
func (w Weight) Sub(o Weight) Weight {
	return w.SaturatingSub(o)
}

// SaturatingMul scales both components by n, clamping at MaxUint64.
func (w Weight) SaturatingMul(n uint64) Weight {
	return Weight{
		RefTime:   saturatingMul(w.RefTime, n),
		ProofSize: saturatingMul(w.ProofSize, n),
	}
}

// MulFloor takes the fraction p of both components, rounding down.
func (w Weight) MulFloor(p Perbill) Weight {
	return Weight{
		RefTime:   p.MulFloor(w.RefTime),
		ProofSize: p.MulFloor(w.ProofSize),
	}
}

// AllLTE reports whether w fits into o in both dimensions.
func (w Weight) AllLTE(o Weight) bool {
	return w.RefTime <= o.RefTime && w.ProofSize <= o.ProofSize
}

// AnyGT reports whether w exceeds o in at least one dimension.
func (w Weight) AnyGT(o Weight) bool {
	return w.RefTime > o.RefTime || w.ProofSize > o.ProofSize
}

// Max returns the component-wise maximum.
func (w Weight) Max(o Weight) Weight {
	if o.RefTime > w.RefTime {
		w.RefTime = o.RefTime
	}
	if o.ProofSize > w.ProofSize {
		w.ProofSize = o.ProofSize
	}
	return w
}

// Min returns the component-wise minimum.
func (w Weight) Min(o Weight) Weight {
	if o.RefTime < w.RefTime {
		w.RefTime = o.RefTime
	}
	if o.ProofSize < w.ProofSize {
		w.ProofSize = o.ProofSize
	}
	return w
}

// String returns a human-readable representation for logging.
func (w Weight) String() string {
	return fmt.Sprintf("{refTime=%d, proofSize=%d}", w.RefTime, w.ProofSize)
}

func saturatingAdd(a, b uint64) uint64 {
	sum, overflow := math.SafeAdd(a, b)
	if overflow {
		return math.MaxUint64
	}
	return sum
}

func saturatingSub(a, b uint64) uint64 {
	diff, underflow := math.SafeSub(a, b)
	if underflow {
		return 0
	}
	return diff
}

func saturatingMul(a, b uint64) uint64 {
	prod, overflow := math.SafeMul(a, b)
	if overflow {
		return math.MaxUint64
	}
	return prod
}
