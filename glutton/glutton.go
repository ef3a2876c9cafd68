// Package glutton implements a governor that deliberately consumes weight
// left over in idle slots.
//
// Overview:
//
//	Every idle slot hands the pallet the weight nobody else used. The pallet
//	takes the configured fraction of it (Limits) in both dimensions and burns
//	it with real work: trash table reads produce proof size, a hash loop
//	produces ref time. This lets an operator load a network to a controlled
//	utilisation level without sending any transactions.
//
// Accounting:
//
//	The work can not be interrupted once started, so the number of
//	iterations is solved from the calibrated cost model first, the declared
//	cost of those iterations is reserved on a WeightMeter, and only then is
//	the work performed. The reservation is authoritative; the real duration
//	of the work is never measured.
package glutton

import (
	"bytes"
	stdmath "math"

	"github.com/Fantom-foundation/lachesis-base/inter/idx"
	"github.com/ethereum/go-ethereum/event"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/blake2b"

	"github.com/rony4d/go-opera-glutton/inter"
)

// clobberSize is the size of the buffer chained through the hash loop. It is
// the BLAKE2b-512 digest size.
const clobberSize = blake2b.Size

// clobberSentinel can never equal a digest since it is one byte too long.
var clobberSentinel = make([]byte, clobberSize+1)

// Pallet is the idle-slot governor together with its privileged calls.
type Pallet struct {
	store   *Store
	weights WeightInfo
	log     logrus.FieldLogger

	registry metrics.Registry
	metrics  *palletMetrics

	feed  event.Feed
	scope event.SubscriptionScope
}

// Option configures a Pallet.
type Option func(*Pallet)

// WithMetrics registers the pallet's metrics in r. Without it the pallet
// collects nothing.
func WithMetrics(r metrics.Registry) Option {
	return func(p *Pallet) {
		p.registry = r
	}
}

// WithLogger sets the logger. The standard logrus logger is used otherwise.
func WithLogger(log logrus.FieldLogger) Option {
	return func(p *Pallet) {
		p.log = log
	}
}

// NewPallet creates a pallet on top of store, using weights as its cost
// model. Run IntegrityTest on weights before serving slots with it.
func NewPallet(store *Store, weights WeightInfo, opts ...Option) *Pallet {
	p := &Pallet{
		store:   store,
		weights: weights,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.log = p.log.WithField("module", "glutton")
	p.metrics = newPalletMetrics(p.registry)
	return p
}

// Weights returns the cost model the pallet was created with.
func (p *Pallet) Weights() WeightInfo {
	return p.weights
}

// OnIdle consumes the configured fraction of remaining and returns the
// weight it reserved, which is never more than remaining unless remaining
// can not even pay for reading the configuration, in which case the
// EmptyOnIdle weight is returned.
func (p *Pallet) OnIdle(slot idx.Block, remaining inter.Weight) inter.Weight {
	p.metrics.onIdle.Inc(1)
	log := p.log.WithField("slot", slot)

	meter := inter.NewWeightMeter(remaining)
	if err := meter.TryConsume(p.weights.ReadLimits()); err != nil {
		p.metrics.onIdleEmpty.Inc(1)
		log.WithField("remaining", remaining).Trace("Slot too small to read limits")
		return p.weights.EmptyOnIdle()
	}

	limits, err := p.store.Limits()
	if err != nil {
		log.WithError(err).Warn("Failed to read limits, not wasting")
		limits = Limits{}
	}

	// Both fractions apply to what is left after reading the limits.
	rem := meter.Remaining()
	inner := inter.NewWeightMeter(inter.NewWeight(
		limits.Compute.MulFloor(rem.RefTime),
		limits.Storage.MulFloor(rem.ProofSize),
	))

	reads := p.wasteProofSize(inner, log)
	hashes := p.wasteRefTime(inner, log)

	wasted := inner.Consumed()
	if err := meter.TryConsume(wasted); err != nil {
		log.WithError(err).Error("Wasted weight exceeds the slot budget")
	}
	p.metrics.refTimeWasted.Mark(clampInt64(wasted.RefTime))
	p.metrics.proofSizeWasted.Mark(clampInt64(wasted.ProofSize))

	refRatio, proofRatio := inner.ConsumedRatio()
	log.WithFields(logrus.Fields{
		"reads":          reads,
		"hashes":         hashes,
		"wasted":         wasted,
		"refTimeUsage":   refRatio,
		"proofSizeUsage": proofRatio,
	}).Debug("Idle slot wasted")

	return meter.Consumed()
}

// wasteProofSize reads trash entries until the proof size budget of meter is
// spent and returns the number of reads.
//
// With a populated table the reads cycle over the populated keys so every
// read hits; with an empty table every read misses. The matching cost model
// is chosen before anything is reserved.
func (p *Pallet) wasteProofSize(meter *inter.WeightMeter, log logrus.FieldLogger) uint64 {
	count, err := p.store.TrashCount()
	if err != nil {
		log.WithError(err).Warn("Failed to read trash count")
		count = 0
	}
	cost := p.weights.WasteProofSizeNone()
	if count > 0 {
		cost = p.weights.WasteProofSizeSome()
	}

	n, ok := calculateProofSizeIters(cost, meter.Remaining())
	if !ok {
		p.metrics.phaseSkipped.Inc(1)
		log.WithField("cost", cost).Debug("Proof size waste skipped, zero proof size slope")
		return 0
	}
	if n == 0 {
		return 0
	}
	if err := meter.TryConsume(cost.At(n)); err != nil {
		log.WithError(err).WithField("iters", n).Error("Could not consume proof size waste")
		return 0
	}

	for i := uint64(0); i < n; i++ {
		key := uint32(i)
		if count > 0 {
			key = uint32(i % uint64(count))
		}
		if _, _, err := p.store.TrashData(key); err != nil {
			log.WithError(err).WithField("key", key).Debug("Trash read failed")
		}
	}
	p.metrics.readIters.Mark(clampInt64(n))
	return n
}

// wasteRefTime runs hash iterations until the ref time budget of meter is
// spent and returns the number of iterations.
func (p *Pallet) wasteRefTime(meter *inter.WeightMeter, log logrus.FieldLogger) uint64 {
	cost := p.weights.WasteRefTimeIter()

	n, ok := calculateRefTimeIters(cost, meter.Remaining())
	if !ok {
		p.metrics.phaseSkipped.Inc(1)
		log.WithField("cost", cost).Debug("Ref time waste skipped, cost model does not fit")
		return 0
	}
	if n == 0 {
		return 0
	}
	if err := meter.TryConsume(cost.At(n)); err != nil {
		log.WithError(err).WithField("iters", n).Error("Could not consume ref time waste")
		return 0
	}

	clobber := make([]byte, clobberSize)
	rounds := p.weights.HashRounds()
	for i := uint64(0); i < n; i++ {
		clobber = wasteRefTimeIter(clobber, rounds)
	}
	// Keeps the loop result observable.
	if bytes.Equal(clobber, clobberSentinel) {
		if err := p.store.InsertTrash(0, trashBlob(clobber[0])); err != nil {
			log.WithError(err).Debug("Trash write failed")
		}
	}
	p.metrics.hashIters.Mark(clampInt64(n))
	return n
}

// calculateProofSizeIters solves the largest n with cost.At(n) fitting into
// remaining. Proof size is the primary dimension; a ref time term in the cost
// bounds n as well. It returns false if the proof size slope is zero.
func calculateProofSizeIters(cost Cost, remaining inter.Weight) (uint64, bool) {
	if cost.Slope.ProofSize == 0 {
		return 0, false
	}
	byProofSize := maxIters(cost.Base.ProofSize, cost.Slope.ProofSize, remaining.ProofSize)
	byRefTime := maxIters(cost.Base.RefTime, cost.Slope.RefTime, remaining.RefTime)
	if byRefTime < byProofSize {
		return byRefTime, true
	}
	return byProofSize, true
}

// calculateRefTimeIters solves the largest n with cost.At(n) fitting into
// remaining. The hash loop must not cost any proof size; it returns false if
// it does or if the ref time slope is zero.
func calculateRefTimeIters(cost Cost, remaining inter.Weight) (uint64, bool) {
	if cost.Slope.RefTime == 0 || cost.Base.ProofSize != 0 || cost.Slope.ProofSize != 0 {
		return 0, false
	}
	return maxIters(cost.Base.RefTime, cost.Slope.RefTime, remaining.RefTime), true
}

// maxIters returns the largest n with base + slope×n <= limit in a single
// dimension. A zero slope does not bound n as long as base fits.
func maxIters(base, slope, limit uint64) uint64 {
	if base > limit {
		return 0
	}
	if slope == 0 {
		return stdmath.MaxUint64
	}
	return (limit - base) / slope
}

// wasteRefTimeIter feeds clobber into a BLAKE2b-512 hasher rounds times and
// returns the digest, which becomes the input of the next iteration.
func wasteRefTimeIter(clobber []byte, rounds uint64) []byte {
	hasher, _ := blake2b.New512(nil) // only fails for keys longer than 64 bytes
	for i := uint64(0); i < rounds; i++ {
		hasher.Write(clobber)
	}
	return hasher.Sum(nil)
}

func clampInt64(v uint64) int64 {
	if v > stdmath.MaxInt64 {
		return stdmath.MaxInt64
	}
	return int64(v)
}
