package glutton

import "github.com/ethereum/go-ethereum/metrics"

// palletMetrics are the instruments of one pallet. They are created when the
// pallet is, so enabling metrics from a config file still takes effect.
type palletMetrics struct {
	onIdle       metrics.Counter
	onIdleEmpty  metrics.Counter
	phaseSkipped metrics.Counter

	refTimeWasted   metrics.Meter
	proofSizeWasted metrics.Meter
	hashIters       metrics.Meter
	readIters       metrics.Meter

	computeLimit metrics.Gauge
	storageLimit metrics.Gauge
	trashCount   metrics.Gauge
}

// newPalletMetrics registers the instruments in r regardless of the global
// metrics switch. A nil r gives no-op instruments.
func newPalletMetrics(r metrics.Registry) *palletMetrics {
	if r == nil {
		return &palletMetrics{
			onIdle:          metrics.NilCounter{},
			onIdleEmpty:     metrics.NilCounter{},
			phaseSkipped:    metrics.NilCounter{},
			refTimeWasted:   metrics.NilMeter{},
			proofSizeWasted: metrics.NilMeter{},
			hashIters:       metrics.NilMeter{},
			readIters:       metrics.NilMeter{},
			computeLimit:    metrics.NilGauge{},
			storageLimit:    metrics.NilGauge{},
			trashCount:      metrics.NilGauge{},
		}
	}
	return &palletMetrics{
		onIdle:          metrics.GetOrRegisterCounterForced("glutton/onidle/calls", r),
		onIdleEmpty:     metrics.GetOrRegisterCounterForced("glutton/onidle/empty", r),
		phaseSkipped:    metrics.GetOrRegisterCounterForced("glutton/waste/skipped", r),
		refTimeWasted:   metrics.GetOrRegisterMeterForced("glutton/waste/reftime", r),
		proofSizeWasted: metrics.GetOrRegisterMeterForced("glutton/waste/proofsize", r),
		hashIters:       metrics.GetOrRegisterMeterForced("glutton/waste/hash/iters", r),
		readIters:       metrics.GetOrRegisterMeterForced("glutton/waste/read/iters", r),
		computeLimit:    registerGaugeForced("glutton/limits/compute", r),
		storageLimit:    registerGaugeForced("glutton/limits/storage", r),
		trashCount:      registerGaugeForced("glutton/trash/count", r),
	}
}

// registerGaugeForced is the gauge counterpart of the *Forced constructors,
// which go-ethereum only provides for counters and meters.
func registerGaugeForced(name string, r metrics.Registry) metrics.Gauge {
	return r.GetOrRegister(name, func() metrics.Gauge {
		return &metrics.StandardGauge{}
	}).(metrics.Gauge)
}
