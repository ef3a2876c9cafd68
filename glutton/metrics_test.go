package glutton

import (
	"testing"

	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/metrics"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-glutton/inter"
)

// TestPallet_Metrics checks the instruments count even while the global
// metrics switch is off.
func TestPallet_Metrics(t *testing.T) {
	require := require.New(t)
	require.False(metrics.Enabled)

	registry := metrics.NewRegistry()
	defer registry.UnregisterAll()

	w := testWeights()
	p := NewPallet(NewStore(memorydb.New()), w, WithMetrics(registry))
	defer p.Close()

	require.NoError(p.InitializePallet(RootOrigin, 4))
	require.NoError(p.SetCompute(RootOrigin, inter.FromPercent(50)))
	require.NoError(p.SetStorage(RootOrigin, inter.One()))

	for i := 0; i < 3; i++ {
		p.OnIdle(1, inter.NewWeight(1_000_000, 10_000))
	}
	p.OnIdle(4, inter.Zero())

	counter := func(name string) int64 {
		return registry.Get(name).(metrics.Counter).Count()
	}
	gauge := func(name string) int64 {
		return registry.Get(name).(metrics.Gauge).Value()
	}
	require.Equal(int64(4), counter("glutton/onidle/calls"))
	require.Equal(int64(1), counter("glutton/onidle/empty"))
	require.Equal(int64(inter.FromPercent(50)), gauge("glutton/limits/compute"))
	require.Equal(int64(inter.One()), gauge("glutton/limits/storage"))
	require.Equal(int64(4), gauge("glutton/trash/count"))
	require.Positive(registry.Get("glutton/waste/read/iters").(metrics.Meter).Count())
}

// TestPallet_MetricsDisabled: without a registry nothing is registered
// anywhere.
func TestPallet_MetricsDisabled(t *testing.T) {
	p := NewPallet(NewStore(memorydb.New()), testWeights())
	defer p.Close()

	p.OnIdle(1, inter.NewWeight(1_000_000, 10_000))
	require.Nil(t, metrics.DefaultRegistry.Get("glutton/onidle/calls"))
}
