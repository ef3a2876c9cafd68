package glutton

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-glutton/inter"
)

func nextEvent(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("no event deposited")
		return Event{}
	}
}

func requireNoEvent(t *testing.T, ch <-chan Event) {
	t.Helper()
	select {
	case e := <-ch:
		t.Fatalf("unexpected event %v", e)
	default:
	}
}

func TestCalls_Events(t *testing.T) {
	p, _, _ := newTestPallet(t, testWeights())
	ch := make(chan Event, 4)
	sub := p.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	require.NoError(t, p.InitializePallet(RootOrigin, 5))
	require.Equal(t, Event{Kind: PalletInitialized}, nextEvent(t, ch))

	require.NoError(t, p.SetCompute(RootOrigin, inter.FromPercent(20)))
	require.Equal(t, Event{Kind: ComputationLimitSet, Limit: inter.FromPercent(20)}, nextEvent(t, ch))

	require.NoError(t, p.SetStorage(RootOrigin, inter.FromPercent(80)))
	require.Equal(t, Event{Kind: StorageLimitSet, Limit: inter.FromPercent(80)}, nextEvent(t, ch))
	requireNoEvent(t, ch)

	limits, err := p.Limits()
	require.NoError(t, err)
	require.Equal(t, Limits{Compute: inter.FromPercent(20), Storage: inter.FromPercent(80)}, limits)

	count, err := p.TrashCount()
	require.NoError(t, err)
	require.Equal(t, uint32(5), count)
}

// TestCalls_RejectNonRoot: rejected calls change nothing and emit nothing.
func TestCalls_RejectNonRoot(t *testing.T) {
	p, _, _ := newTestPallet(t, testWeights())
	setLimits(t, p, inter.FromPercent(10), inter.FromPercent(10))

	ch := make(chan Event, 4)
	sub := p.SubscribeEvents(ch)
	defer sub.Unsubscribe()

	for _, origin := range []Origin{NoneOrigin, SignedOrigin} {
		require.ErrorIs(t, p.SetCompute(origin, inter.One()), ErrBadOrigin)
		require.ErrorIs(t, p.SetStorage(origin, inter.One()), ErrBadOrigin)
		require.ErrorIs(t, p.InitializePallet(origin, 3), ErrBadOrigin)
	}
	requireNoEvent(t, ch)

	limits, err := p.Limits()
	require.NoError(t, err)
	require.Equal(t, Limits{Compute: inter.FromPercent(10), Storage: inter.FromPercent(10)}, limits)

	count, err := p.TrashCount()
	require.NoError(t, err)
	require.Zero(t, count)
}

// TestCalls_SettersAreIndependent: each setter leaves the other fraction alone.
func TestCalls_SettersAreIndependent(t *testing.T) {
	p, _, _ := newTestPallet(t, testWeights())

	require.NoError(t, p.SetStorage(RootOrigin, inter.FromPercent(30)))
	require.NoError(t, p.SetCompute(RootOrigin, inter.FromPercent(60)))
	require.NoError(t, p.SetStorage(RootOrigin, inter.FromPercent(31)))

	limits, err := p.Limits()
	require.NoError(t, err)
	require.Equal(t, inter.FromPercent(60), limits.Compute)
	require.Equal(t, inter.FromPercent(31), limits.Storage)
}

func TestCalls_CloseEndsSubscriptions(t *testing.T) {
	p, _, _ := newTestPallet(t, testWeights())
	ch := make(chan Event, 1)
	sub := p.SubscribeEvents(ch)

	p.Close()
	select {
	case <-sub.Err():
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestEvent_String(t *testing.T) {
	require.Equal(t, "PalletInitialized", Event{Kind: PalletInitialized}.String())
	require.Equal(t, "ComputationLimitSet{50%}", Event{Kind: ComputationLimitSet, Limit: inter.FromPercent(50)}.String())
	require.Equal(t, "EventKind(9)", EventKind(9).String())
	require.Equal(t, "signed", SignedOrigin.String())
	require.NoError(t, EnsureRoot(RootOrigin))
}
