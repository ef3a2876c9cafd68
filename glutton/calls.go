package glutton

import (
	"fmt"

	"github.com/ethereum/go-ethereum/event"
	"github.com/sirupsen/logrus"

	"github.com/rony4d/go-opera-glutton/inter"
)

// InitializePallet fills the trash table with count entries. Keys 0..count-1
// are (over)written, entries above count from an earlier, larger call are
// kept.
//
// Only callable by root.
func (p *Pallet) InitializePallet(origin Origin, count uint32) error {
	if err := EnsureRoot(origin); err != nil {
		return err
	}
	if count > MaxTrashDataEntries {
		p.log.WithFields(logrus.Fields{
			"count": count,
			"max":   MaxTrashDataEntries,
		}).Warn("Trash table above its calibrated size, read costs may be under-estimated")
	}
	if err := p.store.InitializeTrash(count); err != nil {
		return fmt.Errorf("initialize trash data: %w", err)
	}
	if total, err := p.store.TrashCount(); err == nil {
		p.metrics.trashCount.Update(int64(total))
	}

	p.deposit(Event{Kind: PalletInitialized})
	return nil
}

// SetCompute sets the fraction of a slot's remaining ref time the pallet
// consumes.
//
// Only callable by root.
func (p *Pallet) SetCompute(origin Origin, compute inter.Perbill) error {
	if err := EnsureRoot(origin); err != nil {
		return err
	}
	if err := p.store.SetCompute(compute); err != nil {
		return fmt.Errorf("write compute limit: %w", err)
	}
	p.metrics.computeLimit.Update(int64(compute))

	p.deposit(Event{Kind: ComputationLimitSet, Limit: compute})
	return nil
}

// SetStorage sets the fraction of a slot's remaining proof size the pallet
// consumes.
//
// Only callable by root.
func (p *Pallet) SetStorage(origin Origin, storage inter.Perbill) error {
	if err := EnsureRoot(origin); err != nil {
		return err
	}
	if err := p.store.SetStorage(storage); err != nil {
		return fmt.Errorf("write storage limit: %w", err)
	}
	p.metrics.storageLimit.Update(int64(storage))

	p.deposit(Event{Kind: StorageLimitSet, Limit: storage})
	return nil
}

// Limits returns the current configuration.
func (p *Pallet) Limits() (Limits, error) {
	return p.store.Limits()
}

// TrashCount returns the number of populated trash entries.
func (p *Pallet) TrashCount() (uint32, error) {
	return p.store.TrashCount()
}

// SubscribeEvents delivers every event deposited from now on to ch. Sending
// blocks until all subscribers have received the event, so subscribers must
// keep draining their channel.
func (p *Pallet) SubscribeEvents(ch chan<- Event) event.Subscription {
	return p.scope.Track(p.feed.Subscribe(ch))
}

// Close ends all event subscriptions.
func (p *Pallet) Close() {
	p.scope.Close()
}

func (p *Pallet) deposit(e Event) {
	p.feed.Send(e)
	p.log.WithField("event", e).Info("Event deposited")
}
