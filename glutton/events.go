package glutton

import (
	"errors"
	"fmt"

	"github.com/rony4d/go-opera-glutton/inter"
)

// ErrBadOrigin is returned when a privileged call is dispatched by anyone
// but root.
var ErrBadOrigin = errors.New("bad origin: call requires root")

// Origin is the capability a call is dispatched with.
type Origin uint8

const (
	NoneOrigin Origin = iota
	SignedOrigin
	RootOrigin
)

func (o Origin) String() string {
	switch o {
	case RootOrigin:
		return "root"
	case SignedOrigin:
		return "signed"
	default:
		return "none"
	}
}

// EnsureRoot rejects every origin but RootOrigin.
func EnsureRoot(o Origin) error {
	if o != RootOrigin {
		return fmt.Errorf("%w (got %s)", ErrBadOrigin, o)
	}
	return nil
}

// EventKind identifies what a deposited Event announces.
type EventKind uint8

const (
	// PalletInitialized: the trash table has been written by root.
	PalletInitialized EventKind = iota + 1
	// ComputationLimitSet: the compute fraction has been updated by root.
	ComputationLimitSet
	// StorageLimitSet: the storage fraction has been updated by root.
	StorageLimitSet
)

func (k EventKind) String() string {
	switch k {
	case PalletInitialized:
		return "PalletInitialized"
	case ComputationLimitSet:
		return "ComputationLimitSet"
	case StorageLimitSet:
		return "StorageLimitSet"
	default:
		return fmt.Sprintf("EventKind(%d)", uint8(k))
	}
}

// Event is emitted once for every successful privileged call.
type Event struct {
	Kind EventKind
	// Limit is the new value for ComputationLimitSet and StorageLimitSet.
	Limit inter.Perbill
}

func (e Event) String() string {
	if e.Kind == PalletInitialized {
		return e.Kind.String()
	}
	return fmt.Sprintf("%s{%s}", e.Kind, e.Limit)
}
