// Package opera defines the network rules the glutton runtime is executed
// under.
//
// This package provides:
//   - Network identification constants (MainNet, TestNet, FakeNet)
//   - Slot (block) weight limits and the share of a slot left idle
//   - Storage access weights used to price database reads and writes
//
// The Rules type is the single place the launcher looks at to decide how much
// weight each idle slot grants to the governor.
package opera

import (
	"encoding/json"
	"fmt"

	"github.com/rony4d/go-opera-glutton/inter"
)

// Network identification constants
const (
	// MainNetworkID is the chain ID for the Opera mainnet (0xfa = 250 in decimal)
	MainNetworkID uint64 = 0xfa

	// TestNetworkID is the chain ID for the Opera testnet (0xfa2 = 4002 in decimal)
	TestNetworkID uint64 = 0xfa2

	// FakeNetworkID is the chain ID for local/fake networks used in testing (0xfa3 = 4003 in decimal)
	FakeNetworkID uint64 = 0xfa3
)

// Weight unit constants
const (
	// WeightRefTimePerSecond is the amount of RefTime that corresponds to one
	// second of execution on reference hardware (1 unit = 1 picosecond).
	WeightRefTimePerSecond uint64 = 1_000_000_000_000

	// WeightRefTimePerMillis is one millisecond of RefTime.
	WeightRefTimePerMillis uint64 = 1_000_000_000

	// WeightRefTimePerNanos is one nanosecond of RefTime.
	WeightRefTimePerNanos uint64 = 1_000

	// MaxPovSize is the largest witness (proof of validity) a slot may carry.
	MaxPovSize uint64 = 5 * 1024 * 1024
)

// Rules describes the complete configuration for a network.
type Rules struct {
	Name      string // Network name identifier (e.g., "main", "test", "fake")
	NetworkID uint64 // Chain ID for network identification

	// Blocks - slot weight limits
	Blocks BlocksRules

	// DbWeight - price of a single storage access
	DbWeight DbWeight
}

// BlocksRules contains the weight limits of a single slot.
type BlocksRules struct {
	// MaxBlock is the hard weight limit of a slot in both dimensions.
	MaxBlock inter.Weight

	// IdleShare is the part of MaxBlock that is typically left over once the
	// regular work of the slot is done and handed to idle hooks.
	IdleShare inter.Perbill
}

// SlotBudget returns the weight an idle slot grants to the governor.
func (b BlocksRules) SlotBudget() inter.Weight {
	return b.MaxBlock.MulFloor(b.IdleShare)
}

// DbWeight is the weight of a single read and a single write of the
// underlying key-value database.
type DbWeight struct {
	Read  inter.Weight
	Write inter.Weight
}

// Reads returns the weight of n reads.
func (d DbWeight) Reads(n uint64) inter.Weight {
	return d.Read.SaturatingMul(n)
}

// Writes returns the weight of n writes.
func (d DbWeight) Writes(n uint64) inter.Weight {
	return d.Write.SaturatingMul(n)
}

// ReadsWrites returns the weight of r reads and w writes.
func (d DbWeight) ReadsWrites(r, w uint64) inter.Weight {
	return d.Reads(r).SaturatingAdd(d.Writes(w))
}

// RocksDbWeight prices accesses of a RocksDB/LevelDB style backend.
func RocksDbWeight() DbWeight {
	return DbWeight{
		Read:  inter.FromRefTime(25_000 * WeightRefTimePerNanos),
		Write: inter.FromRefTime(100_000 * WeightRefTimePerNanos),
	}
}

// ParityDbWeight prices accesses of a column-oriented backend with cheaper
// random reads.
func ParityDbWeight() DbWeight {
	return DbWeight{
		Read:  inter.FromRefTime(8_000 * WeightRefTimePerNanos),
		Write: inter.FromRefTime(50_000 * WeightRefTimePerNanos),
	}
}

// MainNetRules returns the configuration rules for mainnet.
func MainNetRules() Rules {
	return Rules{
		Name:      "main",
		NetworkID: MainNetworkID,
		Blocks: BlocksRules{
			MaxBlock:  inter.NewWeight(2*WeightRefTimePerSecond, MaxPovSize), // 2s of compute, 5MiB of witness
			IdleShare: inter.FromPercent(25),                                  // regular work takes the other 75%
		},
		DbWeight: RocksDbWeight(),
	}
}

// TestNetRules returns the configuration rules for testnet.
// Testnet leaves more of each slot idle so load tests have room to work with.
func TestNetRules() Rules {
	return Rules{
		Name:      "test",
		NetworkID: TestNetworkID,
		Blocks: BlocksRules{
			MaxBlock:  inter.NewWeight(2*WeightRefTimePerSecond, MaxPovSize),
			IdleShare: inter.FromPercent(50),
		},
		DbWeight: RocksDbWeight(),
	}
}

// FakeNetRules returns the configuration rules for fake/local networks.
// Fake networks use short slots that are entirely idle:
//   - 500ms of compute instead of 2s
//   - the whole slot is handed to idle hooks
//   - cheaper storage accesses
func FakeNetRules() Rules {
	return Rules{
		Name:      "fake",
		NetworkID: FakeNetworkID,
		Blocks: BlocksRules{
			MaxBlock:  inter.NewWeight(500*WeightRefTimePerMillis, MaxPovSize),
			IdleShare: inter.One(),
		},
		DbWeight: ParityDbWeight(),
	}
}

// RulesByName looks up network rules by name ("main", "test" or "fake").
func RulesByName(name string) (Rules, error) {
	switch name {
	case "main", "mainnet":
		return MainNetRules(), nil
	case "test", "testnet":
		return TestNetRules(), nil
	case "fake", "fakenet":
		return FakeNetRules(), nil
	default:
		return Rules{}, fmt.Errorf("unknown network: %q (valid: main, test, fake)", name)
	}
}

// Copy returns a copy of the rules. Rules hold no pointers, so a value copy
// is already deep.
func (r Rules) Copy() Rules {
	cp := r
	return cp
}

// String returns a JSON representation of Rules for debugging and logging.
func (r Rules) String() string {
	b, _ := json.Marshal(&r)
	return string(b)
}
