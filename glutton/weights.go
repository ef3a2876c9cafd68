package glutton

import (
	"errors"
	"fmt"
	"io/ioutil"

	"gopkg.in/yaml.v3"

	"github.com/rony4d/go-opera-glutton/inter"
	"github.com/rony4d/go-opera-glutton/opera"
)

var (
	// ErrZeroWeight is returned by IntegrityTest when a looped primitive
	// declares no cost in the dimension it is supposed to consume. The
	// iteration count would be undefined and no budget could ever be spent.
	ErrZeroWeight = errors.New("weight zero: the waste loop could never consume budget")

	// ErrMissingVersion is returned when a calibration file carries no version.
	ErrMissingVersion = errors.New("calibration has no version")
)

// Cost is an affine approximation of the weight of n repetitions of a
// primitive operation: Base + Slope×n.
type Cost struct {
	Base  inter.Weight `yaml:"base"`
	Slope inter.Weight `yaml:"slope"`
}

// Flat returns a Cost that does not depend on the repetition count.
func Flat(w inter.Weight) Cost {
	return Cost{Base: w}
}

// At returns the weight of n repetitions.
func (c Cost) At(n uint64) inter.Weight {
	return c.Base.SaturatingAdd(c.Slope.SaturatingMul(n))
}

// WeightInfo is the calibrated cost model of the pallet. Implementations are
// treated as read-only constants.
type WeightInfo interface {
	// WasteRefTimeIter is the cost of n hash iterations.
	WasteRefTimeIter() Cost
	// WasteProofSizeSome is the cost of n trash reads that hit a stored entry.
	WasteProofSizeSome() Cost
	// WasteProofSizeNone is the cost of n trash reads of absent keys.
	WasteProofSizeNone() Cost
	// ReadLimits is the fixed overhead of loading the configuration.
	ReadLimits() inter.Weight
	// EmptyOnIdle is returned when not even the configuration can be read.
	EmptyOnIdle() inter.Weight
	// InitializePallet is the dispatch cost of writing n trash entries.
	InitializePallet() Cost
	SetCompute() inter.Weight
	SetStorage() inter.Weight
	// HashRounds is how many digest updates one hash iteration performs.
	// The other numbers are only valid for the rounds they were measured with.
	HashRounds() uint64
	Version() string
}

// Calibration is a versioned set of benchmark results implementing
// WeightInfo. It can be stored as YAML next to the node configuration.
type Calibration struct {
	Tag           string       `yaml:"version"`
	Rounds        uint64       `yaml:"hashRounds"`
	RefTimeIter   Cost         `yaml:"wasteRefTimeIter"`
	ProofSizeSome Cost         `yaml:"wasteProofSizeSome"`
	ProofSizeNone Cost         `yaml:"wasteProofSizeNone"`
	LimitsRead    inter.Weight `yaml:"readLimits"`
	EmptyIdle     inter.Weight `yaml:"emptyOnIdle"`
	Initialize    Cost         `yaml:"initializePallet"`
	ComputeSet    inter.Weight `yaml:"setCompute"`
	StorageSet    inter.Weight `yaml:"setStorage"`
}

// DefaultHashRounds is the number of digest updates per hash iteration the
// reference calibration was measured with.
const DefaultHashRounds = 80_000

// SubstrateWeights returns the reference calibration, measured on an
// i7-1165G7 @ 2.80GHz, with storage accesses priced by db.
func SubstrateWeights(db opera.DbWeight) *Calibration {
	return &Calibration{
		Tag:    "reference-2023-02",
		Rounds: DefaultHashRounds,
		RefTimeIter: Cost{
			Base:  inter.FromRefTime(1_470_000),
			Slope: inter.FromRefTime(7_696_066_000),
		},
		ProofSizeSome: Cost{
			Base:  inter.NewWeight(5_882_000, 990),
			Slope: inter.NewWeight(14_549_000, 1_489).SaturatingAdd(db.Reads(1)),
		},
		ProofSizeNone: Cost{
			Base:  inter.NewWeight(5_882_000, 990),
			Slope: inter.NewWeight(3_157_000, 1_489).SaturatingAdd(db.Reads(1)),
		},
		LimitsRead: inter.NewWeight(3_434_000, 998).SaturatingAdd(db.Reads(2)),
		EmptyIdle:  inter.FromRefTime(457_000),
		Initialize: Cost{
			Base:  inter.NewWeight(4_330_000, 1_489).SaturatingAdd(db.ReadsWrites(1, 1)),
			Slope: inter.FromRefTime(1_141_000).SaturatingAdd(db.Writes(1)),
		},
		ComputeSet: inter.FromRefTime(6_122_000).SaturatingAdd(db.ReadsWrites(1, 1)),
		StorageSet: inter.FromRefTime(6_122_000).SaturatingAdd(db.ReadsWrites(1, 1)),
	}
}

func (c *Calibration) WasteRefTimeIter() Cost    { return c.RefTimeIter }
func (c *Calibration) WasteProofSizeSome() Cost  { return c.ProofSizeSome }
func (c *Calibration) WasteProofSizeNone() Cost  { return c.ProofSizeNone }
func (c *Calibration) ReadLimits() inter.Weight  { return c.LimitsRead }
func (c *Calibration) EmptyOnIdle() inter.Weight { return c.EmptyIdle }
func (c *Calibration) InitializePallet() Cost    { return c.Initialize }
func (c *Calibration) SetCompute() inter.Weight  { return c.ComputeSet }
func (c *Calibration) SetStorage() inter.Weight  { return c.StorageSet }
func (c *Calibration) HashRounds() uint64        { return c.Rounds }
func (c *Calibration) Version() string           { return c.Tag }

// LoadCalibration reads a calibration from a YAML file.
func LoadCalibration(path string) (*Calibration, error) {
	raw, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read calibration %s: %w", path, err)
	}
	var c Calibration
	if err := yaml.Unmarshal(raw, &c); err != nil {
		return nil, fmt.Errorf("decode calibration %s: %w", path, err)
	}
	if c.Tag == "" {
		return nil, fmt.Errorf("%s: %w", path, ErrMissingVersion)
	}
	return &c, nil
}

// MarshalCalibration encodes w as YAML, in the layout LoadCalibration reads.
func MarshalCalibration(w WeightInfo) ([]byte, error) {
	c := Calibration{
		Tag:           w.Version(),
		Rounds:        w.HashRounds(),
		RefTimeIter:   w.WasteRefTimeIter(),
		ProofSizeSome: w.WasteProofSizeSome(),
		ProofSizeNone: w.WasteProofSizeNone(),
		LimitsRead:    w.ReadLimits(),
		EmptyIdle:     w.EmptyOnIdle(),
		Initialize:    w.InitializePallet(),
		ComputeSet:    w.SetCompute(),
		StorageSet:    w.SetStorage(),
	}
	return yaml.Marshal(&c)
}

// IntegrityTest checks once, at start-up, that every primitive used in a
// waste loop consumes something in its primary dimension.
func IntegrityTest(w WeightInfo) error {
	if w.WasteRefTimeIter().Slope.RefTime == 0 {
		return fmt.Errorf("wasteRefTimeIter refTime slope: %w", ErrZeroWeight)
	}
	if w.WasteProofSizeSome().Slope.ProofSize == 0 {
		return fmt.Errorf("wasteProofSizeSome proofSize slope: %w", ErrZeroWeight)
	}
	if w.WasteProofSizeNone().Slope.ProofSize == 0 {
		return fmt.Errorf("wasteProofSizeNone proofSize slope: %w", ErrZeroWeight)
	}
	if w.HashRounds() == 0 {
		return fmt.Errorf("hashRounds: %w", ErrZeroWeight)
	}
	return nil
}
