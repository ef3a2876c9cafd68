package glutton

import (
	"fmt"

	"github.com/Fantom-foundation/lachesis-base/common/bigendian"
	"github.com/ethereum/go-ethereum/ethdb"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/rony4d/go-opera-glutton/inter"
)

const (
	// TrashDataSize is the size of every trash entry in bytes.
	TrashDataSize = 1024

	// MaxTrashDataEntries is the practical ceiling of the trash table. Bigger
	// tables still work, but the calibrated read cost was measured below this
	// size and may under-estimate the real cost of reads in a larger table.
	MaxTrashDataEntries = 65_000
)

var (
	computeKey    = []byte("glutton-compute")
	storageKey    = []byte("glutton-storage")
	trashCountKey = []byte("glutton-count")
	trashPrefix   = []byte("glutton-trash-")
)

// Limits is the configuration: which fraction of the remaining slot weight
// the governor consumes in each dimension. The zero value disables wasting.
//
// Both fractions are persisted under their own key, so setting one never
// depends on being able to read the other.
type Limits struct {
	Compute inter.Perbill
	Storage inter.Perbill
}

// Store keeps the pallet state in a key-value database.
type Store struct {
	db ethdb.KeyValueStore
}

// NewStore wraps db.
func NewStore(db ethdb.KeyValueStore) *Store {
	return &Store{db: db}
}

// Limits reads the configuration. A missing fraction reads as zero.
func (s *Store) Limits() (Limits, error) {
	compute, err := s.fraction(computeKey)
	if err != nil {
		return Limits{}, fmt.Errorf("compute: %w", err)
	}
	storage, err := s.fraction(storageKey)
	if err != nil {
		return Limits{}, fmt.Errorf("storage: %w", err)
	}
	return Limits{Compute: compute, Storage: storage}, nil
}

// SetLimits overwrites both fractions at once.
func (s *Store) SetLimits(l Limits) error {
	batch := s.db.NewBatch()
	if err := putFraction(batch, computeKey, l.Compute); err != nil {
		return err
	}
	if err := putFraction(batch, storageKey, l.Storage); err != nil {
		return err
	}
	return batch.Write()
}

// SetCompute overwrites the compute fraction.
func (s *Store) SetCompute(p inter.Perbill) error {
	return putFraction(s.db, computeKey, p)
}

// SetStorage overwrites the storage fraction.
func (s *Store) SetStorage(p inter.Perbill) error {
	return putFraction(s.db, storageKey, p)
}

func (s *Store) fraction(key []byte) (inter.Perbill, error) {
	raw, ok, err := s.get(key)
	if err != nil || !ok {
		return 0, err
	}
	var p inter.Perbill
	if err := rlp.DecodeBytes(raw, &p); err != nil {
		return 0, fmt.Errorf("decode %s: %w", key, err)
	}
	return p, nil
}

func putFraction(w ethdb.KeyValueWriter, key []byte, p inter.Perbill) error {
	raw, err := rlp.EncodeToBytes(p)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return w.Put(key, raw)
}

// TrashData reads trash entry i. The second return value reports whether the
// entry exists.
func (s *Store) TrashData(i uint32) ([]byte, bool, error) {
	return s.get(trashKey(i))
}

// InsertTrash writes trash entry i.
func (s *Store) InsertTrash(i uint32, data []byte) error {
	return s.db.Put(trashKey(i), data)
}

// TrashCount returns how many sequential trash entries, starting at key 0,
// are known to exist.
func (s *Store) TrashCount() (uint32, error) {
	raw, ok, err := s.get(trashCountKey)
	if err != nil || !ok {
		return 0, err
	}
	return bigendian.BytesToUint32(raw), nil
}

// InitializeTrash writes entries 0..count-1 and raises the trash count to
// count if it was lower. Entries beyond count are left alone.
func (s *Store) InitializeTrash(count uint32) error {
	prev, err := s.TrashCount()
	if err != nil {
		return err
	}

	batch := s.db.NewBatch()
	for i := uint32(0); i < count; i++ {
		if err := batch.Put(trashKey(i), trashBlob(byte(i))); err != nil {
			return err
		}
		if batch.ValueSize() >= ethdb.IdealBatchSize {
			if err := batch.Write(); err != nil {
				return err
			}
			batch.Reset()
		}
	}
	if count > prev {
		if err := batch.Put(trashCountKey, bigendian.Uint32ToBytes(count)); err != nil {
			return err
		}
	}
	return batch.Write()
}

func (s *Store) get(key []byte) ([]byte, bool, error) {
	ok, err := s.db.Has(key)
	if err != nil || !ok {
		return nil, false, err
	}
	raw, err := s.db.Get(key)
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func trashKey(i uint32) []byte {
	key := make([]byte, 0, len(trashPrefix)+4)
	key = append(key, trashPrefix...)
	return append(key, bigendian.Uint32ToBytes(i)...)
}

func trashBlob(fill byte) []byte {
	blob := make([]byte, TrashDataSize)
	for i := range blob {
		blob[i] = fill
	}
	return blob
}
