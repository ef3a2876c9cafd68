package glutton

import (
	"bytes"
	"testing"

	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/stretchr/testify/require"

	"github.com/rony4d/go-opera-glutton/inter"
)

func TestStore_Limits(t *testing.T) {
	require := require.New(t)
	s := NewStore(memorydb.New())

	l, err := s.Limits()
	require.NoError(err)
	require.Equal(Limits{}, l, "missing record reads as zero")

	want := Limits{Compute: inter.FromPercent(40), Storage: inter.FromParts(1)}
	require.NoError(s.SetLimits(want))
	l, err = s.Limits()
	require.NoError(err)
	require.Equal(want, l)
}

// TestStore_LimitsIndependent: each fraction is written without reading
// the other one.
func TestStore_LimitsIndependent(t *testing.T) {
	require := require.New(t)
	db := memorydb.New()
	s := NewStore(db)

	require.NoError(db.Put(storageKey, []byte{0xff, 0x01}))
	require.NoError(s.SetCompute(inter.FromPercent(30)))
	_, err := s.Limits()
	require.Error(err)

	require.NoError(s.SetStorage(inter.FromPercent(20)))
	l, err := s.Limits()
	require.NoError(err)
	require.Equal(Limits{Compute: inter.FromPercent(30), Storage: inter.FromPercent(20)}, l)

	require.NoError(s.SetCompute(0))
	l, err = s.Limits()
	require.NoError(err)
	require.Equal(Limits{Storage: inter.FromPercent(20)}, l)
}

func TestStore_TrashData(t *testing.T) {
	s := NewStore(memorydb.New())

	_, ok, err := s.TrashData(7)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, s.InsertTrash(7, []byte{1, 2, 3}))
	data, ok, err := s.TrashData(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, data)

	count, err := s.TrashCount()
	require.NoError(t, err)
	require.Zero(t, count, "a single insert does not count as initialization")
}

// TestStore_InitializeTrashTwice: initializing with 5 then 3 entries keeps
// all five, and only the first three are rewritten by the second call.
func TestStore_InitializeTrashTwice(t *testing.T) {
	require := require.New(t)
	s := NewStore(memorydb.New())

	require.NoError(s.InitializeTrash(5))
	marker := bytes.Repeat([]byte{0xee}, TrashDataSize)
	require.NoError(s.InsertTrash(1, marker))
	require.NoError(s.InsertTrash(3, marker))

	require.NoError(s.InitializeTrash(3))

	count, err := s.TrashCount()
	require.NoError(err)
	require.Equal(uint32(5), count)

	for i := uint32(0); i < 5; i++ {
		data, ok, err := s.TrashData(i)
		require.NoError(err)
		require.True(ok, "entry %d", i)
		require.Len(data, TrashDataSize)
		if i == 3 {
			require.Equal(marker, data, "entry above the second count is untouched")
		} else {
			require.Equal(trashBlob(byte(i)), data, "entry %d", i)
		}
	}
	_, ok, err := s.TrashData(5)
	require.NoError(err)
	require.False(ok)
}

// TestStore_InitializeTrashLarge crosses the batch flush threshold.
func TestStore_InitializeTrashLarge(t *testing.T) {
	s := NewStore(memorydb.New())
	const n = 300 // ~300 KiB, above ethdb.IdealBatchSize

	require.NoError(t, s.InitializeTrash(n))
	count, err := s.TrashCount()
	require.NoError(t, err)
	require.Equal(t, uint32(n), count)

	for _, i := range []uint32{0, 99, 100, 255, 256, n - 1} {
		data, ok, err := s.TrashData(i)
		require.NoError(t, err)
		require.True(t, ok, "entry %d", i)
		require.Equal(t, trashBlob(byte(i)), data)
	}
}

func TestStore_InitializeTrashZero(t *testing.T) {
	s := NewStore(memorydb.New())
	require.NoError(t, s.InitializeTrash(0))

	count, err := s.TrashCount()
	require.NoError(t, err)
	require.Zero(t, count)
}
