package core

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txindex/pkg/common"
)

var (
	_ Index        = (*HybridIndex)(nil)
	_ Instrumented = (*HybridIndex)(nil)
	_ Index        = (*SyncIndex)(nil)
	_ Instrumented = (*SyncIndex)(nil)
)

func TestSyncIndexConcurrentInserts(t *testing.T) {
	origins := []string{"A", "B", "C", "D"}
	s := NewSyncIndex(NewHybridIndex(smallConfig(32), WithHasher(splitHasher(origins...))))

	var wg sync.WaitGroup
	for w, o := range origins {
		wg.Add(1)
		go func(w int, origin string) {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				_ = s.Insert(rec(fmt.Sprintf("w%d-%d", w, i), origin, fmt.Sprintf("2024-%05d", i)))
				s.Search(origin, minDate, maxDate)
			}
		}(w, o)
	}
	wg.Wait()

	assert.Equal(t, 1000, s.Size())
	for _, o := range origins {
		assert.Len(t, s.Search(o, minDate, maxDate), 250)
	}
	assert.Equal(t, 1000, s.Summary().Size)
}

func TestSyncIndexInsertBatch(t *testing.T) {
	s := NewSyncIndex(NewDefaultHybridIndex())
	n := s.InsertBatch([]common.Record{
		rec("t1", "A", "2024-01-01"),
		rec("", "A", "2024-01-02"),
		rec("t3", "B", "2024-01-03"),
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, s.Size())

	got, ok := s.Get("t3")
	require.True(t, ok)
	assert.Equal(t, "B", got.Origin)
	assert.Equal(t, "Hybrid", s.Type())
}

type memJournal struct {
	recs []common.Record
	err  error
}

func (j *memJournal) Append(r common.Record) error {
	if j.err != nil {
		return j.err
	}
	j.recs = append(j.recs, r)
	return nil
}

func TestSyncIndexJournalsValidInserts(t *testing.T) {
	s := NewSyncIndex(NewHybridIndex(smallConfig(32), WithHasher(splitHasher("A"))))
	j := &memJournal{}
	s.SetJournal(j)

	require.NoError(t, s.Insert(rec("t1", "A", "2024-01-01")))
	require.ErrorIs(t, s.Insert(rec("t2", "", "2024-01-02")), common.ErrInvalidRecord)
	require.Len(t, j.recs, 1)
	assert.Equal(t, "t1", j.recs[0].ID)

	j.err = fmt.Errorf("disk full")
	assert.Error(t, s.Insert(rec("t3", "A", "2024-01-03")))
	assert.Equal(t, 1, s.Size())
}

func TestSyncIndexGeneration(t *testing.T) {
	s := NewSyncIndex(NewHybridIndex(smallConfig(32), WithHasher(splitHasher("A"))))
	assert.Zero(t, s.Generation())

	require.NoError(t, s.Insert(rec("t1", "A", "2024-01-01")))
	recs, gen := s.SearchAt("A", minDate, maxDate)
	assert.Len(t, recs, 1)
	assert.Equal(t, uint64(1), gen)

	require.Error(t, s.Insert(rec("", "A", "2024-01-02")))
	assert.Equal(t, uint64(1), s.Generation())

	s.InsertBatch([]common.Record{rec("t2", "A", "2024-01-02"), rec("t3", "", "2024-01-03")})
	assert.Equal(t, uint64(2), s.Generation())
}
