package core

import (
	"sync"

	"txindex/pkg/common"
)

// SyncIndex serialises every operation on a HybridIndex behind one
// table-wide lock. Searches take the same lock as inserts because they
// advance the shared counters.
type SyncIndex struct {
	mu      sync.Mutex
	idx     *HybridIndex
	journal Journal
	gen     uint64 // bumped by every accepted insert
}

// Journal receives every valid record before it is indexed.
type Journal interface {
	Append(r common.Record) error
}

func NewSyncIndex(idx *HybridIndex) *SyncIndex {
	return &SyncIndex{idx: idx}
}

// SetJournal makes later inserts write-ahead to j. Batches loaded with
// InsertBatch are not journaled.
func (s *SyncIndex) SetJournal(j Journal) {
	s.mu.Lock()
	s.journal = j
	s.mu.Unlock()
}

func (s *SyncIndex) Type() string { return s.idx.Type() }

func (s *SyncIndex) Insert(r common.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.journal != nil {
		if err := r.Validate(); err != nil {
			return err
		}
		if err := s.journal.Append(r); err != nil {
			return err
		}
	}
	if err := s.idx.Insert(r); err != nil {
		return err
	}
	s.gen++
	return nil
}

// InsertBatch inserts recs under one lock acquisition and returns how many
// were accepted. Invalid records are skipped.
func (s *SyncIndex) InsertBatch(recs []common.Record) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range recs {
		if s.idx.Insert(r) == nil {
			n++
		}
	}
	s.gen += uint64(n)
	return n
}

// Generation changes whenever an insert is accepted. A search result tagged
// with the current generation is still what Search would return.
func (s *SyncIndex) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

func (s *SyncIndex) Get(id string) (common.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Get(id)
}

func (s *SyncIndex) Search(origin, startDate, endDate string) []common.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Search(origin, startDate, endDate)
}

// SearchAt is Search plus the generation the result was taken at.
func (s *SyncIndex) SearchAt(origin, startDate, endDate string) ([]common.Record, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Search(origin, startDate, endDate), s.gen
}

func (s *SyncIndex) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Size()
}

func (s *SyncIndex) Summary() Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Summary()
}

func (s *SyncIndex) Stats() map[string]interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.idx.Stats()
}

func (s *SyncIndex) Comparisons() int64 { return s.idx.Comparisons() }

func (s *SyncIndex) Assignments() int64 { return s.idx.Assignments() }

func (s *SyncIndex) ResetCounters() { s.idx.ResetCounters() }
