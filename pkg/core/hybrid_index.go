package core

import (
	"math"

	"txindex/pkg/common"
	"txindex/pkg/config"
	"txindex/pkg/core/structure"
	"txindex/pkg/core/tree"
	"txindex/pkg/logger"
	"txindex/pkg/monitor"
)

// HybridIndex indexes records by id and by origin over one slot array.
//
// The by-id index chains records at hash(id). The by-origin index places a
// record directly at one of the quadratic offsets of hash(origin), escalates
// same-origin collisions into an AVL bucket, and turns that bucket into a
// Red-Black tree once its height passes MaxAVLHeight. Both indices share the
// table and the hasher, so one index's insert may convert or overwrite a slot
// the other one filled.
//
// A HybridIndex is not safe for concurrent use.
type HybridIndex struct {
	table   []slot
	size    int
	cfg     config.IndexConfig
	hash    Hasher
	ops     monitor.OpCounters
	ids     *structure.BloomFilter
	log     logger.Logger
	resizes int
}

type Option func(*HybridIndex)

// WithHasher overrides the hasher named in the config.
func WithHasher(h Hasher) Option {
	return func(hi *HybridIndex) { hi.hash = h }
}

func WithLogger(l logger.Logger) Option {
	return func(hi *HybridIndex) { hi.log = l }
}

func NewHybridIndex(cfg config.IndexConfig, opts ...Option) *HybridIndex {
	cfg = cfg.Normalize()
	hi := &HybridIndex{
		table: make([]slot, cfg.InitialCapacity),
		cfg:   cfg,
		hash:  HasherByName(cfg.Hash),
		ids:   newIDFilter(cfg.InitialCapacity),
		log:   logger.Nop,
	}
	for _, opt := range opts {
		opt(hi)
	}
	return hi
}

// NewDefaultHybridIndex returns an index with the stock parameters.
func NewDefaultHybridIndex(opts ...Option) *HybridIndex {
	return NewHybridIndex(config.DefaultIndex(), opts...)
}

func newIDFilter(capacity int) *structure.BloomFilter {
	return structure.NewBloomFilter(uint(capacity), 0.01)
}

func (hi *HybridIndex) Type() string { return "Hybrid" }

func (hi *HybridIndex) Size() int { return hi.size }

func (hi *HybridIndex) Capacity() int { return len(hi.table) }

// Resizes is the number of times the table has grown.
func (hi *HybridIndex) Resizes() int { return hi.resizes }

func (hi *HybridIndex) Comparisons() int64 { return hi.ops.Comparisons() }

func (hi *HybridIndex) Assignments() int64 { return hi.ops.Assignments() }

func (hi *HybridIndex) ResetCounters() { hi.ops.Reset() }

func (hi *HybridIndex) slotFor(key string) int {
	return int(hi.hash(key) % uint64(len(hi.table)))
}

// Insert indexes r by id and by origin. Records without an id, origin or
// timestamp are rejected with common.ErrInvalidRecord.
func (hi *HybridIndex) Insert(r common.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	hi.put(r)
	return nil
}

func (hi *HybridIndex) put(r common.Record) {
	if float64(hi.size) >= float64(len(hi.table))*hi.cfg.LoadFactor {
		hi.resize(len(hi.table) * 2)
	}
	hi.indexByID(r)
	hi.indexByOrigin(r)
	hi.ids.Add(r.ID)
	hi.size++
}

func (hi *HybridIndex) indexByID(r common.Record) {
	idx := hi.slotFor(r.ID)
	s := hi.table[idx]
	hi.ops.Compare(1)

	switch s.kind {
	case SlotEmpty:
		hi.table[idx] = chainSlot(r)
		hi.ops.Assign(2)
	case SlotSingle:
		hi.table[idx] = chainSlot(s.rec, r)
		hi.ops.Assign(3)
	case SlotChain:
		s.chain = append(s.chain, r)
		hi.table[idx] = s
		hi.ops.Assign(1)
	}
	// tree slots belong to the by-origin index and are left alone
}

func (hi *HybridIndex) indexByOrigin(r common.Record) {
	base := hi.slotFor(r.Origin)
	capacity := len(hi.table)

	for i := 0; i <= hi.cfg.MaxProbes; i++ {
		idx := (base + i*i) % capacity
		s := hi.table[idx]
		hi.ops.Compare(1)

		switch s.kind {
		case SlotEmpty:
			hi.table[idx] = singleSlot(r)
			hi.ops.Assign(1)
			return
		case SlotSingle:
			hi.ops.Compare(1)
			if s.rec.Origin == r.Origin {
				t := newRecordAVL()
				t.Insert(s.rec)
				t.Insert(r)
				hi.table[idx] = treeSlot(t)
				hi.ops.Assign(3)
				hi.checkHeight(idx)
				return
			}
		case SlotAVL, SlotRedBlack:
			if hi.ownsOrigin(s, r.Origin) {
				s.tree.Insert(r)
				hi.ops.Assign(1)
				hi.checkHeight(idx)
				return
			}
		}
		// chains and foreign buckets: keep probing
	}

	hi.migrateOrigin(r)
}

// ownsOrigin trusts the first in-order record as the bucket's origin.
func (hi *HybridIndex) ownsOrigin(s slot, origin string) bool {
	hi.ops.Compare(1)
	first, ok := s.tree.Min()
	return ok && first.Origin == origin
}

// checkHeight converts an AVL bucket taller than MaxAVLHeight into a
// Red-Black tree holding the same records.
func (hi *HybridIndex) checkHeight(idx int) {
	s := hi.table[idx]
	if s.kind != SlotAVL || s.tree.Height() <= hi.cfg.MaxAVLHeight {
		return
	}
	rb := tree.Rebuild[common.Record, string](s.tree, tree.KindRedBlack, common.TimestampKey)
	hi.table[idx] = treeSlot(rb)
	hi.ops.Assign(int64(rb.Size()) + 1)
	hi.log.Debug("bucket promoted to red-black", "slot", idx, "records", rb.Size(), "avl_height", s.tree.Height())
}

// migrateOrigin is the fallback once every probe offset is taken: it pulls
// all single records of r's origin out of the table, puts them together with
// r into one AVL bucket and stores that bucket at hash(origin), replacing
// whatever the slot held before.
func (hi *HybridIndex) migrateOrigin(r common.Record) {
	collected := []common.Record{r}
	for i := range hi.table {
		s := hi.table[i]
		hi.ops.Compare(1)
		if s.kind == SlotSingle && s.rec.Origin == r.Origin {
			collected = append(collected, s.rec)
			hi.table[i] = slot{}
			hi.ops.Assign(1)
		}
	}

	t := newRecordAVL()
	for _, rec := range collected {
		t.Insert(rec)
		hi.ops.Assign(1)
	}

	idx := hi.slotFor(r.Origin)
	if prev := hi.table[idx]; prev.kind != SlotEmpty {
		hi.log.Warn("origin fallback overwrote a slot", "slot", idx, "origin", r.Origin,
			"previous", prev.kind.String(), "displaced", prev.count())
	}
	hi.table[idx] = treeSlot(t)
	hi.ops.Assign(1)
}

// Search returns the records of origin whose timestamp lies in
// [startDate, endDate], bucket by bucket in probe order and ascending
// timestamp within a bucket. The result is a fresh slice.
func (hi *HybridIndex) Search(origin, startDate, endDate string) []common.Record {
	result := []common.Record{}
	base := hi.slotFor(origin)
	capacity := len(hi.table)

	for i := 0; i <= hi.cfg.MaxProbes; i++ {
		idx := (base + i*i) % capacity
		s := hi.table[idx]
		hi.ops.Compare(1)

		switch s.kind {
		case SlotSingle:
			hi.ops.Compare(1)
			if s.rec.Origin == origin && hi.inRange(s.rec.Timestamp, startDate, endDate) {
				result = append(result, s.rec)
			}
		case SlotAVL, SlotRedBlack:
			if hi.ownsOrigin(s, origin) {
				s.tree.InOrder(func(rec common.Record) {
					if hi.inRange(rec.Timestamp, startDate, endDate) {
						result = append(result, rec)
						hi.ops.Compare(1)
					}
				})
			}
		}
	}
	return result
}

func (hi *HybridIndex) inRange(ts, start, end string) bool {
	hi.ops.Compare(2)
	return common.InRange(ts, start, end)
}

// Get returns the first record chained under id.
func (hi *HybridIndex) Get(id string) (common.Record, bool) {
	if !hi.ids.Contains(id) {
		return common.Record{}, false
	}
	s := hi.table[hi.slotFor(id)]
	hi.ops.Compare(1)
	switch s.kind {
	case SlotChain:
		for _, r := range s.chain {
			hi.ops.Compare(1)
			if r.ID == id {
				return r, true
			}
		}
	case SlotSingle:
		hi.ops.Compare(1)
		if s.rec.ID == id {
			return s.rec, true
		}
	}
	return common.Record{}, false
}

// replayKey identifies a record during resize. The amount is compared by its
// bits so a NaN amount still matches itself.
type replayKey struct {
	id, origin, destination, timestamp string
	amount                             uint64
}

func keyOf(r common.Record) replayKey {
	return replayKey{r.ID, r.Origin, r.Destination, r.Timestamp, math.Float64bits(r.Amount)}
}

// resize replays every live record into a fresh table of newCapacity.
// Origin buckets go first so the record that won a timestamp keeps winning
// it; chains follow. A record reachable from both indices is replayed once.
// The record count is carried over so Size keeps counting accepted inserts.
func (hi *HybridIndex) resize(newCapacity int) {
	old := hi.table
	accepted := hi.size

	hi.table = make([]slot, newCapacity)
	hi.ids = newIDFilter(newCapacity)
	hi.size = 0
	hi.resizes++
	hi.log.Debug("resizing table", "from", len(old), "to", newCapacity, "records", accepted)

	seen := make(map[replayKey]struct{}, accepted)
	replay := func(r common.Record) {
		k := keyOf(r)
		if _, dup := seen[k]; dup {
			return
		}
		seen[k] = struct{}{}
		hi.put(r)
	}
	for _, s := range old {
		if s.kind != SlotChain {
			s.each(replay)
		}
	}
	for _, s := range old {
		if s.kind == SlotChain {
			s.each(replay)
		}
	}

	hi.size = accepted
}
