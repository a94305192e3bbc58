// Package baseline provides an ordered reference index over a B-tree. It
// keeps every record, including those sharing an origin and timestamp, and
// is used to compare the hybrid index against a conventional structure.
package baseline

import (
	"sync"

	"github.com/google/btree"

	"txindex/pkg/common"
)

const DefaultDegree = 32

// originItem orders records by origin, then timestamp, then id.
type originItem struct {
	rec common.Record
}

func (i originItem) Less(than btree.Item) bool {
	o := than.(originItem).rec
	if i.rec.Origin != o.Origin {
		return i.rec.Origin < o.Origin
	}
	if i.rec.Timestamp != o.Timestamp {
		return i.rec.Timestamp < o.Timestamp
	}
	return i.rec.ID < o.ID
}

type idItem struct {
	rec common.Record
}

func (i idItem) Less(than btree.Item) bool {
	return i.rec.ID < than.(idItem).rec.ID
}

type BTreeIndex struct {
	byOrigin *btree.BTree
	byID     *btree.BTree
	lock     sync.RWMutex
	size     int
}

func New(degree int) *BTreeIndex {
	if degree < 2 {
		degree = DefaultDegree
	}
	return &BTreeIndex{
		byOrigin: btree.New(degree),
		byID:     btree.New(degree),
	}
}

func (bt *BTreeIndex) Type() string { return "BTree" }

func (bt *BTreeIndex) Insert(r common.Record) error {
	if err := r.Validate(); err != nil {
		return err
	}
	bt.lock.Lock()
	defer bt.lock.Unlock()

	bt.byOrigin.ReplaceOrInsert(originItem{rec: r})
	if bt.byID.Get(idItem{rec: r}) == nil {
		bt.byID.ReplaceOrInsert(idItem{rec: r})
	}
	bt.size++
	return nil
}

// Get returns the first record inserted under id.
func (bt *BTreeIndex) Get(id string) (common.Record, bool) {
	bt.lock.RLock()
	defer bt.lock.RUnlock()

	res := bt.byID.Get(idItem{rec: common.Record{ID: id}})
	if res == nil {
		return common.Record{}, false
	}
	return res.(idItem).rec, true
}

// Search returns origin's records with start <= timestamp <= end, ordered
// by timestamp then id.
func (bt *BTreeIndex) Search(origin, start, end string) []common.Record {
	bt.lock.RLock()
	defer bt.lock.RUnlock()

	out := []common.Record{}
	pivot := originItem{rec: common.Record{Origin: origin, Timestamp: start}}
	bt.byOrigin.AscendGreaterOrEqual(pivot, func(i btree.Item) bool {
		r := i.(originItem).rec
		if r.Origin != origin || r.Timestamp > end {
			return false
		}
		out = append(out, r)
		return true
	})
	return out
}

// Size counts accepted inserts.
func (bt *BTreeIndex) Size() int {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	return bt.size
}

// Len is the number of distinct (origin, timestamp, id) entries.
func (bt *BTreeIndex) Len() int {
	bt.lock.RLock()
	defer bt.lock.RUnlock()
	return bt.byOrigin.Len()
}
