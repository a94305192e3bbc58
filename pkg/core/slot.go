package core

import (
	"txindex/pkg/common"
	"txindex/pkg/core/tree"
)

// SlotKind tags the representation held by one cell of the table.
type SlotKind uint8

const (
	SlotEmpty SlotKind = iota
	SlotSingle
	SlotChain    // by-id index only
	SlotAVL      // by-origin index only
	SlotRedBlack // by-origin index only, after the AVL grew too tall
)

func (k SlotKind) String() string {
	switch k {
	case SlotEmpty:
		return "Empty"
	case SlotSingle:
		return "Single"
	case SlotChain:
		return "Chain"
	case SlotAVL:
		return "AVL"
	case SlotRedBlack:
		return "RedBlack"
	}
	return "Unknown"
}

// slot is a tagged variant; only the field matching kind is meaningful.
// Mutations store a whole new slot value at the table index.
type slot struct {
	kind  SlotKind
	rec   common.Record
	chain []common.Record
	tree  tree.BalancedTree[common.Record]
}

func singleSlot(r common.Record) slot {
	return slot{kind: SlotSingle, rec: r}
}

func chainSlot(recs ...common.Record) slot {
	return slot{kind: SlotChain, chain: recs}
}

func treeSlot(t tree.BalancedTree[common.Record]) slot {
	kind := SlotAVL
	if t.Kind() == tree.KindRedBlack {
		kind = SlotRedBlack
	}
	return slot{kind: kind, tree: t}
}

func (s slot) isTree() bool {
	return s.kind == SlotAVL || s.kind == SlotRedBlack
}

// each visits every record held by the slot: chain order for chains,
// ascending timestamp for trees.
func (s slot) each(visit func(common.Record)) {
	switch s.kind {
	case SlotSingle:
		visit(s.rec)
	case SlotChain:
		for _, r := range s.chain {
			visit(r)
		}
	case SlotAVL, SlotRedBlack:
		s.tree.InOrder(visit)
	}
}

// count is the number of records the slot holds.
func (s slot) count() int {
	switch s.kind {
	case SlotSingle:
		return 1
	case SlotChain:
		return len(s.chain)
	case SlotAVL, SlotRedBlack:
		return s.tree.Size()
	}
	return 0
}

func newRecordAVL() tree.BalancedTree[common.Record] {
	return tree.NewAVL[common.Record, string](common.TimestampKey)
}
