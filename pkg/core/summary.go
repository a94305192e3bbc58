package core

import (
	"fmt"
	"strings"
)

// Summary is a point-in-time census of the table.
type Summary struct {
	Capacity    int
	Size        int
	LoadFactor  float64
	Resizes     int
	Empty       int
	Single      int
	Chain       int
	AVL         int
	RedBlack    int
	TallestTree int
	Comparisons int64
	Assignments int64
}

func (hi *HybridIndex) Summary() Summary {
	sum := Summary{
		Capacity:    len(hi.table),
		Size:        hi.size,
		Resizes:     hi.resizes,
		TallestTree: -1,
		Comparisons: hi.ops.Comparisons(),
		Assignments: hi.ops.Assignments(),
	}
	if sum.Capacity > 0 {
		sum.LoadFactor = float64(sum.Size) / float64(sum.Capacity)
	}
	for _, s := range hi.table {
		switch s.kind {
		case SlotEmpty:
			sum.Empty++
		case SlotSingle:
			sum.Single++
		case SlotChain:
			sum.Chain++
		case SlotAVL:
			sum.AVL++
		case SlotRedBlack:
			sum.RedBlack++
		}
		if s.isTree() && s.tree.Height() > sum.TallestTree {
			sum.TallestTree = s.tree.Height()
		}
	}
	return sum
}

// Stats flattens the summary for JSON transports.
func (hi *HybridIndex) Stats() map[string]interface{} {
	sum := hi.Summary()
	return map[string]interface{}{
		"capacity":       sum.Capacity,
		"size":           sum.Size,
		"load_factor":    sum.LoadFactor,
		"resizes":        sum.Resizes,
		"slots_empty":    sum.Empty,
		"slots_single":   sum.Single,
		"slots_chain":    sum.Chain,
		"slots_avl":      sum.AVL,
		"slots_redblack": sum.RedBlack,
		"tallest_tree":   sum.TallestTree,
		"comparisons":    sum.Comparisons,
		"assignments":    sum.Assignments,
		"bloom":          hi.ids.Stats(),
		"mode":           "Hybrid (chaining + quadratic probing + AVL/RB buckets)",
	}
}

func (s Summary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "capacity=%d size=%d load=%.2f resizes=%d\n", s.Capacity, s.Size, s.LoadFactor, s.Resizes)
	fmt.Fprintf(&b, "slots: empty=%d single=%d chain=%d avl=%d redblack=%d tallest=%d\n",
		s.Empty, s.Single, s.Chain, s.AVL, s.RedBlack, s.TallestTree)
	fmt.Fprintf(&b, "ops: comparisons=%d assignments=%d", s.Comparisons, s.Assignments)
	return b.String()
}
