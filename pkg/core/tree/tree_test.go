package tree

import (
	"fmt"
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entry struct {
	ts  string
	tag string
}

func entryKey(e entry) string { return e.ts }

func treeGen(kind Kind) BalancedTree[entry] {
	if kind == KindRedBlack {
		return NewRedBlack[entry, string](entryKey)
	}
	return NewAVL[entry, string](entryKey)
}

func ts(i int) string {
	return fmt.Sprintf("2024-%06d", i)
}

func collect(bt BalancedTree[entry]) []entry {
	var out []entry
	bt.InOrder(func(e entry) { out = append(out, e) })
	return out
}

var kinds = []Kind{KindAVL, KindRedBlack}

func TestEmptyTree(t *testing.T) {
	for _, k := range kinds {
		bt := treeGen(k)
		assert.Equal(t, -1, bt.Height(), k.String())
		assert.Equal(t, 0, bt.Size(), k.String())
		assert.True(t, bt.IsEmpty(), k.String())
		assert.False(t, bt.Remove(entry{ts: "x"}), k.String())
		assert.False(t, bt.Find(entry{ts: "x"}), k.String())
		_, ok := bt.Min()
		assert.False(t, ok, k.String())
		require.NoError(t, Verify(bt), k.String())
	}
}

func TestBasics(t *testing.T) {
	for _, k := range kinds {
		bt := treeGen(k)
		require.True(t, bt.Insert(entry{ts: "b"}))
		require.True(t, bt.Insert(entry{ts: "a"}))
		require.True(t, bt.Insert(entry{ts: "c"}))
		assert.Equal(t, 3, bt.Size(), k.String())
		assert.Equal(t, 1, bt.Height(), k.String())
		assert.True(t, bt.Find(entry{ts: "a"}), k.String())
		min, ok := bt.Min()
		require.True(t, ok)
		assert.Equal(t, "a", min.ts, k.String())

		assert.True(t, bt.Remove(entry{ts: "b"}), k.String())
		assert.False(t, bt.Find(entry{ts: "b"}), k.String())
		assert.Equal(t, 2, bt.Size(), k.String())
		require.NoError(t, Verify(bt), k.String())
	}
}

func TestDuplicateKeyIsDropped(t *testing.T) {
	for _, k := range kinds {
		bt := treeGen(k)
		require.True(t, bt.Insert(entry{ts: "2024-01-01", tag: "first"}))
		assert.False(t, bt.Insert(entry{ts: "2024-01-01", tag: "second"}), k.String())
		assert.Equal(t, 1, bt.Size(), k.String())
		got := collect(bt)
		require.Len(t, got, 1)
		assert.Equal(t, "first", got[0].tag, k.String())
	}
}

func TestInOrderAscending(t *testing.T) {
	for _, k := range kinds {
		bt := treeGen(k)
		perm := rand.New(rand.NewSource(7)).Perm(500)
		for _, i := range perm {
			bt.Insert(entry{ts: ts(i)})
		}
		got := collect(bt)
		require.Len(t, got, 500)
		assert.True(t, sort.SliceIsSorted(got, func(i, j int) bool { return got[i].ts < got[j].ts }), k.String())
	}
}

func TestSequentialInsertStaysBalanced(t *testing.T) {
	for _, k := range kinds {
		bt := treeGen(k)
		for i := 0; i < 1023; i++ {
			bt.Insert(entry{ts: ts(i)})
			require.NoError(t, Verify(bt), "%s after insert %d", k, i)
		}
		// AVL height bound ~1.44 log2(n), RB bound 2 log2(n+1)
		assert.LessOrEqual(t, bt.Height(), 20, k.String())
	}
}

func TestRandomInsertRemoveKeepsInvariants(t *testing.T) {
	for _, k := range kinds {
		rng := rand.New(rand.NewSource(42))
		bt := treeGen(k)
		present := map[string]bool{}
		for step := 0; step < 3000; step++ {
			key := ts(rng.Intn(400))
			if rng.Intn(3) == 0 {
				removed := bt.Remove(entry{ts: key})
				assert.Equal(t, present[key], removed, "%s remove %s", k, key)
				delete(present, key)
			} else {
				inserted := bt.Insert(entry{ts: key})
				assert.Equal(t, !present[key], inserted, "%s insert %s", k, key)
				present[key] = true
			}
			require.NoError(t, Verify(bt), "%s step %d", k, step)
			require.Equal(t, len(present), bt.Size())
		}
		for key := range present {
			assert.True(t, bt.Find(entry{ts: key}))
		}
	}
}

func TestRemoveAllThenReuse(t *testing.T) {
	for _, k := range kinds {
		bt := treeGen(k)
		for i := 0; i < 64; i++ {
			bt.Insert(entry{ts: ts(i)})
		}
		for _, i := range rand.New(rand.NewSource(3)).Perm(64) {
			require.True(t, bt.Remove(entry{ts: ts(i)}))
			require.NoError(t, Verify(bt))
		}
		assert.True(t, bt.IsEmpty(), k.String())
		assert.Equal(t, -1, bt.Height(), k.String())
		for i := 0; i < 10; i++ {
			bt.Insert(entry{ts: ts(i)})
		}
		assert.Equal(t, 10, bt.Size())
		require.NoError(t, Verify(bt))
	}
}

func TestRebuildPreservesOrder(t *testing.T) {
	src := treeGen(KindAVL)
	for _, i := range rand.New(rand.NewSource(11)).Perm(300) {
		src.Insert(entry{ts: ts(i), tag: fmt.Sprint(i)})
	}
	dst := Rebuild[entry, string](src, KindRedBlack, entryKey)
	assert.Equal(t, KindRedBlack, dst.Kind())
	assert.Equal(t, collect(src), collect(dst))
	require.NoError(t, Verify(dst))
}

func TestAVLHeightGrowth(t *testing.T) {
	bt := treeGen(KindAVL)
	// a perfect AVL of height h holds at most 2^(h+1)-1 nodes
	for i := 0; i < 2047; i++ {
		bt.Insert(entry{ts: ts(i)})
	}
	assert.Equal(t, 10, bt.Height())
	bt.Insert(entry{ts: ts(2047)})
	assert.Equal(t, 11, bt.Height())
}
