package baseline

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txindex/pkg/common"
	"txindex/pkg/core"
)

var _ core.Index = (*BTreeIndex)(nil)

func TestBTreeSearchRange(t *testing.T) {
	bt := New(4)
	for i := 9; i >= 1; i-- {
		require.NoError(t, bt.Insert(common.Record{ID: fmt.Sprintf("a%d", i), Origin: "A", Timestamp: fmt.Sprintf("2024-0%d-01", i)}))
		require.NoError(t, bt.Insert(common.Record{ID: fmt.Sprintf("b%d", i), Origin: "B", Timestamp: fmt.Sprintf("2024-0%d-01", i)}))
	}

	got := bt.Search("A", "2024-02-01", "2024-04-01")
	require.Len(t, got, 3)
	assert.Equal(t, "a2", got[0].ID)
	assert.Equal(t, "a4", got[2].ID)

	assert.Empty(t, bt.Search("C", "", "\xff"))
	assert.Len(t, bt.Search("B", "", "\xff"), 9)
	assert.Equal(t, 18, bt.Size())
}

func TestBTreeKeepsDuplicateTimestamps(t *testing.T) {
	bt := New(0)
	require.NoError(t, bt.Insert(common.Record{ID: "t1", Origin: "A", Timestamp: "2024-01-01"}))
	require.NoError(t, bt.Insert(common.Record{ID: "t2", Origin: "A", Timestamp: "2024-01-01"}))

	got := bt.Search("A", "2024-01-01", "2024-01-01")
	require.Len(t, got, 2)
	assert.Equal(t, "t1", got[0].ID)
	assert.Equal(t, "t2", got[1].ID)
}

func TestBTreeGet(t *testing.T) {
	bt := New(DefaultDegree)
	first := common.Record{ID: "t1", Amount: 1, Origin: "A", Timestamp: "2024-01-01"}
	require.NoError(t, bt.Insert(first))
	require.NoError(t, bt.Insert(common.Record{ID: "t1", Amount: 2, Origin: "B", Timestamp: "2024-01-02"}))

	got, ok := bt.Get("t1")
	require.True(t, ok)
	assert.Equal(t, first, got)

	_, ok = bt.Get("missing")
	assert.False(t, ok)
	assert.Equal(t, 2, bt.Size())
	assert.Equal(t, 2, bt.Len())
}

func TestBTreeRejectsInvalid(t *testing.T) {
	bt := New(DefaultDegree)
	assert.ErrorIs(t, bt.Insert(common.Record{ID: "x"}), common.ErrInvalidRecord)
	assert.Zero(t, bt.Size())
}
