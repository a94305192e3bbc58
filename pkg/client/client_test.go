package client

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txindex/pkg/common"
	"txindex/pkg/config"
	"txindex/pkg/core"
	"txindex/pkg/network"
)

func startServer(t *testing.T) (string, *core.SyncIndex) {
	t.Helper()
	cfg := config.DefaultIndex()
	cfg.Hash = "java"
	idx := core.NewSyncIndex(core.NewHybridIndex(cfg))

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	srv := network.NewTCPServer(idx, nil, nil)
	go srv.Serve(ln)
	t.Cleanup(func() { srv.Close() })
	return ln.Addr().String(), idx
}

func TestDialInvalidAddr(t *testing.T) {
	_, err := Dial("invalid:invalid:invalid")
	require.Error(t, err)
}

func TestInsertGetSearch(t *testing.T) {
	addr, idx := startServer(t)
	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	recs := []common.Record{
		{ID: "T1", Amount: 10.5, Origin: "A", Destination: "X", Timestamp: "2024-03-01"},
		{ID: "T2", Amount: 20, Origin: "A", Destination: "Y", Timestamp: "2024-01-01"},
		{ID: "T3", Amount: 30, Origin: "B", Destination: "Z", Timestamp: "2024-02-01"},
	}
	for _, r := range recs {
		require.NoError(t, c.Insert(r))
	}
	assert.Equal(t, 3, idx.Size())

	got, err := c.Get("T1")
	require.NoError(t, err)
	assert.Equal(t, recs[0], got)

	_, err = c.Get("nope")
	assert.ErrorIs(t, err, ErrNotFound)

	found, err := c.Search("A", "2024-01-01", "2024-12-31")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "T2", found[0].ID)
	assert.Equal(t, "T1", found[1].ID)

	none, err := c.Search("C", "", "\xff")
	require.NoError(t, err)
	assert.Empty(t, none)

	byID, err := c.Query("SELECT * FROM transactions WHERE id = 'T3'")
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, "B", byID[0].Origin)

	stats, err := c.Stats()
	require.NoError(t, err)
	assert.Contains(t, stats, "size=3")
}

func TestServerErrors(t *testing.T) {
	addr, _ := startServer(t)
	c, err := Dial(addr)
	require.NoError(t, err)
	defer c.Close()

	err = c.Insert(common.Record{ID: "T1", Origin: "", Timestamp: "2024-01-01"})
	var se *ServerError
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Msg, "invalid record")

	_, err = c.Query("DROP TABLE transactions")
	require.True(t, errors.As(err, &se))
	assert.Contains(t, se.Msg, "syntax")
}
