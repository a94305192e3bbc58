package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"txindex/pkg/config"
	"txindex/pkg/logger"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	cfg := config.DefaultIndex()
	cfg.Hash = "java"
	var out bytes.Buffer
	return NewREPL(cfg, logger.Nop, &out), &out
}

func TestREPLRequiresData(t *testing.T) {
	r, out := newTestREPL(t)
	require.NoError(t, r.Exec("search A 2024-01-01 2024-12-31"))
	assert.Contains(t, out.String(), "Load a dataset first")
}

func TestREPLInsertSearchGet(t *testing.T) {
	r, out := newTestREPL(t)
	require.NoError(t, r.Exec("insert T1,10.00,A,X,2024-01-01"))
	require.NoError(t, r.Exec("insert T2,20.00,A,Y,2024-02-01"))
	require.NoError(t, r.Exec("insert T3,30.00,B,Z,2024-03-01"))
	assert.Contains(t, out.String(), "OK (size 3)")

	out.Reset()
	require.NoError(t, r.Exec("search A 2024-01-01 2024-12-31"))
	assert.Contains(t, out.String(), "Found 2 transactions")

	out.Reset()
	require.NoError(t, r.Exec("get T3"))
	assert.Contains(t, out.String(), "T3")

	out.Reset()
	require.NoError(t, r.Exec("get nope"))
	assert.Contains(t, out.String(), "Not found: nope")

	out.Reset()
	require.NoError(t, r.Exec("SELECT * FROM transactions WHERE origin = 'A' LIMIT 1"))
	assert.Contains(t, out.String(), "1 rows")
}

func TestREPLGenExportImport(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "tx.csv")
	dbPath := filepath.Join(dir, "tx.db")

	r, out := newTestREPL(t)
	require.NoError(t, r.Exec("gen "+csvPath+" 200 0.5 7"))
	assert.Contains(t, out.String(), "Loaded 200 transactions")

	require.NoError(t, r.Exec("export "+dbPath))
	assert.Contains(t, out.String(), "Archived 200 transactions")

	fresh, out2 := newTestREPL(t)
	require.NoError(t, fresh.Exec("import "+dbPath))
	assert.Contains(t, out2.String(), "Loaded 200 transactions")

	require.NoError(t, fresh.Exec("load "+csvPath))
	assert.Equal(t, 200, len(fresh.records))
}

func TestREPLUnknownAndExit(t *testing.T) {
	r, out := newTestREPL(t)
	require.NoError(t, r.Exec("frobnicate"))
	assert.Contains(t, out.String(), "Unknown command")
	assert.ErrorIs(t, r.Exec("exit"), errExit)
}
