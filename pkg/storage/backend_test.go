package storage

import (
	"path/filepath"
	"testing"

	"txindex/pkg/common"
)

func openTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func TestArchiveSaveLoadInOrder(t *testing.T) {
	a := openTestArchive(t)

	batch := []common.Record{
		{ID: "T3", Amount: 1.5, Origin: "A", Destination: "X", Timestamp: "2024-01-03"},
		{ID: "T1", Amount: 2.5, Origin: "B", Destination: "Y", Timestamp: "2024-01-01"},
		{ID: "T2", Amount: 3.5, Origin: "A", Destination: "Z", Timestamp: "2024-01-02"},
	}
	if err := a.SaveBatch(batch); err != nil {
		t.Fatalf("save batch: %v", err)
	}

	n, err := a.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 3 {
		t.Fatalf("count = %d, want 3", n)
	}

	got, err := a.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(got) != len(batch) {
		t.Fatalf("loaded %d records, want %d", len(got), len(batch))
	}
	for i := range batch {
		if got[i] != batch[i] {
			t.Errorf("record %d = %v, want %v", i, got[i], batch[i])
		}
	}
}

func TestArchiveReplaceByID(t *testing.T) {
	a := openTestArchive(t)

	if err := a.SaveBatch([]common.Record{
		{ID: "T1", Amount: 1, Origin: "A", Destination: "X", Timestamp: "2024-01-01"},
		{ID: "T2", Amount: 2, Origin: "A", Destination: "X", Timestamp: "2024-01-02"},
	}); err != nil {
		t.Fatalf("save: %v", err)
	}
	updated := common.Record{ID: "T1", Amount: 9, Origin: "B", Destination: "Y", Timestamp: "2024-02-01"}
	if err := a.SaveBatch([]common.Record{updated}); err != nil {
		t.Fatalf("save update: %v", err)
	}

	got, ok, err := a.Get("T1")
	if err != nil || !ok {
		t.Fatalf("get T1: ok=%v err=%v", ok, err)
	}
	if got != updated {
		t.Errorf("get T1 = %v, want %v", got, updated)
	}

	all, err := a.LoadAll()
	if err != nil {
		t.Fatalf("load all: %v", err)
	}
	if len(all) != 2 || all[0].ID != "T2" || all[1].ID != "T1" {
		t.Errorf("unexpected order after replace: %v", all)
	}
}

func TestArchiveGetMissingAndTruncate(t *testing.T) {
	a := openTestArchive(t)

	if _, ok, err := a.Get("nope"); ok || err != nil {
		t.Fatalf("get missing: ok=%v err=%v", ok, err)
	}
	if err := a.SaveBatch(nil); err != nil {
		t.Fatalf("empty batch: %v", err)
	}
	if err := a.SaveBatch([]common.Record{{ID: "T1", Origin: "A", Timestamp: "2024-01-01"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.Truncate(); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	n, err := a.Count()
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 0 {
		t.Errorf("count after truncate = %d, want 0", n)
	}
}

func TestArchiveSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "archive.db")
	a, err := Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := a.SaveBatch([]common.Record{{ID: "T1", Amount: 4.2, Origin: "A", Destination: "B", Timestamp: "2024-01-01"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	b, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	recs, err := b.LoadAll()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(recs) != 1 || recs[0].Amount != 4.2 {
		t.Errorf("unexpected records after reopen: %v", recs)
	}
}
