package sql

import (
	"testing"

	"txindex/pkg/common"
	"txindex/pkg/config"
	"txindex/pkg/core"
)

func TestParseSelect(t *testing.T) {
	tests := []struct {
		sql   string
		kind  Kind
		key   string
		start string
		end   string
		limit int
		err   bool
	}{
		{"SELECT * FROM transactions WHERE origin = 'BancoA'", ByOrigin, "BancoA", "", MaxTimestamp, -1, false},
		{"select * from tx where origin='BancoA';", ByOrigin, "BancoA", "", MaxTimestamp, -1, false},
		{"SELECT * FROM transactions WHERE origin = 'B' AND timestamp BETWEEN '2024-01-01' AND '2024-06-30'", ByOrigin, "B", "2024-01-01", "2024-06-30", -1, false},
		{"SELECT * FROM transactions WHERE origin = 'B' and TIMESTAMP between '2024-01-01' and '2024-06-30' limit 3", ByOrigin, "B", "2024-01-01", "2024-06-30", 3, false},
		{"SELECT * FROM transactions WHERE origin = 'Banco Central' LIMIT 0", ByOrigin, "Banco Central", "", MaxTimestamp, 0, false},
		{"  SELECT * FROM transactions WHERE id = 'TRX00000001'  ", ByID, "TRX00000001", "", MaxTimestamp, -1, false},
		{"SELECT * FROM users WHERE origin = 'A'", 0, "", "", "", 0, true},
		{"SELECT * FROM transactions", 0, "", "", "", 0, true},
		{"SELECT * FROM transactions WHERE amount = '10'", 0, "", "", "", 0, true},
		{"SELECT * FROM transactions WHERE id = 'T1' AND timestamp BETWEEN 'a' AND 'b'", 0, "", "", "", 0, true},
		{"SELECT * FROM transactions WHERE origin = 'A' AND amount BETWEEN 'a' AND 'b'", 0, "", "", "", 0, true},
		{"SELECT id FROM transactions WHERE origin = 'A'", 0, "", "", "", 0, true},
		{"DELETE FROM transactions", 0, "", "", "", 0, true},
		{"", 0, "", "", "", 0, true},
	}
	for _, tt := range tests {
		stmt, err := Parse(tt.sql)
		if tt.err {
			if err == nil {
				t.Errorf("Parse(%q): expected error", tt.sql)
			}
			continue
		}
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.sql, err)
			continue
		}
		if stmt.Kind != tt.kind {
			t.Errorf("Parse(%q): kind=%v, want %v", tt.sql, stmt.Kind, tt.kind)
		}
		key := stmt.Origin
		if stmt.Kind == ByID {
			key = stmt.ID
		}
		if key != tt.key {
			t.Errorf("Parse(%q): key=%q, want %q", tt.sql, key, tt.key)
		}
		if stmt.Start != tt.start || stmt.End != tt.end {
			t.Errorf("Parse(%q): range=[%q,%q], want [%q,%q]", tt.sql, stmt.Start, stmt.End, tt.start, tt.end)
		}
		if stmt.Limit != tt.limit {
			t.Errorf("Parse(%q): limit=%d, want %d", tt.sql, stmt.Limit, tt.limit)
		}
	}
}

func TestExecute(t *testing.T) {
	// java hashing keeps this layout fixed: ids chain at 93..96, A at 65, B at 66
	cfg := config.DefaultIndex()
	cfg.Hash = "java"
	idx := core.NewHybridIndex(cfg)
	for _, r := range []common.Record{
		{ID: "T1", Origin: "A", Timestamp: "2024-01-01 10:00:00"},
		{ID: "T2", Origin: "A", Timestamp: "2024-02-01 10:00:00"},
		{ID: "T3", Origin: "A", Timestamp: "2024-03-01 10:00:00"},
		{ID: "T4", Origin: "B", Timestamp: "2024-01-01 10:00:00"},
	} {
		if err := idx.Insert(r); err != nil {
			t.Fatalf("insert %s: %v", r.ID, err)
		}
	}

	run := func(q string) []common.Record {
		t.Helper()
		stmt, err := Parse(q)
		if err != nil {
			t.Fatalf("Parse(%q): %v", q, err)
		}
		return stmt.Execute(idx)
	}

	if got := run("SELECT * FROM tx WHERE origin = 'A'"); len(got) != 3 {
		t.Errorf("all of A: got %d records", len(got))
	}
	if got := run("SELECT * FROM tx WHERE origin = 'A' AND timestamp BETWEEN '2024-02-01' AND '2024-12-31'"); len(got) != 2 || got[0].ID != "T2" {
		t.Errorf("A since February: got %v", got)
	}
	if got := run("SELECT * FROM tx WHERE origin = 'A' LIMIT 1"); len(got) != 1 || got[0].ID != "T1" {
		t.Errorf("A limit 1: got %v", got)
	}
	if got := run("SELECT * FROM tx WHERE id = 'T4'"); len(got) != 1 || got[0].Origin != "B" {
		t.Errorf("id T4: got %v", got)
	}
	if got := run("SELECT * FROM tx WHERE id = 'T9'"); got == nil || len(got) != 0 {
		t.Errorf("id T9: got %v", got)
	}
}
