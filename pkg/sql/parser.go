package sql

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"txindex/pkg/common"
	"txindex/pkg/core"
)

// MaxTimestamp sorts after every timestamp the loaders produce.
const MaxTimestamp = "\uffff"

type Kind int

const (
	ByOrigin Kind = iota
	ByID
)

// SelectStmt is a parsed query against the transactions table.
type SelectStmt struct {
	Kind   Kind
	Table  string
	Origin string
	ID     string
	Start  string
	End    string
	Limit  int // -1 means unlimited
}

var selectRe = regexp.MustCompile(`(?i)^SELECT\s+\*\s+FROM\s+([a-zA-Z_][a-zA-Z0-9_]*)` +
	`\s+WHERE\s+([a-zA-Z_]+)\s*=\s*'([^']*)'` +
	`(?:\s+AND\s+([a-zA-Z_]+)\s+BETWEEN\s+'([^']*)'\s+AND\s+'([^']*)')?` +
	`(?:\s+LIMIT\s+(\d+))?\s*$`)

// Parse accepts:
// "SELECT * FROM transactions WHERE origin = 'BancoA'"
// "SELECT * FROM transactions WHERE origin = 'BancoA' AND timestamp BETWEEN '2024-01-01' AND '2024-12-31'"
// "SELECT * FROM tx WHERE origin = 'BancoA' LIMIT 10"
// "SELECT * FROM transactions WHERE id = 'TRX00000001'"
// Keywords are case-insensitive and a trailing ';' is ignored.
func Parse(s string) (*SelectStmt, error) {
	q := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
	if q == "" {
		return nil, errors.New("empty query")
	}

	m := selectRe.FindStringSubmatch(q)
	if m == nil {
		return nil, errors.New("syntax: expected SELECT * FROM transactions WHERE origin = '<o>' " +
			"[AND timestamp BETWEEN '<a>' AND '<b>'] [LIMIT <n>] or WHERE id = '<id>'")
	}

	table := strings.ToLower(m[1])
	if table != "transactions" && table != "tx" {
		return nil, errors.Errorf("unknown table %q", m[1])
	}

	stmt := &SelectStmt{Table: table, Start: "", End: MaxTimestamp, Limit: -1}

	switch field := strings.ToLower(m[2]); field {
	case "origin":
		stmt.Kind = ByOrigin
		stmt.Origin = m[3]
	case "id":
		stmt.Kind = ByID
		stmt.ID = m[3]
	default:
		return nil, errors.Errorf("unsupported WHERE field %q", m[2])
	}

	if m[4] != "" {
		if stmt.Kind != ByOrigin || strings.ToLower(m[4]) != "timestamp" {
			return nil, errors.New("BETWEEN applies to timestamp after an origin filter")
		}
		stmt.Start, stmt.End = m[5], m[6]
	}

	if m[7] != "" {
		limit, err := strconv.Atoi(m[7])
		if err != nil {
			return nil, errors.Wrap(err, "invalid LIMIT value")
		}
		stmt.Limit = limit
	}

	return stmt, nil
}

// Execute runs the statement against idx.
func (stmt *SelectStmt) Execute(idx core.Index) []common.Record {
	var out []common.Record
	switch stmt.Kind {
	case ByID:
		out = []common.Record{}
		if r, ok := idx.Get(stmt.ID); ok {
			out = append(out, r)
		}
	default:
		out = idx.Search(stmt.Origin, stmt.Start, stmt.End)
	}
	if stmt.Limit >= 0 && len(out) > stmt.Limit {
		out = out[:stmt.Limit]
	}
	return out
}
