package storage

import (
	"database/sql"
	"strings"
	"sync"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"txindex/pkg/common"
)

// Archive is a durable record source/sink for the loaders. It is not an
// index format: indexes are always rebuilt in memory from it.
type Archive interface {
	SaveBatch(records []common.Record) error
	Get(id string) (common.Record, bool, error)
	LoadAll() ([]common.Record, error)
	Count() (int, error)
	Truncate() error
	Close() error
}

type SQLiteArchive struct {
	db *sql.DB
	mu sync.Mutex
}

var _ Archive = (*SQLiteArchive)(nil)

// Open creates the transactions table in path if needed. ":memory:" gives a
// private in-memory archive.
func Open(path string) (*SQLiteArchive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	// an in-memory database lives per connection
	db.SetMaxOpenConns(1)

	query := `
	CREATE TABLE IF NOT EXISTS transactions (
		seq         INTEGER PRIMARY KEY AUTOINCREMENT,
		id          TEXT NOT NULL UNIQUE,
		amount      REAL NOT NULL,
		origin      TEXT NOT NULL,
		destination TEXT NOT NULL,
		timestamp   TEXT NOT NULL
	);`
	if _, err := db.Exec(query); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "init transactions table")
	}

	if !strings.Contains(path, ":memory:") {
		for _, pragma := range []string{"PRAGMA journal_mode = WAL", "PRAGMA synchronous = NORMAL"} {
			if _, err := db.Exec(pragma); err != nil {
				db.Close()
				return nil, errors.Wrapf(err, "exec %q", pragma)
			}
		}
	}

	return &SQLiteArchive{db: db}, nil
}

// SaveBatch stores records in one transaction. A record whose id is already
// archived replaces the old row and moves to the end of the load order.
func (s *SQLiteArchive) SaveBatch(records []common.Record) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return errors.Wrap(err, "begin")
	}

	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO transactions (id, amount, origin, destination, timestamp)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		tx.Rollback()
		return errors.Wrap(err, "prepare insert")
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.Exec(r.ID, r.Amount, r.Origin, r.Destination, r.Timestamp); err != nil {
			tx.Rollback()
			return errors.Wrapf(err, "insert %s", r.ID)
		}
	}

	return errors.Wrap(tx.Commit(), "commit")
}

func (s *SQLiteArchive) Get(id string) (common.Record, bool, error) {
	var r common.Record
	err := s.db.QueryRow(`SELECT id, amount, origin, destination, timestamp FROM transactions WHERE id = ?`, id).
		Scan(&r.ID, &r.Amount, &r.Origin, &r.Destination, &r.Timestamp)
	if err == sql.ErrNoRows {
		return common.Record{}, false, nil
	}
	if err != nil {
		return common.Record{}, false, errors.Wrapf(err, "get %s", id)
	}
	return r, true, nil
}

// LoadAll returns every archived record in insertion order.
func (s *SQLiteArchive) LoadAll() ([]common.Record, error) {
	rows, err := s.db.Query(`SELECT id, amount, origin, destination, timestamp FROM transactions ORDER BY seq ASC`)
	if err != nil {
		return nil, errors.Wrap(err, "query transactions")
	}
	defer rows.Close()

	var records []common.Record
	for rows.Next() {
		var r common.Record
		if err := rows.Scan(&r.ID, &r.Amount, &r.Origin, &r.Destination, &r.Timestamp); err != nil {
			return nil, errors.Wrap(err, "scan transaction")
		}
		records = append(records, r)
	}
	return records, errors.Wrap(rows.Err(), "iterate transactions")
}

func (s *SQLiteArchive) Count() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM transactions`).Scan(&n)
	return n, errors.Wrap(err, "count transactions")
}

func (s *SQLiteArchive) Truncate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.Exec("DELETE FROM transactions")
	return errors.Wrap(err, "truncate")
}

func (s *SQLiteArchive) Close() error {
	return s.db.Close()
}
