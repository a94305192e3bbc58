package common

import (
	"errors"
	"fmt"
)

// ErrInvalidRecord is returned when a record lacks one of its indexing keys.
var ErrInvalidRecord = errors.New("invalid record")

// Record is a financial transaction, the unit stored by every index.
// Trees order records by Timestamp (plain string comparison).
type Record struct {
	ID          string  `json:"id"`
	Amount      float64 `json:"amount"`
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Timestamp   string  `json:"timestamp"`
}

// Validate rejects records that cannot be placed in both logical indices.
func (r Record) Validate() error {
	switch {
	case r.ID == "":
		return fmt.Errorf("%w: empty id", ErrInvalidRecord)
	case r.Origin == "":
		return fmt.Errorf("%w: empty origin (id=%s)", ErrInvalidRecord, r.ID)
	case r.Timestamp == "":
		return fmt.Errorf("%w: empty timestamp (id=%s)", ErrInvalidRecord, r.ID)
	}
	return nil
}

// TimestampKey is the ordering key used by the balanced trees.
func TimestampKey(r Record) string {
	return r.Timestamp
}

// InRange reports whether ts lies in [start, end], compared lexicographically.
func InRange(ts, start, end string) bool {
	return ts >= start && ts <= end
}

// CSV renders the record in the textual exchange format.
func (r Record) CSV() string {
	return fmt.Sprintf("%s,%.2f,%s,%s,%s", r.ID, r.Amount, r.Origin, r.Destination, r.Timestamp)
}

// String 方便调试打印
func (r Record) String() string {
	return fmt.Sprintf("Record{ID: %s, Amount: %.2f, Origin: %s, Dest: %s, TS: %s}",
		r.ID, r.Amount, r.Origin, r.Destination, r.Timestamp)
}
