// Package dataset reads, writes and synthesises transaction files in the
// comma separated exchange format `id,valor,origem,destino,timestamp`.
package dataset

import (
	"bufio"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"txindex/pkg/common"
)

// Header is the first line written to every dataset file.
const Header = "id,valor,origem,destino,timestamp"

const fieldCount = 5

// Reader decodes records line by line. Malformed lines are skipped and
// counted, never returned as errors.
type Reader struct {
	sc      *bufio.Scanner
	first   bool
	line    int
	skipped int
}

func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	return &Reader{sc: sc, first: true}
}

// Read returns the next well-formed record, or io.EOF.
func (r *Reader) Read() (common.Record, error) {
	for r.sc.Scan() {
		text := r.sc.Text()
		r.line++
		if r.first {
			r.first = false
			if isHeader(text) {
				continue
			}
		}
		rec, ok := ParseLine(text)
		if !ok {
			r.skipped++
			continue
		}
		return rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return common.Record{}, errors.Wrapf(err, "read line %d", r.line+1)
	}
	return common.Record{}, io.EOF
}

// ReadAll drains the reader.
func (r *Reader) ReadAll() ([]common.Record, error) {
	var out []common.Record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
}

// Skipped is the number of malformed lines seen so far.
func (r *Reader) Skipped() int { return r.skipped }

func isHeader(line string) bool {
	l := strings.ToLower(line)
	return strings.Contains(l, "id") || strings.Contains(l, "valor") || strings.Contains(l, "origem")
}

// ParseLine decodes one data line. Fields are trimmed, extra fields are
// ignored, and a line with fewer than five fields or an amount that is not
// a finite number is rejected.
func ParseLine(line string) (common.Record, bool) {
	fields := strings.Split(strings.TrimSpace(line), ",")
	if len(fields) < fieldCount {
		return common.Record{}, false
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(fields[1]), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return common.Record{}, false
	}
	return common.Record{
		ID:          strings.TrimSpace(fields[0]),
		Amount:      amount,
		Origin:      strings.TrimSpace(fields[2]),
		Destination: strings.TrimSpace(fields[3]),
		Timestamp:   strings.TrimSpace(fields[4]),
	}, true
}

// Writer encodes records in the exchange format. The header goes out with
// the first record or on Flush, whichever comes first.
type Writer struct {
	w           *bufio.Writer
	wroteHeader bool
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

func (w *Writer) header() error {
	if w.wroteHeader {
		return nil
	}
	w.wroteHeader = true
	_, err := w.w.WriteString(Header + "\n")
	return err
}

func (w *Writer) Write(r common.Record) error {
	if err := w.header(); err != nil {
		return err
	}
	_, err := w.w.WriteString(r.CSV() + "\n")
	return err
}

func (w *Writer) Flush() error {
	if err := w.header(); err != nil {
		return err
	}
	return w.w.Flush()
}

// LoadFile reads every well-formed record of path and reports how many
// lines were skipped.
func LoadFile(path string) ([]common.Record, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, errors.Wrap(err, "open dataset")
	}
	defer f.Close()

	r := NewReader(f)
	recs, err := r.ReadAll()
	if err != nil {
		return nil, r.Skipped(), errors.Wrapf(err, "load %s", path)
	}
	return recs, r.Skipped(), nil
}

// WriteFile writes the header followed by recs, replacing path.
func WriteFile(path string, recs []common.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create dataset")
	}
	w := NewWriter(f)
	for _, r := range recs {
		if err := w.Write(r); err != nil {
			f.Close()
			return errors.Wrapf(err, "write %s", path)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "flush %s", path)
	}
	return errors.Wrap(f.Close(), "close dataset")
}

// CountLines counts the data lines of path, header excluded.
func CountLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, errors.Wrap(err, "open dataset")
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	count := 0
	first := true
	for sc.Scan() {
		if first {
			first = false
			if isHeader(sc.Text()) {
				continue
			}
		}
		count++
	}
	return count, errors.Wrap(sc.Err(), "count lines")
}
