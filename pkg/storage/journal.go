package storage

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"hash/crc32"
	"io"
	"os"
	"sync"

	"github.com/pkg/errors"

	"txindex/pkg/common"
)

// [CRC32 4B] [PayloadSize 4B] [JSON record NB]

const (
	frameHeaderSize = 4 + 4
	// MaxFrameSize bounds one encoded record, the same limit the CSV reader
	// puts on a line.
	MaxFrameSize = 1 << 20
)

var (
	ErrFrameTooLarge = errors.New("journal: record larger than MaxFrameSize")
	ErrCorruptFrame  = errors.New("journal: corrupt frame")
)

// Journal is an append-only log of accepted inserts, replayed into a fresh
// index on start.
type Journal struct {
	file *os.File
	mu   sync.Mutex
	buf  *bufio.Writer
}

func OpenJournal(path string) (*Journal, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, errors.Wrap(err, "open journal")
	}
	return &Journal{file: f, buf: bufio.NewWriter(f)}, nil
}

func (j *Journal) Append(r common.Record) error {
	line, err := json.Marshal(r)
	if err != nil {
		return errors.Wrap(err, "encode record")
	}
	if len(line) > MaxFrameSize {
		return ErrFrameTooLarge
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	header := make([]byte, frameHeaderSize)
	binary.LittleEndian.PutUint32(header[0:4], crc32.ChecksumIEEE(line))
	binary.LittleEndian.PutUint32(header[4:8], uint32(len(line)))

	if _, err := j.buf.Write(header); err != nil {
		return errors.Wrap(err, "append header")
	}
	if _, err := j.buf.Write(line); err != nil {
		return errors.Wrap(err, "append record")
	}
	return j.buf.Flush()
}

func (j *Journal) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.buf.Flush(); err != nil {
		return err
	}
	return j.file.Sync()
}

func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.buf.Flush()
	return j.file.Close()
}

// truncate drops every frame. Callers hold j.mu.
func (j *Journal) truncate() error {
	if err := j.buf.Flush(); err != nil {
		return err
	}
	path := j.file.Name()
	if err := j.file.Close(); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR|os.O_TRUNC|os.O_APPEND, 0644)
	if err != nil {
		return errors.Wrap(err, "reopen journal")
	}
	j.file = f
	j.buf = bufio.NewWriter(f)
	return j.file.Sync()
}

func (j *Journal) Size() (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.buf.Flush(); err != nil {
		return 0, err
	}
	st, err := j.file.Stat()
	if err != nil {
		return 0, err
	}
	return st.Size(), nil
}

// Replay returns every intact record in append order. A torn final frame
// ends the replay without error; a checksum mismatch or an impossible frame
// length is ErrCorruptFrame.
func (j *Journal) Replay() ([]common.Record, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.replay()
}

// ArchiveTo saves every journaled record into a and empties the journal.
// Appends wait until it returns.
func (j *Journal) ArchiveTo(a Archive) (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	recs, err := j.replay()
	if err != nil {
		return 0, err
	}
	if err := a.SaveBatch(recs); err != nil {
		return 0, err
	}
	return len(recs), j.truncate()
}

func (j *Journal) replay() ([]common.Record, error) {
	if err := j.buf.Flush(); err != nil {
		return nil, err
	}
	f, err := os.Open(j.file.Name())
	if err != nil {
		return nil, errors.Wrap(err, "open journal for replay")
	}
	defer f.Close()

	rd := bufio.NewReader(f)
	header := make([]byte, frameHeaderSize)
	var out []common.Record
	for {
		if _, err := io.ReadFull(rd, header); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				return out, nil
			}
			return out, errors.Wrap(err, "read frame header")
		}
		sum := binary.LittleEndian.Uint32(header[0:4])
		n := binary.LittleEndian.Uint32(header[4:8])
		if n > MaxFrameSize {
			return out, ErrCorruptFrame
		}
		line := make([]byte, n)
		if _, err := io.ReadFull(rd, line); err != nil {
			return out, nil
		}
		if crc32.ChecksumIEEE(line) != sum {
			return out, ErrCorruptFrame
		}
		var r common.Record
		if err := json.Unmarshal(line, &r); err != nil {
			return out, ErrCorruptFrame
		}
		out = append(out, r)
	}
}
