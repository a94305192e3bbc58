package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
)

const (
	MagicNumber = 0x54

	OpInsert = 0x01 // value: one CSV line
	OpGet    = 0x02 // key: id
	OpSearch = 0x03 // key: origin, value: start \x00 end
	OpStats  = 0x04
	OpSQL    = 0x05 // value: query text

	RespOK  = 0x00
	RespErr = 0xFF
	RespVal = 0x01 // value: newline separated CSV lines, or stats text
)

// MaxKeyLen bounds keys to what the 16-bit length field can carry.
const MaxKeyLen = 1<<16 - 1

var (
	ErrInvalidMagic = errors.New("invalid magic number")
	ErrKeyTooLong   = errors.New("key longer than 65535 bytes")
)

type Packet struct {
	Op    byte
	Key   []byte
	Value []byte
}

// Encode writes the 8-byte header (magic, op, key length, value length)
// followed by key and value.
func Encode(w io.Writer, op byte, key []byte, value []byte) error {
	if len(key) > MaxKeyLen {
		return ErrKeyTooLong
	}
	header := make([]byte, 8)
	header[0] = MagicNumber
	header[1] = op
	binary.BigEndian.PutUint16(header[2:4], uint16(len(key)))
	binary.BigEndian.PutUint32(header[4:8], uint32(len(value)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	if len(key) > 0 {
		if _, err := w.Write(key); err != nil {
			return err
		}
	}
	if len(value) > 0 {
		if _, err := w.Write(value); err != nil {
			return err
		}
	}
	return nil
}

func Decode(r io.Reader) (*Packet, error) {
	header := make([]byte, 8)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, err
	}

	if header[0] != MagicNumber {
		return nil, ErrInvalidMagic
	}

	op := header[1]
	kLen := binary.BigEndian.Uint16(header[2:4])
	vLen := binary.BigEndian.Uint32(header[4:8])

	key := make([]byte, kLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}

	val := make([]byte, vLen)
	if _, err := io.ReadFull(r, val); err != nil {
		return nil, err
	}

	return &Packet{Op: op, Key: key, Value: val}, nil
}

// SearchRange packs a timestamp range into an OpSearch value.
func SearchRange(start, end string) []byte {
	return []byte(start + "\x00" + end)
}

// ParseSearchRange splits an OpSearch value. A value without a separator
// is taken as the start with an open end.
func ParseSearchRange(v []byte) (start, end string, ok bool) {
	i := bytes.IndexByte(v, 0)
	if i < 0 {
		return string(v), "", false
	}
	return string(v[:i]), string(v[i+1:]), true
}
