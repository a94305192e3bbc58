package protocol

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestEncodeDecode(t *testing.T) {
	buf := new(bytes.Buffer)
	key := []byte("BancoCentral")
	val := SearchRange("2024-01-01", "2024-12-31")

	if err := Encode(buf, OpSearch, key, val); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	pkt, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if pkt.Op != OpSearch {
		t.Errorf("got op %v, want %v", pkt.Op, OpSearch)
	}
	if !bytes.Equal(pkt.Key, key) {
		t.Errorf("key mismatch: got %q", pkt.Key)
	}
	start, end, ok := ParseSearchRange(pkt.Value)
	if !ok || start != "2024-01-01" || end != "2024-12-31" {
		t.Errorf("range mismatch: %q %q %v", start, end, ok)
	}
}

func TestDecodeInvalidMagic(t *testing.T) {
	buf := bytes.NewReader([]byte{0x00, OpGet, 0, 2, 0, 0, 0, 0, 'T', '1'})
	if _, err := Decode(buf); err != ErrInvalidMagic {
		t.Errorf("expected ErrInvalidMagic, got %v", err)
	}
}

func TestEncodeDecodeEmptyKeyValue(t *testing.T) {
	buf := new(bytes.Buffer)
	if err := Encode(buf, OpStats, nil, nil); err != nil {
		t.Fatalf("Encode empty failed: %v", err)
	}
	pkt, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if pkt.Op != OpStats || len(pkt.Key) != 0 || len(pkt.Value) != 0 {
		t.Errorf("unexpected result: %+v", pkt)
	}
}

func TestKeyTooLong(t *testing.T) {
	key := []byte(strings.Repeat("k", MaxKeyLen+1))
	if err := Encode(io.Discard, OpGet, key, nil); err != ErrKeyTooLong {
		t.Errorf("expected ErrKeyTooLong, got %v", err)
	}
}

func TestDecodeTruncatedBody(t *testing.T) {
	r := bytes.NewReader([]byte{MagicNumber, OpGet, 0, 4, 0, 0, 0, 0, 'T'})
	if _, err := Decode(r); err == nil {
		t.Errorf("expected error for truncated key")
	}
}

func TestDecodeIncompleteHeader(t *testing.T) {
	r := bytes.NewReader([]byte{MagicNumber, 0x01})
	if _, err := Decode(r); err == nil {
		t.Errorf("expected error for incomplete header")
	}
}

func TestParseSearchRangeWithoutSeparator(t *testing.T) {
	start, end, ok := ParseSearchRange([]byte("2024-01-01"))
	if ok || start != "2024-01-01" || end != "" {
		t.Errorf("got %q %q %v", start, end, ok)
	}
}
