package core

import (
	"math"

	"github.com/cespare/xxhash/v2"
)

// Hasher maps a key to a slot-independent 64-bit value. Both logical indices
// of a HybridIndex use the same Hasher over the same table.
type Hasher func(key string) uint64

// XXHash is the default hasher.
func XXHash(key string) uint64 {
	return xxhash.Sum64String(key)
}

// JavaStringHash reproduces the classic 31-multiplier string hash folded to
// its absolute value, which yields the bucket layout of the reference data sets.
func JavaStringHash(key string) uint64 {
	var h int32
	for _, c := range key {
		if c > 0xFFFF {
			// surrogate pair, as UTF-16 would store it
			c -= 0x10000
			h = 31*h + int32(0xD800+(c>>10))
			h = 31*h + int32(0xDC00+(c&0x3FF))
			continue
		}
		h = 31*h + int32(c)
	}
	if h == math.MinInt32 {
		return uint64(math.MaxInt32) + 1
	}
	if h < 0 {
		h = -h
	}
	return uint64(h)
}

// HasherByName resolves the config name of a hasher; unknown names get XXHash.
func HasherByName(name string) Hasher {
	if name == "java" {
		return JavaStringHash
	}
	return XXHash
}
