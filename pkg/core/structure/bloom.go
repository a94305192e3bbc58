package structure

import (
	"math"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// BloomFilter answers "definitely absent" for string keys. It is sized for
// an expected number of keys n at false-positive rate p and never shrinks;
// the hybrid index replaces it whenever the table grows.
type BloomFilter struct {
	bitset []bool
	k      uint
	m      uint
	count  uint
	lock   sync.RWMutex
}

func NewBloomFilter(n uint, p float64) *BloomFilter {
	// 理论最佳公式
	// m = - (n * ln(p)) / (ln(2)^2)
	// k = (m / n) * ln(2)
	if n == 0 {
		n = 1
	}
	if p <= 0 || p >= 1 {
		p = 0.01
	}

	m := uint(math.Ceil(-float64(n) * math.Log(p) / (math.Ln2 * math.Ln2)))
	k := uint(math.Ceil((float64(m) / float64(n)) * math.Ln2))

	return &BloomFilter{
		bitset: make([]bool, m),
		k:      k,
		m:      m,
		count:  0,
	}
}

func (bf *BloomFilter) Add(key string) {
	bf.lock.Lock()
	defer bf.lock.Unlock()

	h1, h2 := hashes(key)
	for i := uint(0); i < bf.k; i++ {
		pos := (h1 + uint32(i)*h2) % uint32(bf.m)
		bf.bitset[pos] = true
	}
	bf.count++
}

func (bf *BloomFilter) Contains(key string) bool {
	bf.lock.RLock()
	defer bf.lock.RUnlock()

	h1, h2 := hashes(key)
	for i := uint(0); i < bf.k; i++ {
		pos := (h1 + uint32(i)*h2) % uint32(bf.m)
		if !bf.bitset[pos] {
			return false
		}
	}
	return true
}

func hashes(key string) (uint32, uint32) {
	sum := xxhash.Sum64String(key)
	return uint32(sum), uint32(sum>>32) | 1
}

func (bf *BloomFilter) Stats() map[string]interface{} {
	bf.lock.RLock()
	defer bf.lock.RUnlock()
	return map[string]interface{}{
		"bloom_bits_size": bf.m,
		"bloom_hashes":    bf.k,
		"bloom_count":     bf.count,
	}
}
