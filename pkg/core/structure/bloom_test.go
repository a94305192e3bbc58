package structure

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBloomNoFalseNegatives(t *testing.T) {
	bf := NewBloomFilter(1000, 0.01)
	for i := 0; i < 1000; i++ {
		bf.Add(fmt.Sprintf("TRX%08d", i))
	}
	for i := 0; i < 1000; i++ {
		assert.True(t, bf.Contains(fmt.Sprintf("TRX%08d", i)))
	}
	assert.Equal(t, uint(1000), bf.Stats()["bloom_count"])
}

func TestBloomFalsePositiveRate(t *testing.T) {
	bf := NewBloomFilter(1000, 0.01)
	for i := 0; i < 1000; i++ {
		bf.Add(fmt.Sprintf("in-%d", i))
	}
	fp := 0
	for i := 0; i < 10000; i++ {
		if bf.Contains(fmt.Sprintf("out-%d", i)) {
			fp++
		}
	}
	assert.Less(t, fp, 500, "false positive rate far above target")
	assert.Equal(t, uint(1000), bf.Stats()["bloom_count"])
}
