package monitor

import (
	"sync/atomic"
)

// OpCounters counts the elementary steps performed by an index. The values
// are instrumentation only and never drive control flow.
type OpCounters struct {
	comparisons atomic.Int64
	assignments atomic.Int64
}

func (c *OpCounters) Compare(n int64) {
	c.comparisons.Add(n)
}

func (c *OpCounters) Assign(n int64) {
	c.assignments.Add(n)
}

func (c *OpCounters) Comparisons() int64 {
	return c.comparisons.Load()
}

func (c *OpCounters) Assignments() int64 {
	return c.assignments.Load()
}

func (c *OpCounters) Reset() {
	c.comparisons.Store(0)
	c.assignments.Store(0)
}

// WorkloadStats tracks request mix at the transport layer.
type WorkloadStats struct {
	ReadCount  uint64
	WriteCount uint64
	HitCount   uint64
}

func NewWorkloadStats() *WorkloadStats {
	return &WorkloadStats{}
}

func (ws *WorkloadStats) RecordRead() {
	atomic.AddUint64(&ws.ReadCount, 1)
}

func (ws *WorkloadStats) RecordWrite() {
	atomic.AddUint64(&ws.WriteCount, 1)
}

func (ws *WorkloadStats) RecordHit() {
	atomic.AddUint64(&ws.HitCount, 1)
}

func (ws *WorkloadStats) Snapshot() (reads, writes, hits uint64) {
	return atomic.LoadUint64(&ws.ReadCount), atomic.LoadUint64(&ws.WriteCount), atomic.LoadUint64(&ws.HitCount)
}

func (ws *WorkloadStats) GetReadWriteRatio() float64 {
	reads := atomic.LoadUint64(&ws.ReadCount)
	writes := atomic.LoadUint64(&ws.WriteCount)

	if writes == 0 {
		if reads > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(reads) / float64(writes)
}
