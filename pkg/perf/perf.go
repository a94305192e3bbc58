// Package perf measures insertion and search cost of any core.Index.
package perf

import (
	"time"

	"txindex/pkg/common"
	"txindex/pkg/core"
)

var DefaultSizes = []int{100, 1000, 5000, 10000}

// Factory builds a fresh, empty index for one measurement.
type Factory func() core.Index

type InsertResult struct {
	Index       string
	Size        int
	Elapsed     time.Duration
	Comparisons int64
	Assignments int64
	Rejected    int
}

func (r InsertResult) ComparisonsPerOp() float64 { return perOp(r.Comparisons, r.Size) }

func (r InsertResult) AssignmentsPerOp() float64 { return perOp(r.Assignments, r.Size) }

type SearchResult struct {
	Index       string
	Origin      string
	Results     int
	Elapsed     time.Duration
	Comparisons int64
}

func perOp(n int64, ops int) float64 {
	if ops == 0 {
		return 0
	}
	return float64(n) / float64(ops)
}

// counters reads the step counters of instrumented indexes; others report zero.
func counters(idx core.Index) (int64, int64) {
	if in, ok := idx.(core.Instrumented); ok {
		return in.Comparisons(), in.Assignments()
	}
	return 0, 0
}

func reset(idx core.Index) {
	if in, ok := idx.(core.Instrumented); ok {
		in.ResetCounters()
	}
}

// Insertion inserts the first size records into a fresh index for every
// size. The sweep stops at the first size larger than the dataset.
func Insertion(newIndex Factory, records []common.Record, sizes []int) []InsertResult {
	if len(sizes) == 0 {
		sizes = DefaultSizes
	}
	var out []InsertResult
	for _, size := range sizes {
		if size > len(records) {
			break
		}
		idx := newIndex()
		reset(idx)

		res := InsertResult{Index: idx.Type(), Size: size}
		start := time.Now()
		for _, r := range records[:size] {
			if err := idx.Insert(r); err != nil {
				res.Rejected++
			}
		}
		res.Elapsed = time.Since(start)
		res.Comparisons, res.Assignments = counters(idx)
		out = append(out, res)
	}
	return out
}

// Search runs one search per origin, resetting the counters before each.
func Search(idx core.Index, origins []string, startDate, endDate string) []SearchResult {
	out := make([]SearchResult, 0, len(origins))
	for _, origin := range origins {
		reset(idx)
		start := time.Now()
		found := idx.Search(origin, startDate, endDate)
		elapsed := time.Since(start)
		cmp, _ := counters(idx)
		out = append(out, SearchResult{
			Index:       idx.Type(),
			Origin:      origin,
			Results:     len(found),
			Elapsed:     elapsed,
			Comparisons: cmp,
		})
	}
	return out
}

// SampleOrigins picks the origins of up to k records at evenly spaced
// positions of records.
func SampleOrigins(records []common.Record, k int) []string {
	if k > len(records) {
		k = len(records)
	}
	if k <= 0 {
		return nil
	}
	step := len(records) / k
	out := make([]string, k)
	for i := range out {
		out[i] = records[i*step].Origin
	}
	return out
}
