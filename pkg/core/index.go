package core

import "txindex/pkg/common"

// Index 抽象接口，屏蔽混合哈希表与基准有序索引的差异
type Index interface {
	Insert(r common.Record) error
	Get(id string) (common.Record, bool)
	Search(origin, startDate, endDate string) []common.Record
	Size() int
	Type() string // "Hybrid", "BTree"
}

// Instrumented indexes expose step counters for performance runs.
type Instrumented interface {
	Comparisons() int64
	Assignments() int64
	ResetCounters()
}
