package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
)

// IndexSnapshot is the index state exported on each scrape.
type IndexSnapshot struct {
	Capacity    int
	Size        int
	Resizes     int
	Slots       map[string]int // slot kind -> count
	TallestTree int
	Comparisons int64
	Assignments int64
}

type IndexCollector struct {
	snapshot func() IndexSnapshot
	workload *WorkloadStats

	capacity    *prometheus.Desc
	size        *prometheus.Desc
	loadFactor  *prometheus.Desc
	resizes     *prometheus.Desc
	slots       *prometheus.Desc
	tallestTree *prometheus.Desc
	comparisons *prometheus.Desc
	assignments *prometheus.Desc

	reads   *prometheus.Desc
	writes  *prometheus.Desc
	hits    *prometheus.Desc
	rwRatio *prometheus.Desc
}

// NewIndexCollector exports snapshot() and workload on every scrape.
// workload may be nil.
func NewIndexCollector(snapshot func() IndexSnapshot, workload *WorkloadStats) *IndexCollector {
	if workload == nil {
		workload = NewWorkloadStats()
	}
	return &IndexCollector{
		snapshot: snapshot,
		workload: workload,

		capacity: prometheus.NewDesc(
			"txindex_table_capacity",
			"Number of slots in the hash table",
			nil, nil,
		),
		size: prometheus.NewDesc(
			"txindex_records",
			"Number of accepted inserts",
			nil, nil,
		),
		loadFactor: prometheus.NewDesc(
			"txindex_load_factor",
			"Records per slot",
			nil, nil,
		),
		resizes: prometheus.NewDesc(
			"txindex_resizes_total",
			"Number of times the table doubled",
			nil, nil,
		),
		slots: prometheus.NewDesc(
			"txindex_slots",
			"Slots by representation",
			[]string{"kind"}, nil,
		),
		tallestTree: prometheus.NewDesc(
			"txindex_tallest_bucket_height",
			"Height of the tallest tree bucket, -1 when there is none",
			nil, nil,
		),
		comparisons: prometheus.NewDesc(
			"txindex_comparisons",
			"Comparisons since the last counter reset",
			nil, nil,
		),
		assignments: prometheus.NewDesc(
			"txindex_assignments",
			"Assignments since the last counter reset",
			nil, nil,
		),

		reads: prometheus.NewDesc(
			"txindex_reads_total",
			"Read requests served",
			nil, nil,
		),
		writes: prometheus.NewDesc(
			"txindex_writes_total",
			"Write requests served",
			nil, nil,
		),
		hits: prometheus.NewDesc(
			"txindex_hits_total",
			"Reads answered from cache or a found id",
			nil, nil,
		),
		rwRatio: prometheus.NewDesc(
			"txindex_rw_ratio",
			"Reads per write",
			nil, nil,
		),
	}
}

func (c *IndexCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.capacity
	ch <- c.size
	ch <- c.loadFactor
	ch <- c.resizes
	ch <- c.slots
	ch <- c.tallestTree
	ch <- c.comparisons
	ch <- c.assignments

	ch <- c.reads
	ch <- c.writes
	ch <- c.hits
	ch <- c.rwRatio
}

func (c *IndexCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.snapshot()

	ch <- prometheus.MustNewConstMetric(c.capacity, prometheus.GaugeValue, float64(s.Capacity))
	ch <- prometheus.MustNewConstMetric(c.size, prometheus.GaugeValue, float64(s.Size))
	lf := 0.0
	if s.Capacity > 0 {
		lf = float64(s.Size) / float64(s.Capacity)
	}
	ch <- prometheus.MustNewConstMetric(c.loadFactor, prometheus.GaugeValue, lf)
	ch <- prometheus.MustNewConstMetric(c.resizes, prometheus.CounterValue, float64(s.Resizes))
	for kind, n := range s.Slots {
		ch <- prometheus.MustNewConstMetric(c.slots, prometheus.GaugeValue, float64(n), kind)
	}
	ch <- prometheus.MustNewConstMetric(c.tallestTree, prometheus.GaugeValue, float64(s.TallestTree))
	// counters can be reset through the API, so these are gauges
	ch <- prometheus.MustNewConstMetric(c.comparisons, prometheus.GaugeValue, float64(s.Comparisons))
	ch <- prometheus.MustNewConstMetric(c.assignments, prometheus.GaugeValue, float64(s.Assignments))

	reads, writes, hits := c.workload.Snapshot()
	ch <- prometheus.MustNewConstMetric(c.reads, prometheus.CounterValue, float64(reads))
	ch <- prometheus.MustNewConstMetric(c.writes, prometheus.CounterValue, float64(writes))
	ch <- prometheus.MustNewConstMetric(c.hits, prometheus.CounterValue, float64(hits))
	ch <- prometheus.MustNewConstMetric(c.rwRatio, prometheus.GaugeValue, c.workload.GetReadWriteRatio())
}
