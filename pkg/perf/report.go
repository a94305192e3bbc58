package perf

import (
	"fmt"
	"io"
	"time"
)

func millis(d time.Duration) float64 { return float64(d.Microseconds()) / 1000 }

// WriteInsertTable renders an insertion sweep, one row per size.
func WriteInsertTable(w io.Writer, results []InsertResult) {
	fmt.Fprintln(w, "Index  | Size    | Time (ms)  | Comparisons | Assignments | Comp/Op | Assign/Op")
	fmt.Fprintln(w, "-------|---------|------------|-------------|-------------|---------|----------")
	for _, r := range results {
		fmt.Fprintf(w, "%-6s | %-7d | %-10.3f | %-11d | %-11d | %-7.2f | %-8.2f\n",
			r.Index, r.Size, millis(r.Elapsed), r.Comparisons, r.Assignments, r.ComparisonsPerOp(), r.AssignmentsPerOp())
	}
}

// WriteSearchTable renders one row per searched origin.
func WriteSearchTable(w io.Writer, results []SearchResult) {
	fmt.Fprintln(w, "Index  | Origin               | Results | Time (ms)  | Comparisons")
	fmt.Fprintln(w, "-------|----------------------|---------|------------|------------")
	for _, r := range results {
		fmt.Fprintf(w, "%-6s | %-20s | %-7d | %-10.3f | %d\n",
			r.Index, truncate(r.Origin, 20), r.Results, millis(r.Elapsed), r.Comparisons)
	}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}
