package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"txindex/pkg/baseline"
	"txindex/pkg/common"
	"txindex/pkg/config"
	"txindex/pkg/core"
	"txindex/pkg/dataset"
	"txindex/pkg/logger"
	"txindex/pkg/perf"
	"txindex/pkg/sql"
	"txindex/pkg/storage"
)

var errExit = errors.New("exit")

// REPL holds the in-process index and the dataset it was built from.
type REPL struct {
	cfg     config.IndexConfig
	log     logger.Logger
	out     io.Writer
	index   *core.HybridIndex
	records []common.Record

	ok   *color.Color
	warn *color.Color
	bold *color.Color
}

func NewREPL(cfg config.IndexConfig, log logger.Logger, out io.Writer) *REPL {
	return &REPL{
		cfg:  cfg,
		log:  log,
		out:  out,
		ok:   color.New(color.FgGreen),
		warn: color.New(color.FgRed),
		bold: color.New(color.Bold),
	}
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}

func (r *REPL) fail(format string, args ...any) {
	r.warn.Fprintf(r.out, format+"\n", args...)
}

// Exec runs one command line. It returns errExit on exit/quit.
func (r *REPL) Exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	parts := strings.Fields(line)
	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "load":
		r.cmdLoad(args)
	case "gen":
		r.cmdGen(args)
	case "import":
		r.cmdImport(args)
	case "export":
		r.cmdExport(args)
	case "insert", "put":
		r.cmdInsert(strings.TrimSpace(line[len(parts[0]):]))
	case "search":
		r.cmdSearch(args)
	case "get":
		r.cmdGet(args)
	case "sql", "select":
		q := line
		if cmd == "sql" {
			q = strings.TrimSpace(line[len(parts[0]):])
		}
		r.cmdSQL(q)
	case "stats":
		r.cmdStats()
	case "perf":
		r.cmdPerf()
	case "help":
		r.printHelp()
	case "exit", "quit":
		r.printf("Bye!\n")
		return errExit
	default:
		r.fail("Unknown command: '%s'. Type 'help'.", cmd)
	}
	return nil
}

func (r *REPL) loaded() bool {
	if r.index == nil {
		r.fail("Load a dataset first (load, gen or import).")
		return false
	}
	return true
}

// rebuild indexes recs into a fresh table.
func (r *REPL) rebuild(recs []common.Record) (time.Duration, int) {
	r.index = core.NewHybridIndex(r.cfg, core.WithLogger(r.log))
	r.records = r.records[:0]
	rejected := 0
	start := time.Now()
	for _, rec := range recs {
		if err := r.index.Insert(rec); err != nil {
			rejected++
			continue
		}
		r.records = append(r.records, rec)
	}
	return time.Since(start), rejected
}

func (r *REPL) report(source string, n, skipped, rejected int, elapsed time.Duration) {
	r.ok.Fprintf(r.out, "Loaded %d transactions from %s\n", n, source)
	r.printf("  load time:  %v\n", elapsed)
	r.printf("  table size: %d (capacity %d)\n", r.index.Size(), r.index.Capacity())
	if skipped+rejected > 0 {
		r.printf("  skipped:    %d malformed, %d invalid\n", skipped, rejected)
	}
}

func (r *REPL) cmdLoad(args []string) {
	if len(args) < 1 {
		r.fail("Usage: load <file.csv>")
		return
	}
	recs, skipped, err := dataset.LoadFile(args[0])
	if err != nil {
		r.fail("Error: %v", err)
		return
	}
	elapsed, rejected := r.rebuild(recs)
	r.report(args[0], len(recs)-rejected, skipped, rejected, elapsed)
}

func (r *REPL) cmdGen(args []string) {
	if len(args) < 2 {
		r.fail("Usage: gen <file.csv> <count> [collision_rate] [seed]")
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil || n <= 0 {
		r.fail("Error: count must be a positive integer")
		return
	}
	rate := -1.0
	if len(args) > 2 {
		if rate, err = strconv.ParseFloat(args[2], 64); err != nil || rate < 0 || rate > 1 {
			r.fail("Error: collision rate must be in [0, 1]")
			return
		}
	}
	seed := time.Now().UnixNano()
	if len(args) > 3 {
		if seed, err = strconv.ParseInt(args[3], 10, 64); err != nil {
			r.fail("Error: seed must be an integer")
			return
		}
	}

	g := dataset.NewGenerator(seed, dataset.IDSequential)
	var recs []common.Record
	if rate >= 0 {
		recs = g.GenerateWithCollisions(n, rate)
	} else {
		recs = g.Generate(n)
	}
	if err := dataset.WriteFile(args[0], recs); err != nil {
		r.fail("Error: %v", err)
		return
	}
	elapsed, rejected := r.rebuild(recs)
	r.report(args[0], len(recs)-rejected, 0, rejected, elapsed)
}

func (r *REPL) cmdImport(args []string) {
	if len(args) < 1 {
		r.fail("Usage: import <archive.db>")
		return
	}
	a, err := storage.Open(args[0])
	if err != nil {
		r.fail("Error: %v", err)
		return
	}
	defer a.Close()
	recs, err := a.LoadAll()
	if err != nil {
		r.fail("Error: %v", err)
		return
	}
	elapsed, rejected := r.rebuild(recs)
	r.report(args[0], len(recs)-rejected, 0, rejected, elapsed)
}

func (r *REPL) cmdExport(args []string) {
	if len(args) < 1 {
		r.fail("Usage: export <archive.db> (replaces the archive contents)")
		return
	}
	if !r.loaded() {
		return
	}
	a, err := storage.Open(args[0])
	if err != nil {
		r.fail("Error: %v", err)
		return
	}
	defer a.Close()
	if err := a.Truncate(); err != nil {
		r.fail("Error: %v", err)
		return
	}
	if err := a.SaveBatch(r.records); err != nil {
		r.fail("Error: %v", err)
		return
	}
	n, _ := a.Count()
	r.ok.Fprintf(r.out, "Archived %d transactions (%d rows in %s)\n", len(r.records), n, args[0])
}

func (r *REPL) cmdInsert(line string) {
	rec, ok := dataset.ParseLine(line)
	if !ok {
		r.fail("Usage: insert <id>,<amount>,<origin>,<destination>,<timestamp>")
		return
	}
	if r.index == nil {
		r.index = core.NewHybridIndex(r.cfg, core.WithLogger(r.log))
	}
	if err := r.index.Insert(rec); err != nil {
		r.fail("Error: %v", err)
		return
	}
	r.records = append(r.records, rec)
	r.ok.Fprintf(r.out, "OK (size %d)\n", r.index.Size())
}

func (r *REPL) printRecords(recs []common.Record, limit int) {
	if len(recs) == 0 {
		return
	}
	r.bold.Fprintf(r.out, "%-12s | %-10s | %-14s | %s\n", "ID", "Amount", "Destination", "Timestamp")
	for i, rec := range recs {
		if i >= limit {
			r.printf("... and %d more\n", len(recs)-limit)
			break
		}
		r.printf("%-12s | %-10.2f | %-14s | %s\n", rec.ID, rec.Amount, rec.Destination, rec.Timestamp)
	}
}

func (r *REPL) cmdSearch(args []string) {
	if len(args) < 3 {
		r.fail("Usage: search <origin> <start_date> <end_date>")
		return
	}
	if !r.loaded() {
		return
	}
	origin, start, end := args[0], args[1], args[2]

	r.index.ResetCounters()
	began := time.Now()
	recs := r.index.Search(origin, start, end)
	elapsed := time.Since(began)

	r.printf("Origin: %s  Period: %s .. %s\n", origin, start, end)
	r.printf("Found %d transactions in %v (%d comparisons)\n", len(recs), elapsed, r.index.Comparisons())
	r.printRecords(recs, 10)
}

func (r *REPL) cmdGet(args []string) {
	if len(args) < 1 {
		r.fail("Usage: get <id>")
		return
	}
	if !r.loaded() {
		return
	}
	rec, found := r.index.Get(args[0])
	if !found {
		r.fail("Not found: %s", args[0])
		return
	}
	r.printf("%s\n", rec)
}

func (r *REPL) cmdSQL(q string) {
	stmt, err := sql.Parse(q)
	if err != nil {
		r.fail("Error: %v", err)
		return
	}
	if !r.loaded() {
		return
	}
	recs := stmt.Execute(r.index)
	r.printf("%d rows\n", len(recs))
	r.printRecords(recs, 20)
}

func (r *REPL) cmdStats() {
	if !r.loaded() {
		return
	}
	r.printf("%s\n", r.index.Summary())
}

func (r *REPL) cmdPerf() {
	if !r.loaded() {
		return
	}
	newHybrid := func() core.Index { return core.NewHybridIndex(r.cfg) }
	newBTree := func() core.Index { return baseline.New(baseline.DefaultDegree) }

	r.bold.Fprintln(r.out, "1. INSERTION")
	perf.WriteInsertTable(r.out, append(
		perf.Insertion(newHybrid, r.records, perf.DefaultSizes),
		perf.Insertion(newBTree, r.records, perf.DefaultSizes)...))

	r.bold.Fprintln(r.out, "\n2. SEARCH")
	origins := perf.SampleOrigins(r.records, 5)
	bt := baseline.New(baseline.DefaultDegree)
	for _, rec := range r.records {
		bt.Insert(rec)
	}
	perf.WriteSearchTable(r.out, append(
		perf.Search(r.index, origins, "2024-01-01", "2024-12-31"),
		perf.Search(bt, origins, "2024-01-01", "2024-12-31")...))

	r.bold.Fprintln(r.out, "\n3. STRUCTURE")
	r.printf("%s\n", r.index.Summary())
}

func (r *REPL) printHelp() {
	r.printf(`
Commands:
  load <file.csv>                        Build the index from a CSV dataset
  gen <file.csv> <n> [rate] [seed]       Generate a dataset (optional collision rate) and load it
  import <archive.db>                    Build the index from a SQLite archive
  export <archive.db>                    Save the loaded transactions to a SQLite archive
  insert <id>,<amount>,<origin>,<dst>,<ts>  Insert one transaction
  search <origin> <start> <end>          Transactions of origin in [start, end]
  get <id>                               Transaction by id
  sql SELECT * FROM transactions WHERE ...  Run a query
  stats                                  Table statistics
  perf                                   Insertion and search measurements vs a B-tree
  exit                                   Exit
`)
}
