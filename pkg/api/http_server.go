package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"txindex/pkg/common"
	"txindex/pkg/core"
	"txindex/pkg/logger"
	"txindex/pkg/monitor"
	"txindex/pkg/sql"
)

type Server struct {
	index    *core.SyncIndex
	stats    *monitor.WorkloadStats
	cache    *lru.Cache[string, []common.Record] // nil when disabled
	registry *prometheus.Registry
	log      logger.Logger
	mux      *http.ServeMux
	http     *http.Server
}

// NewServer wires the JSON API and /metrics over index. cacheEntries <= 0
// disables the search cache. Cached searches are keyed by the index
// generation, so inserts through other transports never serve stale results.
func NewServer(index *core.SyncIndex, stats *monitor.WorkloadStats, cacheEntries int, log logger.Logger) *Server {
	if stats == nil {
		stats = monitor.NewWorkloadStats()
	}
	if log == nil {
		log = logger.Nop
	}
	s := &Server{
		index:    index,
		stats:    stats,
		registry: prometheus.NewRegistry(),
		log:      log,
		mux:      http.NewServeMux(),
	}
	if cacheEntries > 0 {
		// only fails for a non-positive size
		s.cache, _ = lru.New[string, []common.Record](cacheEntries)
	}

	s.registry.MustRegister(monitor.NewIndexCollector(s.snapshot, stats))

	s.mux.HandleFunc("/api/insert", s.handleInsert)
	s.mux.HandleFunc("/api/get", s.handleGet)
	s.mux.HandleFunc("/api/search", s.handleSearch)
	s.mux.HandleFunc("/api/sql", s.handleSQL)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/api/counters/reset", s.handleResetCounters)
	s.mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return s
}

func (s *Server) Handler() http.Handler { return s.mux }

func (s *Server) Start(addr string) error {
	s.http = &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	s.log.Info("http api listening", "addr", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func (s *Server) snapshot() monitor.IndexSnapshot {
	sum := s.index.Summary()
	return monitor.IndexSnapshot{
		Capacity: sum.Capacity,
		Size:     sum.Size,
		Resizes:  sum.Resizes,
		Slots: map[string]int{
			core.SlotEmpty.String():    sum.Empty,
			core.SlotSingle.String():   sum.Single,
			core.SlotChain.String():    sum.Chain,
			core.SlotAVL.String():      sum.AVL,
			core.SlotRedBlack.String(): sum.RedBlack,
		},
		TallestTree: sum.TallestTree,
		Comparisons: sum.Comparisons,
		Assignments: sum.Assignments,
	}
}

// searchKey ties a cached result to the index generation it was read at, so
// inserts from any transport retire it.
func searchKey(gen uint64, origin, start, end string) string {
	return strconv.FormatUint(gen, 10) + "\x00" + origin + "\x00" + start + "\x00" + end
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var rec common.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	s.stats.RecordWrite()
	if err := s.index.Insert(rec); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "ok", "size": s.index.Size()})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	id := r.URL.Query().Get("id")
	if id == "" {
		http.Error(w, "Missing id", http.StatusBadRequest)
		return
	}

	s.stats.RecordRead()
	start := time.Now()
	rec, found := s.index.Get(id)
	duration := time.Since(start)
	if !found {
		http.Error(w, "Id not found", http.StatusNotFound)
		return
	}
	s.stats.RecordHit()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"record":     rec,
		"found":      true,
		"latency_ns": duration.Nanoseconds(),
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	q := r.URL.Query()
	origin := q.Get("origin")
	if origin == "" {
		http.Error(w, "Missing origin", http.StatusBadRequest)
		return
	}
	start := q.Get("start")
	end := q.Get("end")
	if end == "" {
		end = sql.MaxTimestamp
	}

	s.stats.RecordRead()
	cached := false
	began := time.Now()

	var recs []common.Record
	if s.cache != nil {
		recs, cached = s.cache.Get(searchKey(s.index.Generation(), origin, start, end))
	}
	if cached {
		s.stats.RecordHit()
	} else {
		var gen uint64
		recs, gen = s.index.SearchAt(origin, start, end)
		if s.cache != nil {
			s.cache.Add(searchKey(gen, origin, start, end), recs)
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"origin":     origin,
		"start":      start,
		"end":        end,
		"count":      len(recs),
		"records":    recs,
		"cached":     cached,
		"latency_ns": time.Since(began).Nanoseconds(),
	})
}

func (s *Server) handleSQL(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid body", http.StatusBadRequest)
		return
	}

	stmt, err := sql.Parse(req.Query)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	s.stats.RecordRead()
	rows := stmt.Execute(s.index)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rows),
		"rows":  rows,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	stats := s.index.Stats()
	stats["rw_ratio"] = s.stats.GetReadWriteRatio()
	if s.cache != nil {
		stats["search_cache_entries"] = s.cache.Len()
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleResetCounters(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.index.ResetCounters()
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Counters reset"))
}
