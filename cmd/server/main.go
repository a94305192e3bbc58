package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"txindex/pkg/api"
	"txindex/pkg/config"
	"txindex/pkg/core"
	"txindex/pkg/dataset"
	"txindex/pkg/logger"
	"txindex/pkg/monitor"
	"txindex/pkg/network"
	"txindex/pkg/storage"
)

func main() {
	configPath := flag.String("config", "", "config file (default: configs/txindex.yaml)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewDefaultLogger(logger.ParseLevel(cfg.Log.Level))

	index := core.NewSyncIndex(core.NewHybridIndex(cfg.Index, core.WithLogger(log.Named("index"))))
	if err := preload(index, cfg.Dataset, log); err != nil {
		log.Error("preload failed", "err", err)
		os.Exit(1)
	}

	var journal *storage.Journal
	if cfg.Dataset.JournalPath != "" {
		if journal, err = openJournal(index, cfg.Dataset.JournalPath, log); err != nil {
			log.Error("journal replay failed", "err", err)
			os.Exit(1)
		}
		index.SetJournal(journal)
	}

	stats := monitor.NewWorkloadStats()
	httpSrv := api.NewServer(index, stats, cfg.Cache.SearchEntries, log.Named("api"))
	tcpSrv := network.NewTCPServer(index, stats, log.Named("tcp"))

	errc := make(chan error, 2)
	go func() { errc <- httpSrv.Start(cfg.Server.Addr) }()
	go func() { errc <- tcpSrv.Start(cfg.Server.TCPAddr) }()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info("shutting down", "signal", s.String())
	case err := <-errc:
		if err != nil {
			log.Error("listener failed", "err", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		log.Warn("http shutdown", "err", err)
	}
	if err := tcpSrv.Close(); err != nil {
		log.Warn("tcp shutdown", "err", err)
	}
	if journal != nil {
		if cfg.Dataset.SQLitePath != "" {
			archiveJournal(journal, cfg.Dataset.SQLitePath, log)
		}
		if err := journal.Sync(); err != nil {
			log.Warn("journal sync", "err", err)
		}
		journal.Close()
	}
	log.Info("server stopped", "records", index.Size())
}

func openJournal(index *core.SyncIndex, path string, log logger.Logger) (*storage.Journal, error) {
	start := time.Now()
	journal, err := storage.OpenJournal(path)
	if err != nil {
		return nil, err
	}
	recs, err := journal.Replay()
	if err != nil {
		journal.Close()
		return nil, err
	}
	n := index.InsertBatch(recs)
	log.Info("replayed journal", "path", path, "records", n, "elapsed", time.Since(start))
	return journal, nil
}

func preload(index *core.SyncIndex, ds config.DatasetConfig, log logger.Logger) error {
	if ds.SQLitePath != "" {
		start := time.Now()
		archive, err := storage.Open(ds.SQLitePath)
		if err != nil {
			return err
		}
		defer archive.Close()
		recs, err := archive.LoadAll()
		if err != nil {
			return err
		}
		n := index.InsertBatch(recs)
		log.Info("loaded archive", "path", ds.SQLitePath, "records", n, "rejected", len(recs)-n, "elapsed", time.Since(start))
	}
	if ds.Path != "" {
		start := time.Now()
		recs, skipped, err := dataset.LoadFile(ds.Path)
		if err != nil {
			return err
		}
		n := index.InsertBatch(recs)
		log.Info("loaded dataset", "path", ds.Path, "records", n, "skipped", skipped, "rejected", len(recs)-n, "elapsed", time.Since(start))
	}
	return nil
}

// archiveJournal folds the inserts served this run into the archive, so the
// next start loads them with the preload instead of replaying the journal.
func archiveJournal(journal *storage.Journal, path string, log logger.Logger) {
	archive, err := storage.Open(path)
	if err != nil {
		log.Warn("journal not archived", "err", err)
		return
	}
	defer archive.Close()
	n, err := journal.ArchiveTo(archive)
	if err != nil {
		log.Warn("journal not archived", "err", err)
		return
	}
	log.Info("archived journal", "path", path, "records", n)
}
