package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/fatih/color"

	"txindex/pkg/baseline"
	"txindex/pkg/common"
	"txindex/pkg/config"
	"txindex/pkg/core"
	"txindex/pkg/dataset"
	"txindex/pkg/perf"
	"txindex/pkg/protocol"
)

func main() {
	dataPath := flag.String("data", "", "CSV dataset (generated when empty)")
	n := flag.Int("n", 10000, "records to generate when no dataset is given")
	rate := flag.Float64("collisions", 0.8, "origin collision rate for generated data")
	seed := flag.Int64("seed", 42, "generator seed")
	configPath := flag.String("config", "", "config file for index parameters")
	httpAddr := flag.String("http", "", "HTTP API base URL; runs the transport benchmark when set with -tcp")
	tcpAddr := flag.String("tcp", "", "TCP server address")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var records []common.Record
	if *dataPath != "" {
		var skipped int
		records, skipped, err = dataset.LoadFile(*dataPath)
		if err != nil {
			log.Fatalf("load: %v", err)
		}
		fmt.Printf("Loaded %d records from %s (%d skipped)\n", len(records), *dataPath, skipped)
	} else {
		records = dataset.NewGenerator(*seed, dataset.IDSequential).GenerateWithCollisions(*n, *rate)
		fmt.Printf("Generated %d records (collision rate %.2f, seed %d)\n", len(records), *rate, *seed)
	}

	header := color.New(color.FgCyan, color.Bold)

	if *httpAddr != "" && *tcpAddr != "" {
		header.Println("TRANSPORT")
		runTransports(*httpAddr, *tcpAddr, records)
		return
	}

	newHybrid := func() core.Index { return core.NewHybridIndex(cfg.Index) }
	newBTree := func() core.Index { return baseline.New(baseline.DefaultDegree) }

	header.Println("INSERTION")
	perf.WriteInsertTable(os.Stdout, append(
		perf.Insertion(newHybrid, records, perf.DefaultSizes),
		perf.Insertion(newBTree, records, perf.DefaultSizes)...))

	hybrid := core.NewHybridIndex(cfg.Index)
	bt := baseline.New(baseline.DefaultDegree)
	for _, r := range records {
		hybrid.Insert(r)
		bt.Insert(r)
	}

	header.Println("\nSEARCH")
	origins := perf.SampleOrigins(records, 5)
	perf.WriteSearchTable(os.Stdout, append(
		perf.Search(hybrid, origins, "2024-01-01", "2024-12-31"),
		perf.Search(bt, origins, "2024-01-01", "2024-12-31")...))

	header.Println("\nSTRUCTURE")
	fmt.Println(hybrid.Summary())
}

func runTransports(httpAddr, tcpAddr string, records []common.Record) {
	fmt.Printf("  HTTP=%s  TCP=%s  N=%d\n", httpAddr, tcpAddr, len(records))

	httpDuration := runHTTPBenchmark(httpAddr, records)
	fmt.Printf("  HTTP Time: %v | QPS: %.0f\n", httpDuration, float64(len(records))/httpDuration.Seconds())

	tcpDuration := runTCPBenchmark(tcpAddr, records)
	fmt.Printf("  TCP  Time: %v | QPS: %.0f\n", tcpDuration, float64(len(records))/tcpDuration.Seconds())

	fmt.Printf("  TCP/HTTP speedup: %.2fx\n", httpDuration.Seconds()/tcpDuration.Seconds())
}

func runHTTPBenchmark(httpAddr string, records []common.Record) time.Duration {
	start := time.Now()
	client := &http.Client{
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 100,
		},
	}

	for _, r := range records {
		body, _ := json.Marshal(r)
		resp, err := client.Post(httpAddr+"/api/insert", "application/json", bytes.NewReader(body))
		if err != nil {
			log.Fatalf("HTTP insert failed: %v", err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
	return time.Since(start)
}

func runTCPBenchmark(addr string, records []common.Record) time.Duration {
	start := time.Now()

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		log.Fatalf("TCP connect failed: %v", err)
	}
	defer conn.Close()

	for _, r := range records {
		if err := protocol.Encode(conn, protocol.OpInsert, nil, []byte(r.CSV())); err != nil {
			log.Fatalf("TCP write failed: %v", err)
		}
		if _, err := protocol.Decode(conn); err != nil {
			log.Fatalf("TCP read failed: %v", err)
		}
	}
	return time.Since(start)
}
