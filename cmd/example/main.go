package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"txindex/pkg/client"
	"txindex/pkg/common"
)

func main() {
	addr := flag.String("addr", "localhost:9090", "TCP server address")
	flag.Parse()

	fmt.Println("Connecting to txindex...")
	cli, err := client.Dial(*addr)
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer cli.Close()

	batch := []common.Record{
		{ID: "EX0001", Amount: 150.00, Origin: "BancoExemplo", Destination: "Cliente1", Timestamp: "2024-01-15 09:30:00"},
		{ID: "EX0002", Amount: 2300.50, Origin: "BancoExemplo", Destination: "Cliente2", Timestamp: "2024-03-02 14:00:00"},
		{ID: "EX0003", Amount: 75.25, Origin: "BancoExemplo", Destination: "Cliente3", Timestamp: "2024-07-21 18:45:00"},
	}

	start := time.Now()
	for _, r := range batch {
		if err := cli.Insert(r); err != nil {
			log.Fatalf("Insert %s failed: %v", r.ID, err)
		}
	}
	fmt.Printf("Inserted %d transactions in %v\n", len(batch), time.Since(start))

	start = time.Now()
	recs, err := cli.Search("BancoExemplo", "2024-01-01", "2024-06-30")
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}
	fmt.Printf("Search BancoExemplo in H1 2024: %d results (in %v)\n", len(recs), time.Since(start))
	for _, r := range recs {
		fmt.Printf("  %s\n", r)
	}

	r, err := cli.Get("EX0003")
	if err != nil {
		log.Fatalf("Get failed: %v", err)
	}
	fmt.Printf("Get EX0003: %s\n", r)

	stats, err := cli.Stats()
	if err != nil {
		log.Fatalf("Stats failed: %v", err)
	}
	fmt.Println(stats)
}
