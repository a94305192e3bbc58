package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/ergochat/readline"
	"github.com/fatih/color"
	"golang.org/x/term"

	"txindex/pkg/config"
	"txindex/pkg/logger"
)

const Prompt = "txindex> "

var completer = readline.NewPrefixCompleter(
	readline.PcItem("help"),
	readline.PcItem("load"),
	readline.PcItem("gen"),
	readline.PcItem("import"),
	readline.PcItem("export"),
	readline.PcItem("insert"),
	readline.PcItem("search"),
	readline.PcItem("get"),
	readline.PcItem("sql"),
	readline.PcItem("stats"),
	readline.PcItem("perf"),
	readline.PcItem("exit"),
	readline.PcItem("quit"),
)

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func main() {
	configPath := flag.String("config", "", "config file (default: configs/txindex.yaml)")
	dataPath := flag.String("data", "", "CSV dataset to load on start")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.NewDefaultLogger(logger.ParseLevel(cfg.Log.Level)).Named("cli")

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		color.NoColor = true
	}

	fmt.Println("Hybrid Transaction Index")
	fmt.Printf("  capacity=%d load=%.2f probes=%d avl_max=%d hash=%s\n",
		cfg.Index.InitialCapacity, cfg.Index.LoadFactor, cfg.Index.MaxProbes, cfg.Index.MaxAVLHeight, cfg.Index.Hash)

	repl := NewREPL(cfg.Index, log, os.Stdout)
	if *dataPath != "" {
		repl.Exec("load " + *dataPath)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          Prompt,
		HistoryFile:     ".txindex_history",
		AutoComplete:    completer,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "readline: %v\n", err)
		os.Exit(1)
	}
	defer rl.Close()
	rl.CaptureExitSignal()

	fmt.Println("Type 'help' for commands.")
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return
			}
			continue
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "readline: %v\n", err)
			return
		}
		if repl.Exec(line) == errExit {
			return
		}
	}
}
