package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/okian/cutoff/internal/summarize"
	"github.com/okian/cutoff/pkg/logger"
)

const defaultOutput = "data/tn_cutoffs.json"

func main() {
	var (
		output  = flag.String("output", defaultOutput, "Output JSON file path")
		workers = flag.Int("workers", 0, "Files parsed concurrently (0 = one per file)")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help || flag.NArg() == 0 {
		summarize.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := summarize.Run(ctx, &summarize.Config{
		Inputs:  flag.Args(),
		Output:  *output,
		Workers: *workers,
	})
	if err != nil {
		os.Stderr.WriteString("Export failed: " + err.Error() + "\n")
		stop()
		os.Exit(1)
	}
	os.Stdout.WriteString("Wrote " + strconv.Itoa(stats.Groups) + " combination summaries to " + *output + "\n")
}
