package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/dataq/internal/testdatasets"
)

const (
	defaultDatasets    = 100
	defaultRecords     = 500
	defaultMissing     = 0.05
	defaultDup         = 0.02
	defaultNoise       = 0.1
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		datasets = flag.Int("datasets", defaultDatasets, "Number of datasets to submit")
		records  = flag.Int("records", defaultRecords, "Records per dataset")
		missing  = flag.Float64("missing", defaultMissing, "Null probability for optional fields")
		dup      = flag.Float64("dup", defaultDup, "Duplicate record probability")
		noise    = flag.Float64("noise", defaultNoise, "Off-format date probability")
		level    = flag.String("level", "medium", "Detail level")
		seed     = flag.Int64("seed", 1, "Base seed")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		output   = flag.String("output", "", "Save the first dataset to this file")
		logFile  = flag.String("log", "", "Also log to this file")
		verbose  = flag.Bool("verbose", false, "Enable verbose logging")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testdatasets.ShowHelp()
		return
	}

	if err := testdatasets.SetupLogging(*logFile, *verbose); err != nil {
		_, _ = os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testdatasets.Config{
		BaseURL:     *baseURL,
		Datasets:    *datasets,
		Records:     *records,
		MissingRate: *missing,
		DupRate:     *dup,
		FormatNoise: *noise,
		DetailLevel: *level,
		Seed:        *seed,
		Workers:     *workers,
		Timeout:     *timeout,
		OutputFile:  *output,
		Verbose:     *verbose,
	}

	if _, err := testdatasets.Run(ctx, config); err != nil {
		_, _ = os.Stderr.WriteString("Run failed: " + err.Error() + "\n")
		cancel()
		os.Exit(1) //nolint:gocritic // cancel called above
	}
}
