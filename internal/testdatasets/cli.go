package testdatasets

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/dataq/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging initializes the global logger, writing to stdout and, when
// logFile is set, to that file as well.
func SetupLogging(logFile string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.Init(logger.WithWriter(w)); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`dataq dataset load tool
=======================

Generates synthetic datasets and submits them to a running dataq service.

Usage:
  go run ./cmd/test-datasets [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -datasets int      Number of datasets to submit (default 100)
  -records int       Records per dataset (default 500)
  -missing float     Null probability for optional fields (default 0.05)
  -dup float         Duplicate record probability (default 0.02)
  -noise float       Off-format date probability (default 0.1)
  -level string      Detail level: low, medium or high (default "medium")
  -seed int          Base seed (default 1)
  -workers int       Concurrent submitters (default CPU cores * 2)
  -timeout duration  HTTP request timeout (default 30s)
  -output string     Save the first dataset to this file
  -log string        Also log to this file
  -verbose           Enable verbose logging
  -help              Show this help message
`)
}
