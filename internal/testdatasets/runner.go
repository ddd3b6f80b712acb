package testdatasets

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/okian/dataq/pkg/logger"
)

const (
	directoryPermission = 0750
	filePermission      = 0600
)

// ErrNoDatasets is returned when nothing could be assessed.
var ErrNoDatasets = errors.New("no dataset was assessed")

// Run generates datasets, submits them to the service and logs a summary.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}

	logger.Get().Info(ctx, "starting dataset run",
		logger.String("baseURL", config.BaseURL),
		logger.Int("datasets", config.Datasets),
		logger.Int("records", config.Records),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	if err := checkServiceHealth(ctx, config); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	reqs, err := generateRequests(config)
	if err != nil {
		return stats, fmt.Errorf("dataset generation failed: %w", err)
	}
	stats.DatasetsGenerated = len(reqs)

	if config.OutputFile != "" && len(reqs) > 0 {
		if err := saveRequest(config.OutputFile, reqs[0]); err != nil {
			logger.Get().Warn(ctx, "failed to save dataset", logger.Error(err))
		}
	}

	submitDatasets(ctx, config, reqs, stats)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	if stats.Passed+stats.Failed == 0 {
		return stats, ErrNoDatasets
	}
	return stats, nil
}

// generateRequests builds one request per dataset; dataset i uses seed Seed+i.
func generateRequests(config *Config) ([]AssessRequest, error) {
	reqs := make([]AssessRequest, 0, config.Datasets)
	for i := 0; i < config.Datasets; i++ {
		g := NewGenerator(
			WithRecords(config.Records),
			WithMissingRate(config.MissingRate),
			WithDuplicateRate(config.DupRate),
			WithFormatNoise(config.FormatNoise),
			WithSeed(config.Seed+int64(i)),
		)
		data, err := g.Generate()
		if err != nil {
			return nil, fmt.Errorf("dataset %d: %w", i, err)
		}
		reqs = append(reqs, AssessRequest{Data: data, Schema: g.Schema(), DetailLevel: config.DetailLevel})
	}
	return reqs, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, config *Config) error {
	client := newHTTPClient(config.Timeout)
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	logger.Get().Info(ctx, "service is healthy")
	return nil
}

func saveRequest(filename string, req AssessRequest) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func displayFinalStats(ctx context.Context, stats *Stats) {
	var passRate, perSecond float64
	if n := stats.Passed + stats.Failed; n > 0 {
		passRate = float64(stats.Passed) / float64(n) * PercentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("generated", stats.DatasetsGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("passed", stats.Passed),
		logger.Int("failed", stats.Failed),
		logger.Int("rejected", stats.Rejected),
		logger.Int("errors", stats.Errors),
		logger.Float64("meanScore", stats.MeanScore()),
		logger.Int("issues", stats.IssueSum),
		logger.Float64("passRate", passRate),
		logger.Float64("datasetsPerSecond", perSecond),
		logger.Duration("duration", stats.Duration))
}
