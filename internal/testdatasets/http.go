package testdatasets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/dataq/pkg/logger"
)

// HTTPClient wraps http.Client with a timeout.
type HTTPClient struct {
	client *http.Client
}

func newHTTPClient(timeout time.Duration) *HTTPClient {
	return &HTTPClient{client: &http.Client{Timeout: timeout}}
}

// Get performs a GET request.
func (c *HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	return c.client.Do(req)
}

// Post performs a POST request with a JSON body.
func (c *HTTPClient) Post(ctx context.Context, url string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.client.Do(req)
}

type submission struct {
	outcome string
	report  ReportSummary
}

// submitDatasets posts every request using a pool of workers and folds the
// outcomes into stats.
func submitDatasets(ctx context.Context, config *Config, reqs []AssessRequest, stats *Stats) {
	log := logger.Get()
	log.Info(ctx, "submitting datasets",
		logger.Int("datasets", len(reqs)),
		logger.Int("workers", config.Workers))

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}
	client := newHTTPClient(config.Timeout)
	url := config.BaseURL + "/assess"

	var submitted int64
	results := make(chan submission, len(reqs))
	work := make(chan AssessRequest, workers*2)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for req := range work {
				if ctx.Err() != nil {
					return
				}
				results <- submitSingle(ctx, client, url, req)
				n := atomic.AddInt64(&submitted, 1)
				if config.Verbose {
					log.Debug(ctx, "progress", logger.Int("submitted", int(n)), logger.Int("total", len(reqs)))
				}
			}
		}()
	}

	go func() {
		defer close(work)
		for _, req := range reqs {
			select {
			case <-ctx.Done():
				return
			case work <- req:
			}
		}
	}()

	wg.Wait()
	close(results)

	for r := range results {
		stats.Submitted++
		switch r.outcome {
		case outcomePassed:
			stats.Passed++
		case outcomeFailed:
			stats.Failed++
		case outcomeRejected:
			stats.Rejected++
		default:
			stats.Errors++
		}
		if r.outcome == outcomePassed || r.outcome == outcomeFailed {
			stats.ScoreSum += r.report.OverallScore
			stats.IssueSum += r.report.IssueCount
		}
	}
}

func submitSingle(ctx context.Context, client *HTTPClient, url string, req AssessRequest) submission {
	resp, err := client.Post(ctx, url, req)
	if err != nil {
		return submission{outcome: outcomeError}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return submission{outcome: outcomeError}
	}

	switch resp.StatusCode {
	case StatusOK:
		var report ReportSummary
		if err := json.Unmarshal(body, &report); err != nil {
			return submission{outcome: outcomeError}
		}
		if report.Passed {
			return submission{outcome: outcomePassed, report: report}
		}
		return submission{outcome: outcomeFailed, report: report}
	case StatusTooManyRequests, StatusGatewayTimeout:
		return submission{outcome: outcomeRejected}
	default:
		return submission{outcome: outcomeError}
	}
}
