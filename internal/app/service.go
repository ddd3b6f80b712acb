// Package service combines the dimension assessors into quality reports.
// Each request fans out one job per dimension onto the worker pool and
// aggregates the results with configured weights.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	jobqueue "github.com/okian/dataq/internal/adapters/mq/queue"
	workerpool "github.com/okian/dataq/internal/adapters/mq/worker"
	"github.com/okian/dataq/internal/domain/dimension"
	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/pkg/logger"
	"github.com/okian/dataq/pkg/metrics"
)

// Default service configuration constants.
const (
	defaultQueueSize     = 1024
	defaultPassThreshold = 0.7
	defaultAssessTimeout = 30 * time.Second
	defaultMaxRecords    = 100_000
	stopTimeout          = 10 * time.Second
)

// Request is one dataset to assess.
type Request struct {
	Data   model.Dataset
	Schema *model.Schema
	// Level defaults to the service's default detail level when empty.
	Level model.DetailLevel
}

// Report is the combined verdict over every dimension.
type Report struct {
	ID           string                                    `json:"id"`
	Dimensions   map[model.Dimension]model.DimensionResult `json:"dimensions"`
	OverallScore float64                                   `json:"overall_score"`
	Passed       bool                                      `json:"passed"`
	IssueCount   int                                       `json:"issue_count"`
	Records      int                                       `json:"records"`
	DetailLevel  model.DetailLevel                         `json:"detail_level"`
	Duration     time.Duration                             `json:"duration_ns"`
}

// DimensionInfo describes a served dimension.
type DimensionInfo struct {
	Name   model.Dimension `json:"name"`
	Weight float64         `json:"weight"`
}

// Service implements the API dependencies for quality assessment.
type Service struct {
	mu sync.RWMutex

	// Core components
	assessors []dimension.Assessor
	registry  dimension.Registry
	jobQueue  *jobqueue.InMemoryQueue
	pool      *workerpool.Pool
	cancel    context.CancelFunc

	// Configuration
	workerCount   int
	queueSize     int
	weights       map[model.Dimension]float64
	passThreshold float64
	assessTimeout time.Duration
	defaultLevel  model.DetailLevel
	maxRecords    int

	// State
	started bool

	// Counters
	assessed atomic.Int64
	rejected atomic.Int64
	timeouts atomic.Int64
	failures atomic.Int64

	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   defaultQueueSize,
		weights: map[model.Dimension]float64{
			model.Completeness: 0.3,
			model.Consistency:  0.3,
			model.Diversity:    0.2,
			model.Uniqueness:   0.2,
		},
		passThreshold: defaultPassThreshold,
		assessTimeout: defaultAssessTimeout,
		defaultLevel:  model.DetailMedium,
		maxRecords:    defaultMaxRecords,
		logger:        logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.assessors == nil {
		s.assessors = dimension.All(s.logger)
	}
	s.registry = dimension.NewRegistry(s.assessors...)
	return s
}

// Start initializes the job queue and worker pool.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	s.logger.Info(ctx, "starting quality service...")

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	s.cancel = cancel
	s.jobQueue = jobqueue.NewInMemoryQueue(jobqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.jobQueue, s.registry, workerpool.WithLogger(s.logger))
	s.pool.Start(runCtx)

	s.started = true
	s.logger.Info(ctx, "quality service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dimensions", len(s.registry)),
	)
	return nil
}

// Stop drains queued jobs and stops the workers.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	s.logger.Info(ctx, "stopping quality service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not drain", logger.Error(err))
	}
	s.cancel()

	s.started = false
	s.logger.Info(ctx, "quality service stopped")
}

// Assess scores req along every served dimension and combines the results.
// It fails fast with ErrBackpressure when the job queue cannot take the
// whole request and with ErrTimeout when results do not arrive in time.
func (s *Service) Assess(ctx context.Context, req Request) (*Report, error) {
	level := req.Level
	if level == "" {
		level = s.defaultLevel
	}
	if err := level.Validate(); err != nil {
		return nil, err
	}
	if len(req.Data) > s.maxRecords {
		return nil, fmt.Errorf("%w: %d > %d", ErrTooManyRecords, len(req.Data), s.maxRecords)
	}

	s.mu.RLock()
	started, q := s.started, s.jobQueue
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	start := time.Now()
	id := uuid.NewString()
	dims := s.registry.Dimensions()
	reply := make(chan jobqueue.JobResult, len(dims))

	jobs := make([]jobqueue.Job, len(dims))
	for i, d := range dims {
		jobs[i] = jobqueue.Job{
			ID:        id + "/" + string(d),
			Dimension: d,
			Data:      req.Data,
			Schema:    req.Schema,
			Level:     level,
			Reply:     reply,
		}
	}
	if err := q.EnqueueAll(ctx, jobs); err != nil {
		s.rejected.Add(1)
		metrics.RecordAssessError("backpressure")
		s.logger.Warn(ctx, "assessment rejected", logger.String("id", id), logger.Error(err))
		if errors.Is(err, jobqueue.ErrFull) || errors.Is(err, jobqueue.ErrClosed) {
			return nil, fmt.Errorf("%w: %v", ErrBackpressure, err)
		}
		return nil, err
	}

	timer := time.NewTimer(s.assessTimeout)
	defer timer.Stop()

	results := make(map[model.Dimension]model.DimensionResult, len(dims))
	for len(results) < len(dims) {
		select {
		case r := <-reply:
			if r.Err != nil {
				s.failures.Add(1)
				metrics.RecordAssessError("failed")
				return nil, fmt.Errorf("%w: %v", ErrAssessFailed, r.Err)
			}
			results[r.Dimension] = r.Result
		case <-timer.C:
			s.timeouts.Add(1)
			metrics.RecordAssessError("timeout")
			return nil, fmt.Errorf("%w after %s", ErrTimeout, s.assessTimeout)
		case <-ctx.Done():
			s.timeouts.Add(1)
			metrics.RecordAssessError("cancelled")
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		}
	}

	report := s.combine(id, results)
	report.Records = len(req.Data)
	report.DetailLevel = level
	report.Duration = time.Since(start)

	s.assessed.Add(1)
	metrics.RecordReport(report.OverallScore, report.Passed, report.Records)
	s.logger.Info(ctx, "dataset assessed",
		logger.String("id", id),
		logger.Int("records", report.Records),
		logger.Float64("overall", report.OverallScore),
		logger.Bool("passed", report.Passed),
		logger.Duration("duration", report.Duration),
	)
	return report, nil
}

// combine computes the weighted overall score. Dimensions without a positive
// weight are reported but do not count; with no positive weight at all the
// plain mean is used.
func (s *Service) combine(id string, results map[model.Dimension]model.DimensionResult) *Report {
	report := &Report{ID: id, Dimensions: results}
	var weighted, total, plain float64
	for _, d := range s.registry.Dimensions() {
		r, ok := results[d]
		if !ok {
			continue
		}
		report.IssueCount += len(r.Issues)
		plain += r.Score
		if w := s.weights[d]; w > 0 {
			weighted += w * r.Score
			total += w
		}
	}
	switch {
	case total > 0:
		report.OverallScore = weighted / total
	case len(results) > 0:
		report.OverallScore = plain / float64(len(results))
	}
	report.OverallScore = model.Clamp(report.OverallScore)
	report.Passed = report.OverallScore >= s.passThreshold
	return report
}

// Dimensions lists served dimensions with their weights in canonical order.
func (s *Service) Dimensions() []DimensionInfo {
	dims := s.registry.Dimensions()
	out := make([]DimensionInfo, len(dims))
	for i, d := range dims {
		out[i] = DimensionInfo{Name: d, Weight: s.weights[d]}
	}
	return out
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"workerCount":     s.workerCount,
		"queueSize":       s.queueSize,
		"passThreshold":   s.passThreshold,
		"assessed":        s.assessed.Load(),
		"rejected":        s.rejected.Load(),
		"timeouts":        s.timeouts.Load(),
		"failures":        s.failures.Load(),
		"assessTimeoutMs": s.assessTimeout.Milliseconds(),
	}
	if s.started {
		stats["queueLength"] = s.jobQueue.Len(context.Background())
		stats["activeWorkers"] = s.pool.Active()
	}
	return stats
}
