package service

import (
	"time"

	"github.com/okian/dataq/internal/domain/dimension"
	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of queued dimension jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithWeights sets each dimension's share of the overall score.
func WithWeights(weights map[model.Dimension]float64) Option {
	return func(s *Service) {
		if len(weights) > 0 {
			s.weights = weights
		}
	}
}

// WithPassThreshold sets the overall score needed to pass.
func WithPassThreshold(threshold float64) Option {
	return func(s *Service) {
		if threshold >= 0 && threshold <= 1 {
			s.passThreshold = threshold
		}
	}
}

// WithAssessTimeout bounds how long Assess waits for all dimensions.
func WithAssessTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.assessTimeout = d
		}
	}
}

// WithDefaultDetailLevel sets the level used when a request leaves it empty.
func WithDefaultDetailLevel(level model.DetailLevel) Option {
	return func(s *Service) {
		if level.Validate() == nil {
			s.defaultLevel = level
		}
	}
}

// WithMaxRecords caps the records accepted per request.
func WithMaxRecords(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxRecords = n
		}
	}
}

// WithAssessors replaces the assessor set.
func WithAssessors(assessors ...dimension.Assessor) Option {
	return func(s *Service) {
		if len(assessors) > 0 {
			s.assessors = assessors
		}
	}
}
