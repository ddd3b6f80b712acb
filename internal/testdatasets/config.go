package testdatasets

import (
	"time"

	"github.com/okian/dataq/internal/domain/model"
)

// Config holds configuration for the load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	Datasets    int           // Number of datasets to submit
	Records     int           // Records per dataset
	MissingRate float64       // Null probability for optional fields
	DupRate     float64       // Duplicate record probability
	FormatNoise float64       // Probability of off-format dates
	DetailLevel string        // Requested detail level
	Seed        int64         // Base seed; dataset i uses Seed+i
	Workers     int           // Number of concurrent submitters
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Where to save the first generated dataset
	Verbose     bool          // Enable verbose logging
}

// AssessRequest is the body posted to /assess.
type AssessRequest struct {
	Data        model.Dataset `json:"data"`
	Schema      *model.Schema `json:"schema,omitempty"`
	DetailLevel string        `json:"detail_level,omitempty"`
}

// ReportSummary is the subset of the assessment report the tool reads.
type ReportSummary struct {
	ID           string  `json:"id"`
	OverallScore float64 `json:"overall_score"`
	Passed       bool    `json:"passed"`
	IssueCount   int     `json:"issue_count"`
	Records      int     `json:"records"`
}

// Stats holds run statistics.
type Stats struct {
	DatasetsGenerated int
	Submitted         int
	Passed            int
	Failed            int
	Rejected          int
	Errors            int
	ScoreSum          float64
	IssueSum          int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}

// MeanScore returns the mean overall score of the assessed datasets.
func (s *Stats) MeanScore() float64 {
	n := s.Passed + s.Failed
	if n == 0 {
		return 0
	}
	return s.ScoreSum / float64(n)
}
