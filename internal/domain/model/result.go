package model

import (
	"fmt"
	"strings"
)

// Dimension names one quality axis.
type Dimension string

// Quality dimensions in canonical order.
const (
	Completeness Dimension = "completeness"
	Consistency  Dimension = "consistency"
	Diversity    Dimension = "diversity"
	Uniqueness   Dimension = "uniqueness"
)

// Dimensions lists every dimension in canonical order.
func Dimensions() []Dimension {
	return []Dimension{Completeness, Consistency, Diversity, Uniqueness}
}

// DetailLevel controls how much diagnostic payload accompanies a score.
type DetailLevel string

// Detail levels.
const (
	DetailLow    DetailLevel = "low"
	DetailMedium DetailLevel = "medium"
	DetailHigh   DetailLevel = "high"
)

// ParseDetailLevel validates s. Unknown levels are an error, never a default.
func ParseDetailLevel(s string) (DetailLevel, error) {
	l := DetailLevel(strings.ToLower(strings.TrimSpace(s)))
	if err := l.Validate(); err != nil {
		return "", err
	}
	return l, nil
}

// Validate returns ErrInvalidDetailLevel for anything but low, medium or high.
func (l DetailLevel) Validate() error {
	switch l {
	case DetailLow, DetailMedium, DetailHigh:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidDetailLevel, string(l))
	}
}

// AtLeast reports whether l is as verbose as other.
func (l DetailLevel) AtLeast(other DetailLevel) bool {
	return l.rank() >= other.rank()
}

func (l DetailLevel) rank() int {
	switch l {
	case DetailMedium:
		return 1
	case DetailHigh:
		return 2
	default:
		return 0
	}
}

// Severity grades an issue.
type Severity string

// Severities.
const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// IssueType classifies an issue.
type IssueType string

// Issue types emitted by the assessors.
const (
	IssueMissingValues            IssueType = "missing_values"
	IssueInconsistentType         IssueType = "inconsistent_type"
	IssueInconsistentFormat       IssueType = "inconsistent_format"
	IssueInconsistentRelationship IssueType = "inconsistent_relationship"
	IssueLowDiversity             IssueType = "low_diversity"
	IssueDuplicateValues          IssueType = "duplicate_values"
	IssueDuplicateRecords         IssueType = "duplicate_records"
)

// Issue is a quality defect tied to a field, or to the whole dataset when
// Field is nil.
type Issue struct {
	Field       *string            `json:"field"`
	Type        IssueType          `json:"issue_type"`
	Severity    Severity           `json:"severity"`
	Description string             `json:"description"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// FieldName returns the issue's field or "" for dataset-level issues.
func (i Issue) FieldName() string {
	if i.Field == nil {
		return ""
	}
	return *i.Field
}

// FieldRef returns a pointer to a copy of name for Issue.Field.
func FieldRef(name string) *string { return &name }

// Details is the optional diagnostic payload of a result.
type Details map[string]any

// DimensionResult is the uniform return value of every assessor.
type DimensionResult struct {
	Score   float64 `json:"score"`
	Issues  []Issue `json:"issues"`
	Details Details `json:"details,omitempty"`
}

// EmptyDatasetResult is returned for an empty dataset at any detail level.
func EmptyDatasetResult() DimensionResult {
	return DimensionResult{
		Score:   0,
		Issues:  []Issue{},
		Details: Details{"error": "empty dataset"},
	}
}

// Clamp bounds a score to [0,1].
func Clamp(score float64) float64 {
	switch {
	case score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}
