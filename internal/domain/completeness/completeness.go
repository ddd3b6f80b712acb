// Package completeness scores how much of a dataset is populated, weighting
// the score toward schema-required fields.
package completeness

import (
	"context"
	"fmt"

	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/pkg/logger"
)

// Severity bands on a field's missing rate.
const (
	requiredHighAbove = 0.1
	optionalMedAbove  = 0.2
	defaultExamples   = 5
)

// Assessor implements the completeness dimension. It is stateless and safe
// for concurrent use.
type Assessor struct {
	examples int
	logger   logger.Logger
}

// New creates a completeness assessor.
func New(opts ...Option) *Assessor {
	a := &Assessor{
		examples: defaultExamples,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dimension returns model.Completeness.
func (a *Assessor) Dimension() model.Dimension { return model.Completeness }

type fieldStat struct {
	name     string
	nonNull  int
	required bool
}

// Assess computes field and overall non-null coverage.
func (a *Assessor) Assess(ctx context.Context, data model.Dataset, schema *model.Schema, level model.DetailLevel) (model.DimensionResult, error) {
	if err := level.Validate(); err != nil {
		return model.DimensionResult{}, err
	}
	if len(data) == 0 {
		return model.EmptyDatasetResult(), nil
	}

	total := len(data)
	fields := data.Fields()
	if len(fields) == 0 {
		return model.DimensionResult{Issues: []model.Issue{}, Details: model.Details{"error": "no fields"}}, nil
	}

	// Without schema guidance every observed field matters.
	required := fields
	if schema.HasRequirements() {
		required = schema.RequiredFields(fields)
	}
	isRequired := make(map[string]bool, len(required))
	for _, f := range required {
		isRequired[f] = true
	}

	stats := make([]fieldStat, len(fields))
	for i, f := range fields {
		vals, _ := data.NonNull(f)
		stats[i] = fieldStat{name: f, nonNull: len(vals), required: isRequired[f]}
	}

	fieldScores := make(map[string]float64, len(fields))
	missingRates := make(map[string]float64, len(fields))
	issues := []model.Issue{}
	var reqSum, allSum float64
	for _, s := range stats {
		rate := float64(s.nonNull) / float64(total)
		missing := 1 - rate
		fieldScores[s.name] = rate
		missingRates[s.name] = missing
		allSum += rate
		if s.required {
			reqSum += rate
		}
		if missing > 0 {
			issues = append(issues, missingIssue(s, total, missing))
		}
	}

	score := allSum / float64(len(fields))
	if len(required) > 0 {
		score = reqSum / float64(len(required))
	}
	score = model.Clamp(score)

	res := model.DimensionResult{Score: score, Issues: issues}
	if level.AtLeast(model.DetailMedium) {
		res.Details = model.Details{
			"field_scores":    fieldScores,
			"missing_rates":   missingRates,
			"required_fields": append([]string{}, required...),
			"total_records":   total,
		}
	}
	if level.AtLeast(model.DetailHigh) {
		res.Details["missing_examples"] = a.missingExamples(data, stats)
	}

	a.logger.Debug(ctx, "completeness assessed",
		logger.Float64("score", score),
		logger.Int("fields", len(fields)),
		logger.Int("required", len(required)),
		logger.Int("issues", len(issues)),
	)
	return res, nil
}

func missingIssue(s fieldStat, total int, missing float64) model.Issue {
	sev := model.SeverityLow
	kind := "optional"
	switch {
	case s.required && missing > requiredHighAbove:
		sev = model.SeverityHigh
	case s.required:
		sev = model.SeverityMedium
	case missing > optionalMedAbove:
		sev = model.SeverityMedium
	}
	if s.required {
		kind = "required"
	}
	count := total - s.nonNull
	return model.Issue{
		Field:    model.FieldRef(s.name),
		Type:     model.IssueMissingValues,
		Severity: sev,
		Description: fmt.Sprintf("%s field '%s' is missing in %d of %d records (%.1f%%)",
			kind, s.name, count, total, missing*100),
		Metrics: map[string]float64{
			"missing_rate":  missing,
			"missing_count": float64(count),
		},
	}
}

// missingExamples echoes up to a.examples records per field that lack a value.
func (a *Assessor) missingExamples(data model.Dataset, stats []fieldStat) map[string][]model.Record {
	out := make(map[string][]model.Record)
	for _, s := range stats {
		if s.nonNull == len(data) {
			continue
		}
		var ex []model.Record
		for _, r := range data {
			if len(ex) == a.examples {
				break
			}
			if r.Value(s.name).IsNull() {
				ex = append(ex, r)
			}
		}
		out[s.name] = ex
	}
	return out
}
