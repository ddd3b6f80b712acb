// Package diversity scores how varied each field's values are, combining
// normalized entropy with the distinct-value ratio.
package diversity

import (
	"context"
	"fmt"

	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/internal/domain/stats"
	"github.com/okian/dataq/pkg/logger"
)

const (
	entropyWeight = 0.7
	uniqueWeight  = 0.3

	issueBelow  = 0.3
	highBelow   = 0.1
	mediumBelow = 0.2

	defaultTopValues = 10
	defaultBins      = 10
)

// Value distribution kinds reported at high detail.
const (
	DistributionCategorical = "categorical"
	DistributionNumeric     = "numeric"
)

// Assessor implements the diversity dimension. It is stateless and safe for
// concurrent use.
type Assessor struct {
	topValues int
	bins      int
	logger    logger.Logger
}

// New creates a diversity assessor.
func New(opts ...Option) *Assessor {
	a := &Assessor{
		topValues: defaultTopValues,
		bins:      defaultBins,
		logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dimension returns model.Diversity.
func (a *Assessor) Dimension() model.Dimension { return model.Diversity }

type fieldDiversity struct {
	name    string
	counts  *model.Counts
	numbers []float64
	entropy float64
	unique  float64
	score   float64
}

func (f fieldDiversity) numeric() bool { return f.numbers != nil }

// Assess computes per-field diversity and its outlier-trimmed mean.
func (a *Assessor) Assess(ctx context.Context, data model.Dataset, _ *model.Schema, level model.DetailLevel) (model.DimensionResult, error) {
	if err := level.Validate(); err != nil {
		return model.DimensionResult{}, err
	}
	if len(data) == 0 {
		return model.EmptyDatasetResult(), nil
	}

	var fields []fieldDiversity
	for _, name := range data.Fields() {
		vals, _ := data.NonNull(name)
		if len(vals) == 0 {
			continue
		}
		fields = append(fields, measure(name, vals))
	}
	if len(fields) == 0 {
		return model.DimensionResult{Issues: []model.Issue{}, Details: model.Details{"error": "no non-null values"}}, nil
	}

	scores := make([]float64, len(fields))
	issues := []model.Issue{}
	for i, f := range fields {
		scores[i] = f.score
		if f.score < issueBelow {
			issues = append(issues, lowDiversityIssue(f))
		}
	}
	score := model.Clamp(stats.TrimmedMean(scores))

	res := model.DimensionResult{Score: score, Issues: issues}
	if level.AtLeast(model.DetailMedium) {
		fieldScores := make(map[string]float64, len(fields))
		entropy := make(map[string]float64, len(fields))
		unique := make(map[string]float64, len(fields))
		distributions := make(map[string]stats.Summary)
		for _, f := range fields {
			fieldScores[f.name] = f.score
			entropy[f.name] = f.entropy
			unique[f.name] = f.unique
			if !f.numeric() {
				continue
			}
			sum, err := stats.Describe(f.numbers)
			if err != nil {
				a.logger.Debug(ctx, "distribution omitted", logger.String("field", f.name), logger.Error(err))
				continue
			}
			distributions[f.name] = sum
		}
		res.Details = model.Details{
			"field_scores":        fieldScores,
			"entropy_scores":      entropy,
			"unique_value_ratios": unique,
			"distributions":       distributions,
		}
	}
	if level.AtLeast(model.DetailHigh) {
		res.Details["value_distributions"] = a.valueDistributions(fields)
	}

	a.logger.Debug(ctx, "diversity assessed",
		logger.Float64("score", score),
		logger.Int("fields", len(fields)),
		logger.Int("issues", len(issues)),
	)
	return res, nil
}

func measure(name string, vals []model.Value) fieldDiversity {
	f := fieldDiversity{name: name, counts: model.CountValues(vals)}
	f.entropy = stats.NormalizedEntropy(f.counts.Frequencies())
	f.unique = float64(f.counts.Distinct()) / float64(len(vals))
	f.score = entropyWeight*f.entropy + uniqueWeight*f.unique

	numbers := make([]float64, 0, len(vals))
	for _, v := range vals {
		if !v.IsNumeric() {
			return f
		}
		x, _ := v.Float()
		numbers = append(numbers, x)
	}
	f.numbers = numbers
	return f
}

func lowDiversityIssue(f fieldDiversity) model.Issue {
	sev := model.SeverityLow
	switch {
	case f.score < highBelow:
		sev = model.SeverityHigh
	case f.score < mediumBelow:
		sev = model.SeverityMedium
	}
	return model.Issue{
		Field:    model.FieldRef(f.name),
		Type:     model.IssueLowDiversity,
		Severity: sev,
		Description: fmt.Sprintf("field '%s' has low diversity: %d distinct of %d values (score %.2f)",
			f.name, f.counts.Distinct(), f.counts.Total(), f.score),
		Metrics: map[string]float64{
			"diversity":          f.score,
			"entropy":            f.entropy,
			"unique_value_ratio": f.unique,
		},
	}
}

func (a *Assessor) valueDistributions(fields []fieldDiversity) map[string]map[string]any {
	out := make(map[string]map[string]any, len(fields))
	for _, f := range fields {
		if f.numeric() {
			hist, err := stats.Histogram(f.numbers, a.bins)
			if err == nil {
				out[f.name] = map[string]any{"type": DistributionNumeric, "histogram": hist}
				continue
			}
		}
		out[f.name] = map[string]any{"type": DistributionCategorical, "top_values": f.counts.MostCommon(a.topValues)}
	}
	return out
}
