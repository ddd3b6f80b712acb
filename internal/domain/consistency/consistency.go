// Package consistency scores type and format homogeneity per field and the
// consistency of declared cross-field dependencies.
package consistency

import (
	"context"
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/pkg/logger"
)

const (
	typeWeight   = 0.6
	formatWeight = 0.4

	// minPatternRate is the match rate a pattern must exceed to be chosen.
	minPatternRate = 0.1

	issueBelow      = 0.95
	highBelow       = 0.8
	mediumBelow     = 0.9
	relationHighLow = 0.8

	penaltyPerViolation = 0.05
	maxPenalty          = 0.2
)

// Assessor implements the consistency dimension. It is stateless and safe
// for concurrent use.
type Assessor struct {
	patterns []Pattern
	logger   logger.Logger
}

// New creates a consistency assessor.
func New(opts ...Option) *Assessor {
	a := &Assessor{
		patterns: DefaultPatterns,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dimension returns model.Consistency.
func (a *Assessor) Dimension() model.Dimension { return model.Consistency }

type fieldResult struct {
	name      string
	typeScore float64
	format    float64
	formatBy  string
	composite float64
	kinds     []model.Kind
	examples  map[model.Kind]model.Value
}

type relation struct {
	field, dependsOn string
	ratio            float64
	checked          int
}

func (r relation) key() string { return r.field + "_" + r.dependsOn }

// Assess computes per-field type/format consistency and dependency violations.
func (a *Assessor) Assess(ctx context.Context, data model.Dataset, schema *model.Schema, level model.DetailLevel) (model.DimensionResult, error) {
	if err := level.Validate(); err != nil {
		return model.DimensionResult{}, err
	}
	if len(data) == 0 {
		return model.EmptyDatasetResult(), nil
	}
	fields := data.Fields()
	if len(fields) == 0 {
		return model.DimensionResult{Issues: []model.Issue{}, Details: model.Details{"error": "no fields"}}, nil
	}

	results := make([]fieldResult, len(fields))
	sum := 0.0
	for i, f := range fields {
		vals, _ := data.NonNull(f)
		results[i] = a.assessField(f, vals)
		sum += results[i].composite
	}

	relations := checkRelations(data, fields, schema)
	var violations []relation
	for _, r := range relations {
		if r.ratio < 1 {
			violations = append(violations, r)
		}
	}

	penalty := math.Min(maxPenalty, penaltyPerViolation*float64(len(violations)))
	score := model.Clamp(math.Max(0, sum/float64(len(fields))-penalty))

	issues := []model.Issue{}
	for _, r := range results {
		if r.composite < issueBelow {
			issues = append(issues, fieldIssue(r))
		}
	}
	for _, r := range violations {
		issues = append(issues, relationIssue(r))
	}

	res := model.DimensionResult{Score: score, Issues: issues}
	if level.AtLeast(model.DetailMedium) {
		fieldScores := make(map[string]float64, len(results))
		typeScores := make(map[string]float64, len(results))
		formatScores := make(map[string]float64, len(results))
		formats := make(map[string]string, len(results))
		for _, r := range results {
			fieldScores[r.name] = r.composite
			typeScores[r.name] = r.typeScore
			formatScores[r.name] = r.format
			if r.formatBy != "" {
				formats[r.name] = r.formatBy
			}
		}
		relScores := make(map[string]float64, len(relations))
		for _, r := range relations {
			relScores[r.key()] = r.ratio
		}
		res.Details = model.Details{
			"field_scores":            fieldScores,
			"type_consistency":        typeScores,
			"format_consistency":      formatScores,
			"detected_formats":        formats,
			"relationship_scores":     relScores,
			"relationship_violations": len(violations),
			"total_records":           len(data),
		}
	}
	if level.AtLeast(model.DetailHigh) {
		res.Details["type_examples"] = typeExamples(results)
	}

	a.logger.Debug(ctx, "consistency assessed",
		logger.Float64("score", score),
		logger.Int("fields", len(fields)),
		logger.Int("violations", len(violations)),
		logger.Int("issues", len(issues)),
	)
	return res, nil
}

func (a *Assessor) assessField(name string, vals []model.Value) fieldResult {
	r := fieldResult{name: name, typeScore: 1, format: 1, composite: 1, examples: map[model.Kind]model.Value{}}
	if len(vals) == 0 {
		return r
	}

	counts := make(map[model.Kind]int)
	for _, v := range vals {
		k := v.Kind()
		if _, ok := counts[k]; !ok {
			r.kinds = append(r.kinds, k)
			r.examples[k] = v
		}
		counts[k]++
	}
	dominant := r.kinds[0]
	for _, k := range r.kinds[1:] {
		if counts[k] > counts[dominant] {
			dominant = k
		}
	}
	r.typeScore = float64(counts[dominant]) / float64(len(vals))

	r.format = r.typeScore
	if dominant == model.KindString {
		var strs []string
		for _, v := range vals {
			if s, ok := v.Str(); ok {
				strs = append(strs, s)
			}
		}
		r.format, r.formatBy = a.formatConsistency(strs)
	}
	r.composite = typeWeight*r.typeScore + formatWeight*r.format
	return r
}

// formatConsistency returns the best pattern's match rate when it clears
// minPatternRate, otherwise the share of the most common string length.
func (a *Assessor) formatConsistency(strs []string) (float64, string) {
	best, bestName := 0.0, ""
	for _, p := range a.patterns {
		matched := 0
		for _, s := range strs {
			if p.Matcher.MatchString(s) {
				matched++
			}
		}
		rate := float64(matched) / float64(len(strs))
		if rate > minPatternRate && rate > best {
			best, bestName = rate, p.Name
		}
	}
	if bestName != "" {
		return best, bestName
	}

	lengths := make(map[int]int)
	most := 0
	for _, s := range strs {
		n := utf8.RuneCountInString(s)
		lengths[n]++
		if lengths[n] > most {
			most = lengths[n]
		}
	}
	return float64(most) / float64(len(strs)), lengthFormat
}

// checkRelations evaluates schema dependencies in field discovery order.
// Dependencies naming unobserved fields are skipped.
func checkRelations(data model.Dataset, fields []string, schema *model.Schema) []relation {
	if schema == nil || len(schema.Dependencies) == 0 {
		return nil
	}
	observed := make(map[string]bool, len(fields))
	for _, f := range fields {
		observed[f] = true
	}
	var out []relation
	for _, field := range fields {
		for _, dep := range schema.Dependencies[field] {
			if !observed[dep] || dep == field {
				continue
			}
			checked, both := 0, 0
			for _, r := range data {
				if r.Value(dep).IsNull() {
					continue
				}
				checked++
				if !r.Value(field).IsNull() {
					both++
				}
			}
			if checked == 0 {
				continue
			}
			out = append(out, relation{
				field:     field,
				dependsOn: dep,
				ratio:     float64(both) / float64(checked),
				checked:   checked,
			})
		}
	}
	return out
}

func fieldIssue(r fieldResult) model.Issue {
	kind := model.IssueInconsistentFormat
	desc := fmt.Sprintf("field '%s' has inconsistent formats (format consistency %.1f%%)", r.name, r.format*100)
	if r.typeScore < issueBelow {
		kind = model.IssueInconsistentType
		desc = fmt.Sprintf("field '%s' mixes %d value types (type consistency %.1f%%)", r.name, len(r.kinds), r.typeScore*100)
	}
	sev := model.SeverityLow
	switch {
	case r.composite < highBelow:
		sev = model.SeverityHigh
	case r.composite < mediumBelow:
		sev = model.SeverityMedium
	}
	return model.Issue{
		Field:       model.FieldRef(r.name),
		Type:        kind,
		Severity:    sev,
		Description: desc,
		Metrics: map[string]float64{
			"consistency":        r.composite,
			"type_consistency":   r.typeScore,
			"format_consistency": r.format,
		},
	}
}

func relationIssue(r relation) model.Issue {
	sev := model.SeverityMedium
	if r.ratio < relationHighLow {
		sev = model.SeverityHigh
	}
	return model.Issue{
		Field:    model.FieldRef(r.key()),
		Type:     model.IssueInconsistentRelationship,
		Severity: sev,
		Description: fmt.Sprintf("field '%s' is missing in %.1f%% of the %d records where '%s' is present",
			r.field, (1-r.ratio)*100, r.checked, r.dependsOn),
		Metrics: map[string]float64{
			"consistency":     r.ratio,
			"records_checked": float64(r.checked),
		},
	}
}

// typeExamples returns one value per observed kind for inconsistent fields
// that mix kinds.
func typeExamples(results []fieldResult) map[string]map[string]model.Value {
	out := make(map[string]map[string]model.Value)
	for _, r := range results {
		if r.composite >= issueBelow || len(r.kinds) < 2 {
			continue
		}
		ex := make(map[string]model.Value, len(r.kinds))
		for _, k := range r.kinds {
			ex[k.String()] = r.examples[k]
		}
		out[r.name] = ex
	}
	return out
}
