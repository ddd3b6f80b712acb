// Package uniqueness scores value duplication per field and duplication of
// whole records.
package uniqueness

import (
	"context"
	"fmt"
	"sort"

	"github.com/okian/dataq/internal/domain/dedupe"
	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/pkg/logger"
)

const (
	fieldWeight  = 0.7
	recordWeight = 0.3

	valueHighAbove    = 0.2
	valueMediumAbove  = 0.05
	recordHighAbove   = 0.1
	recordMediumAbove = 0.01

	defaultTop      = 5
	defaultPerValue = 3
)

// DuplicateValue is a repeated field value with example records.
type DuplicateValue struct {
	Value    model.Value    `json:"value"`
	Count    int            `json:"count"`
	Examples []model.Record `json:"examples"`
}

// DuplicateRecord is a record that occurs more than once.
type DuplicateRecord struct {
	Record model.Record `json:"record"`
	Count  int          `json:"count"`
}

// Assessor implements the uniqueness dimension. It is stateless and safe for
// concurrent use.
type Assessor struct {
	top      int
	perValue int
	logger   logger.Logger
}

// New creates a uniqueness assessor.
func New(opts ...Option) *Assessor {
	a := &Assessor{
		top:      defaultTop,
		perValue: defaultPerValue,
		logger:   logger.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Dimension returns model.Uniqueness.
func (a *Assessor) Dimension() model.Dimension { return model.Uniqueness }

type fieldUniqueness struct {
	name       string
	counts     *model.Counts
	rows       []int
	uniqueness float64
	duplicates int
}

// Assess computes field uniqueness and record uniqueness.
func (a *Assessor) Assess(ctx context.Context, data model.Dataset, _ *model.Schema, level model.DetailLevel) (model.DimensionResult, error) {
	if err := level.Validate(); err != nil {
		return model.DimensionResult{}, err
	}
	if len(data) == 0 {
		return model.EmptyDatasetResult(), nil
	}
	total := len(data)

	var fields []fieldUniqueness
	sum := 0.0
	for _, name := range data.Fields() {
		vals, rows := data.NonNull(name)
		if len(vals) == 0 {
			continue
		}
		c := model.CountValues(vals)
		singles := c.Singletons()
		f := fieldUniqueness{
			name:       name,
			counts:     c,
			rows:       rows,
			uniqueness: float64(singles) / float64(len(vals)),
			duplicates: len(vals) - singles,
		}
		sum += f.uniqueness
		fields = append(fields, f)
	}

	idx := dedupe.Build(data, dedupe.WithMaxIndexes(1))
	dupRecords := idx.DuplicateCount()
	recordUniqueness := float64(total-dupRecords) / float64(total)

	score := recordUniqueness
	if len(fields) > 0 {
		score = fieldWeight*(sum/float64(len(fields))) + recordWeight*recordUniqueness
	}
	score = model.Clamp(score)

	issues := []model.Issue{}
	for _, f := range fields {
		if f.duplicates > 0 {
			issues = append(issues, valueIssue(f, total))
		}
	}
	if dupRecords > 0 {
		issues = append(issues, recordIssue(dupRecords, total, recordUniqueness))
	}

	res := model.DimensionResult{Score: score, Issues: issues}
	if level.AtLeast(model.DetailMedium) {
		fu := make(map[string]float64, len(fields))
		for _, f := range fields {
			fu[f.name] = f.uniqueness
		}
		res.Details = model.Details{
			"field_uniqueness":       fu,
			"record_uniqueness":      recordUniqueness,
			"duplicate_record_count": dupRecords,
			"total_records":          total,
		}
	}
	if level.AtLeast(model.DetailHigh) {
		res.Details["duplicate_values"] = a.duplicateValues(data, fields)
		res.Details["duplicate_records"] = a.duplicateRecords(data, idx)
	}

	a.logger.Debug(ctx, "uniqueness assessed",
		logger.Float64("score", score),
		logger.Int("duplicate_records", dupRecords),
		logger.Int("issues", len(issues)),
	)
	return res, nil
}

func valueIssue(f fieldUniqueness, total int) model.Issue {
	rate := float64(f.duplicates) / float64(total)
	sev := model.SeverityLow
	switch {
	case rate > valueHighAbove:
		sev = model.SeverityHigh
	case rate > valueMediumAbove:
		sev = model.SeverityMedium
	}
	return model.Issue{
		Field:       model.FieldRef(f.name),
		Type:        model.IssueDuplicateValues,
		Severity:    sev,
		Description: fmt.Sprintf("field '%s' has %d duplicate values (%.1f%% of records)", f.name, f.duplicates, rate*100),
		Metrics: map[string]float64{
			"uniqueness":      f.uniqueness,
			"duplicate_count": float64(f.duplicates),
			"duplicate_rate":  rate,
		},
	}
}

func recordIssue(dups, total int, uniqueness float64) model.Issue {
	rate := float64(dups) / float64(total)
	sev := model.SeverityLow
	switch {
	case rate > recordHighAbove:
		sev = model.SeverityHigh
	case rate > recordMediumAbove:
		sev = model.SeverityMedium
	}
	return model.Issue{
		Type:        model.IssueDuplicateRecords,
		Severity:    sev,
		Description: fmt.Sprintf("%d of %d records are duplicates (%.1f%%)", dups, total, rate*100),
		Metrics: map[string]float64{
			"record_uniqueness": uniqueness,
			"duplicate_count":   float64(dups),
			"duplicate_rate":    rate,
		},
	}
}

func (a *Assessor) duplicateValues(data model.Dataset, fields []fieldUniqueness) map[string][]DuplicateValue {
	out := make(map[string][]DuplicateValue)
	for _, f := range fields {
		if f.duplicates == 0 {
			continue
		}
		var list []DuplicateValue
		for _, vc := range f.counts.MostCommon(0) {
			if vc.Count < 2 || len(list) == a.top {
				break
			}
			list = append(list, DuplicateValue{
				Value:    vc.Value,
				Count:    vc.Count,
				Examples: a.examples(data, f, vc.Value),
			})
		}
		out[f.name] = list
	}
	return out
}

func (a *Assessor) examples(data model.Dataset, f fieldUniqueness, v model.Value) []model.Record {
	var out []model.Record
	for _, row := range f.rows {
		if data[row].Value(f.name) != v {
			continue
		}
		out = append(out, data[row])
		if len(out) == a.perValue {
			break
		}
	}
	return out
}

func (a *Assessor) duplicateRecords(data model.Dataset, idx *dedupe.Index) []DuplicateRecord {
	groups := idx.Duplicates()
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Count() > groups[j].Count() })
	if len(groups) > a.top {
		groups = groups[:a.top]
	}
	out := make([]DuplicateRecord, len(groups))
	for i, g := range groups {
		out[i] = DuplicateRecord{Record: data[g.First], Count: g.Count()}
	}
	return out
}
