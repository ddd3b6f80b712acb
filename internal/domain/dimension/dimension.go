// Package dimension exposes the quality assessors behind one interface.
package dimension

import (
	"context"
	"fmt"

	"github.com/okian/dataq/internal/domain/completeness"
	"github.com/okian/dataq/internal/domain/consistency"
	"github.com/okian/dataq/internal/domain/diversity"
	"github.com/okian/dataq/internal/domain/model"
	"github.com/okian/dataq/internal/domain/uniqueness"
	"github.com/okian/dataq/pkg/logger"
)

// Assessor scores a dataset along one quality dimension.
type Assessor interface {
	Dimension() model.Dimension
	Assess(ctx context.Context, data model.Dataset, schema *model.Schema, level model.DetailLevel) (model.DimensionResult, error)
}

// All returns the four assessors in canonical order, logging through l.
func All(l logger.Logger) []Assessor {
	if l == nil {
		l = logger.Nop()
	}
	return []Assessor{
		completeness.New(completeness.WithLogger(l.Named("completeness"))),
		consistency.New(consistency.WithLogger(l.Named("consistency"))),
		diversity.New(diversity.WithLogger(l.Named("diversity"))),
		uniqueness.New(uniqueness.WithLogger(l.Named("uniqueness"))),
	}
}

// Registry maps dimensions to assessors.
type Registry map[model.Dimension]Assessor

// NewRegistry indexes assessors by dimension. A later assessor replaces an
// earlier one for the same dimension.
func NewRegistry(assessors ...Assessor) Registry {
	r := make(Registry, len(assessors))
	for _, a := range assessors {
		r[a.Dimension()] = a
	}
	return r
}

// Lookup returns the assessor for d.
func (r Registry) Lookup(d model.Dimension) (Assessor, error) {
	a, ok := r[d]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDimension, d)
	}
	return a, nil
}

// Dimensions lists registered dimensions in canonical order.
func (r Registry) Dimensions() []model.Dimension {
	var out []model.Dimension
	for _, d := range model.Dimensions() {
		if _, ok := r[d]; ok {
			out = append(out, d)
		}
	}
	return out
}
