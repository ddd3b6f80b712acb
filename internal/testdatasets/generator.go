// Package testdatasets generates synthetic datasets with controllable
// defects and drives a running service with them.
package testdatasets

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/okian/dataq/internal/domain/model"
)

// Default generator settings.
const (
	defaultRecords     = 100
	defaultCardinality = 5
)

//nolint:gochecknoglobals // fixture pools
var (
	firstNames = []string{"Ann", "Bob", "Cleo", "Dan", "Eve", "Finn", "Gus", "Hana", "Ivo", "Jun", "Kai", "Lea"}
	domains    = []string{"example.com", "mail.test", "corp.example"}
	epoch      = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Generator builds deterministic datasets. The same seed and settings always
// produce the same records.
type Generator struct {
	records       int
	missingRate   float64
	duplicateRate float64
	cardinality   int
	formatNoise   float64
	seed          int64
}

// NewGenerator creates a generator with configuration options.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		records:     defaultRecords,
		cardinality: defaultCardinality,
		seed:        1,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Schema describes the generated records.
func (g *Generator) Schema() *model.Schema {
	no := false
	return &model.Schema{
		Properties: map[string]model.Property{
			"id":     {Type: "string", Nullable: &no},
			"name":   {Type: "string"},
			"email":  {Type: "string"},
			"tier":   {Type: "string"},
			"amount": {Type: "number"},
			"visits": {Type: "integer"},
			"joined": {Type: "string"},
		},
		Required:     []string{"id", "email"},
		Dependencies: map[string][]string{"amount": {"tier"}},
	}
}

// Generate returns a new dataset.
func (g *Generator) Generate() (model.Dataset, error) {
	rng := rand.New(rand.NewSource(g.seed)) //nolint:gosec // deterministic fixtures, not security sensitive
	data := make(model.Dataset, 0, g.records)
	for i := 0; i < g.records; i++ {
		if i > 0 && rng.Float64() < g.duplicateRate {
			data = append(data, data[rng.Intn(len(data))])
			continue
		}
		r, err := g.record(rng, i)
		if err != nil {
			return nil, err
		}
		data = append(data, r)
	}
	return data, nil
}

func (g *Generator) record(rng *rand.Rand, i int) (model.Record, error) {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return model.Record{}, fmt.Errorf("generate id: %w", err)
	}
	name := firstNames[rng.Intn(len(firstNames))]
	joined := epoch.AddDate(0, 0, rng.Intn(365))

	fields := []model.Field{
		model.F("id", id.String()),
		g.maybe(rng, "name", name),
		g.maybe(rng, "email", fmt.Sprintf("%s.%d@%s", name, i, domains[rng.Intn(len(domains))])),
		g.maybe(rng, "tier", fmt.Sprintf("tier-%d", rng.Intn(g.cardinality))),
		g.maybe(rng, "amount", float64(rng.Intn(100_000))/100),
		g.maybe(rng, "visits", rng.Intn(50)),
	}
	if rng.Float64() < g.formatNoise {
		fields = append(fields, g.maybe(rng, "joined", joined.Format("01/02/2006")))
	} else {
		fields = append(fields, g.maybe(rng, "joined", joined.Format("2006-01-02")))
	}
	return model.NewRecord(fields...), nil
}

// maybe returns the field or, with the missing rate, a null under the same name.
func (g *Generator) maybe(rng *rand.Rand, name string, v any) model.Field {
	if rng.Float64() < g.missingRate {
		return model.F(name, nil)
	}
	return model.F(name, v)
}
