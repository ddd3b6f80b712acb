package testdatasets

// Option applies a configuration option to the Generator.
type Option func(*Generator)

// WithRecords sets the number of records.
func WithRecords(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.records = n
		}
	}
}

// WithMissingRate sets the probability that an optional field is null.
func WithMissingRate(rate float64) Option {
	return func(g *Generator) {
		if rate >= 0 && rate <= 1 {
			g.missingRate = rate
		}
	}
}

// WithDuplicateRate sets the probability that a record repeats an earlier one.
func WithDuplicateRate(rate float64) Option {
	return func(g *Generator) {
		if rate >= 0 && rate <= 1 {
			g.duplicateRate = rate
		}
	}
}

// WithCardinality sets the number of distinct tiers.
func WithCardinality(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.cardinality = n
		}
	}
}

// WithFormatNoise sets the probability that a date uses the US format.
func WithFormatNoise(rate float64) Option {
	return func(g *Generator) {
		if rate >= 0 && rate <= 1 {
			g.formatNoise = rate
		}
	}
}

// WithSeed sets the random seed.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.seed = seed
	}
}
