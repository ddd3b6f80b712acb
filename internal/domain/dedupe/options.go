package dedupe

// Option applies a configuration option to an Index.
type Option func(*Index)

// WithMaxIndexes caps how many record positions each group remembers.
// Counts stay exact. A negative value keeps every position.
func WithMaxIndexes(n int) Option {
	return func(x *Index) {
		x.maxKeep = n
	}
}
