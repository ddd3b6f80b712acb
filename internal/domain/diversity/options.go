package diversity

import "github.com/okian/dataq/pkg/logger"

// Option applies a configuration option to the Assessor.
type Option func(*Assessor)

// WithLogger sets the logger used for debug output.
func WithLogger(l logger.Logger) Option {
	return func(a *Assessor) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithTopValues sets how many frequent values high detail reports for
// categorical fields.
func WithTopValues(n int) Option {
	return func(a *Assessor) {
		if n > 0 {
			a.topValues = n
		}
	}
}

// WithBins sets the histogram bucket count for numeric fields.
func WithBins(n int) Option {
	return func(a *Assessor) {
		if n > 0 {
			a.bins = n
		}
	}
}
