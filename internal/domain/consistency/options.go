package consistency

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

// WithPatterns replaces the format bank.
func WithPatterns(patterns []Pattern) Option {
	return func(a *Assessor) {
		if len(patterns) > 0 {
			a.patterns = patterns
		}
	}
}
