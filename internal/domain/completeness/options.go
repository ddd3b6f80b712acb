package completeness

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

// WithExampleLimit sets how many records per field are echoed at high detail.
func WithExampleLimit(n int) Option {
	return func(a *Assessor) {
		if n > 0 {
			a.examples = n
		}
	}
}
