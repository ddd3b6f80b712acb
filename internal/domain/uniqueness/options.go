package uniqueness

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

// WithExampleLimits caps the high detail payload: how many duplicated
// values or records are listed and how many example records each value
// carries.
func WithExampleLimits(top, perValue int) Option {
	return func(a *Assessor) {
		if top > 0 {
			a.top = top
		}
		if perValue > 0 {
			a.perValue = perValue
		}
	}
}
