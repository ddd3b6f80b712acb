package stats

import "errors"

// Sentinel kinds for statistics errors.
var (
	ErrEmpty     = errors.New("no values")
	ErrUndefined = errors.New("statistic undefined for sample")
)
