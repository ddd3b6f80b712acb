package dimension

import "errors"

// ErrUnknownDimension is returned when no assessor serves a dimension.
var ErrUnknownDimension = errors.New("unknown dimension")
