package model

import "errors"

// Sentinel kinds for model errors.
var (
	ErrUnsupportedValue   = errors.New("unsupported value")
	ErrInvalidDetailLevel = errors.New("invalid detail level")
	ErrInvalidRecord      = errors.New("invalid record")
)
