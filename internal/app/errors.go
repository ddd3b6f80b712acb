package service

import "errors"

// Sentinel kinds for service errors. Callers map them with errors.Is.
var (
	ErrNotStarted     = errors.New("service not started")
	ErrBackpressure   = errors.New("assessment queue full")
	ErrTimeout        = errors.New("assessment timed out")
	ErrTooManyRecords = errors.New("too many records")
	ErrAssessFailed   = errors.New("assessment failed")
)
