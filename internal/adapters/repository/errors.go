package repository

import "errors"

// Sentinel kinds for watchboard errors.
var (
	ErrNotFound     = errors.New("evaluation not found")
	ErrInvalidLimit = errors.New("invalid watchboard limit")
	ErrNilResult    = errors.New("nil evaluation result")
)
