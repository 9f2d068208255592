package series

import "errors"

// Sentinel kinds for series preconditions. Degenerate numeric situations
// (zero variance, zero MAD) are not errors; only genuine precondition
// violations surface through these.
var (
	ErrInvalidInput     = errors.New("invalid input")
	ErrInsufficientData = errors.New("insufficient data")
	ErrInvalidWindow    = errors.New("invalid window")
)
