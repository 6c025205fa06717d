package column

import "errors"

var (
	ErrColumnNotFound = errors.New("column not found in row")
	ErrNilColumn      = errors.New("column is nil")
	ErrEvalFailed     = errors.New("expression evaluation failed")
)
