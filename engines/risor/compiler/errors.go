package compiler

import "errors"

var (
	ErrContentNil       = errors.New("risor content is nil")
	ErrValidationFailed = errors.New("risor script validation error")
	ErrExecFailed       = errors.New("failed to execute risor provider")
	ErrInvalidGlobals   = errors.New("invalid risor globals")
	ErrNotCallable      = errors.New("risor object is not callable")
)
