package compiler

import "errors"

var (
	ErrContentNil       = errors.New("starlark content is nil")
	ErrCompileFailed    = errors.New("failed to compile starlark provider")
	ErrExecFailed       = errors.New("failed to execute starlark provider")
	ErrInvalidGlobals   = errors.New("invalid starlark globals")
)
