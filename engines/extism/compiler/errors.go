package compiler

import "errors"

var (
	ErrBytecodeNil      = errors.New("wasm bytecode is nil")
	ErrContentNil       = errors.New("wasm content is nil")
	ErrValidationFailed = errors.New("wasm module validation error")
	ErrExecutableClosed = errors.New("executable is closed")
	ErrInvalidGlobals   = errors.New("invalid extism globals")
)
