package manifest

import "errors"

var (
	ErrParseFailed     = errors.New("failed to parse manifest")
	ErrInvalidManifest = errors.New("invalid manifest")
	ErrGlobals         = errors.New("invalid globals")
)
