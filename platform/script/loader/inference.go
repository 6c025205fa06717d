package loader

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
)

// InferLoader picks a loader for input:
//   - string: a file:// URL or path loads from disk, anything else is inline content
//   - []byte: FromBytes
//   - Loader: returned as-is
func InferLoader(input any) (Loader, error) {
	switch v := input.(type) {
	case Loader:
		return v, nil
	case string:
		return inferFromString(v)
	case []byte:
		return NewFromBytes(v)
	default:
		return nil, fmt.Errorf("unsupported input type: %T", input)
	}
}

func inferFromString(input string) (Loader, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("%w: empty string input", ErrSourceNotAvailable)
	}

	if parsed, err := url.Parse(input); err == nil && parsed.Scheme == "file" {
		return diskFromPath(parsed.Path)
	}

	// multi-line input is always source code, never a path
	if !strings.ContainsAny(input, "\n") &&
		(filepath.IsAbs(input) || strings.HasPrefix(input, "./") || strings.HasPrefix(input, "../")) {
		return diskFromPath(input)
	}

	return NewFromStringBase64(input)
}

func diskFromPath(path string) (Loader, error) {
	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve relative path %q: %w", path, err)
		}
		path = absPath
	}
	return NewFromDisk(path)
}
