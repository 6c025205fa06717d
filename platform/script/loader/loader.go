// Package loader reads UDF provider sources (scripts or WASM modules) from
// strings, byte slices, or disk.
package loader

import (
	"fmt"
	"io"
	"net/url"
)

// Loader is an interface used by the engines to load provider scripts or binaries.
type Loader interface {
	GetReader() (io.ReadCloser, error)
	GetSourceURL() *url.URL
}

// KindReporter is implemented by in-memory loaders that can tell a WASM
// module from script text without reading it.
type KindReporter interface {
	Kind() string
}

// ReadAll reads and closes the loader's content. Empty content is an error.
func ReadAll(l Loader) ([]byte, error) {
	if l == nil {
		return nil, fmt.Errorf("%w: loader is nil", ErrSourceNotAvailable)
	}

	reader, err := l.GetReader()
	if err != nil {
		return nil, fmt.Errorf("failed to get reader from loader: %w", err)
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		_ = reader.Close()
		return nil, fmt.Errorf("failed to read source: %w", err)
	}

	if err := reader.Close(); err != nil {
		return nil, fmt.Errorf("failed to close reader: %w", err)
	}

	if len(content) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotAvailable, l.GetSourceURL())
	}
	return content, nil
}
