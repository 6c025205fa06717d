package risor

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-polyudf/engines/risor/compiler"
	"github.com/robbyt/go-polyudf/engines/risor/resolver"
	"github.com/robbyt/go-polyudf/platform/script/loader"
	"github.com/robbyt/go-polyudf/platform/udf"
)

// FromRisorLoader creates a Risor resolver from a provider script.
//
// Input parameters:
// - logHandler: logger handler for logging
// - ldr: loader implementation for loading the Risor script content
// - namespace: dotted path the UDF provider maps live under
//
// Returns a resolver, which implements the udf.Resolver interface.
func FromRisorLoader(
	logHandler slog.Handler,
	ldr loader.Loader,
	namespace string,
) (*resolver.Resolver, error) {
	return NewResolver(logHandler, ldr, namespace)
}

// FromRisorLoaderWithGlobals creates a Risor resolver whose provider script
// can read the given static values as globals.
//
// Input parameters:
// - logHandler: logger handler for logging
// - ldr: loader implementation for loading the Risor script content
// - namespace: dotted path the UDF provider maps live under
// - globals: values bound as globals whenever the provider runs
//
// Returns a resolver, which implements the udf.Resolver interface.
func FromRisorLoaderWithGlobals(
	logHandler slog.Handler,
	ldr loader.Loader,
	namespace string,
	globals map[string]any,
) (*resolver.Resolver, error) {
	return NewResolver(logHandler, ldr, namespace, compiler.WithGlobals(globals))
}

// NewCompiler creates a new Risor compiler using the functional options pattern.
func NewCompiler(opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	return compiler.New(opts...)
}

// NewResolver compiles the provider script behind ldr and returns a resolver
// over it.
func NewResolver(
	logHandler slog.Handler,
	ldr loader.Loader,
	namespace string,
	opts ...compiler.FunctionalOption,
) (*resolver.Resolver, error) {
	if ldr == nil {
		return nil, fmt.Errorf("loader is nil")
	}

	ns, err := udf.ParseNamespace(namespace)
	if err != nil {
		return nil, err
	}

	if logHandler != nil {
		opts = append([]compiler.FunctionalOption{compiler.WithLogHandler(logHandler)}, opts...)
	}
	c, err := NewCompiler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Risor compiler: %w", err)
	}

	reader, err := ldr.GetReader()
	if err != nil {
		return nil, fmt.Errorf("failed to get reader from loader: %w", err)
	}

	exe, err := c.Compile(reader)
	if err != nil {
		return nil, err
	}

	return resolver.New(logHandler, exe, ns)
}
