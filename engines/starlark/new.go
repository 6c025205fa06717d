package starlark

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-polyudf/engines/starlark/compiler"
	"github.com/robbyt/go-polyudf/engines/starlark/resolver"
	"github.com/robbyt/go-polyudf/platform/script/loader"
	"github.com/robbyt/go-polyudf/platform/udf"
)

// FromStarlarkLoader creates a Starlark resolver from a provider script.
//
// Input parameters:
// - logHandler: logger handler for logging
// - ldr: loader implementation for loading the provider script
// - namespace: dotted path the UDF provider objects live under
//
// Returns a resolver, which implements the udf.Resolver interface.
func FromStarlarkLoader(
	logHandler slog.Handler,
	ldr loader.Loader,
	namespace string,
) (*resolver.Resolver, error) {
	return NewResolver(logHandler, ldr, namespace)
}

// FromStarlarkLoaderWithGlobals creates a Starlark resolver whose provider
// script can read the given static values as predeclared globals.
//
// Input parameters:
// - logHandler: logger handler for logging
// - ldr: loader implementation for loading the provider script
// - namespace: dotted path the UDF provider objects live under
// - globals: values predeclared for the provider script
//
// Returns a resolver, which implements the udf.Resolver interface.
func FromStarlarkLoaderWithGlobals(
	logHandler slog.Handler,
	ldr loader.Loader,
	namespace string,
	globals map[string]any,
) (*resolver.Resolver, error) {
	return NewResolver(logHandler, ldr, namespace, compiler.WithGlobals(globals))
}

// NewCompiler creates a new Starlark compiler using the functional options pattern.
func NewCompiler(opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	return compiler.New(opts...)
}

// NewResolver compiles the provider script behind ldr and returns a resolver
// over its globals.
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
	if u := ldr.GetSourceURL(); u != nil {
		opts = append(opts, compiler.WithFilename(u.String()))
	}
	c, err := NewCompiler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Starlark compiler: %w", err)
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
