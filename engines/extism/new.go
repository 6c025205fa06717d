package extism

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-polyudf/engines/extism/compiler"
	"github.com/robbyt/go-polyudf/engines/extism/resolver"
	"github.com/robbyt/go-polyudf/platform/script/loader"
	"github.com/robbyt/go-polyudf/platform/udf"
)

// FromExtismLoader creates an Extism resolver from a WASM module.
//
// Input parameters:
// - logHandler: logger handler for logging
// - ldr: loader implementation for loading the WASM content
// - namespace: dotted path reported for the UDFs
// - prefix: prepended to a UDF name to form the export name
//
// Returns a resolver, which implements the udf.Resolver interface.
func FromExtismLoader(
	logHandler slog.Handler,
	ldr loader.Loader,
	namespace string,
	prefix string,
) (*resolver.Resolver, error) {
	return NewResolver(context.Background(), logHandler, ldr, namespace, prefix)
}

// FromExtismLoaderWithGlobals creates an Extism resolver whose module can read
// the given static values through the plugin config API.
//
// Input parameters:
// - logHandler: logger handler for logging
// - ldr: loader implementation for loading the WASM content
// - namespace: dotted path reported for the UDFs
// - prefix: prepended to a UDF name to form the export name
// - globals: values passed as manifest config
//
// Returns a resolver, which implements the udf.Resolver interface.
func FromExtismLoaderWithGlobals(
	logHandler slog.Handler,
	ldr loader.Loader,
	namespace string,
	prefix string,
	globals map[string]any,
) (*resolver.Resolver, error) {
	return NewResolver(context.Background(), logHandler, ldr, namespace, prefix, compiler.WithGlobals(globals))
}

// NewCompiler creates a new Extism compiler using the functional options pattern.
func NewCompiler(opts ...compiler.FunctionalOption) (*compiler.Compiler, error) {
	return compiler.New(opts...)
}

// NewResolver compiles the WASM module behind ldr and returns a resolver over
// its exports. The caller owns the resolver and should Close it.
func NewResolver(
	ctx context.Context,
	logHandler slog.Handler,
	ldr loader.Loader,
	namespace string,
	prefix string,
	opts ...compiler.FunctionalOption,
) (*resolver.Resolver, error) {
	if ldr == nil {
		return nil, fmt.Errorf("loader is nil")
	}

	ns, err := udf.ParseNamespace(namespace)
	if err != nil {
		return nil, err
	}

	if k, ok := ldr.(loader.KindReporter); ok && k.Kind() != loader.KindWASM {
		return nil, fmt.Errorf("%w: %s is not a WASM module", compiler.ErrValidationFailed, ldr.GetSourceURL())
	}

	if logHandler != nil {
		opts = append([]compiler.FunctionalOption{compiler.WithLogHandler(logHandler)}, opts...)
	}
	c, err := NewCompiler(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Extism compiler: %w", err)
	}

	reader, err := ldr.GetReader()
	if err != nil {
		return nil, fmt.Errorf("failed to get reader from loader: %w", err)
	}

	exe, err := c.Compile(ctx, reader)
	if err != nil {
		return nil, err
	}

	r, err := resolver.New(logHandler, exe, ns, prefix)
	if err != nil {
		_ = exe.Close(ctx)
		return nil, err
	}
	return r, nil
}
