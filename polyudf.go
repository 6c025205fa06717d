package polyudf

import (
	"context"
	"log/slog"

	"github.com/robbyt/go-polyudf/engines/extism"
	extismCompiler "github.com/robbyt/go-polyudf/engines/extism/compiler"
	extismResolver "github.com/robbyt/go-polyudf/engines/extism/resolver"
	"github.com/robbyt/go-polyudf/engines/risor"
	risorCompiler "github.com/robbyt/go-polyudf/engines/risor/compiler"
	risorResolver "github.com/robbyt/go-polyudf/engines/risor/resolver"
	"github.com/robbyt/go-polyudf/engines/starlark"
	starlarkCompiler "github.com/robbyt/go-polyudf/engines/starlark/compiler"
	starlarkResolver "github.com/robbyt/go-polyudf/engines/starlark/resolver"
	"github.com/robbyt/go-polyudf/platform/script/loader"
)

// FromStarlarkString creates a Starlark resolver from inline provider source.
func FromStarlarkString(handler slog.Handler, content, namespace string) (*starlarkResolver.Resolver, error) {
	l, err := loader.NewFromString(content)
	if err != nil {
		return nil, err
	}
	return starlark.FromStarlarkLoader(handler, l, namespace)
}

// FromStarlark creates a Starlark resolver. source is inline script text, a
// file path or file:// URL, raw bytes, or a loader.Loader. globals may be nil.
func FromStarlark(
	handler slog.Handler,
	source any,
	namespace string,
	globals map[string]any,
) (*starlarkResolver.Resolver, error) {
	l, err := loader.InferLoader(source)
	if err != nil {
		return nil, err
	}

	var opts []starlarkCompiler.FunctionalOption
	if globals != nil {
		opts = append(opts, starlarkCompiler.WithGlobals(globals))
	}
	return starlark.NewResolver(handler, l, namespace, opts...)
}

// FromRisorString creates a Risor resolver from inline provider source.
func FromRisorString(handler slog.Handler, content, namespace string) (*risorResolver.Resolver, error) {
	l, err := loader.NewFromString(content)
	if err != nil {
		return nil, err
	}
	return risor.FromRisorLoader(handler, l, namespace)
}

// FromRisor creates a Risor resolver. source is interpreted as in FromStarlark.
func FromRisor(
	handler slog.Handler,
	source any,
	namespace string,
	globals map[string]any,
) (*risorResolver.Resolver, error) {
	l, err := loader.InferLoader(source)
	if err != nil {
		return nil, err
	}

	var opts []risorCompiler.FunctionalOption
	if globals != nil {
		opts = append(opts, risorCompiler.WithGlobals(globals))
	}
	return risor.NewResolver(handler, l, namespace, opts...)
}

// FromExtismFile creates an Extism resolver from a WASM file on disk. The
// caller should Close the resolver.
func FromExtismFile(
	ctx context.Context,
	handler slog.Handler,
	path, namespace, prefix string,
) (*extismResolver.Resolver, error) {
	l, err := loader.NewFromDisk(path)
	if err != nil {
		return nil, err
	}
	return extism.NewResolver(ctx, handler, l, namespace, prefix)
}

// FromExtism creates an Extism resolver. source is a path, file:// URL,
// base64 text, raw bytes, or a loader.Loader. globals become plugin config.
func FromExtism(
	ctx context.Context,
	handler slog.Handler,
	source any,
	namespace, prefix string,
	globals map[string]any,
) (*extismResolver.Resolver, error) {
	l, err := loader.InferLoader(source)
	if err != nil {
		return nil, err
	}

	var opts []extismCompiler.FunctionalOption
	if globals != nil {
		opts = append(opts, extismCompiler.WithGlobals(globals))
	}
	return extism.NewResolver(ctx, handler, l, namespace, prefix, opts...)
}
