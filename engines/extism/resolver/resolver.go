package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-polyudf/engines/extism/adapters"
	"github.com/robbyt/go-polyudf/engines/extism/compiler"
	"github.com/robbyt/go-polyudf/engines/extism/internal"
	"github.com/robbyt/go-polyudf/internal/helpers"
	"github.com/robbyt/go-polyudf/platform/column"
	"github.com/robbyt/go-polyudf/platform/udf"
)

// Resolver maps UDF names to exports of a compiled WASM module. A WASM module
// has no objects to traverse, so the namespace is recorded for descriptions
// only and an export named prefix+Name stands in for the getUDF accessor.
type Resolver struct {
	exe       *compiler.Executable
	namespace udf.Namespace
	prefix    string

	logger *slog.Logger
}

// New creates a Resolver over exe.
func New(
	handler slog.Handler,
	exe *compiler.Executable,
	ns udf.Namespace,
	prefix string,
) (*Resolver, error) {
	if exe == nil {
		return nil, fmt.Errorf("executable is nil")
	}
	if len(ns) == 0 {
		return nil, fmt.Errorf("%w: namespace is empty", udf.ErrInvalidNamespace)
	}

	_, logger := helpers.SetupLogger(handler, "extism", "Resolver")
	return &Resolver{
		exe:       exe,
		namespace: ns,
		prefix:    prefix,
		logger:    logger.With("exeID", exe.ID()),
	}, nil
}

func (r *Resolver) String() string {
	return "extism.Resolver"
}

// Describe implements udf.Describer.
func (r *Resolver) Describe() string {
	return "wasm"
}

// Namespace implements udf.Describer.
func (r *Resolver) Namespace() udf.Namespace {
	return r.namespace
}

// Close releases the compiled module.
func (r *Resolver) Close(ctx context.Context) error {
	return r.exe.Close(ctx)
}

// Resolve checks that the module exports the function for name.
func (r *Resolver) Resolve(ctx context.Context, name string) (udf.Handle, error) {
	logger := r.logger.WithGroup("Resolve").With("name", name)
	export := r.prefix + name

	instance, err := r.instance(ctx)
	if err != nil {
		return nil, err
	}
	defer r.closeInstance(ctx, instance)

	if !instance.FunctionExists(export) {
		return nil, fmt.Errorf("%w: %s (export %q)", udf.ErrFunctionNotFound, r.namespace.Qualify(name), export)
	}

	logger.DebugContext(ctx, "resolved", "export", export)
	return &handle{owner: r, name: name, export: export}, nil
}

// Invoke builds the lazy application of the export behind h.
func (r *Resolver) Invoke(ctx context.Context, h udf.Handle, args []column.Seq) (any, error) {
	wh, ok := h.(*handle)
	if !ok || wh.owner != r {
		return nil, fmt.Errorf("%w: %T", udf.ErrInvalidHandle, h)
	}

	return column.Apply(wh.name, func(ctx context.Context, values []any) (any, error) {
		return r.call(ctx, wh, values)
	}, column.Flatten(args)...), nil
}

func (r *Resolver) call(ctx context.Context, h *handle, values []any) (any, error) {
	input, err := internal.ArgsToJSON(values)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to marshal arguments: %w", h.name, err)
	}

	instance, err := r.instance(ctx)
	if err != nil {
		return nil, err
	}
	defer r.closeInstance(ctx, instance)

	exit, output, err := instance.CallWithContext(ctx, h.export, input)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("execution cancelled: %w", ctx.Err())
		}
		return nil, err
	}
	if exit != 0 {
		return nil, fmt.Errorf("%s: function returned non-zero exit code: %d", h.name, exit)
	}
	return internal.DecodeOutput(output), nil
}

func (r *Resolver) instance(ctx context.Context) (adapters.PluginInstance, error) {
	plugin, err := r.exe.Plugin()
	if err != nil {
		return nil, err
	}
	instance, err := plugin.Instance(ctx, adapters.NewPluginInstanceConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to create plugin instance: %w", err)
	}
	return instance, nil
}

func (r *Resolver) closeInstance(ctx context.Context, instance adapters.PluginInstance) {
	if err := instance.Close(ctx); err != nil {
		r.logger.WarnContext(ctx, "Failed to close Extism plugin instance", "error", err)
	}
}

type handle struct {
	owner  *Resolver
	name   string
	export string
}

func (h *handle) Name() string {
	return h.name
}

// Arity is unknown: exports take a single JSON document.
func (h *handle) Arity() udf.Arity {
	return udf.VarArgs(0)
}
