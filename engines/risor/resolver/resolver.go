package resolver

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/risor-io/risor/object"
	"github.com/robbyt/go-polyudf/engines/risor/compiler"
	"github.com/robbyt/go-polyudf/engines/risor/internal"
	"github.com/robbyt/go-polyudf/internal/helpers"
	"github.com/robbyt/go-polyudf/platform/column"
	"github.com/robbyt/go-polyudf/platform/udf"
)

// Resolver finds UDF provider maps in the globals of a finished Risor
// provider script. Callables run against the provider's own VM.
type Resolver struct {
	exe       *compiler.Executable
	namespace udf.Namespace

	logger *slog.Logger
}

// New creates a Resolver over exe. UDFs are looked up under ns.
func New(handler slog.Handler, exe *compiler.Executable, ns udf.Namespace) (*Resolver, error) {
	if exe == nil {
		return nil, fmt.Errorf("executable is nil")
	}
	if len(ns) == 0 {
		return nil, fmt.Errorf("%w: namespace is empty", udf.ErrInvalidNamespace)
	}

	_, logger := helpers.SetupLogger(handler, "risor", "Resolver")
	return &Resolver{
		exe:       exe,
		namespace: ns,
		logger:    logger.With("exeID", exe.ID()),
	}, nil
}

func (r *Resolver) String() string {
	return "risor.Resolver"
}

// Describe implements udf.Describer.
func (r *Resolver) Describe() string {
	return "risor"
}

// Namespace implements udf.Describer.
func (r *Resolver) Namespace() udf.Namespace {
	return r.namespace
}

// Resolve walks the namespace maps, then calls the provider's getUDF
// accessor once. The returned callable is kept in the handle.
func (r *Resolver) Resolve(ctx context.Context, name string) (udf.Handle, error) {
	logger := r.logger.WithGroup("Resolve").With("name", name)

	container, err := r.container()
	if err != nil {
		return nil, err
	}

	provider := container.Get(name)
	if isNil(provider) {
		return nil, fmt.Errorf("%w: %s", udf.ErrFunctionNotFound, r.namespace.Qualify(name))
	}
	providerMap, ok := provider.(*object.Map)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", udf.ErrAccessorMissing, name, provider.Type())
	}

	accessor := providerMap.Get(udf.AccessorName)
	if !internal.IsCallable(accessor) {
		return nil, fmt.Errorf("%w: %s has no %s", udf.ErrAccessorMissing, r.namespace.Qualify(name), udf.AccessorName)
	}

	fn, err := r.exe.Call(ctx, accessor, nil)
	if err != nil {
		logger.WarnContext(ctx, "accessor call failed", "error", err)
		return nil, fmt.Errorf("%w: %s.%s(): %w", udf.ErrAccessorMissing, name, udf.AccessorName, err)
	}
	if !internal.IsCallable(fn) {
		return nil, fmt.Errorf("%w: %s.%s() returned %s", udf.ErrNotCallable, name, udf.AccessorName, fn.Type())
	}

	h := &handle{
		owner: r,
		name:  name,
		fn:    fn,
		arity: arityOf(fn),
	}
	logger.DebugContext(ctx, "resolved", "callable", fn.Inspect(), "arity", h.arity.String())
	return h, nil
}

// container returns the map at the end of the namespace walk.
func (r *Resolver) container() (*object.Map, error) {
	obj, err := r.exe.Get(r.namespace.Root())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", udf.ErrNamespaceNotFound, r.namespace.Root(), err)
	}

	for i := range r.namespace {
		path := r.namespace[:i+1].String()
		m, ok := obj.(*object.Map)
		if !ok {
			if isNil(obj) {
				return nil, fmt.Errorf("%w: %s", udf.ErrNamespaceNotFound, path)
			}
			return nil, fmt.Errorf("%w: %s is a %s", udf.ErrNamespaceNotFound, path, obj.Type())
		}
		if i == len(r.namespace)-1 {
			return m, nil
		}
		obj = m.Get(r.namespace[i+1])
	}
	return nil, fmt.Errorf("%w: %s", udf.ErrNamespaceNotFound, r.namespace)
}

// Invoke builds the lazy application of the UDF behind h. Arity is checked
// now for script-defined functions.
func (r *Resolver) Invoke(ctx context.Context, h udf.Handle, args []column.Seq) (any, error) {
	rh, ok := h.(*handle)
	if !ok || rh.owner != r {
		return nil, fmt.Errorf("%w: %T", udf.ErrInvalidHandle, h)
	}

	cols := column.Flatten(args)
	if err := rh.arity.Check(rh.name, len(cols)); err != nil {
		return nil, err
	}

	return column.Apply(rh.name, func(ctx context.Context, values []any) (any, error) {
		return r.call(ctx, rh, values)
	}, cols...), nil
}

func (r *Resolver) call(ctx context.Context, h *handle, values []any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	args, err := internal.ToRisorObjects(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.name, err)
	}

	result, err := r.exe.Call(ctx, h.fn, args)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.name, err)
	}
	return internal.FromRisorObject(result)
}

func isNil(obj object.Object) bool {
	return obj == nil || obj == object.Nil
}
