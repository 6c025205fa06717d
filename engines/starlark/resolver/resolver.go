package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/robbyt/go-polyudf/engines/starlark/compiler"
	"github.com/robbyt/go-polyudf/engines/starlark/internal"
	"github.com/robbyt/go-polyudf/internal/helpers"
	"github.com/robbyt/go-polyudf/platform/column"
	"github.com/robbyt/go-polyudf/platform/udf"
	starlarkLib "go.starlark.net/starlark"
)

// Resolver finds UDF provider objects in the globals of a compiled Starlark
// provider script and applies them to column expressions.
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

	_, logger := helpers.SetupLogger(handler, "starlark", "Resolver")
	return &Resolver{
		exe:       exe,
		namespace: ns,
		logger:    logger.With("exeID", exe.ID()),
	}, nil
}

func (r *Resolver) String() string {
	return "starlark.Resolver"
}

// Describe implements udf.Describer.
func (r *Resolver) Describe() string {
	return "starlark"
}

// Namespace implements udf.Describer.
func (r *Resolver) Namespace() udf.Namespace {
	return r.namespace
}

// Resolve walks the namespace from the script globals, fetches name and
// calls its getUDF accessor.
func (r *Resolver) Resolve(ctx context.Context, name string) (udf.Handle, error) {
	logger := r.logger.WithGroup("Resolve").With("name", name)

	pkg, err := r.traverse()
	if err != nil {
		return nil, err
	}

	obj, ok, err := lookup(pkg, name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", udf.ErrFunctionNotFound, r.namespace.Qualify(name), err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", udf.ErrFunctionNotFound, r.namespace.Qualify(name))
	}

	accessor, ok, err := lookup(obj, udf.AccessorName)
	if err != nil || !ok {
		return nil, fmt.Errorf("%w: %s has no %s", udf.ErrAccessorMissing, r.namespace.Qualify(name), udf.AccessorName)
	}
	accessorFn, ok := accessor.(starlarkLib.Callable)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s is a %s", udf.ErrAccessorMissing, name, udf.AccessorName, accessor.Type())
	}

	thread := r.newThread(ctx, "resolve")
	stop := cancelOnDone(ctx, thread)
	defer stop()

	fn, err := starlarkLib.Call(thread, accessorFn, nil, nil)
	if err != nil {
		logger.WarnContext(ctx, "accessor call failed", "error", err)
		return nil, fmt.Errorf("%w: %s.%s(): %w", udf.ErrAccessorMissing, name, udf.AccessorName, err)
	}
	callable, ok := fn.(starlarkLib.Callable)
	if !ok {
		return nil, fmt.Errorf("%w: %s.%s() returned %s", udf.ErrNotCallable, name, udf.AccessorName, fn.Type())
	}

	h := &handle{
		owner: r,
		name:  name,
		fn:    callable,
		arity: arityOf(callable),
	}
	logger.DebugContext(ctx, "resolved", "callable", callable.Name(), "arity", h.arity.String())
	return h, nil
}

// Invoke builds the lazy application of the UDF behind h. Arity is checked
// now when the callable declares its parameters.
func (r *Resolver) Invoke(ctx context.Context, h udf.Handle, args []column.Seq) (any, error) {
	sh, ok := h.(*handle)
	if !ok || sh.owner != r {
		return nil, fmt.Errorf("%w: %T", udf.ErrInvalidHandle, h)
	}

	cols := column.Flatten(args)
	if err := sh.arity.Check(sh.name, len(cols)); err != nil {
		return nil, err
	}

	return column.Apply(sh.name, func(ctx context.Context, values []any) (any, error) {
		return r.call(ctx, sh, values)
	}, cols...), nil
}

func (r *Resolver) call(ctx context.Context, h *handle, values []any) (any, error) {
	args, err := internal.ToStarlarkArgs(values)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", h.name, err)
	}

	thread := r.newThread(ctx, h.name)
	stop := cancelOnDone(ctx, thread)
	defer stop()

	result, err := starlarkLib.Call(thread, h.fn, args, nil)
	if err != nil {
		return nil, err
	}
	return internal.FromStarlarkValue(result)
}

func (r *Resolver) newThread(ctx context.Context, name string) *starlarkLib.Thread {
	logger := r.logger
	return &starlarkLib.Thread{
		Name: name,
		Print: func(thread *starlarkLib.Thread, msg string) {
			logger.InfoContext(ctx, msg, "starlark-thread", thread.Name)
		},
	}
}

// traverse walks every namespace segment starting at the root global.
func (r *Resolver) traverse() (starlarkLib.Value, error) {
	globals := r.exe.Globals()
	root := r.namespace.Root()

	current, ok := globals[root]
	if !ok {
		return nil, fmt.Errorf("%w: %s", udf.ErrNamespaceNotFound, root)
	}

	for i, seg := range r.namespace[1:] {
		next, ok, err := lookup(current, seg)
		if err != nil || !ok {
			path := r.namespace[:i+2].String()
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %w", udf.ErrNamespaceNotFound, path, err)
			}
			return nil, fmt.Errorf("%w: %s", udf.ErrNamespaceNotFound, path)
		}
		current = next
	}
	return current, nil
}

// lookup reads key from v, first as a mapping entry and then as an attribute.
func lookup(v starlarkLib.Value, key string) (starlarkLib.Value, bool, error) {
	if m, ok := v.(starlarkLib.Mapping); ok {
		found, ok, err := m.Get(starlarkLib.String(key))
		if err != nil {
			return nil, false, err
		}
		if ok {
			return found, true, nil
		}
	}

	if a, ok := v.(starlarkLib.HasAttrs); ok {
		found, err := a.Attr(key)
		if err != nil {
			var noSuch starlarkLib.NoSuchAttrError
			if errors.As(err, &noSuch) {
				return nil, false, nil
			}
			return nil, false, err
		}
		if found != nil {
			return found, true, nil
		}
	}
	return nil, false, nil
}

func cancelOnDone(ctx context.Context, thread *starlarkLib.Thread) func() bool {
	return context.AfterFunc(ctx, func() {
		thread.Cancel(context.Cause(ctx).Error())
	})
}
