// Package polyudf registers user-defined functions that live inside an embedded
// runtime (Starlark, Risor, or a WASM module) and exposes each one as a Go
// function over host column expressions.
//
// A Registrar is a namespace of wrappers keyed by the remote function's name:
//
//	reg := polyudf.New()
//	if err := reg.Add(ctx, resolver, "ExtractDomain"); err != nil { ... }
//	domain, err := reg.Call(ctx, "ExtractDomain", column.Col("url"))
package polyudf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"slices"
	"sync"

	"github.com/robbyt/go-polyudf/platform/column"
	"github.com/robbyt/go-polyudf/platform/udf"
)

var (
	ErrNilResolver   = errors.New("resolver is nil")
	ErrInvalidName   = udf.ErrInvalidName
	ErrNotRegistered = errors.New("function is not registered")
)

// Func is a registered wrapper. It forwards its arguments to the remote UDF and
// returns the resulting expression.
type Func func(ctx context.Context, cols ...column.Column) (column.Column, error)

type entry struct {
	fn  Func
	doc string
}

// Registrar accumulates UDF wrappers. It is safe for concurrent use. The zero
// value is an empty Registrar that logs to stderr; New applies options.
type Registrar struct {
	mu    sync.RWMutex
	funcs map[string]entry

	logger *slog.Logger
}

// New creates an empty Registrar.
func New(opts ...Option) (*Registrar, error) {
	r := &Registrar{funcs: make(map[string]entry)}
	r.applyDefaults()

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("error applying registrar option: %w", err)
		}
	}

	if err := r.validate(); err != nil {
		return nil, fmt.Errorf("invalid registrar configuration: %w", err)
	}
	return r, nil
}

func (r *Registrar) String() string {
	return fmt.Sprintf("polyudf.Registrar{Funcs: %d}", r.Len())
}

// Add resolves name through resolver and installs a wrapper under the same
// name, replacing any previous wrapper. Resolution errors are returned exactly
// as the resolver produced them and leave the registrar unchanged.
func (r *Registrar) Add(ctx context.Context, resolver udf.Resolver, name string) error {
	logger := r.log().WithGroup("Add").With("name", name)

	if isNilResolver(resolver) {
		return ErrNilResolver
	}
	if err := udf.ValidateName(name); err != nil {
		return err
	}

	h, err := resolver.Resolve(ctx, name)
	if err != nil {
		logger.WarnContext(ctx, "failed to resolve remote function", "error", err)
		return err
	}

	fn := newWrapper(resolver, h)
	doc := describe(resolver, name)

	r.mu.Lock()
	if r.funcs == nil {
		r.funcs = make(map[string]entry)
	}
	_, replaced := r.funcs[name]
	r.funcs[name] = entry{fn: fn, doc: doc}
	r.mu.Unlock()

	logger.DebugContext(ctx, "registered remote function", "arity", h.Arity().String(), "replaced", replaced)
	return nil
}

// AddAll registers every name in order and stops at the first failure. Names
// registered before the failure stay registered.
func (r *Registrar) AddAll(ctx context.Context, resolver udf.Resolver, names ...string) error {
	for _, name := range names {
		if err := r.Add(ctx, resolver, name); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the wrapper registered under name.
func (r *Registrar) Get(name string) (Func, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.funcs[name]
	return e.fn, ok
}

// Call looks up name and invokes its wrapper with cols.
func (r *Registrar) Call(ctx context.Context, name string, cols ...column.Column) (column.Column, error) {
	fn, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return fn(ctx, cols...)
}

// Doc returns the one-line description recorded for name.
func (r *Registrar) Doc(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.funcs[name]
	return e.doc, ok
}

// Remove deletes the wrapper for name and reports whether one was present.
func (r *Registrar) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.funcs[name]
	delete(r.funcs, name)
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registrar) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	r.mu.RUnlock()

	slices.Sort(names)
	return names
}

// Len returns the number of registered wrappers.
func (r *Registrar) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// newWrapper builds the forwarding closure for one resolved handle. Each
// argument is wrapped into a single-element sequence, the remote function is
// applied to all of them, and the raw result is wrapped back into a column.
func newWrapper(resolver udf.Resolver, h udf.Handle) Func {
	return func(ctx context.Context, cols ...column.Column) (column.Column, error) {
		seqs := make([]column.Seq, len(cols))
		for i, c := range cols {
			if c == nil {
				return nil, fmt.Errorf("%s: argument %d: %w", h.Name(), i, column.ErrNilColumn)
			}
			seqs[i] = column.ToSeq(c)
		}

		raw, err := resolver.Invoke(ctx, h, seqs)
		if err != nil {
			return nil, err
		}
		return column.Wrap(raw), nil
	}
}

// isNilResolver also catches a nil pointer stored in the interface.
func isNilResolver(resolver udf.Resolver) bool {
	if resolver == nil {
		return true
	}
	v := reflect.ValueOf(resolver)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Func, reflect.Chan, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func describe(resolver udf.Resolver, name string) string {
	d, ok := resolver.(udf.Describer)
	if !ok {
		return fmt.Sprintf("%s is a remote UDF", name)
	}
	return fmt.Sprintf("%s is a %s UDF imported from %s", name, d.Describe(), d.Namespace())
}
