// Package column holds the host-side expression type handed to and returned
// from remote UDF wrappers. It is deliberately small: named column references,
// literals, and the lazy application node that a resolver builds when a UDF is
// invoked.
package column

import (
	"context"
	"fmt"
	"strings"
)

// Row is one record of tabular input, keyed by column name.
type Row map[string]any

// Column is a lazy, named computation over a Row.
type Column interface {
	fmt.Stringer

	// Eval computes the value of the expression for a single row.
	Eval(ctx context.Context, row Row) (any, error)
}

// EvalFunc is the per-row body of an applied UDF. It receives the evaluated
// argument values in call order.
type EvalFunc func(ctx context.Context, args []any) (any, error)

// Seq is the sequence type each argument is wrapped into before it crosses
// into a remote runtime. Wrappers always build single-element sequences.
type Seq []Column

// ToSeq wraps a column into a single-element Seq.
func ToSeq(c Column) Seq {
	return Seq{c}
}

// Flatten unpacks wrapped arguments back into a flat argument list.
func Flatten(seqs []Seq) []Column {
	out := make([]Column, 0, len(seqs))
	for _, s := range seqs {
		out = append(out, s...)
	}
	return out
}

type ref struct {
	name string
}

// Col returns a reference to the named field of a row.
func Col(name string) Column {
	return &ref{name: name}
}

func (r *ref) String() string {
	return r.name
}

func (r *ref) Eval(_ context.Context, row Row) (any, error) {
	v, ok := row[r.name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, r.name)
	}
	return v, nil
}

type literal struct {
	value any
}

// Lit returns a constant expression.
func Lit(v any) Column {
	return &literal{value: v}
}

func (l *literal) String() string {
	if s, ok := l.value.(string); ok {
		return fmt.Sprintf("%q", s)
	}
	return fmt.Sprintf("%v", l.value)
}

func (l *literal) Eval(context.Context, Row) (any, error) {
	return l.value, nil
}

// Applied is an expression that calls a remote function on the values of its
// argument expressions.
type Applied struct {
	name string
	fn   EvalFunc
	args []Column
}

// Apply builds the lazy application of fn, labelled name, to args.
func Apply(name string, fn EvalFunc, args ...Column) *Applied {
	return &Applied{name: name, fn: fn, args: args}
}

// Name returns the label of the applied function.
func (a *Applied) Name() string {
	return a.name
}

// Args returns the argument expressions in call order.
func (a *Applied) Args() []Column {
	return a.args
}

func (a *Applied) String() string {
	parts := make([]string, len(a.args))
	for i, arg := range a.args {
		parts[i] = arg.String()
	}
	return a.name + "(" + strings.Join(parts, ", ") + ")"
}

// Eval evaluates every argument against row, then calls the remote function.
func (a *Applied) Eval(ctx context.Context, row Row) (any, error) {
	if a.fn == nil {
		return nil, fmt.Errorf("%w: %s has no function body", ErrEvalFailed, a.name)
	}

	values := make([]any, len(a.args))
	for i, arg := range a.args {
		v, err := arg.Eval(ctx, row)
		if err != nil {
			return nil, fmt.Errorf("%s: argument %d: %w", a.name, i, err)
		}
		values[i] = v
	}

	// remote errors are returned as-is
	return a.fn(ctx, values)
}

// Wrap converts a raw result returned across the language boundary into a
// Column. Results that already are expressions are returned unchanged; any
// other value becomes a literal.
func Wrap(raw any) Column {
	if c, ok := raw.(Column); ok {
		return c
	}
	return Lit(raw)
}

// Select evaluates cols against every row and returns one output row per input,
// keyed by each column's String form.
func Select(ctx context.Context, rows []Row, cols ...Column) ([]Row, error) {
	out := make([]Row, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := make(Row, len(cols))
		for _, c := range cols {
			if c == nil {
				return nil, ErrNilColumn
			}
			v, err := c.Eval(ctx, row)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", i, err)
			}
			result[c.String()] = v
		}
		out = append(out, result)
	}
	return out, nil
}
