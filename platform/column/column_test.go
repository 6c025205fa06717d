package column

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func upper(_ context.Context, args []any) (any, error) {
	s, ok := args[0].(string)
	if !ok {
		return nil, errors.New("expected string")
	}
	return strings.ToUpper(s), nil
}

func TestCol(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("present", func(t *testing.T) {
		v, err := Col("url").Eval(ctx, Row{"url": "http://example.com"})
		require.NoError(t, err)
		assert.Equal(t, "http://example.com", v)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Col("url").Eval(ctx, Row{"other": 1})
		require.ErrorIs(t, err, ErrColumnNotFound)
	})

	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "url", Col("url").String())
	})
}

func TestLit(t *testing.T) {
	t.Parallel()

	v, err := Lit(42).Eval(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	assert.Equal(t, `"a"`, Lit("a").String())
	assert.Equal(t, "3.5", Lit(3.5).String())
}

func TestSeq(t *testing.T) {
	t.Parallel()

	a, b := Col("a"), Col("b")
	seqs := []Seq{ToSeq(a), ToSeq(b)}
	for _, s := range seqs {
		require.Len(t, s, 1)
	}
	assert.Equal(t, []Column{a, b}, Flatten(seqs))
	assert.Empty(t, Flatten(nil))
}

func TestApply(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("evaluates arguments then body", func(t *testing.T) {
		expr := Apply("Upper", upper, Col("name"))
		assert.Equal(t, "Upper(name)", expr.String())
		assert.Equal(t, "Upper", expr.Name())
		require.Len(t, expr.Args(), 1)

		v, err := expr.Eval(ctx, Row{"name": "bob"})
		require.NoError(t, err)
		assert.Equal(t, "BOB", v)
	})

	t.Run("zero arguments", func(t *testing.T) {
		expr := Apply("Now", func(context.Context, []any) (any, error) { return "t0", nil })
		assert.Equal(t, "Now()", expr.String())

		v, err := expr.Eval(ctx, Row{})
		require.NoError(t, err)
		assert.Equal(t, "t0", v)
	})

	t.Run("nested", func(t *testing.T) {
		inner := Apply("Upper", upper, Col("name"))
		outer := Apply("Upper", upper, inner)
		assert.Equal(t, "Upper(Upper(name))", outer.String())

		v, err := outer.Eval(ctx, Row{"name": "x"})
		require.NoError(t, err)
		assert.Equal(t, "X", v)
	})

	t.Run("argument error", func(t *testing.T) {
		_, err := Apply("Upper", upper, Col("missing")).Eval(ctx, Row{})
		require.ErrorIs(t, err, ErrColumnNotFound)
		assert.Contains(t, err.Error(), "Upper: argument 0")
	})

	t.Run("remote error is returned unchanged", func(t *testing.T) {
		boom := errors.New("boom")
		_, err := Apply("Fail", func(context.Context, []any) (any, error) {
			return nil, boom
		}).Eval(ctx, Row{})
		require.Equal(t, boom, err)
	})

	t.Run("nil body", func(t *testing.T) {
		_, err := Apply("Empty", nil).Eval(ctx, Row{})
		require.ErrorIs(t, err, ErrEvalFailed)
	})
}

func TestWrap(t *testing.T) {
	t.Parallel()

	c := Col("x")
	assert.Same(t, c, Wrap(c))

	w := Wrap("raw")
	v, err := w.Eval(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "raw", v)
}

func TestSelect(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	rows := []Row{{"name": "a"}, {"name": "b"}}

	t.Run("projects every row", func(t *testing.T) {
		out, err := Select(ctx, rows, Col("name"), Apply("Upper", upper, Col("name")))
		require.NoError(t, err)
		require.Equal(t, []Row{
			{"name": "a", "Upper(name)": "A"},
			{"name": "b", "Upper(name)": "B"},
		}, out)
	})

	t.Run("row error carries index", func(t *testing.T) {
		_, err := Select(ctx, []Row{{"name": "a"}, {}}, Col("name"))
		require.ErrorIs(t, err, ErrColumnNotFound)
		assert.Contains(t, err.Error(), "row 1")
	})

	t.Run("nil column", func(t *testing.T) {
		_, err := Select(ctx, rows, nil)
		require.ErrorIs(t, err, ErrNilColumn)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Select(cctx, rows, Col("name"))
		require.ErrorIs(t, err, context.Canceled)
	})
}
