package starlark

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/robbyt/go-polyudf/engines/starlark/compiler"
	"github.com/robbyt/go-polyudf/platform/column"
	"github.com/robbyt/go-polyudf/platform/script/loader"
	"github.com/robbyt/go-polyudf/platform/udf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testProviderScript = `
def _tag(url):
    return prefix + url

matchbox = module("matchbox", Tag = struct(getUDF = lambda: _tag))
io = module("io", archivesunleashed = module("archivesunleashed",
    spark = module("spark", matchbox = matchbox)))
`

func createTestLoader(t *testing.T) *loader.FromString {
	t.Helper()
	stringLoader, err := loader.NewFromString(testProviderScript)
	require.NoError(t, err)
	require.NotNil(t, stringLoader)
	return stringLoader
}

func TestFromStarlarkLoaderWithGlobals(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		handler := slog.NewTextHandler(os.Stdout, nil)
		r, err := FromStarlarkLoaderWithGlobals(handler, createTestLoader(t), udf.DefaultNamespace,
			map[string]any{"prefix": "seen:"})
		require.NoError(t, err)
		assert.Equal(t, "starlark.Resolver", r.String())

		h, err := r.Resolve(ctx, "Tag")
		require.NoError(t, err)
		raw, err := r.Invoke(ctx, h, []column.Seq{{column.Col("url")}})
		require.NoError(t, err)

		got, err := raw.(column.Column).Eval(ctx, column.Row{"url": "example.com"})
		require.NoError(t, err)
		assert.Equal(t, "seen:example.com", got)
	})

	t.Run("nil globals", func(t *testing.T) {
		_, err := FromStarlarkLoaderWithGlobals(nil, createTestLoader(t), udf.DefaultNamespace, nil)
		require.ErrorIs(t, err, compiler.ErrInvalidGlobals)
	})
}

func TestFromStarlarkLoader(t *testing.T) {
	t.Parallel()

	t.Run("missing global fails compilation", func(t *testing.T) {
		_, err := FromStarlarkLoader(nil, createTestLoader(t), udf.DefaultNamespace)
		require.ErrorIs(t, err, compiler.ErrCompileFailed)
	})

	t.Run("bad namespace", func(t *testing.T) {
		_, err := FromStarlarkLoader(nil, createTestLoader(t), "io..matchbox")
		require.ErrorIs(t, err, udf.ErrInvalidNamespace)
	})

	t.Run("nil loader", func(t *testing.T) {
		_, err := FromStarlarkLoader(nil, nil, udf.DefaultNamespace)
		require.Error(t, err)
	})

	t.Run("error from loader", func(t *testing.T) {
		mockLoader := new(loader.MockLoader)
		mockLoader.On("GetSourceURL").Return(nil)
		mockLoader.On("GetReader").Return(nil, errors.New("disk gone"))

		_, err := FromStarlarkLoader(nil, mockLoader, udf.DefaultNamespace)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk gone")
		mockLoader.AssertExpectations(t)
	})

	t.Run("content from mock loader", func(t *testing.T) {
		mockLoader := loader.NewMockLoaderWithContent([]byte(`matchbox = module("matchbox")`))
		r, err := FromStarlarkLoader(nil, mockLoader, "matchbox")
		require.NoError(t, err)

		_, err = r.Resolve(context.Background(), "Anything")
		require.ErrorIs(t, err, udf.ErrFunctionNotFound)
	})
}

func TestNewCompiler(t *testing.T) {
	t.Parallel()

	c, err := NewCompiler(compiler.WithFilename("inline.star"))
	require.NoError(t, err)
	assert.Equal(t, "starlark.Compiler", c.String())
}
