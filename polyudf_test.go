package polyudf_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	polyudf "github.com/robbyt/go-polyudf"
	extismCompiler "github.com/robbyt/go-polyudf/engines/extism/compiler"
	"github.com/robbyt/go-polyudf/platform/column"
	"github.com/robbyt/go-polyudf/platform/udf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const starlarkMatchbox = `
def _extract_domain(url):
    host = url.split("://", 1)[-1].split("/", 1)[0]
    if host.startswith("www."):
        host = host[4:]
    return host

matchbox = module(
    "matchbox",
    ExtractDomain = struct(getUDF = lambda: _extract_domain),
)

io = {"archivesunleashed": {"spark": {"matchbox": matchbox}}}
`

const starlarkTagged = starlarkMatchbox + `
def _tagged(url):
    return prefix + _extract_domain(url)

tagged = module("tagged", Tagged = struct(getUDF = lambda: _tagged))
`

const risorMatchbox = `
func extract_domain(value) {
    host := value
    if strings.contains(host, "://") {
        host = strings.split(host, "://")[1]
    }
    host = strings.split(host, "/")[0]
    if strings.has_prefix(host, "www.") {
        host = host[4:]
    }
    return host
}

matchbox := {}
matchbox["ExtractDomain"] = {"getUDF": func() { return extract_domain }}
archives := {"matchbox": matchbox}
`

func quietHandler() slog.Handler {
	return slog.NewTextHandler(&bytes.Buffer{}, nil)
}

func extractDomain(t *testing.T, r udf.Resolver, url string) any {
	t.Helper()
	ctx := t.Context()

	reg, err := polyudf.New(polyudf.WithLogHandler(quietHandler()))
	require.NoError(t, err)
	require.NoError(t, reg.Add(ctx, r, "ExtractDomain"))

	expr, err := reg.Call(ctx, "ExtractDomain", column.Col("url"))
	require.NoError(t, err)
	assert.Equal(t, "ExtractDomain(url)", expr.String())

	got, err := expr.Eval(ctx, column.Row{"url": url})
	require.NoError(t, err)
	return got
}

func TestFromStarlark(t *testing.T) {
	t.Parallel()

	t.Run("string", func(t *testing.T) {
		t.Parallel()
		r, err := polyudf.FromStarlarkString(quietHandler(), starlarkMatchbox, udf.DefaultNamespace)
		require.NoError(t, err)
		assert.Equal(t, "example.com", extractDomain(t, r, "https://www.example.com/a/b"))
	})

	t.Run("file with globals", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "matchbox.star")
		require.NoError(t, os.WriteFile(path, []byte(starlarkTagged), 0o600))

		r, err := polyudf.FromStarlark(quietHandler(), path, "tagged", map[string]any{"prefix": ">"})
		require.NoError(t, err)

		ctx := t.Context()
		h, err := r.Resolve(ctx, "Tagged")
		require.NoError(t, err)
		raw, err := r.Invoke(ctx, h, []column.Seq{column.ToSeq(column.Lit("https://www.example.com/"))})
		require.NoError(t, err)
		got, err := column.Wrap(raw).Eval(ctx, column.Row{})
		require.NoError(t, err)
		assert.Equal(t, ">example.com", got)
	})

	t.Run("bad namespace", func(t *testing.T) {
		t.Parallel()
		_, err := polyudf.FromStarlarkString(quietHandler(), starlarkMatchbox, "")
		require.ErrorIs(t, err, udf.ErrInvalidNamespace)
	})

	t.Run("empty source", func(t *testing.T) {
		t.Parallel()
		_, err := polyudf.FromStarlark(quietHandler(), "  ", "matchbox", nil)
		require.Error(t, err)
	})
}

func TestFromRisor(t *testing.T) {
	t.Parallel()

	t.Run("string", func(t *testing.T) {
		t.Parallel()
		r, err := polyudf.FromRisorString(quietHandler(), risorMatchbox, "archives.matchbox")
		require.NoError(t, err)
		assert.Equal(t, "example.com", extractDomain(t, r, "http://www.example.com/x"))
	})

	t.Run("bytes", func(t *testing.T) {
		t.Parallel()
		r, err := polyudf.FromRisor(quietHandler(), []byte(risorMatchbox), "archives.matchbox", map[string]any{"unused": 1})
		require.NoError(t, err)
		assert.Equal(t, "archive.org", extractDomain(t, r, "archive.org/web"))
	})

	t.Run("unsupported source type", func(t *testing.T) {
		t.Parallel()
		_, err := polyudf.FromRisor(quietHandler(), 42, "archives.matchbox", nil)
		require.Error(t, err)
	})
}

func TestFromExtism(t *testing.T) {
	t.Parallel()

	t.Run("invalid module bytes", func(t *testing.T) {
		t.Parallel()
		_, err := polyudf.FromExtism(t.Context(), quietHandler(), []byte("not wasm"), "matchbox", "", nil)
		require.ErrorIs(t, err, extismCompiler.ErrValidationFailed)
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "absent.wasm")
		_, err := polyudf.FromExtismFile(t.Context(), quietHandler(), path, "matchbox", "")
		require.Error(t, err)
	})

	t.Run("relative path", func(t *testing.T) {
		t.Parallel()
		_, err := polyudf.FromExtismFile(t.Context(), quietHandler(), "matchbox.wasm", "matchbox", "")
		require.Error(t, err)
	})
}
