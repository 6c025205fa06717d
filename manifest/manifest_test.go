package manifest

import (
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	polyudf "github.com/robbyt/go-polyudf"
	extismCompiler "github.com/robbyt/go-polyudf/engines/extism/compiler"
	"github.com/robbyt/go-polyudf/engines/types"
	"github.com/robbyt/go-polyudf/platform/column"
	"github.com/robbyt/go-polyudf/platform/udf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const starlarkProvider = `
def _extract_domain(url):
    host = url.split("://", 1)[-1].split("/", 1)[0]
    if host.startswith("www."):
        host = host[4:]
    return host

def _top_level(url):
    tld = _extract_domain(url).split(".")[-1]
    if tld in tlds:
        return tld
    return None

matchbox = module(
    "matchbox",
    ExtractDomain = struct(getUDF = lambda: _extract_domain),
    TopLevel = struct(getUDF = lambda: _top_level),
)
`

const risorProvider = `
matchbox := {}
matchbox["Tag"] = {"getUDF": func() { return func(v) { return tag + v } }}
archives := {"matchbox": matchbox}
`

// writeFiles writes name/content pairs into a temp dir and returns the path
// of the first file.
func writeFiles(t *testing.T, files ...string) string {
	t.Helper()
	require.Zero(t, len(files)%2)

	dir := t.TempDir()
	var first string
	for i := 0; i < len(files); i += 2 {
		path := filepath.Join(dir, files[i])
		require.NoError(t, os.WriteFile(path, []byte(files[i+1]), 0o600))
		if first == "" {
			first = path
		}
	}
	return first
}

func testHandler() slog.Handler {
	return slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("defaults", func(t *testing.T) {
		t.Parallel()
		path := writeFiles(t, "udfs.hcl", `
engine = "Starlark"
source = "matchbox.star"

udf "ExtractDomain" {}
udf "TopLevel" {}
`)
		m, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, types.Starlark, m.EngineType())
		assert.Equal(t, udf.DefaultNamespace, m.Namespace)
		assert.Equal(t, filepath.Join(filepath.Dir(path), "matchbox.star"), m.SourcePath())
		assert.Equal(t, []string{"ExtractDomain", "TopLevel"}, m.Names())
		assert.Nil(t, m.GlobalValues())
		assert.Contains(t, m.String(), "UDFs: 2")
	})

	t.Run("globals", func(t *testing.T) {
		t.Parallel()
		path := writeFiles(t, "udfs.hcl", `
engine    = "risor"
source    = "/srv/udfs/provider.risor"
namespace = "archives.matchbox"
globals = {
  tag     = "seen:"
  limit   = 3
  ratio   = 0.5
  enabled = true
  tlds    = ["com", "org"]
  nested  = { depth = 2 }
}

udf "Tag" {}
`)
		m, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "/srv/udfs/provider.risor", m.SourcePath())
		assert.Equal(t, map[string]any{
			"tag":     "seen:",
			"limit":   int64(3),
			"ratio":   0.5,
			"enabled": true,
			"tlds":    []any{"com", "org"},
			"nested":  map[string]any{"depth": int64(2)},
		}, m.GlobalValues())
	})

	t.Run("json syntax", func(t *testing.T) {
		t.Parallel()
		path := writeFiles(t, "udfs.json", `{
  "engine": "extism",
  "source": "matchbox.wasm",
  "prefix": "udf_",
  "udf": {"ExtractDomain": {}}
}`)
		m, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, types.Extism, m.EngineType())
		assert.Equal(t, "udf_", m.Prefix)
		assert.Equal(t, []string{"ExtractDomain"}, m.Names())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "absent.hcl"))
		require.ErrorIs(t, err, ErrParseFailed)
	})
}

func TestLoadInvalid(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		content string
		wantErr error
	}{
		{
			name:    "syntax error",
			content: `engine = `,
			wantErr: ErrParseFailed,
		},
		{
			name:    "missing engine",
			content: "source = \"a.star\"\nudf \"A\" {}\n",
			wantErr: ErrParseFailed,
		},
		{
			name:    "unknown attribute",
			content: "engine = \"starlark\"\nsource = \"a.star\"\nlanguage = \"x\"\nudf \"A\" {}\n",
			wantErr: ErrParseFailed,
		},
		{
			name:    "unknown engine",
			content: "engine = \"lua\"\nsource = \"a.lua\"\nudf \"A\" {}\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "empty source",
			content: "engine = \"starlark\"\nsource = \" \"\nudf \"A\" {}\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "bad namespace",
			content: "engine = \"starlark\"\nsource = \"a.star\"\nnamespace = \"a..b\"\nudf \"A\" {}\n",
			wantErr: udf.ErrInvalidNamespace,
		},
		{
			name:    "prefix outside extism",
			content: "engine = \"risor\"\nsource = \"a.risor\"\nprefix = \"x_\"\nudf \"A\" {}\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "no udfs",
			content: "engine = \"starlark\"\nsource = \"a.star\"\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "bad udf name",
			content: "engine = \"starlark\"\nsource = \"a.star\"\nudf \"not-valid\" {}\n",
			wantErr: udf.ErrInvalidName,
		},
		{
			name:    "duplicate udf",
			content: "engine = \"starlark\"\nsource = \"a.star\"\nudf \"A\" {}\nudf \"A\" {}\n",
			wantErr: ErrInvalidManifest,
		},
		{
			name:    "globals not an object",
			content: "engine = \"starlark\"\nsource = \"a.star\"\nglobals = [1, 2]\nudf \"A\" {}\n",
			wantErr: ErrGlobals,
		},
		{
			name:    "globals reference a variable",
			content: "engine = \"starlark\"\nsource = \"a.star\"\nglobals = { a = var.x }\nudf \"A\" {}\n",
			wantErr: ErrInvalidManifest,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := writeFiles(t, "udfs.hcl", tc.content)

			m, err := Load(path)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, m)
		})
	}
}

func TestToNative(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value cty.Value
		want  any
	}{
		{name: "null", value: cty.NullVal(cty.String), want: nil},
		{name: "unknown", value: cty.UnknownVal(cty.String), want: nil},
		{name: "string", value: cty.StringVal("x"), want: "x"},
		{name: "integer", value: cty.NumberIntVal(42), want: int64(42)},
		{name: "float", value: cty.NumberFloatVal(1.25), want: 1.25},
		{name: "bool", value: cty.False, want: false},
		{name: "set", value: cty.SetVal([]cty.Value{cty.StringVal("a")}), want: []any{"a"}},
		{name: "empty list", value: cty.ListValEmpty(cty.String), want: []any{}},
		{
			name:  "map",
			value: cty.MapVal(map[string]cty.Value{"k": cty.NumberIntVal(1)}),
			want:  map[string]any{"k": int64(1)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := toNative(tc.value)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("unsupported", func(t *testing.T) {
		t.Parallel()
		_, err := toNative(cty.CapsuleVal(cty.Capsule("thing", reflect.TypeOf(0)), new(int)))
		require.Error(t, err)
	})
}

func TestResolverAndRegister(t *testing.T) {
	t.Parallel()

	t.Run("starlark", func(t *testing.T) {
		t.Parallel()
		path := writeFiles(t,
			"udfs.hcl", `
engine    = "starlark"
source    = "matchbox.star"
namespace = "matchbox"
globals   = { tlds = ["com", "org"] }

udf "ExtractDomain" {}
udf "TopLevel" {}
`,
			"matchbox.star", starlarkProvider,
		)
		m, err := Load(path)
		require.NoError(t, err)

		ctx := t.Context()
		r, err := m.Resolver(ctx, testHandler())
		require.NoError(t, err)
		defer func() { assert.NoError(t, udf.Close(ctx, r)) }()

		reg, err := polyudf.New(polyudf.WithLogHandler(testHandler()))
		require.NoError(t, err)
		require.NoError(t, m.Register(ctx, reg, r))
		assert.Equal(t, []string{"ExtractDomain", "TopLevel"}, reg.Names())

		doc, ok := reg.Doc("ExtractDomain")
		require.True(t, ok)
		assert.Equal(t, "ExtractDomain is a starlark UDF imported from matchbox", doc)

		domain, err := reg.Call(ctx, "ExtractDomain", column.Col("url"))
		require.NoError(t, err)
		tld, err := reg.Call(ctx, "TopLevel", column.Col("url"))
		require.NoError(t, err)

		rows := []column.Row{
			{"url": "https://www.example.com/a/b"},
			{"url": "http://archive.net/x"},
		}
		out, err := column.Select(ctx, rows, domain, tld)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "example.com", out[0][domain.String()])
		assert.Equal(t, "com", out[0][tld.String()])
		assert.Equal(t, "archive.net", out[1][domain.String()])
		assert.Nil(t, out[1][tld.String()])
	})

	t.Run("risor", func(t *testing.T) {
		t.Parallel()
		path := writeFiles(t,
			"udfs.hcl", `
engine    = "risor"
source    = "matchbox.risor"
namespace = "archives.matchbox"
globals   = { tag = "seen:" }

udf "Tag" {}
`,
			"matchbox.risor", risorProvider,
		)
		m, err := Load(path)
		require.NoError(t, err)

		ctx := t.Context()
		r, err := m.Resolver(ctx, testHandler())
		require.NoError(t, err)

		reg, err := polyudf.New(polyudf.WithLogHandler(testHandler()))
		require.NoError(t, err)
		require.NoError(t, m.Register(ctx, reg, r))

		tagged, err := reg.Call(ctx, "Tag", column.Col("id"))
		require.NoError(t, err)
		got, err := tagged.Eval(ctx, column.Row{"id": "42"})
		require.NoError(t, err)
		assert.Equal(t, "seen:42", got)
	})

	t.Run("register stops at missing udf", func(t *testing.T) {
		t.Parallel()
		path := writeFiles(t,
			"udfs.hcl", `
engine    = "starlark"
source    = "matchbox.star"
namespace = "matchbox"
globals   = { tlds = [] }

udf "ExtractDomain" {}
udf "Missing" {}
udf "TopLevel" {}
`,
			"matchbox.star", starlarkProvider,
		)
		m, err := Load(path)
		require.NoError(t, err)

		ctx := t.Context()
		r, err := m.Resolver(ctx, testHandler())
		require.NoError(t, err)

		reg, err := polyudf.New(polyudf.WithLogHandler(testHandler()))
		require.NoError(t, err)
		err = m.Register(ctx, reg, r)
		require.ErrorIs(t, err, udf.ErrFunctionNotFound)
		assert.Equal(t, []string{"ExtractDomain"}, reg.Names())
	})

	t.Run("missing source", func(t *testing.T) {
		t.Parallel()
		path := writeFiles(t, "udfs.hcl", "engine = \"starlark\"\nsource = \"absent.star\"\nudf \"A\" {}\n")
		m, err := Load(path)
		require.NoError(t, err)

		_, err = m.Resolver(t.Context(), testHandler())
		require.Error(t, err)
	})

	t.Run("invalid wasm", func(t *testing.T) {
		t.Parallel()
		path := writeFiles(t,
			"udfs.hcl", "engine = \"extism\"\nsource = \"bad.wasm\"\nudf \"A\" {}\n",
			"bad.wasm", "not a wasm module",
		)
		m, err := Load(path)
		require.NoError(t, err)

		_, err = m.Resolver(t.Context(), testHandler())
		require.ErrorIs(t, err, extismCompiler.ErrValidationFailed)
	})
}
