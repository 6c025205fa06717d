// Package manifest loads an HCL file that describes a UDF provider: which
// engine runs it, where its source lives, the namespace its UDF objects sit
// under, static globals, and the UDF names to register.
//
//	engine    = "starlark"
//	source    = "matchbox.star"
//	namespace = "matchbox"
//	globals   = { tlds = ["com", "org"] }
//
//	udf "ExtractDomain" {}
package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	polyudf "github.com/robbyt/go-polyudf"
	"github.com/robbyt/go-polyudf/engines/types"
	"github.com/robbyt/go-polyudf/platform/script/loader"
	"github.com/robbyt/go-polyudf/platform/udf"
)

// Manifest is the decoded form of a manifest file.
type Manifest struct {
	Engine    string         `hcl:"engine"`
	Source    string         `hcl:"source"`
	Namespace string         `hcl:"namespace,optional"`
	Prefix    string         `hcl:"prefix,optional"`
	Globals   hcl.Expression `hcl:"globals,optional"`
	UDFs      []*UDF         `hcl:"udf,block"`

	engine  types.Type
	dir     string
	globals map[string]any
}

// UDF names one function to register from the provider.
type UDF struct {
	Name string `hcl:"name,label"`
}

// Load parses and validates the manifest at path. Files ending in ".json"
// are read with the HCL JSON syntax.
func Load(path string) (*Manifest, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFailed, err)
	}

	parser := hclparse.NewParser()
	var file *hcl.File
	var diags hcl.Diagnostics
	if strings.EqualFold(filepath.Ext(abs), ".json") {
		file, diags = parser.ParseJSONFile(abs)
	} else {
		file, diags = parser.ParseHCLFile(abs)
	}
	if diags.HasErrors() {
		return nil, fmt.Errorf("%w %s: %w", ErrParseFailed, path, diags)
	}

	m := &Manifest{}
	if diags := gohcl.DecodeBody(file.Body, nil, m); diags.HasErrors() {
		return nil, fmt.Errorf("%w %s: %w", ErrParseFailed, path, diags)
	}

	m.dir = filepath.Dir(abs)
	if err := m.validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Manifest) String() string {
	return fmt.Sprintf("manifest.Manifest{Engine: %s, Source: %s, UDFs: %d}", m.Engine, m.Source, len(m.UDFs))
}

func (m *Manifest) validate() error {
	t, err := types.Parse(m.Engine)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}
	m.engine = t

	if strings.TrimSpace(m.Source) == "" {
		return fmt.Errorf("%w: source is empty", ErrInvalidManifest)
	}

	if m.Namespace == "" {
		m.Namespace = udf.DefaultNamespace
	}
	if _, err := udf.ParseNamespace(m.Namespace); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
	}

	if m.Prefix != "" && t != types.Extism {
		return fmt.Errorf("%w: prefix is only supported by the %s engine", ErrInvalidManifest, types.Extism)
	}

	if len(m.UDFs) == 0 {
		return fmt.Errorf("%w: no udf blocks declared", ErrInvalidManifest)
	}
	seen := make(map[string]bool, len(m.UDFs))
	for _, u := range m.UDFs {
		if err := udf.ValidateName(u.Name); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
		}
		if seen[u.Name] {
			return fmt.Errorf("%w: udf %q declared twice", ErrInvalidManifest, u.Name)
		}
		seen[u.Name] = true
	}

	if m.Globals != nil {
		v, diags := m.Globals.Value(nil)
		if diags.HasErrors() {
			return fmt.Errorf("%w: %w", ErrInvalidManifest, diags)
		}
		globals, err := globalsMap(&v)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidManifest, err)
		}
		m.globals = globals
	}
	return nil
}

// EngineType returns the validated engine.
func (m *Manifest) EngineType() types.Type {
	return m.engine
}

// SourcePath returns the provider source as an absolute path. A relative
// source is resolved against the manifest's directory.
func (m *Manifest) SourcePath() string {
	if filepath.IsAbs(m.Source) {
		return filepath.Clean(m.Source)
	}
	return filepath.Join(m.dir, m.Source)
}

// GlobalValues returns the static globals converted to Go values.
func (m *Manifest) GlobalValues() map[string]any {
	return m.globals
}

// Names returns the declared UDF names in file order.
func (m *Manifest) Names() []string {
	names := make([]string, len(m.UDFs))
	for i, u := range m.UDFs {
		names[i] = u.Name
	}
	return names
}

// Resolver compiles the provider source with the manifest's engine. Resolvers
// that hold runtime resources implement udf.Closer.
func (m *Manifest) Resolver(ctx context.Context, handler slog.Handler) (udf.Resolver, error) {
	ldr, err := loader.NewFromDisk(m.SourcePath())
	if err != nil {
		return nil, err
	}

	switch m.engine {
	case types.Starlark:
		r, err := polyudf.FromStarlark(handler, ldr, m.Namespace, m.globals)
		if err != nil {
			return nil, err
		}
		return r, nil
	case types.Risor:
		r, err := polyudf.FromRisor(handler, ldr, m.Namespace, m.globals)
		if err != nil {
			return nil, err
		}
		return r, nil
	case types.Extism:
		r, err := polyudf.FromExtism(ctx, handler, ldr, m.Namespace, m.Prefix, m.globals)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, fmt.Errorf("%w: unsupported engine %q", ErrInvalidManifest, m.engine)
	}
}

// Register adds every declared UDF to reg through r, stopping at the first
// failure.
func (m *Manifest) Register(ctx context.Context, reg *polyudf.Registrar, r udf.Resolver) error {
	return reg.AddAll(ctx, r, m.Names()...)
}
