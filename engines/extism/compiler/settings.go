package compiler

import (
	"context"
	"fmt"

	extismSDK "github.com/extism/go-sdk"
	"github.com/robbyt/go-polyudf/engines/extism/adapters"
	"github.com/tetratelabs/wazero"
)

// Settings holds configuration for compiling a WASM module
type Settings struct {
	// EnableWASI enables WASI support in the plugin
	EnableWASI bool
	// RuntimeConfig allows customizing the wazero runtime configuration
	RuntimeConfig wazero.RuntimeConfig
	// HostFunctions are additional host functions to be registered with the plugin
	HostFunctions []extismSDK.HostFunction
	// Config is readable by the plugin through the PDK config API
	Config map[string]string
}

// defaultSettings returns the default compilation options
func defaultSettings() *Settings {
	return &Settings{
		EnableWASI:    true,
		RuntimeConfig: wazero.NewRuntimeConfig(),
	}
}

// compileFunc builds a compiled plugin from WASM bytes.
type compileFunc func(ctx context.Context, wasmBytes []byte, opts *Settings) (adapters.CompiledPlugin, error)

// compileBytes creates a compiled Extism plugin from raw WASM bytes
func compileBytes(
	ctx context.Context,
	wasmBytes []byte,
	opts *Settings,
) (adapters.CompiledPlugin, error) {
	if len(wasmBytes) == 0 {
		return nil, ErrContentNil
	}
	if opts == nil {
		opts = defaultSettings()
	}

	manifest := extismSDK.Manifest{
		Wasm: []extismSDK.Wasm{
			extismSDK.WasmData{
				Data: wasmBytes,
			},
		},
		Config: opts.Config,
	}

	config := extismSDK.PluginConfig{
		EnableWasi:    opts.EnableWASI,
		RuntimeConfig: opts.RuntimeConfig,
	}

	plugin, err := extismSDK.NewCompiledPlugin(ctx, manifest, config, opts.HostFunctions)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	return adapters.NewCompiledPluginAdapter(plugin), nil
}
