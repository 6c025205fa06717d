package compiler

import (
	"fmt"
	"log/slog"
	"os"

	extismSDK "github.com/extism/go-sdk"
	"github.com/robbyt/go-polyudf/engines/extism/internal"
	"github.com/robbyt/go-polyudf/internal/helpers"
	"github.com/tetratelabs/wazero"
)

// FunctionalOption is a function that configures a Compiler instance
type FunctionalOption func(*Compiler) error

// WithLogHandler creates an option to set the log handler for Extism compiler.
// This is the preferred option for logging configuration as it provides
// more flexibility through the slog.Handler interface.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(c *Compiler) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.logHandler = handler
		c.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for Extism compiler.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(c *Compiler) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.logger = logger
		c.logHandler = nil
		return nil
	}
}

// WithWASIEnabled creates an option to enable or disable WASI support
func WithWASIEnabled(enabled bool) FunctionalOption {
	return func(c *Compiler) error {
		c.settings.EnableWASI = enabled
		return nil
	}
}

// WithRuntimeConfig creates an option to set a custom wazero runtime configuration
func WithRuntimeConfig(config wazero.RuntimeConfig) FunctionalOption {
	return func(c *Compiler) error {
		if config == nil {
			return fmt.Errorf("runtime config cannot be nil")
		}
		c.settings.RuntimeConfig = config
		return nil
	}
}

// WithHostFunctions creates an option to register host functions with the plugin
func WithHostFunctions(funcs []extismSDK.HostFunction) FunctionalOption {
	return func(c *Compiler) error {
		c.settings.HostFunctions = funcs
		return nil
	}
}

// WithGlobals passes static values to the plugin as manifest config.
func WithGlobals(globals map[string]any) FunctionalOption {
	return func(c *Compiler) error {
		if globals == nil {
			return fmt.Errorf("%w: globals map is nil", ErrInvalidGlobals)
		}
		config, err := internal.ConfigFromGlobals(globals)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidGlobals, err)
		}
		c.settings.Config = config
		return nil
	}
}

func (c *Compiler) setupLogger() {
	if c.logger != nil {
		c.logHandler = c.logger.Handler()
	} else {
		c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "extism", "Compiler")
	}
}

func (c *Compiler) validate() error {
	if c.logHandler == nil && c.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	if c.settings.RuntimeConfig == nil {
		return fmt.Errorf("runtime config cannot be nil")
	}
	return nil
}

func (c *Compiler) applyDefaults() {
	if c.logHandler == nil && c.logger == nil {
		c.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	if c.settings == nil {
		c.settings = defaultSettings()
	}
	if c.compile == nil {
		c.compile = compileBytes
	}
}
