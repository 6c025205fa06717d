package compiler

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/robbyt/go-polyudf/internal/helpers"
	"github.com/robbyt/go-polyudf/platform/udf"
)

// FunctionalOption is a function that configures a Compiler instance
type FunctionalOption func(*Compiler) error

// WithGlobals sets static values bound as Risor globals whenever the provider
// runs. Names must be identifiers.
func WithGlobals(globals map[string]any) FunctionalOption {
	return func(c *Compiler) error {
		if globals == nil {
			return fmt.Errorf("%w: globals map is nil", ErrInvalidGlobals)
		}
		for name := range globals {
			if !udf.IsIdentifier(name) {
				return fmt.Errorf("%w: bad name %q", ErrInvalidGlobals, name)
			}
		}
		c.globals = globals
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for Risor compiler.
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

// WithLogger creates an option to set a specific logger for Risor compiler.
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

func (c *Compiler) setupLogger() {
	if c.logger != nil {
		c.logHandler = c.logger.Handler()
	} else {
		c.logHandler, c.logger = helpers.SetupLogger(c.logHandler, "risor", "Compiler")
	}
}

func (c *Compiler) validate() error {
	if c.logHandler == nil && c.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	return nil
}

func (c *Compiler) applyDefaults() {
	if c.logHandler == nil && c.logger == nil {
		c.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	if c.globals == nil {
		c.globals = map[string]any{}
	}
}
