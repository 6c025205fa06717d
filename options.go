package polyudf

import (
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/robbyt/go-polyudf/internal/helpers"
)

// Option configures a Registrar.
type Option func(*Registrar) error

// WithLogHandler sets the log handler for the registrar.
func WithLogHandler(handler slog.Handler) Option {
	return func(r *Registrar) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		_, r.logger = helpers.SetupLogger(handler, "polyudf", "Registrar")
		return nil
	}
}

// WithLogger sets a specific logger for the registrar.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registrar) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

var defaultLogger = sync.OnceValue(func() *slog.Logger {
	_, logger := helpers.SetupLogger(slog.NewTextHandler(os.Stderr, nil), "polyudf", "Registrar")
	return logger
})

func (r *Registrar) applyDefaults() {
	if r.logger == nil {
		r.logger = defaultLogger()
	}
}

func (r *Registrar) validate() error {
	if r.logger == nil {
		return fmt.Errorf("logger must be specified")
	}
	return nil
}

// log returns the configured logger, or the default one for a zero Registrar.
func (r *Registrar) log() *slog.Logger {
	if r.logger == nil {
		return defaultLogger()
	}
	return r.logger
}
