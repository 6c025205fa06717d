package helpers

import (
	"log/slog"
	"os"
)

// SetupLogger returns a handler and a logger for one component of the bridge.
// A nil handler is replaced by a text handler on stdout, grouped under the
// runtime name, and a warning is emitted so the fallback is visible.
//
// Parameters:
//   - handler: the slog.Handler to use, or nil for defaults
//   - runtime: name of the embedded runtime or subsystem (e.g. "starlark", "registrar")
//   - groupName: optional group for the returned logger
func SetupLogger(handler slog.Handler, runtime string, groupName string) (slog.Handler, *slog.Logger) {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, nil).WithGroup(runtime)
		slog.New(handler).Warn("Handler is nil, using the default logger configuration.")
	}

	if groupName == "" {
		return handler, slog.New(handler)
	}
	return handler, slog.New(handler.WithGroup(groupName))
}
