package compiler

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/robbyt/go-polyudf/internal/helpers"
)

// Compiler turns a WASM module into a compiled Extism plugin.
type Compiler struct {
	settings   *Settings
	compile    compileFunc
	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a new Extism Compiler instance with the provided options.
func New(opts ...FunctionalOption) (*Compiler, error) {
	c := &Compiler{}
	c.applyDefaults()

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("error applying compiler option: %w", err)
		}
	}

	if err := c.validate(); err != nil {
		return nil, fmt.Errorf("invalid compiler configuration: %w", err)
	}

	c.setupLogger()
	return c, nil
}

func (c *Compiler) String() string {
	return "extism.Compiler"
}

// Compile reads the module and compiles it once. Instances are created from
// the result for every call.
func (c *Compiler) Compile(ctx context.Context, scriptReader io.ReadCloser) (*Executable, error) {
	logger := c.logger.WithGroup("Compile")

	if scriptReader == nil {
		return nil, ErrContentNil
	}

	scriptBytes, err := io.ReadAll(scriptReader)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	if err := scriptReader.Close(); err != nil {
		return nil, fmt.Errorf("failed to close reader: %w", err)
	}
	if len(scriptBytes) == 0 {
		logger.Error("Compile called with empty module")
		return nil, ErrContentNil
	}

	logger.Debug("Starting WASM compilation", "moduleLength", len(scriptBytes))
	plugin, err := c.compile(ctx, scriptBytes, c.settings)
	if err != nil {
		logger.Warn("WASM compilation failed", "error", err)
		return nil, err
	}
	if plugin == nil {
		logger.Error("Compilation returned nil plugin")
		return nil, ErrBytecodeNil
	}

	id := helpers.ShortSHA256(scriptBytes)
	logger.Debug("WASM compilation completed", "id", id)
	return newExecutable(id, scriptBytes, plugin), nil
}
