package compiler

import (
	"fmt"
	"io"
	"log/slog"
	"maps"

	"github.com/robbyt/go-polyudf/engines/starlark/internal"
	"github.com/robbyt/go-polyudf/internal/helpers"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

const defaultFilename = "provider.star"

// Compiler turns a Starlark provider script into frozen module globals.
type Compiler struct {
	globals    map[string]any
	filename   string
	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a new Starlark Compiler instance with the provided options.
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
	return "starlark.Compiler"
}

// Compile reads, parses and executes the provider script once. The resulting
// globals are frozen so UDFs can be called from many goroutines.
func (c *Compiler) Compile(scriptReader io.ReadCloser) (*Executable, error) {
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
		logger.Error("Compile called with empty script")
		return nil, ErrContentNil
	}

	predeclared, err := c.predeclared()
	if err != nil {
		return nil, err
	}

	opts := &syntax.FileOptions{
		Set:             true,
		While:           true,
		TopLevelControl: true,
		GlobalReassign:  true,
	}
	f, err := opts.Parse(c.filename, scriptBytes, 0)
	if err != nil {
		logger.Warn("Starlark parse failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	prog, err := starlarkLib.FileProgram(f, predeclared.Has)
	if err != nil {
		logger.Warn("Starlark compilation failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}

	thread := &starlarkLib.Thread{
		Name: "provider",
		Print: func(thread *starlarkLib.Thread, msg string) {
			logger.Info(msg, "starlark-thread", thread.Name)
		},
	}
	globals, err := prog.Init(thread, predeclared)
	if err != nil {
		logger.Warn("Starlark provider execution failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExecFailed, err)
	}

	// module globals shadow predeclared names during namespace lookup
	scope := maps.Clone(predeclared)
	maps.Copy(scope, globals)
	scope.Freeze()

	id := helpers.ShortSHA256(scriptBytes)
	logger.Debug("Starlark provider compiled", "id", id, "globals", len(globals))
	return newExecutable(id, scriptBytes, scope), nil
}

func (c *Compiler) predeclared() (starlarkLib.StringDict, error) {
	modules := internal.StarlarkModules()

	globals, err := internal.ToStringDict(c.globals)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGlobals, err)
	}
	maps.Copy(modules, globals)
	return modules, nil
}
