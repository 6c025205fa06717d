package compiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	risorLib "github.com/risor-io/risor"
	risorCompiler "github.com/risor-io/risor/compiler"
	"github.com/risor-io/risor/object"
	"github.com/risor-io/risor/vm"
	"github.com/robbyt/go-polyudf/engines/risor/internal"
	"github.com/robbyt/go-polyudf/internal/helpers"
)

// Compiler validates a Risor provider script and prepares it for resolution.
type Compiler struct {
	globals    map[string]any
	logHandler slog.Handler
	logger     *slog.Logger
}

// New creates a new Risor Compiler instance with the provided options.
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
	return "risor.Compiler"
}

// Compile reads the provider script, compiles it against the configured
// global names and runs it once so top-level failures surface here.
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

	globalNames := internal.SortedNames(c.globals)

	bc, err := internal.CompileWithGlobals(string(scriptBytes), globalNames)
	if err != nil {
		logger.Warn("Risor compilation failed", "error", err)
		if errors.Is(err, internal.ErrCompileFailed) {
			return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
		}
		return nil, err
	}

	machine, err := c.run(bc)
	if err != nil {
		logger.Warn("Risor provider execution failed", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExecFailed, err)
	}

	id := helpers.ShortSHA256(scriptBytes)
	logger.Debug("Risor provider compiled", "id", id, "globals", globalNames)
	return newExecutable(id, machine), nil
}

// run executes the provider with the default Risor builtins plus the
// configured globals and returns the finished VM.
func (c *Compiler) run(bc *risorCompiler.Code) (*vm.VirtualMachine, error) {
	if _, err := object.AsObjects(c.globals); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidGlobals, err)
	}

	cfg := risorLib.NewConfig(risorLib.WithGlobals(c.globals))
	machine := vm.New(bc, cfg.VMOpts()...)
	if err := machine.Run(context.Background()); err != nil {
		return nil, err
	}
	return machine, nil
}
