package internal

import (
	"context"
	"errors"
	"fmt"

	risorLib "github.com/risor-io/risor"
	risorCompiler "github.com/risor-io/risor/compiler"
	risorErrors "github.com/risor-io/risor/errz"
	risorParser "github.com/risor-io/risor/parser"
)

var ErrCompileFailed = errors.New("risor compilation failed")

// Compile parses and compiles the script content into bytecode
func Compile(scriptContent string, options ...risorCompiler.Option) (*risorCompiler.Code, error) {
	ast, err := risorParser.Parse(context.Background(), scriptContent)
	if err != nil {
		// Create a better-looking error output when there's a syntax error
		errMsg := err.Error()
		var friendlyErr risorErrors.FriendlyError
		if errors.As(err, &friendlyErr) {
			errMsg = friendlyErr.FriendlyErrorMessage()
		}
		return nil, fmt.Errorf("%w: %s", ErrCompileFailed, errMsg)
	}

	bc, err := risorCompiler.Compile(ast, options...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompileFailed, err)
	}
	return bc, nil
}

// CompileWithGlobals compiles the script with the default Risor globals plus
// names that are only bound at eval time.
func CompileWithGlobals(scriptContent string, globals []string) (*risorCompiler.Code, error) {
	cfg := risorLib.NewConfig()
	globalNames := append(cfg.GlobalNames(), globals...)

	return Compile(scriptContent, risorCompiler.WithGlobalNames(globalNames))
}
