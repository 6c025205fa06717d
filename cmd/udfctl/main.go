// Command udfctl loads a UDF manifest, registers the functions it declares,
// and applies one of them to JSON rows read from stdin.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	polyudf "github.com/robbyt/go-polyudf"
	"github.com/robbyt/go-polyudf/internal/cli"
	"github.com/robbyt/go-polyudf/manifest"
	"github.com/robbyt/go-polyudf/platform/column"
	"github.com/robbyt/go-polyudf/platform/udf"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			stop()
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(cli.ExitRuntime)
	}
}

// result is one output line.
type result struct {
	Input  column.Row `json:"input"`
	Output any        `json:"output"`
}

func run(ctx context.Context, in io.Reader, out, errOut io.Writer, args []string) error {
	cfg, shouldExit, err := cli.Parse(args, out)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	handler := cli.NewLogHandler(cfg.LogLevel, cfg.LogFormat, errOut)
	logger := slog.New(handler).WithGroup("udfctl")

	m, err := manifest.Load(cfg.ManifestPath)
	if err != nil {
		return err
	}

	resolver, err := m.Resolver(ctx, handler)
	if err != nil {
		return fmt.Errorf("failed to load %s provider: %w", m.EngineType(), err)
	}
	defer func() {
		if err := udf.Close(context.WithoutCancel(ctx), resolver); err != nil {
			logger.WarnContext(ctx, "failed to close resolver", "error", err)
		}
	}()

	reg, err := polyudf.New(polyudf.WithLogHandler(handler))
	if err != nil {
		return err
	}
	if err := m.Register(ctx, reg, resolver); err != nil {
		return fmt.Errorf("failed to register UDFs: %w", err)
	}
	logger.DebugContext(ctx, "registered UDFs", "manifest", cfg.ManifestPath, "count", reg.Len())

	if cfg.List {
		return list(out, reg)
	}

	if _, ok := reg.Get(cfg.UDF); !ok {
		return &cli.ExitError{
			Code:    cli.ExitUsage,
			Message: fmt.Sprintf("udf %q is not declared in %s", cfg.UDF, cfg.ManifestPath),
		}
	}

	cols := make([]column.Column, len(cfg.Columns))
	for i, name := range cfg.Columns {
		cols[i] = column.Col(name)
	}
	expr, err := reg.Call(ctx, cfg.UDF, cols...)
	if err != nil {
		return err
	}

	return apply(ctx, expr, in, out)
}

func list(out io.Writer, reg *polyudf.Registrar) error {
	for _, name := range reg.Names() {
		doc, _ := reg.Doc(name)
		if _, err := fmt.Fprintf(out, "%s\t%s\n", name, doc); err != nil {
			return err
		}
	}
	return nil
}

// apply evaluates expr against every JSON object read from in.
func apply(ctx context.Context, expr column.Column, in io.Reader, out io.Writer) error {
	dec := json.NewDecoder(in)
	enc := json.NewEncoder(out)

	for n := 1; ; n++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		var row column.Row
		if err := dec.Decode(&row); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("row %d: failed to decode input: %w", n, err)
		}

		v, err := expr.Eval(ctx, row)
		if err != nil {
			return fmt.Errorf("row %d: %w", n, err)
		}

		if err := enc.Encode(result{Input: row, Output: v}); err != nil {
			return fmt.Errorf("row %d: failed to encode output: %w", n, err)
		}
	}
}
