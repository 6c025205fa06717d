package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
)

const (
	ExitRuntime = 1
	ExitUsage   = 2
)

// ExitError is an error that carries the process exit code.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: ExitUsage, Message: fmt.Sprintf(format, args...)}
}

// Config is the validated command line.
type Config struct {
	ManifestPath string
	UDF          string
	Columns      []string
	List         bool
	LogLevel     string
	LogFormat    string
}

// columnList collects -col values. Each occurrence may hold a comma separated
// list.
type columnList []string

func (c *columnList) String() string {
	return strings.Join(*c, ",")
}

func (c *columnList) Set(value string) error {
	for part := range strings.SplitSeq(value, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			return errors.New("column name is empty")
		}
		*c = append(*c, part)
	}
	return nil
}

// Parse processes command-line arguments. It returns the config, whether the
// program should exit cleanly (help was requested), or an *ExitError.
func Parse(args []string, output io.Writer) (*Config, bool, error) {
	flagSet := flag.NewFlagSet("udfctl", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
udfctl - register the UDFs a manifest declares and apply one to JSON rows.

Usage:
  udfctl -manifest FILE -list
  udfctl -manifest FILE -udf NAME [-col COLUMN ...] < rows.jsonl

Rows are read from stdin as JSON objects. For every row one JSON line
{"input": ..., "output": ...} is written to stdout.

Options:
`)
		flagSet.PrintDefaults()
	}

	var cols columnList
	manifestFlag := flagSet.String("manifest", "", "Path to the HCL manifest describing the UDF provider.")
	udfFlag := flagSet.String("udf", "", "Name of the registered UDF to apply.")
	flagSet.Var(&cols, "col", "Input column passed to the UDF. Repeat or separate with commas.")
	listFlag := flagSet.Bool("list", false, "Print the registered UDFs and exit.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	logFormatFlag := flagSet.String("log-format", "text", "Log output format. Options: 'text' or 'json'.")

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, true, nil
		}
		return nil, false, usageError("%s", err)
	}

	if flagSet.NArg() > 0 {
		return nil, false, usageError("unexpected arguments: %s", strings.Join(flagSet.Args(), " "))
	}
	if *manifestFlag == "" {
		return nil, false, usageError("-manifest is required")
	}
	if !*listFlag && *udfFlag == "" {
		return nil, false, usageError("-udf is required unless -list is set")
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, usageError("invalid log-format: must be 'text' or 'json'")
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, false, usageError("invalid log-level: must be 'debug', 'info', 'warn', or 'error'")
	}

	return &Config{
		ManifestPath: *manifestFlag,
		UDF:          *udfFlag,
		Columns:      cols,
		List:         *listFlag,
		LogLevel:     logLevel,
		LogFormat:    logFormat,
	}, false, nil
}
