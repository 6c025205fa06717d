// Package cli parses udfctl's command-line arguments, validates them, and
// carries the process exit code for usage errors.
package cli
