package compiler

import (
	starlarkLib "go.starlark.net/starlark"
)

// Executable is a compiled and initialized provider script.
type Executable struct {
	id      string
	source  []byte
	globals starlarkLib.StringDict
}

func newExecutable(id string, source []byte, globals starlarkLib.StringDict) *Executable {
	return &Executable{
		id:      id,
		source:  source,
		globals: globals,
	}
}

// ID returns a short checksum of the provider source.
func (e *Executable) ID() string {
	return e.id
}

// GetSource returns the original script content.
func (e *Executable) GetSource() string {
	return string(e.source)
}

// Globals returns the frozen scope namespace lookups start from: predeclared
// values overlaid with the script's own globals.
func (e *Executable) Globals() starlarkLib.StringDict {
	return e.globals
}
