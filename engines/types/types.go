// Package types enumerates the embedded runtimes a UDF provider can live in.
package types

import (
	"fmt"
	"strings"
)

// Type is the name of an embedded runtime.
type Type string

const (
	Starlark Type = "starlark"
	Risor    Type = "risor"
	Extism   Type = "extism"
)

// All returns every supported runtime type.
func All() []Type {
	return []Type{Starlark, Risor, Extism}
}

func (t Type) String() string {
	return string(t)
}

// Parse converts a case-insensitive runtime name into a Type.
func Parse(s string) (Type, error) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All() {
		if t == known {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown engine type %q", s)
}
