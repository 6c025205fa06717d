package internal

import (
	"maps"

	starlarkJSON "go.starlark.net/lib/json"
	starlarkMath "go.starlark.net/lib/math"
	starlarkTime "go.starlark.net/lib/time"
	starlarkLib "go.starlark.net/starlark"
	"go.starlark.net/starlarkstruct"
)

const (
	namespaceJSON = "json"
	namespaceMath = "math"
	namespaceTime = "time"
	builtinStruct = "struct"
	builtinModule = "module"
)

// StarlarkModules returns a copy of the Starlark universe with the extra
// modules provider scripts may use. struct and module let a script build the
// namespace objects UDFs are resolved through.
func StarlarkModules() starlarkLib.StringDict {
	universe := maps.Clone(starlarkLib.Universe)

	universe[namespaceJSON] = starlarkJSON.Module
	universe[namespaceMath] = starlarkMath.Module
	universe[namespaceTime] = starlarkTime.Module
	universe[builtinStruct] = starlarkLib.NewBuiltin(builtinStruct, starlarkstruct.Make)
	universe[builtinModule] = starlarkLib.NewBuiltin(builtinModule, starlarkstruct.MakeModule)

	return universe
}
