package resolver

import (
	"github.com/robbyt/go-polyudf/platform/udf"
	starlarkLib "go.starlark.net/starlark"
)

type handle struct {
	owner *Resolver
	name  string
	fn    starlarkLib.Callable
	arity udf.Arity
}

func (h *handle) Name() string {
	return h.name
}

func (h *handle) Arity() udf.Arity {
	return h.arity
}

// arityOf reads the parameter list of script-defined functions. Builtins do
// not expose one and are treated as variadic.
func arityOf(c starlarkLib.Callable) udf.Arity {
	fn, ok := c.(*starlarkLib.Function)
	if !ok {
		return udf.VarArgs(0)
	}

	positional := fn.NumParams() - fn.NumKwonlyParams()
	if fn.HasVarargs() {
		positional--
	}
	if fn.HasKwargs() {
		positional--
	}

	required := 0
	for i := range positional {
		if fn.ParamDefault(i) == nil {
			required++
		}
	}

	if fn.HasVarargs() || required < positional {
		return udf.VarArgs(required)
	}
	return udf.Fixed(required)
}
