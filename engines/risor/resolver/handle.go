package resolver

import (
	"github.com/risor-io/risor/object"
	"github.com/robbyt/go-polyudf/platform/udf"
)

type handle struct {
	owner *Resolver
	name  string
	fn    object.Object
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
func arityOf(obj object.Object) udf.Arity {
	fn, ok := obj.(*object.Function)
	if !ok {
		return udf.VarArgs(0)
	}

	params := len(fn.Parameters())
	if required := fn.RequiredArgsCount(); required < params {
		return udf.VarArgs(required)
	}
	return udf.Fixed(params)
}
