package udf

import "fmt"

// Arity is the number of arguments a remote UDF accepts.
type Arity struct {
	NArgs     int
	IsVarArgs bool
}

// Fixed returns an Arity that accepts exactly n arguments.
func Fixed(n int) Arity { return Arity{NArgs: n} }

// VarArgs returns an Arity that accepts minArgs or more arguments.
// VarArgs(0) is used when the runtime does not expose a signature.
func VarArgs(minArgs int) Arity { return Arity{NArgs: minArgs, IsVarArgs: true} }

func (a Arity) String() string {
	if a.IsVarArgs {
		return fmt.Sprintf("%d+", a.NArgs)
	}
	return fmt.Sprintf("%d", a.NArgs)
}

// Check returns ErrArity when n arguments are not accepted.
func (a Arity) Check(name string, n int) error {
	if n < a.NArgs || (!a.IsVarArgs && n != a.NArgs) {
		return fmt.Errorf("%w: %s accepts %s, got %d", ErrArity, name, a, n)
	}
	return nil
}
