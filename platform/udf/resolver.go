// Package udf defines the seam between the registrar and an embedded runtime.
// A Resolver finds UDF objects by name under a fixed namespace inside the
// runtime and applies them to host column expressions. All runtime-specific
// reflection stays behind this interface.
package udf

import (
	"context"

	"github.com/robbyt/go-polyudf/platform/column"
)

// AccessorName is the parameterless method every UDF provider object exposes.
// Calling it returns the callable UDF.
const AccessorName = "getUDF"

// Handle identifies one resolved remote UDF. Its concrete type is private to
// the resolver that produced it.
type Handle interface {
	// Name is the name the UDF was resolved under.
	Name() string

	// Arity reports the accepted argument count, when the runtime knows it.
	Arity() Arity
}

// Resolver locates and applies remote UDFs inside one embedded runtime.
type Resolver interface {
	// Resolve traverses the namespace, retrieves the object called name and
	// calls its accessor. Failures wrap ErrNamespaceNotFound,
	// ErrFunctionNotFound, ErrAccessorMissing or ErrNotCallable.
	Resolve(ctx context.Context, name string) (Handle, error)

	// Invoke applies the UDF behind h to the wrapped arguments and returns
	// the raw result, normally a lazy column expression.
	Invoke(ctx context.Context, h Handle, args []column.Seq) (any, error)
}

// Describer is implemented by resolvers that can label the runtime they wrap.
type Describer interface {
	// Describe returns a short runtime label, such as "starlark".
	Describe() string

	// Namespace returns the namespace path UDFs are resolved under.
	Namespace() Namespace
}

// Closer is implemented by resolvers that own runtime resources.
type Closer interface {
	Close(ctx context.Context) error
}

// Close releases r's resources when it implements Closer.
func Close(ctx context.Context, r Resolver) error {
	if c, ok := r.(Closer); ok {
		return c.Close(ctx)
	}
	return nil
}
