package mocks

import (
	"context"

	"github.com/robbyt/go-polyudf/platform/column"
	"github.com/robbyt/go-polyudf/platform/udf"
	"github.com/stretchr/testify/mock"
)

// Resolver is a mock implementation of udf.Resolver for testing purposes.
type Resolver struct {
	mock.Mock
}

// Resolve is a mock implementation of the Resolve method.
func (m *Resolver) Resolve(ctx context.Context, name string) (udf.Handle, error) {
	args := m.Called(ctx, name)
	h, _ := args.Get(0).(udf.Handle)
	return h, args.Error(1)
}

// Invoke is a mock implementation of the Invoke method.
func (m *Resolver) Invoke(ctx context.Context, h udf.Handle, seqs []column.Seq) (any, error) {
	args := m.Called(ctx, h, seqs)
	return args.Get(0), args.Error(1)
}

// DescribedResolver is a Resolver that also implements udf.Describer.
type DescribedResolver struct {
	Resolver
}

// Describe is a mock implementation of the Describe method.
func (m *DescribedResolver) Describe() string {
	args := m.Called()
	return args.String(0)
}

// Namespace is a mock implementation of the Namespace method.
func (m *DescribedResolver) Namespace() udf.Namespace {
	args := m.Called()
	ns, _ := args.Get(0).(udf.Namespace)
	return ns
}

// Handle is a fixed udf.Handle for tests.
type Handle struct {
	FuncName  string
	FuncArity udf.Arity
}

func (h *Handle) Name() string     { return h.FuncName }
func (h *Handle) Arity() udf.Arity { return h.FuncArity }
