package udf

import "errors"

var (
	ErrInvalidNamespace  = errors.New("invalid namespace path")
	ErrNamespaceNotFound = errors.New("namespace not found")
	ErrFunctionNotFound  = errors.New("function not found in namespace")
	ErrAccessorMissing   = errors.New("function object has no usable accessor")
	ErrNotCallable       = errors.New("accessor did not return a callable")
	ErrArity             = errors.New("wrong number of arguments")
	ErrInvalidHandle     = errors.New("handle does not belong to this resolver")
	ErrInvalidName       = errors.New("invalid function name")
)
