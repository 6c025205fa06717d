package internal

import (
	"fmt"
	"maps"
	"reflect"
	"slices"

	"github.com/risor-io/risor/object"
)

// SortedNames returns the keys of globals in a stable order.
func SortedNames(globals map[string]any) []string {
	return slices.Sorted(maps.Keys(globals))
}

// ToRisorObjects converts row values into call arguments.
func ToRisorObjects(values []any) ([]object.Object, error) {
	args := make([]object.Object, len(values))
	for i, v := range values {
		obj, err := toRisorObject(v)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = obj
	}
	return args, nil
}

func toRisorObject(v any) (object.Object, error) {
	obj := object.FromGoType(v)
	if _, ok := obj.(*object.Error); !ok {
		return obj, nil
	}

	// FromGoType covers the common scalar and container types only
	conv, err := object.NewTypeConverter(reflect.TypeOf(v))
	if err != nil {
		return nil, err
	}
	return conv.From(v)
}

// FromRisorObject converts a script result into a Go value. Risor error
// values become Go errors.
func FromRisorObject(obj object.Object) (any, error) {
	if obj == nil {
		return nil, nil
	}
	switch obj.Type() {
	case "nil":
		return nil, nil
	case "error":
		return nil, fmt.Errorf("error returned from script: %s", obj.Inspect())
	case "function", "builtin":
		return nil, fmt.Errorf("function object returned from script: %s", obj.Inspect())
	}
	return obj.Interface(), nil
}

// IsCallable reports whether obj can be called from Risor code.
func IsCallable(obj object.Object) bool {
	if obj == nil {
		return false
	}
	switch obj.Type() {
	case "function", "builtin":
		return true
	}
	return false
}
