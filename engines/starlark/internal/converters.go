package internal

import (
	"errors"
	"fmt"
	"math"
	"net/url"

	starlarkLib "go.starlark.net/starlark"
)

// ToStarlarkValue converts a Go value from a host row into a Starlark value.
func ToStarlarkValue(v any) (starlarkLib.Value, error) {
	if v == nil {
		return starlarkLib.None, nil
	}

	switch val := v.(type) {
	case starlarkLib.Value:
		return val, nil
	case bool:
		return starlarkLib.Bool(val), nil
	case int:
		return starlarkLib.MakeInt(val), nil
	case int32:
		return starlarkLib.MakeInt64(int64(val)), nil
	case int64:
		return starlarkLib.MakeInt64(val), nil
	case uint:
		return starlarkLib.MakeUint(val), nil
	case uint64:
		return starlarkLib.MakeUint64(val), nil
	case float32:
		return starlarkLib.Float(val), nil
	case float64:
		return starlarkLib.Float(val), nil
	case string:
		return starlarkLib.String(val), nil
	case []byte:
		return starlarkLib.Bytes(val), nil
	case *url.URL:
		return starlarkLib.String(val.String()), nil
	case []string:
		elements := make([]starlarkLib.Value, len(val))
		for i, s := range val {
			elements[i] = starlarkLib.String(s)
		}
		return starlarkLib.NewList(elements), nil
	case []any:
		elements := make([]starlarkLib.Value, len(val))
		for i, elem := range val {
			var err error
			elements[i], err = ToStarlarkValue(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to convert list element: %w", err)
			}
		}
		return starlarkLib.NewList(elements), nil
	case map[string]struct{}:
		// golang doesn't have a Set, but often a map[string]struct{} is used instead
		set := starlarkLib.NewSet(len(val))
		for k := range val {
			if err := set.Insert(starlarkLib.String(k)); err != nil {
				return nil, fmt.Errorf("failed to insert set element: %w", err)
			}
		}
		return set, nil
	case map[string]any:
		dict := starlarkLib.NewDict(len(val))
		for k, elem := range val {
			sv, err := ToStarlarkValue(elem)
			if err != nil {
				return nil, fmt.Errorf("failed to convert dict value for key %q: %w", k, err)
			}
			if err := dict.SetKey(starlarkLib.String(k), sv); err != nil {
				return nil, fmt.Errorf("failed to set dict key %q: %w", k, err)
			}
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}

// ToStarlarkArgs converts evaluated argument values into a call tuple.
func ToStarlarkArgs(values []any) (starlarkLib.Tuple, error) {
	args := make(starlarkLib.Tuple, len(values))
	errz := make([]error, 0)
	for i, v := range values {
		sv, err := ToStarlarkValue(v)
		if err != nil {
			errz = append(errz, fmt.Errorf("argument %d: %w", i, err))
			continue
		}
		args[i] = sv
	}
	if len(errz) > 0 {
		return nil, errors.Join(errz...)
	}
	return args, nil
}

// ToStringDict converts static globals into predeclared Starlark values.
func ToStringDict(globals map[string]any) (starlarkLib.StringDict, error) {
	sDict := make(starlarkLib.StringDict, len(globals))
	errz := make([]error, 0)
	for k, v := range globals {
		sv, err := ToStarlarkValue(v)
		if err != nil {
			errz = append(errz, fmt.Errorf("failed to convert global %q: %w", k, err))
			continue
		}
		sDict[k] = sv
	}
	if len(errz) > 0 {
		return nil, errors.Join(errz...)
	}
	return sDict, nil
}

// FromStarlarkValue converts a Starlark value returned by a UDF into a Go value.
func FromStarlarkValue(v starlarkLib.Value) (any, error) {
	if v == nil {
		return nil, nil
	}

	switch v := v.(type) {
	case starlarkLib.NoneType:
		return nil, nil
	case starlarkLib.Bool:
		return bool(v), nil
	case starlarkLib.Int:
		if i, ok := v.Int64(); ok {
			return i, nil
		}
		// out of int64 range
		return v.String(), nil
	case starlarkLib.Float:
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("non-finite float %v", f)
		}
		return f, nil
	case starlarkLib.String:
		return string(v), nil
	case starlarkLib.Bytes:
		return []byte(v), nil
	case *starlarkLib.List:
		return iterableToSlice(v, v.Len())
	case starlarkLib.Tuple:
		return iterableToSlice(v, v.Len())
	case *starlarkLib.Set:
		return iterableToSlice(v, v.Len())
	case *starlarkLib.Dict:
		dict := make(map[string]any, v.Len())
		for _, item := range v.Items() {
			k, val := item[0], item[1]
			key, ok := k.(starlarkLib.String)
			if !ok {
				key = starlarkLib.String(k.String())
			}
			converted, err := FromStarlarkValue(val)
			if err != nil {
				return nil, fmt.Errorf("failed to convert dict value for key %s: %w", key, err)
			}
			dict[string(key)] = converted
		}
		return dict, nil
	default:
		return nil, fmt.Errorf("unsupported Starlark type %s", v.Type())
	}
}

func iterableToSlice(it starlarkLib.Iterable, n int) ([]any, error) {
	out := make([]any, 0, n)
	iter := it.Iterate()
	defer iter.Done()

	var elem starlarkLib.Value
	for iter.Next(&elem) {
		converted, err := FromStarlarkValue(elem)
		if err != nil {
			return nil, fmt.Errorf("failed to convert list element: %w", err)
		}
		out = append(out, converted)
	}
	return out, nil
}
