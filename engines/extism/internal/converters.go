package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// ArgsToJSON encodes positional UDF arguments as a JSON array.
func ArgsToJSON(values []any) ([]byte, error) {
	if values == nil {
		values = []any{}
	}
	return json.Marshal(values)
}

// DecodeOutput parses a plugin's JSON output. Output that is not JSON is
// returned as a string.
func DecodeOutput(output []byte) any {
	if len(output) == 0 {
		return nil
	}

	var result any
	d := json.NewDecoder(bytes.NewReader(output))
	d.UseNumber()
	if err := d.Decode(&result); err != nil {
		return string(output)
	}
	return FixJSONNumberTypes(result)
}

// FixJSONNumberTypes converts json.Number values to int64 when they are
// integral and to float64 otherwise.
func FixJSONNumberTypes(data any) any {
	switch v := data.(type) {
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return n
		}
		if f, err := v.Float64(); err == nil {
			return f
		}
		return v.String()
	case map[string]any:
		for k, val := range v {
			v[k] = FixJSONNumberTypes(val)
		}
		return v
	case []any:
		for i, item := range v {
			v[i] = FixJSONNumberTypes(item)
		}
		return v
	default:
		return data
	}
}

// ConfigFromGlobals flattens static globals into the string map Extism
// exposes to plugins. Strings pass through; other values are JSON encoded.
func ConfigFromGlobals(globals map[string]any) (map[string]string, error) {
	config := make(map[string]string, len(globals))
	for _, k := range slices.Sorted(maps.Keys(globals)) {
		switch v := globals[k].(type) {
		case string:
			config[k] = v
		default:
			encoded, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("failed to encode global %q: %w", k, err)
			}
			config[k] = string(encoded)
		}
	}
	return config, nil
}
