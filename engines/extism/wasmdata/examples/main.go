// Command examples is a WASM UDF provider. Build it with
//
//	GOOS=wasip1 GOARCH=wasm go build -buildmode=c-shared -o ../main.wasm .
//
// Every export reads its arguments as a JSON array and writes one JSON value.
package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/extism/go-pdk"
)

func args(n int) ([]any, error) {
	var in []any
	if err := pdk.InputJSON(&in); err != nil {
		return nil, err
	}
	if len(in) != n {
		return nil, fmt.Errorf("expected %d arguments, got %d", n, len(in))
	}
	return in, nil
}

func stringArg(in []any, i int) (string, error) {
	s, ok := in[i].(string)
	if !ok {
		return "", fmt.Errorf("argument %d: expected string, got %T", i, in[i])
	}
	return s, nil
}

func output(v any) int32 {
	if err := pdk.OutputJSON(v); err != nil {
		pdk.SetError(err)
		return 1
	}
	return 0
}

//go:wasmexport ExtractDomain
func extractDomain() int32 {
	in, err := args(1)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	url, err := stringArg(in, 0)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	return output(doExtractDomain(url))
}

//go:wasmexport RemovePrefixWWW
func removePrefixWWW() int32 {
	in, err := args(1)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	host, err := stringArg(in, 0)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	return output(strings.TrimPrefix(host, "www."))
}

// Tag prefixes its argument with the "tag" config value.
//
//go:wasmexport Tag
func tag() int32 {
	in, err := args(1)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	s, err := stringArg(in, 0)
	if err != nil {
		pdk.SetError(err)
		return 1
	}
	prefix, ok := pdk.GetConfig("tag")
	if !ok {
		pdk.SetError(errors.New("tag is not configured"))
		return 1
	}
	return output(prefix + s)
}

func doExtractDomain(url string) string {
	host := url
	if _, after, ok := strings.Cut(host, "://"); ok {
		host = after
	}
	host, _, _ = strings.Cut(host, "/")
	return strings.TrimPrefix(host, "www.")
}

func main() {}
