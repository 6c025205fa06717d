package polyudf_test

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	polyudf "github.com/robbyt/go-polyudf"
	"github.com/robbyt/go-polyudf/platform/column"
	"github.com/robbyt/go-polyudf/platform/udf"
)

func Example() {
	ctx := context.Background()
	handler := slog.NewTextHandler(io.Discard, nil)

	provider := `
def _extract_domain(url):
    host = url.split("://", 1)[-1].split("/", 1)[0]
    return host.removeprefix("www.")

matchbox = module("matchbox", ExtractDomain = struct(getUDF = lambda: _extract_domain))
io = {"archivesunleashed": {"spark": {"matchbox": matchbox}}}
`
	resolver, err := polyudf.FromStarlarkString(handler, provider, udf.DefaultNamespace)
	if err != nil {
		fmt.Println(err)
		return
	}

	reg, err := polyudf.New(polyudf.WithLogHandler(handler))
	if err != nil {
		fmt.Println(err)
		return
	}
	if err := reg.Add(ctx, resolver, "ExtractDomain"); err != nil {
		fmt.Println(err)
		return
	}

	domain, err := reg.Call(ctx, "ExtractDomain", column.Col("url"))
	if err != nil {
		fmt.Println(err)
		return
	}

	rows, err := column.Select(ctx, []column.Row{
		{"url": "https://www.example.com/about"},
		{"url": "http://archive.org/web/"},
	}, domain)
	if err != nil {
		fmt.Println(err)
		return
	}

	doc, _ := reg.Doc("ExtractDomain")
	fmt.Println(doc)
	for _, row := range rows {
		fmt.Println(domain, "=", row[domain.String()])
	}
	// Output:
	// ExtractDomain is a starlark UDF imported from io.archivesunleashed.spark.matchbox
	// ExtractDomain(url) = example.com
	// ExtractDomain(url) = archive.org
}
