package loader

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/robbyt/go-polyudf/internal/helpers"
)

// Source kinds recorded in inline source URLs.
const (
	KindScript = "script"
	KindWASM   = "wasm"
)

var wasmMagic = []byte{0x00, 'a', 's', 'm'}

// SourceKind reports whether content is a WASM module or provider script text.
func SourceKind(content []byte) string {
	if bytes.HasPrefix(content, wasmMagic) {
		return KindWASM
	}
	return KindScript
}

// inlineURL names in-memory content as provider://inline/<kind>/<digest>, so
// two loaders over the same provider share a URL.
func inlineURL(content []byte) *url.URL {
	return &url.URL{
		Scheme: "provider",
		Host:   "inline",
		Path:   "/" + SourceKind(content) + "/" + helpers.ShortSHA256(content),
	}
}

// inline holds provider content in memory.
type inline struct {
	content   []byte
	sourceURL *url.URL
}

func newInline(content []byte) inline {
	return inline{content: content, sourceURL: inlineURL(content)}
}

func (l *inline) GetReader() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(l.content)), nil
}

// GetSourceURL returns the provider://inline URL of the content.
func (l *inline) GetSourceURL() *url.URL {
	return l.sourceURL
}

// Kind returns KindWASM or KindScript.
func (l *inline) Kind() string {
	return SourceKind(l.content)
}

// FromString loads provider script text held in a string. Surrounding
// whitespace is dropped.
type FromString struct {
	inline
}

func NewFromString(content string) (*FromString, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is empty", ErrSourceNotAvailable)
	}
	return &FromString{inline: newInline([]byte(content))}, nil
}

func (l *FromString) String() string {
	return fmt.Sprintf("loader.FromString{Chars: %d}", len(l.content))
}

// FromBytes loads provider content verbatim, typically a compiled WASM module.
type FromBytes struct {
	inline
}

func NewFromBytes(content []byte) (*FromBytes, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("%w: content is empty", ErrSourceNotAvailable)
	}
	if SourceKind(content) == KindScript && !hasBinaryCharacters(content) &&
		len(bytes.TrimSpace(content)) == 0 {
		return nil, fmt.Errorf("%w: content is only whitespace", ErrSourceNotAvailable)
	}
	return &FromBytes{inline: newInline(content)}, nil
}

func (l *FromBytes) String() string {
	return fmt.Sprintf("loader.FromBytes{Bytes: %d, Kind: %s}", len(l.content), l.Kind())
}

// NewFromStringBase64 decodes base64 content, such as an inlined WASM module,
// into a FromBytes. Anything else is script text.
func NewFromStringBase64(content string) (Loader, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: content is empty", ErrSourceNotAvailable)
	}

	if decoded, err := base64.StdEncoding.DecodeString(content); err == nil {
		return NewFromBytes(decoded)
	}
	return NewFromString(content)
}

func hasBinaryCharacters(data []byte) bool {
	for _, b := range data {
		if b == 0 || (b < 32 && b != '\n' && b != '\r' && b != '\t') {
			return true
		}
	}
	return false
}
