package udf

import (
	"fmt"
	"strings"
	"unicode"
)

// DefaultNamespace is where UDF provider objects live unless a resolver is
// configured otherwise.
const DefaultNamespace = "io.archivesunleashed.spark.matchbox"

// Namespace is a parsed dotted path such as "io.archivesunleashed.spark.matchbox".
type Namespace []string

// ParseNamespace splits and validates a dotted namespace path. Every segment
// must be an identifier.
func ParseNamespace(path string) (Namespace, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path is empty", ErrInvalidNamespace)
	}

	segments := strings.Split(path, ".")
	for _, seg := range segments {
		if !IsIdentifier(seg) {
			return nil, fmt.Errorf("%w: bad segment %q in %q", ErrInvalidNamespace, seg, path)
		}
	}
	return Namespace(segments), nil
}

// MustParseNamespace is like ParseNamespace but panics on error.
func MustParseNamespace(path string) Namespace {
	ns, err := ParseNamespace(path)
	if err != nil {
		panic(err)
	}
	return ns
}

func (n Namespace) String() string {
	return strings.Join(n, ".")
}

// Root is the first segment, the global the traversal starts from.
func (n Namespace) Root() string {
	if len(n) == 0 {
		return ""
	}
	return n[0]
}

// Qualify returns the fully qualified name of a function in this namespace.
func (n Namespace) Qualify(name string) string {
	if len(n) == 0 {
		return name
	}
	return n.String() + "." + name
}

// IsIdentifier reports whether s is a valid function or namespace segment name.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// ValidateName checks a UDF name before it is resolved.
func ValidateName(name string) error {
	if !IsIdentifier(name) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
