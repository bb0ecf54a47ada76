// Package fieldpath resolves dotted paths such as "user.role" or
// "items.0.sku" against decoded JSON values.
package fieldpath

import (
	"strconv"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// Compile turns a dotted path into a JSONPath expression rooted at "$".
// Segments made only of digits select array elements. It reports false for
// paths with empty segments.
func Compile(path string) (jp.Expr, bool) {
	x := jp.R()
	if path == "" {
		return x, true
	}
	for seg := range strings.SplitSeq(path, ".") {
		if seg == "" {
			return nil, false
		}
		if n, err := strconv.Atoi(seg); err == nil && n >= 0 {
			x = x.N(n)
			continue
		}
		x = x.C(seg)
	}
	return x, true
}

// Lookup resolves path against data. The boolean reports whether the path
// exists; an existing key holding null returns (nil, true).
func Lookup(data any, path string) (any, bool) {
	if path == "" {
		return data, true
	}
	x, ok := Compile(path)
	if !ok {
		return nil, false
	}
	got := x.Get(data)
	if len(got) == 0 {
		return nil, false
	}
	return got[0], true
}
