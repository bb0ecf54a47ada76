// Package interpolate fills placeholders in response templates with request
// data.
//
// Recognized placeholders:
//
//	{{body}}        the whole request body
//	{{body.a.b}}    a field of the request body
//	{{query.name}}  a query parameter
//	:name           a path parameter
//
// A string that is exactly one placeholder is replaced by the referenced
// value with its type intact. Placeholders embedded in longer strings are
// replaced by the value's text. Placeholders that cannot be resolved are
// left as written.
package interpolate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/artefactual-labs/apimock/internal/fieldpath"
)

// ObjectText is the text of an object or array embedded in a string.
const ObjectText = "[object Object]"

var placeholder = regexp.MustCompile(`\{\{\s*((?:body|query)(?:\.[^{}\s]+)?)\s*\}\}|:([A-Za-z_][A-Za-z0-9_]*)`)

type request struct {
	params map[string]any
	query  map[string]any
	body   any
}

// Interpolate returns a copy of template with its placeholders resolved.
// Maps and slices are walked recursively; template is never modified.
func Interpolate(template any, pathParams, query map[string]any, body any) any {
	r := request{params: pathParams, query: query, body: body}
	return r.walk(template)
}

func (r request) walk(v any) any {
	switch t := v.(type) {
	case string:
		return r.str(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = r.walk(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = r.walk(e)
		}
		return out
	}
	return v
}

func (r request) str(s string) any {
	if !strings.ContainsAny(s, "{:") {
		return s
	}

	if loc := placeholder.FindStringSubmatchIndex(s); loc != nil && loc[0] == 0 && loc[1] == len(s) {
		if v, ok := r.lookup(s, loc); ok {
			return v
		}
		return s
	}

	var (
		b    strings.Builder
		last int
	)
	for _, loc := range placeholder.FindAllStringSubmatchIndex(s, -1) {
		b.WriteString(s[last:loc[0]])
		last = loc[1]

		if expr := group(s, loc, 1); expr == "body" {
			b.WriteString(s[loc[0]:loc[1]])
			continue
		}
		if v, ok := r.lookup(s, loc); ok {
			b.WriteString(Text(v))
		} else {
			b.WriteString(s[loc[0]:loc[1]])
		}
	}
	b.WriteString(s[last:])

	return b.String()
}

func (r request) lookup(s string, loc []int) (any, bool) {
	if name := group(s, loc, 2); name != "" {
		v, ok := r.params[name]
		return v, ok
	}

	expr := group(s, loc, 1)
	if expr == "body" {
		return r.body, true
	}
	if rest, ok := strings.CutPrefix(expr, "body."); ok {
		return fieldpath.Lookup(r.body, rest)
	}
	if rest, ok := strings.CutPrefix(expr, "query."); ok {
		if r.query == nil {
			return nil, false
		}
		return fieldpath.Lookup(r.query, rest)
	}
	return nil, false
}

func group(s string, loc []int, n int) string {
	if loc[2*n] < 0 {
		return ""
	}
	return s[loc[2*n]:loc[2*n+1]]
}

// Text converts a value to the text used when it is embedded in a string.
func Text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case uint:
		return strconv.FormatUint(uint64(t), 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	}
	return ObjectText
}
