package guard

import "strings"

// Equal compares JSON-like values strictly: both sides must have the same
// JSON type. Numbers of any Go numeric type compare by value, and arrays
// and objects compare element by element.
func Equal(a, b any) bool {
	a, b = normalize(a), normalize(b)

	switch av := a.(type) {
	case nil:
		return b == nil
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case []any:
		bv, ok := b.([]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case map[string]any:
		bv, ok := b.(map[string]any)
		if !ok || len(av) != len(bv) {
			return false
		}
		for k, x := range av {
			y, ok := bv[k]
			if !ok || !Equal(x, y) {
				return false
			}
		}
		return true
	}
	return false
}

// containment reports whether container holds want. ok is false when the
// check does not apply: only string-in-string and element-in-array are
// defined.
func containment(container, want any) (has, ok bool) {
	switch c := normalize(container).(type) {
	case string:
		w, isString := want.(string)
		if !isString {
			return false, false
		}
		return strings.Contains(c, w), true
	case []any:
		for _, e := range c {
			if Equal(e, want) {
				return true, true
			}
		}
		return false, true
	}
	return false, false
}

func normalize(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int8:
		return float64(n)
	case int16:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case uint:
		return float64(n)
	case uint8:
		return float64(n)
	case uint16:
		return float64(n)
	case uint32:
		return float64(n)
	case uint64:
		return float64(n)
	case float32:
		return float64(n)
	case []string:
		out := make([]any, len(n))
		for i, s := range n {
			out[i] = s
		}
		return out
	}
	return v
}
