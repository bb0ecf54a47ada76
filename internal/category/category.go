// Package category produces plausible values for properties from their
// names alone.
//
// Strategies are tried in priority order. The first strategy that matches
// a property name and returns a value compatible with the declared kind
// wins; an incompatible value lets later strategies try.
package category

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/jaswdr/faker/v2"

	"github.com/artefactual-labs/apimock/internal/schema"
)

// Field is the property being generated.
type Field struct {
	// Name as declared.
	Name string
	// Lower is the lower-cased name with separators removed, so userName,
	// user_name and user-name all become "username".
	Lower string
	// Kind is the declared kind.
	Kind schema.Kind
	// Now is the reference time for date values.
	Now time.Time
}

func NewField(name string, kind schema.Kind, now time.Time) Field {
	return Field{Name: name, Lower: normalize(name), Kind: kind, Now: now}
}

// Strategy is one (predicate, generator) pair.
type Strategy struct {
	Category string
	Match    func(f Field) bool
	Generate func(gen faker.Faker, f Field) any
}

// Generate runs the strategies against f and returns the first value that
// fits the declared kind.
func Generate(gen faker.Faker, f Field) (any, bool) {
	if !accepts(f.Kind) {
		return nil, false
	}
	for _, s := range Strategies {
		if !s.Match(f) {
			continue
		}
		if v := s.Generate(gen, f); Compatible(v, f.Kind) {
			return v, true
		}
	}
	return nil, false
}

// Compatible reports whether v is a valid value for a property of kind k.
func Compatible(v any, k schema.Kind) bool {
	switch k {
	case schema.KindString:
		_, ok := v.(string)
		return ok
	case schema.KindNumber:
		_, ok := v.(float64)
		return ok
	case schema.KindBoolean:
		_, ok := v.(bool)
		return ok
	case schema.KindUnknown:
		return v != nil
	}
	return false
}

// accepts reports whether name heuristics apply to kind at all. Composite,
// literal and union kinds keep their structural defaults.
func accepts(k schema.Kind) bool {
	switch k {
	case schema.KindString, schema.KindNumber, schema.KindBoolean, schema.KindUnknown:
		return true
	}
	return false
}

func normalize(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		if r == '_' || r == '-' || r == ' ' || r == '.' {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}

// words splits a declared name into lower-cased words on case changes and
// separators: "createdAt" -> [created at], "user_id" -> [user id].
func words(name string) []string {
	var (
		out  []string
		cur  []rune
		prev rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, strings.ToLower(string(cur)))
			cur = cur[:0]
		}
	}
	for _, r := range name {
		switch {
		case r == '_' || r == '-' || r == ' ' || r == '.':
			flush()
		case unicode.IsUpper(r) && prev != 0 && !unicode.IsUpper(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}

func contains(subs ...string) func(Field) bool {
	return func(f Field) bool {
		for _, s := range subs {
			if strings.Contains(f.Lower, s) {
				return true
			}
		}
		return false
	}
}

func exact(names ...string) func(Field) bool {
	return func(f Field) bool {
		for _, n := range names {
			if f.Lower == n {
				return true
			}
		}
		return false
	}
}

// lastWord matches when the final word of the declared name is one of ws.
func lastWord(ws ...string) func(Field) bool {
	return func(f Field) bool {
		parts := words(f.Name)
		if len(parts) == 0 {
			return false
		}
		last := parts[len(parts)-1]
		for _, w := range ws {
			if last == w {
				return true
			}
		}
		return false
	}
}

// firstWord matches when the first word of the declared name is one of ws.
func firstWord(ws ...string) func(Field) bool {
	return func(f Field) bool {
		parts := words(f.Name)
		if len(parts) < 2 {
			return false
		}
		for _, w := range ws {
			if parts[0] == w {
				return true
			}
		}
		return false
	}
}

func either(ms ...func(Field) bool) func(Field) bool {
	return func(f Field) bool {
		for _, m := range ms {
			if m(f) {
				return true
			}
		}
		return false
	}
}

func hex(n int) string {
	var b strings.Builder
	for b.Len() < n {
		b.WriteString(strings.ReplaceAll(uuid.NewString(), "-", ""))
	}
	return b.String()[:n]
}

func between(gen faker.Faker, lo, hi int) float64 {
	return float64(gen.IntBetween(lo, hi))
}

// cents returns a two-decimal amount in [lo, hi).
func cents(gen faker.Faker, lo, hi int) float64 {
	return float64(gen.IntBetween(lo*100, hi*100-1)) / 100
}
