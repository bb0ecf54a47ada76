package category_test

import (
	"regexp"
	"testing"
	"time"

	"github.com/jaswdr/faker/v2"
	"gotest.tools/v3/assert"

	"github.com/artefactual-labs/apimock/internal/category"
	"github.com/artefactual-labs/apimock/internal/schema"
)

var now = time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

func generate(t *testing.T, name string, kind schema.Kind) any {
	t.Helper()

	v, ok := category.Generate(faker.New(), category.NewField(name, kind, now))
	assert.Assert(t, ok, "no value for %s", name)
	return v
}

func TestGenerateStrings(t *testing.T) {
	t.Parallel()

	type test struct {
		name    string
		pattern string
	}
	for _, tc := range []test{
		{name: "id", pattern: `^[0-9a-f-]{36}$`},
		{name: "userId", pattern: `^[0-9a-f-]{36}$`},
		{name: "order_id", pattern: `^[0-9a-f-]{36}$`},
		{name: "email", pattern: `^.+@.+$`},
		{name: "contactEmail", pattern: `^.+@.+$`},
		{name: "apiToken", pattern: `^[0-9a-f]{32}$`},
		{name: "passwordHash", pattern: `.+`},
		{name: "createdAt", pattern: `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`},
		{name: "updated_at", pattern: `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}Z$`},
		{name: "birthDate", pattern: `^\d{4}-\d{2}-\d{2}$`},
		{name: "avatarUrl", pattern: `^https://`},
		{name: "ipAddress", pattern: `^\d+\.\d+\.\d+\.\d+$`},
		{name: "status", pattern: `^(active|inactive|pending)$`},
		{name: "version", pattern: `^\d\.\d\.\d$`},
		{name: "locale", pattern: `^[a-z]{2}-[A-Z]{2}$`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			v := generate(t, tc.name, schema.KindString)
			s, ok := v.(string)
			assert.Assert(t, ok, "%T", v)
			assert.Assert(t, regexp.MustCompile(tc.pattern).MatchString(s), "%s: %q", tc.name, s)
		})
	}
}

func TestGenerateNumberRanges(t *testing.T) {
	t.Parallel()

	type test struct {
		name   string
		lo, hi float64
	}
	for _, tc := range []test{
		{name: "age", lo: 18, hi: 100},
		{name: "rating", lo: 1, hi: 5},
		{name: "price", lo: 0, hi: 1000},
		{name: "percentage", lo: 0, hi: 100},
		{name: "quantity", lo: 1, hi: 100},
		{name: "latitude", lo: -90, hi: 90},
		{name: "lng", lo: -180, hi: 180},
		{name: "id", lo: 1, hi: 10000},
		{name: "tokenCount", lo: 1, hi: 100},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			for range 50 {
				v := generate(t, tc.name, schema.KindNumber)
				n, ok := v.(float64)
				assert.Assert(t, ok, "%T", v)
				assert.Assert(t, n >= tc.lo && n <= tc.hi, "%s: %v", tc.name, n)
			}
		})
	}
}

func TestGeneratePriceHasTwoDecimals(t *testing.T) {
	t.Parallel()

	for range 50 {
		v := generate(t, "price", schema.KindNumber).(float64)
		assert.Assert(t, v < 1000)
		assert.Equal(t, float64(int64(v*100+0.5))/100, v)
	}
}

func TestGenerateBooleans(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"isAdmin", "has_children", "enabled", "emailVerified"} {
		v := generate(t, name, schema.KindBoolean)
		_, ok := v.(bool)
		assert.Assert(t, ok, "%s: %T", name, v)
	}
}

func TestGenerateDateAsEpoch(t *testing.T) {
	t.Parallel()

	v := generate(t, "createdAt", schema.KindNumber).(float64)
	assert.Assert(t, v <= float64(now.UnixMilli()))
	assert.Assert(t, v >= float64(now.AddDate(-1, 0, -1).UnixMilli()))
}

func TestGenerateIncompatibleKindFallsThrough(t *testing.T) {
	t.Parallel()

	// No strategy produces a boolean for a plain name.
	_, ok := category.Generate(faker.New(), category.NewField("email", schema.KindBoolean, now))
	assert.Assert(t, !ok)

	_, ok = category.Generate(faker.New(), category.NewField("frobnicator", schema.KindString, now))
	assert.Assert(t, !ok)
}

func TestGenerateSkipsStructuralKinds(t *testing.T) {
	t.Parallel()

	for _, kind := range []schema.Kind{schema.KindArray, schema.KindObject, schema.KindReference, schema.KindLiteral, schema.KindUnion} {
		_, ok := category.Generate(faker.New(), category.NewField("email", kind, now))
		assert.Assert(t, !ok, kind.String())
	}
}

func TestStrategiesPriority(t *testing.T) {
	t.Parallel()

	// Security wins over identity.
	v := generate(t, "emailHash", schema.KindString)
	assert.Assert(t, regexp.MustCompile(`^[0-9a-f]{64}$`).MatchString(v.(string)), v)

	// Identity wins over location for email addresses.
	v = generate(t, "emailAddress", schema.KindString)
	assert.Assert(t, regexp.MustCompile(`@`).MatchString(v.(string)))
}

func TestCompatible(t *testing.T) {
	t.Parallel()

	assert.Assert(t, category.Compatible("x", schema.KindString))
	assert.Assert(t, !category.Compatible(1.0, schema.KindString))
	assert.Assert(t, category.Compatible(1.0, schema.KindNumber))
	assert.Assert(t, category.Compatible(true, schema.KindBoolean))
	assert.Assert(t, category.Compatible("x", schema.KindUnknown))
	assert.Assert(t, !category.Compatible(nil, schema.KindUnknown))
	assert.Assert(t, !category.Compatible(map[string]any{}, schema.KindObject))
}
