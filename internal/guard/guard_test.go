package guard_test

import (
	"context"
	"testing"

	"github.com/aarondl/opt/omitnull"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"

	"github.com/artefactual-labs/apimock/internal/guard"
	"github.com/artefactual-labs/apimock/internal/schemastore"
	"github.com/artefactual-labs/apimock/internal/synth"
)

var (
	left  = guard.Branch{Status: 403, Body: omitnull.From[any](map[string]any{"error": "forbidden"})}
	right = guard.Branch{Status: 200, Body: omitnull.From[any](map[string]any{"ok": true})}
)

func TestEvaluateOperators(t *testing.T) {
	t.Parallel()

	body := map[string]any{
		"role":    "admin",
		"age":     float64(30),
		"active":  false,
		"empty":   "",
		"zero":    float64(0),
		"nothing": nil,
		"tags":    []any{"a", float64(1), true},
		"user":    map[string]any{"name": "Ada", "roles": []any{"dev"}},
		"bio":     "likes go and tea",
	}
	query := map[string]any{"debug": "1", "tag": []any{"x", "y"}}

	type test struct {
		name  string
		field string
		op    guard.Operator
		value any
		want  guard.Side
	}
	for _, tc := range []test{
		// equals
		{name: "equals string", field: "role", op: guard.Equals, value: "admin", want: guard.Right},
		{name: "equals different string", field: "role", op: guard.Equals, value: "user", want: guard.Left},
		{name: "equals number", field: "age", op: guard.Equals, value: 30, want: guard.Right},
		{name: "equals is strict", field: "age", op: guard.Equals, value: "30", want: guard.Left},
		{name: "equals false", field: "active", op: guard.Equals, value: false, want: guard.Right},
		{name: "equals nested", field: "user.name", op: guard.Equals, value: "Ada", want: guard.Right},
		{name: "equals array", field: "user.roles", op: guard.Equals, value: []any{"dev"}, want: guard.Right},
		{name: "equals null", field: "nothing", op: guard.Equals, value: nil, want: guard.Right},
		{name: "equals missing", field: "missing", op: guard.Equals, value: nil, want: guard.Left},
		{name: "equals query", field: "query.debug", op: guard.Equals, value: "1", want: guard.Right},
		{name: "equals query is strict", field: "query.debug", op: guard.Equals, value: 1, want: guard.Left},

		// not_equals
		{name: "not_equals different", field: "role", op: guard.NotEquals, value: "user", want: guard.Right},
		{name: "not_equals same", field: "role", op: guard.NotEquals, value: "admin", want: guard.Left},
		{name: "not_equals type mismatch", field: "age", op: guard.NotEquals, value: "30", want: guard.Right},
		{name: "not_equals missing", field: "missing", op: guard.NotEquals, value: "x", want: guard.Left},

		// exists
		{name: "exists string", field: "role", op: guard.Exists, want: guard.Right},
		{name: "exists false", field: "active", op: guard.Exists, want: guard.Right},
		{name: "exists empty string", field: "empty", op: guard.Exists, want: guard.Right},
		{name: "exists zero", field: "zero", op: guard.Exists, want: guard.Right},
		{name: "exists null", field: "nothing", op: guard.Exists, want: guard.Left},
		{name: "exists missing", field: "missing", op: guard.Exists, want: guard.Left},
		{name: "exists query", field: "query.debug", op: guard.Exists, want: guard.Right},

		// not_exists
		{name: "not_exists missing", field: "missing", op: guard.NotExists, want: guard.Right},
		{name: "not_exists null", field: "nothing", op: guard.NotExists, want: guard.Right},
		{name: "not_exists present", field: "role", op: guard.NotExists, want: guard.Left},
		{name: "not_exists zero", field: "zero", op: guard.NotExists, want: guard.Left},
		{name: "not_exists missing query", field: "query.nope", op: guard.NotExists, want: guard.Right},

		// contains
		{name: "contains substring", field: "bio", op: guard.Contains, value: "go", want: guard.Right},
		{name: "contains missing substring", field: "bio", op: guard.Contains, value: "rust", want: guard.Left},
		{name: "contains element", field: "tags", op: guard.Contains, value: "a", want: guard.Right},
		{name: "contains number element", field: "tags", op: guard.Contains, value: 1, want: guard.Right},
		{name: "contains element is strict", field: "tags", op: guard.Contains, value: "1", want: guard.Left},
		{name: "contains on number", field: "age", op: guard.Contains, value: 3, want: guard.Left},
		{name: "contains non-string needle", field: "bio", op: guard.Contains, value: 1, want: guard.Left},
		{name: "contains missing", field: "missing", op: guard.Contains, value: "a", want: guard.Left},
		{name: "contains repeated query", field: "query.tag", op: guard.Contains, value: "y", want: guard.Right},

		// not_contains
		{name: "not_contains substring absent", field: "bio", op: guard.NotContains, value: "rust", want: guard.Right},
		{name: "not_contains substring present", field: "bio", op: guard.NotContains, value: "tea", want: guard.Left},
		{name: "not_contains element absent", field: "tags", op: guard.NotContains, value: "z", want: guard.Right},
		{name: "not_contains element present", field: "tags", op: guard.NotContains, value: true, want: guard.Left},
		{name: "not_contains on number", field: "age", op: guard.NotContains, value: 3, want: guard.Left},
		{name: "not_contains on object", field: "user", op: guard.NotContains, value: "name", want: guard.Left},
		{name: "not_contains missing", field: "missing", op: guard.NotContains, value: "a", want: guard.Left},

		// unknown operator
		{name: "unknown operator", field: "role", op: guard.Operator("matches"), value: "admin", want: guard.Left},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			g := guard.Guard{
				Condition: guard.Condition{Field: tc.field, Operator: tc.op, Value: tc.value},
				Left:      left,
				Right:     right,
			}
			got := guard.Evaluate(g, body, query)
			assert.Equal(t, got.Side(), tc.want)

			var b guard.Branch
			if tc.want == guard.Right {
				b, _ = got.Right()
			} else {
				b, _ = got.Left()
			}
			want := left
			if tc.want == guard.Right {
				want = right
			}
			assert.Equal(t, b.Status, want.Status)
		})
	}
}

func TestEvaluateWithoutQuery(t *testing.T) {
	t.Parallel()

	g := guard.Guard{
		Condition: guard.Condition{Field: "query.debug", Operator: guard.Exists},
		Left:      left,
		Right:     right,
	}
	assert.Assert(t, guard.Evaluate(g, map[string]any{}, nil).IsLeft())
}

func TestGuardValidate(t *testing.T) {
	t.Parallel()

	valid := guard.Guard{
		Condition: guard.Condition{Field: "role", Operator: guard.Equals, Value: "admin"},
		Left:      left,
		Right:     guard.Branch{Status: 200, Schema: "User"},
	}
	assert.NilError(t, valid.Validate())

	noField := valid
	noField.Condition.Field = ""
	assert.ErrorContains(t, noField.Validate(), "field is required")

	badOp := valid
	badOp.Condition.Operator = "matches"
	assert.ErrorContains(t, badOp.Validate(), `unknown operator "matches"`)

	both := valid
	both.Right = guard.Branch{Status: 200, Schema: "User", Body: omitnull.From[any]("x")}
	assert.ErrorContains(t, both.Validate(), "right: branch has both body and schema")

	neither := valid
	neither.Left = guard.Branch{Status: 403}
	assert.ErrorContains(t, neither.Validate(), "left: branch has neither body nor schema")

	var nullBody omitnull.Val[any]
	nullBody.Null()
	withNull := valid
	withNull.Left = guard.Branch{Status: 204, Body: nullBody}
	assert.NilError(t, withNull.Validate())
}

func TestEither(t *testing.T) {
	t.Parallel()

	l := guard.NewLeft[int, string](1)
	assert.Assert(t, l.IsLeft())
	v, ok := l.Left()
	assert.Assert(t, ok)
	assert.Equal(t, v, 1)
	_, ok = l.Right()
	assert.Assert(t, !ok)

	r := guard.NewRight[int]("x")
	assert.Assert(t, r.IsRight())
	assert.Equal(t, r.Side().String(), "right")

	describe := func(e guard.Either[int, string]) string {
		return guard.Fold(e, func(int) string { return "left" }, func(s string) string { return "right:" + s })
	}
	assert.Equal(t, describe(l), "left")
	assert.Equal(t, describe(r), "right:x")
}

func TestEvaluatorResolve(t *testing.T) {
	t.Parallel()

	dir := fs.NewDir(t, "apimock", fs.WithFile("user.ts", `
interface User {
  /** @mock (body) => body.name */
  name: string;
  /** @mock "admin" */
  role: string;
}`))
	registry := schemastore.NewRegistry(nil, schemastore.RegistryConfig{})
	e := guard.NewEvaluator(registry, synth.New(nil), dir.Path(), nil)
	ctx := context.Background()

	g := guard.Guard{
		Condition: guard.Condition{Field: "role", Operator: guard.Equals, Value: "admin"},
		Left:      left,
		Right:     guard.Branch{Status: 201, Schema: "User"},
	}

	res := e.Evaluate(ctx, g, map[string]any{"role": "admin", "name": "Ada"}, nil)
	r, ok := res.Right()
	assert.Assert(t, ok)
	assert.Equal(t, r.Status, 201)
	assert.DeepEqual(t, r.Body.GetOrZero(), any(map[string]any{"name": "Ada", "role": "admin"}))

	res = e.Evaluate(ctx, g, map[string]any{"role": "user"}, nil)
	l, ok := res.Left()
	assert.Assert(t, ok)
	assert.Equal(t, l.Status, 403)
	assert.DeepEqual(t, l.Body.GetOrZero(), any(map[string]any{"error": "forbidden"}))

	missing := e.Resolve(ctx, guard.Branch{Status: 200, Schema: "Nope"}, nil)
	assert.Equal(t, missing.Status, 200)
	assert.DeepEqual(t, missing.Body.GetOrZero(), any(map[string]any{}))
}
