package interpolate_test

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/artefactual-labs/apimock/internal/interpolate"
)

func TestInterpolateWholeBody(t *testing.T) {
	t.Parallel()

	for _, body := range []any{
		map[string]any{"a": float64(1), "b": []any{"x"}},
		[]any{float64(1), float64(2)},
		"text",
		float64(3),
		nil,
	} {
		assert.DeepEqual(t, interpolate.Interpolate("{{body}}", nil, nil, body), body)
	}
}

func TestInterpolateTypedPassthrough(t *testing.T) {
	t.Parallel()

	got := interpolate.Interpolate(":id", map[string]any{"id": 42}, map[string]any{}, map[string]any{})
	assert.Equal(t, got, 42)

	got = interpolate.Interpolate("{{body.user}}", nil, nil, map[string]any{"user": map[string]any{"n": true}})
	assert.DeepEqual(t, got, map[string]any{"n": true})

	got = interpolate.Interpolate("{{ query.page }}", nil, map[string]any{"page": "2"}, nil)
	assert.Equal(t, got, "2")
}

func TestInterpolateEmbedded(t *testing.T) {
	t.Parallel()

	params := map[string]any{"id": 42, "slug": "hello"}
	query := map[string]any{"q": "go", "tags": []any{"a", "b"}}
	body := map[string]any{
		"name":   "Ada",
		"age":    float64(36),
		"ratio":  0.5,
		"admin":  true,
		"none":   nil,
		"nested": map[string]any{"k": "v"},
		"list":   []any{float64(1)},
	}

	type test struct {
		template string
		want     string
	}
	for _, tc := range []test{
		{template: "id is :id", want: "id is 42"},
		{template: "/posts/:slug/:id", want: "/posts/hello/42"},
		{template: "hi {{body.name}}, age {{body.age}}", want: "hi Ada, age 36"},
		{template: "ratio={{body.ratio}}", want: "ratio=0.5"},
		{template: "admin={{body.admin}}", want: "admin=true"},
		{template: "none=[{{body.none}}]", want: "none=[]"},
		{template: "nested={{body.nested}}", want: "nested=[object Object]"},
		{template: "list={{body.list}}", want: "list=[object Object]"},
		{template: "search {{query.q}}", want: "search go"},
		{template: "tags {{query.tags}}", want: "tags [object Object]"},
		{template: "missing :nope and {{body.nope}} and {{query.nope}}", want: "missing :nope and {{body.nope}} and {{query.nope}}"},
		{template: "whole {{body}} stays", want: "whole {{body}} stays"},
		{template: "https://example.com:8080/x", want: "https://example.com:8080/x"},
		{template: "at 10:30", want: "at 10:30"},
		{template: "{{other}}", want: "{{other}}"},
	} {
		t.Run(tc.template, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, interpolate.Interpolate(tc.template, params, query, body), tc.want)
		})
	}
}

func TestInterpolateUnresolvedVerbatim(t *testing.T) {
	t.Parallel()

	assert.Equal(t, interpolate.Interpolate(":missing", map[string]any{}, map[string]any{}, map[string]any{}), ":missing")
	assert.Equal(t, interpolate.Interpolate("{{body.x}}", nil, nil, nil), "{{body.x}}")
	assert.Equal(t, interpolate.Interpolate("{{query.x}}", nil, nil, nil), "{{query.x}}")
}

func TestInterpolateWalksContainers(t *testing.T) {
	t.Parallel()

	template := map[string]any{
		"id":     ":id",
		"name":   "{{body.name}}",
		"static": float64(1),
		"flag":   true,
		"items": []any{
			map[string]any{"owner": "{{body.name}}", "label": "item :id"},
			"{{query.page}}",
			nil,
		},
	}
	got := interpolate.Interpolate(template, map[string]any{"id": "7"}, map[string]any{"page": "3"}, map[string]any{"name": "Ada"})

	assert.DeepEqual(t, got, map[string]any{
		"id":     "7",
		"name":   "Ada",
		"static": float64(1),
		"flag":   true,
		"items": []any{
			map[string]any{"owner": "Ada", "label": "item 7"},
			"3",
			nil,
		},
	})

	// The template is left untouched.
	assert.Equal(t, template["id"], ":id")
	assert.Equal(t, template["items"].([]any)[0].(map[string]any)["owner"], "{{body.name}}")
}

func TestInterpolateDeterministic(t *testing.T) {
	t.Parallel()

	template := map[string]any{"a": "x :id {{body.n}}"}
	params := map[string]any{"id": 1}
	body := map[string]any{"n": "y"}

	first := interpolate.Interpolate(template, params, nil, body)
	second := interpolate.Interpolate(template, params, nil, body)
	assert.DeepEqual(t, first, second)
}

func TestText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, interpolate.Text(nil), "")
	assert.Equal(t, interpolate.Text("s"), "s")
	assert.Equal(t, interpolate.Text(float64(42)), "42")
	assert.Equal(t, interpolate.Text(1.25), "1.25")
	assert.Equal(t, interpolate.Text(7), "7")
	assert.Equal(t, interpolate.Text(false), "false")
	assert.Equal(t, interpolate.Text(map[string]any{}), interpolate.ObjectText)
}
