package mockserver

import (
	"testing"

	"gotest.tools/v3/assert"

	"github.com/artefactual-labs/apimock/internal/endpoint"
)

func TestRouterMatch(t *testing.T) {
	t.Parallel()

	r := newRouter([]*endpoint.Endpoint{
		{Method: "GET", Path: "/users/:id"},
		{Method: "GET", Path: "/users/me"},
		{Method: "DELETE", Path: "/users/:id"},
		{Method: "GET", Path: "/users/:id/posts/:post"},
		{Method: "GET", Path: "/"},
	})

	type test struct {
		method string
		path   string
		want   string
		params map[string]any
		allow  []string
	}
	for _, tc := range []test{
		{method: "GET", path: "/users/42", want: "/users/:id", params: map[string]any{"id": "42"}},
		{method: "GET", path: "/users/me", want: "/users/me", params: map[string]any{}},
		{method: "GET", path: "/users/me/", want: "/users/me", params: map[string]any{}},
		{method: "DELETE", path: "/users/me", want: "/users/:id", params: map[string]any{"id": "me"}},
		{method: "GET", path: "/users/1/posts/2", want: "/users/:id/posts/:post", params: map[string]any{"id": "1", "post": "2"}},
		{method: "GET", path: "/", want: "/", params: map[string]any{}},
		{method: "PUT", path: "/users/1", allow: []string{"DELETE", "GET"}},
		{method: "GET", path: "/nope"},
		{method: "GET", path: "/users"},
	} {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			t.Parallel()

			m, ok := r.match(tc.method, tc.path)
			if tc.want == "" {
				assert.Assert(t, !ok)
				assert.DeepEqual(t, m.allow, tc.allow)
				return
			}
			assert.Assert(t, ok)
			assert.Equal(t, m.ep.Path, tc.want)
			assert.DeepEqual(t, m.params, tc.params)
		})
	}
}
