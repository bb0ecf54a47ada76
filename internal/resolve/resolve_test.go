package resolve_test

import (
	"context"
	"testing"

	"github.com/aarondl/opt/omitnull"
	"gotest.tools/v3/assert"
	"gotest.tools/v3/fs"

	"github.com/artefactual-labs/apimock/internal/endpoint"
	"github.com/artefactual-labs/apimock/internal/guard"
	"github.com/artefactual-labs/apimock/internal/resolve"
)

const userSource = `
interface User {
  /** @mock (body) => body.name */
  name: string;
  /** @mock "member" */
  role: string;
  email?: string;
}
`

func newResolver(t *testing.T) *resolve.Resolver {
	t.Helper()
	dir := fs.NewDir(t, "apimock", fs.WithFile("user.ts", userSource))
	return resolve.New(resolve.Config{SchemaDir: dir.Path()}, nil)
}

func TestResolveStatic(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	ep := &endpoint.Endpoint{
		Method: "GET",
		Path:   "/users/:id",
		Body: omitnull.From[any](map[string]any{
			"id":     ":id",
			"filter": "{{query.q}}",
			"label":  "user :id",
		}),
	}

	res := r.Resolve(context.Background(), ep, resolve.Request{
		Method:     "GET",
		PathParams: map[string]any{"id": "42"},
		Query:      map[string]any{"q": "ada"},
		Body:       map[string]any{},
	})
	assert.Equal(t, res.Status, 200)
	assert.DeepEqual(t, res.Body.GetOrZero(), any(map[string]any{
		"id":     "42",
		"filter": "ada",
		"label":  "user 42",
	}))
}

func TestResolveGuard(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	ep := &endpoint.Endpoint{
		Method: "POST",
		Path:   "/users",
		Guard: &guard.Guard{
			Condition: guard.Condition{Field: "name", Operator: guard.Exists},
			Left: guard.Branch{
				Status: 403,
				Body:   omitnull.From[any](map[string]any{"error": "{{body.role}} not allowed"}),
			},
			Right: guard.Branch{Status: 200, Schema: "User"},
		},
	}
	ctx := context.Background()

	res := r.Resolve(ctx, ep, resolve.Request{Method: "POST", Body: map[string]any{"role": "guest"}})
	assert.Equal(t, res.Status, 403)
	assert.DeepEqual(t, res.Body.GetOrZero(), any(map[string]any{"error": "guest not allowed"}))

	res = r.Resolve(ctx, ep, resolve.Request{Method: "POST", Body: map[string]any{"name": "Ada"}})
	assert.Equal(t, res.Status, 200)
	assert.DeepEqual(t, res.Body.GetOrZero(), any(map[string]any{"name": "Ada", "role": "member"}))
	assert.Assert(t, r.Registry().Scans() == 1)
}

func TestResolveNoContent(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	ep := &endpoint.Endpoint{Method: "DELETE", Path: "/users/:id", Status: 204}

	res := r.Resolve(context.Background(), ep, resolve.Request{Method: "DELETE"})
	assert.Equal(t, res.Status, 204)
	assert.Assert(t, res.Body.IsUnset())
}

func TestResolveNullBody(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	var null omitnull.Val[any]
	null.Null()
	ep := &endpoint.Endpoint{Method: "GET", Path: "/nothing", Body: null}

	res := r.Resolve(context.Background(), ep, resolve.Request{Method: "GET"})
	assert.Equal(t, res.Status, 200)
	assert.Assert(t, res.Body.IsNull())
}

func TestResolveReset(t *testing.T) {
	t.Parallel()

	r := newResolver(t)
	ep := &endpoint.Endpoint{
		Method: "POST",
		Path:   "/users",
		Guard: &guard.Guard{
			Condition: guard.Condition{Field: "name", Operator: guard.Exists},
			Left:      guard.Branch{Status: 400, Body: omitnull.From[any]("bad")},
			Right:     guard.Branch{Status: 201, Schema: "User"},
		},
	}
	ctx := context.Background()
	req := resolve.Request{Method: "POST", Body: map[string]any{"name": "Ada"}}

	_ = r.Resolve(ctx, ep, req)
	r.Reset()
	assert.Equal(t, len(r.Registry().Entries()), 0)

	res := r.Resolve(ctx, ep, req)
	assert.Equal(t, res.Status, 201)
	assert.Equal(t, r.Registry().Scans(), 2)
}
