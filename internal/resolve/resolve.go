// Package resolve turns an endpoint definition and a request into a mock
// response.
package resolve

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/aarondl/opt/omitnull"

	"github.com/artefactual-labs/apimock/internal/directive"
	"github.com/artefactual-labs/apimock/internal/endpoint"
	"github.com/artefactual-labs/apimock/internal/guard"
	"github.com/artefactual-labs/apimock/internal/interpolate"
	"github.com/artefactual-labs/apimock/internal/schemastore"
	"github.com/artefactual-labs/apimock/internal/synth"
)

// Request is the request data available to templates, guards and
// directives.
type Request struct {
	Method     string
	PathParams map[string]any
	Query      map[string]any
	// Body is the decoded JSON body, or an empty object.
	Body any
}

// Response is a resolved mock response. An unset Body means no payload,
// which is different from a JSON null.
type Response struct {
	Status int
	Body   omitnull.Val[any]
}

type Config struct {
	// SchemaDir is searched for declarations named by guard branches.
	SchemaDir string

	Cache    schemastore.CacheConfig
	Registry schemastore.RegistryConfig
}

// Resolver owns the schema cache and registry used while resolving.
type Resolver struct {
	cache    *schemastore.Cache
	registry *schemastore.Registry
	guards   *guard.Evaluator
	logger   *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	cache := schemastore.NewCache(cfg.Cache)
	registry := schemastore.NewRegistry(cache, cfg.Registry, schemastore.WithLogger(logger))
	s := synth.New(directive.New(directive.WithLogger(logger)), synth.WithLogger(logger))

	return &Resolver{
		cache:    cache,
		registry: registry,
		guards:   guard.NewEvaluator(registry, s, cfg.SchemaDir, logger),
		logger:   logger,
	}
}

// Registry returns the schema registry.
func (r *Resolver) Registry() *schemastore.Registry {
	return r.registry
}

// Resolve produces the response for ep. Guarded endpoints take status and
// body from the selected branch; value bodies then have their placeholders
// filled from req.
func (r *Resolver) Resolve(ctx context.Context, ep *endpoint.Endpoint, req Request) Response {
	status, body := ep.Status, ep.Body

	if ep.Guard != nil {
		res := guard.Fold(r.guards.Evaluate(ctx, *ep.Guard, req.Body, req.Query), result, result)
		status, body = res.Status, res.Body
	}

	if v, ok := body.Get(); ok {
		body = omitnull.From(interpolate.Interpolate(v, req.PathParams, req.Query, req.Body))
	}
	if status == 0 {
		status = http.StatusOK
	}

	return Response{Status: status, Body: body}
}

func result(r guard.Result) guard.Result { return r }

// Reset forgets every registered schema and cached declaration.
func (r *Resolver) Reset() {
	r.registry.Reset()
}
