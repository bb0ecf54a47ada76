package guard

import (
	"context"
	"log/slog"

	"github.com/aarondl/opt/omitnull"

	"github.com/artefactual-labs/apimock/internal/schemastore"
	"github.com/artefactual-labs/apimock/internal/synth"
)

// Result is a resolved branch.
type Result struct {
	Status int
	Body   omitnull.Val[any]
}

// Evaluator resolves guard branches, synthesizing bodies for branches that
// name a schema.
type Evaluator struct {
	registry  *schemastore.Registry
	synth     *synth.Synthesizer
	schemaDir string
	logger    *slog.Logger
}

func NewEvaluator(registry *schemastore.Registry, s *synth.Synthesizer, schemaDir string, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Evaluator{
		registry:  registry,
		synth:     s,
		schemaDir: schemaDir,
		logger:    logger,
	}
}

// Evaluate selects the branch of g for the request and resolves it.
func (e *Evaluator) Evaluate(ctx context.Context, g Guard, body any, query map[string]any) Either[Result, Result] {
	chosen := Evaluate(g, body, query)
	if b, ok := chosen.Right(); ok {
		return NewRight[Result](e.Resolve(ctx, b, body))
	}
	b, _ := chosen.Left()
	return NewLeft[Result, Result](e.Resolve(ctx, b, body))
}

// Resolve produces the status and body of b. A schema that cannot be found
// resolves to an empty object.
func (e *Evaluator) Resolve(ctx context.Context, b Branch, body any) Result {
	if b.Schema == "" {
		return Result{Status: b.Status, Body: b.Body}
	}

	sch, ok := e.registry.Resolve(ctx, b.Schema, e.schemaDir)
	if !ok {
		e.logger.Debug("Schema not found.", "schema", b.Schema, "dir", e.schemaDir)
		return Result{Status: b.Status, Body: omitnull.From[any](map[string]any{})}
	}

	return Result{
		Status: b.Status,
		Body:   omitnull.From[any](e.synth.Synthesize(sch, true, body)),
	}
}
