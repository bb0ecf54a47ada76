// Package synth builds mock objects from schema declarations.
package synth

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/jaswdr/faker/v2"

	"github.com/artefactual-labs/apimock/internal/category"
	"github.com/artefactual-labs/apimock/internal/directive"
	"github.com/artefactual-labs/apimock/internal/schema"
)

// maxDepth bounds recursion into inline object types.
const maxDepth = 16

type Synthesizer struct {
	eval   *directive.Evaluator
	logger *slog.Logger
	now    func() time.Time
}

type Option func(*Synthesizer)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Synthesizer) {
		s.now = now
	}
}

func New(eval *directive.Evaluator, opts ...Option) *Synthesizer {
	if eval == nil {
		eval = directive.New()
	}
	s := &Synthesizer{
		eval:   eval,
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize returns a fresh object for sch. Each property is produced by
// its directive, then by the category generators, then by a default for
// its declared type. Optional properties without a directive are left out.
//
// When isDynamic is false only literal directives run, which keeps the
// result free of request data.
func (s *Synthesizer) Synthesize(sch *schema.Schema, isDynamic bool, body any) map[string]any {
	if sch == nil {
		return map[string]any{}
	}
	r := &run{
		Synthesizer: s,
		gen:         faker.New(),
		now:         s.now(),
		isDynamic:   isDynamic,
		body:        body,
	}
	return r.object(sch.Properties, 0)
}

// run holds the state of one synthesis. Its faker source is not shared
// with other runs.
type run struct {
	*Synthesizer
	gen       faker.Faker
	now       time.Time
	isDynamic bool
	body      any
}

func (r *run) object(props []schema.Property, depth int) map[string]any {
	out := make(map[string]any, len(props))
	for _, p := range props {
		if p.Directive == nil && p.Optional {
			continue
		}
		if v, ok := r.directive(p); ok {
			out[p.Name] = v
			continue
		}
		out[p.Name] = r.value(p.Name, p.Type, depth)
	}
	return out
}

func (r *run) directive(p schema.Property) (any, bool) {
	d := p.Directive
	if d == nil {
		return nil, false
	}
	if !r.isDynamic && d.Kind != schema.DirectiveLiteral {
		return nil, false
	}
	v, ok := r.eval.EvaluateWith(r.gen, d, r.body)
	if !ok {
		r.logger.Debug("Directive produced no value.", "property", p.Name, "directive", d.Source)
	}
	return v, ok
}

func (r *run) value(name string, t schema.Type, depth int) any {
	if v, ok := category.Generate(r.gen, category.NewField(name, t.Kind, r.now)); ok {
		return v
	}
	return r.fallback(name, t, depth)
}

func (r *run) fallback(name string, t schema.Type, depth int) any {
	switch t.Kind {
	case schema.KindString:
		if t.Format == schema.FormatDateTime {
			return r.now.Add(-time.Duration(r.gen.IntBetween(0, 30*24*60)) * time.Minute).UTC().Format(time.RFC3339)
		}
		return fmt.Sprintf("%s %d", name, r.gen.IntBetween(1, 1000))
	case schema.KindNumber:
		return float64(r.gen.IntBetween(1, 1000))
	case schema.KindBoolean:
		return r.gen.Boolean().Bool()
	case schema.KindArray:
		if t.Elem == nil {
			return []any{}
		}
		return []any{r.value(name, *t.Elem, depth)}
	case schema.KindObject:
		if depth >= maxDepth {
			return map[string]any{}
		}
		return r.object(t.Properties, depth+1)
	case schema.KindReference:
		return map[string]any{}
	case schema.KindLiteral:
		return t.Literal
	case schema.KindUnion:
		if len(t.Variants) == 0 {
			return nil
		}
		v := t.Variants[r.gen.IntBetween(0, len(t.Variants)-1)]
		return r.value(name, v, depth)
	}
	return nil
}
