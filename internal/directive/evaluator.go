// Package directive evaluates the per-property generation directives found
// in schema declarations.
//
// Generator expressions are HCL native-syntax expressions evaluated against
// a fixed function table. Nothing in the table reaches the filesystem, the
// network or other processes.
package directive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/jaswdr/faker/v2"
	"github.com/zclconf/go-cty/cty"

	"github.com/artefactual-labs/apimock/internal/schema"
)

const defaultExprCacheSize = 512

type Evaluator struct {
	logger *slog.Logger
	now    func() time.Time

	// exprs memoizes parsed expressions by source text. A nil expression
	// records a parse failure.
	exprs *lru.Cache[string, hclsyntax.Expression]
}

type Option func(*Evaluator)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

// WithClock replaces the time source of now() and timestamp().
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) {
		e.now = now
	}
}

func New(opts ...Option) *Evaluator {
	exprs, err := lru.New[string, hclsyntax.Expression](defaultExprCacheSize)
	if err != nil {
		panic(err) // Only fails for a non-positive size.
	}
	e := &Evaluator{
		logger: slog.New(slog.DiscardHandler),
		now:    time.Now,
		exprs:  exprs,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs d and reports whether it produced a value. A false result
// means the caller should fall back to other generation strategies.
func (e *Evaluator) Evaluate(d *schema.Directive, body any) (any, bool) {
	return e.EvaluateWith(faker.New(), d, body)
}

// EvaluateWith is Evaluate with an explicit source of fake data.
func (e *Evaluator) EvaluateWith(gen faker.Faker, d *schema.Directive, body any) (v any, ok bool) {
	if d == nil {
		return nil, false
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("Directive panicked.", "directive", d.Source, "panic", r)
			v, ok = nil, false
		}
	}()

	switch d.Kind {
	case schema.DirectiveLiteral:
		return Literal(d.Source), true
	case schema.DirectiveGenerator:
		return e.expression(gen, d, nil)
	case schema.DirectiveBodyGenerator:
		bv, err := bodyValue(body)
		if err != nil {
			e.logger.Debug("Request body cannot be bound.", "directive", d.Source, "err", err)
			return nil, false
		}
		return e.expression(gen, d, map[string]cty.Value{d.Param: bv})
	case schema.DirectiveLibrary:
		return e.library(gen, d)
	}

	return nil, false
}

// Literal decodes a literal directive. Text that is not valid JSON is used
// as a string, without surrounding single quotes.
func Literal(text string) any {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		return v
	}
	if len(text) >= 2 && text[0] == '\'' && text[len(text)-1] == '\'' {
		return text[1 : len(text)-1]
	}
	return text
}

func (e *Evaluator) expression(gen faker.Faker, d *schema.Directive, vars map[string]cty.Value) (any, bool) {
	expr, err := e.parse(d.Expr)
	if err != nil {
		e.logger.Debug("Directive expression is invalid.", "directive", d.Source, "err", err)
		return nil, false
	}

	ctx := &hcl.EvalContext{
		Variables: vars,
		Functions: functions(gen, e.now),
	}
	val, diags := expr.Value(ctx)
	if diags.HasErrors() {
		e.logger.Debug("Directive expression failed.", "directive", d.Source, "err", diags.Error())
		return nil, false
	}

	v, err := fromValue(val)
	if err != nil {
		e.logger.Debug("Directive result cannot be converted.", "directive", d.Source, "err", err)
		return nil, false
	}
	return v, true
}

func (e *Evaluator) parse(src string) (hclsyntax.Expression, error) {
	if expr, ok := e.exprs.Get(src); ok {
		if expr == nil {
			return nil, fmt.Errorf("invalid expression")
		}
		return expr, nil
	}

	expr, diags := hclsyntax.ParseExpression([]byte(src), "directive", hcl.InitialPos)
	if diags.HasErrors() {
		e.exprs.Add(src, nil)
		return nil, diags
	}
	e.exprs.Add(src, expr)

	return expr, nil
}

func (e *Evaluator) library(gen faker.Faker, d *schema.Directive) (any, bool) {
	args, err := e.libraryArgs(d.Args)
	if err != nil {
		e.logger.Debug("Directive arguments are invalid.", "directive", d.Source, "err", err)
		return nil, false
	}

	v, ok := callLibrary(gen, e.now, d.Namespace, d.Member, args)
	if !ok {
		e.logger.Debug("Unknown generator.", "directive", d.Source)
	}
	return v, ok
}

// libraryArgs decodes a call's argument list as an HCL tuple, so object
// arguments may use bare keys as in {min: 1, max: 10}.
func (e *Evaluator) libraryArgs(src string) ([]any, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	expr, err := e.parse("[" + src + "]")
	if err != nil {
		return nil, err
	}
	val, diags := expr.Value(&hcl.EvalContext{Functions: pureFunctions})
	if diags.HasErrors() {
		return nil, diags
	}
	v, err := fromValue(val)
	if err != nil {
		return nil, err
	}
	args, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("arguments are not a list")
	}
	return args, nil
}
