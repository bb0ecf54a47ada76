// Package guard selects between the two branches of a conditional endpoint
// based on request data.
package guard

import (
	"fmt"
	"strings"

	"github.com/aarondl/opt/omitnull"

	"github.com/artefactual-labs/apimock/internal/fieldpath"
)

// QueryPrefix marks condition fields that refer to query parameters.
const QueryPrefix = "query."

type Operator string

const (
	Equals      Operator = "equals"
	NotEquals   Operator = "not_equals"
	Exists      Operator = "exists"
	NotExists   Operator = "not_exists"
	Contains    Operator = "contains"
	NotContains Operator = "not_contains"
)

var operators = map[Operator]func(v any, found bool, want any) bool{
	Equals: func(v any, found bool, want any) bool {
		return found && Equal(v, want)
	},
	NotEquals: func(v any, found bool, want any) bool {
		return found && !Equal(v, want)
	},
	Exists: func(v any, found bool, _ any) bool {
		return found && v != nil
	},
	NotExists: func(v any, found bool, _ any) bool {
		return !found || v == nil
	},
	Contains: func(v any, found bool, want any) bool {
		has, ok := containment(v, want)
		return found && ok && has
	},
	NotContains: func(v any, found bool, want any) bool {
		has, ok := containment(v, want)
		return found && ok && !has
	},
}

// Valid reports whether op is a known operator.
func (op Operator) Valid() bool {
	_, ok := operators[op]
	return ok
}

// Operators lists the known operators.
func Operators() []Operator {
	return []Operator{Equals, NotEquals, Exists, NotExists, Contains, NotContains}
}

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// Holds evaluates c against the request body and query parameters. Unknown
// operators never hold.
func (c Condition) Holds(body any, query map[string]any) bool {
	fn, ok := operators[c.Operator]
	if !ok {
		return false
	}
	v, found := c.resolve(body, query)
	return fn(v, found, c.Value)
}

func (c Condition) resolve(body any, query map[string]any) (any, bool) {
	if rest, ok := strings.CutPrefix(c.Field, QueryPrefix); ok {
		if query == nil {
			return nil, false
		}
		return fieldpath.Lookup(query, rest)
	}
	return fieldpath.Lookup(body, c.Field)
}

// Branch is one outcome of a guard. Exactly one of Body and Schema is set.
type Branch struct {
	Status int
	Body   omitnull.Val[any]
	Schema string
}

// Validate checks that exactly one of Body and Schema is set.
func (b Branch) Validate() error {
	hasBody := !b.Body.IsUnset()
	hasSchema := b.Schema != ""
	switch {
	case hasBody && hasSchema:
		return fmt.Errorf("branch has both body and schema")
	case !hasBody && !hasSchema:
		return fmt.Errorf("branch has neither body nor schema")
	}
	return nil
}

type Guard struct {
	Condition Condition
	Left      Branch
	Right     Branch
}

// Validate reports malformed guards. It is meant to run when endpoints are
// loaded so that requests never see them.
func (g Guard) Validate() error {
	if g.Condition.Field == "" {
		return fmt.Errorf("condition field is required")
	}
	if !g.Condition.Operator.Valid() {
		return fmt.Errorf("unknown operator %q", g.Condition.Operator)
	}
	if err := g.Left.Validate(); err != nil {
		return fmt.Errorf("left: %w", err)
	}
	if err := g.Right.Validate(); err != nil {
		return fmt.Errorf("right: %w", err)
	}
	return nil
}

// Evaluate picks the Right branch when the condition holds and the Left
// branch otherwise.
func Evaluate(g Guard, body any, query map[string]any) Either[Branch, Branch] {
	if g.Condition.Holds(body, query) {
		return NewRight[Branch](g.Right)
	}
	return NewLeft[Branch, Branch](g.Left)
}
