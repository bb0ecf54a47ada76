package schema

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// ErrSyntax is returned when a declaration source does not parse cleanly.
var ErrSyntax = errors.New("syntax error")

// Parse extracts every interface declaration and object type alias from a
// TypeScript source. Property doc comments carrying a @mock tag become
// directives. source is recorded on each schema and used in error messages.
func Parse(ctx context.Context, source string, content []byte) ([]*Schema, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(typescript.GetLanguage())

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: empty tree", source)
	}
	if root.HasError() {
		if n := firstError(root); n != nil {
			pt := n.StartPoint()
			return nil, fmt.Errorf("parse %s:%d:%d: %w", source, pt.Row+1, pt.Column+1, ErrSyntax)
		}
		return nil, fmt.Errorf("parse %s: %w", source, ErrSyntax)
	}

	p := &declParser{src: content}
	var schemas []*Schema
	p.walk(root, func(name string, body *sitter.Node) {
		schemas = append(schemas, &Schema{
			Name:       name,
			Properties: p.members(body),
			Source:     source,
		})
	})

	return schemas, nil
}

type declParser struct {
	src []byte
}

func (p *declParser) text(n *sitter.Node) string {
	return n.Content(p.src)
}

// walk reports top-level declarations, looking through export statements
// and namespaces.
func (p *declParser) walk(n *sitter.Node, emit func(name string, body *sitter.Node)) {
	switch n.Type() {
	case "interface_declaration":
		name, body := n.ChildByFieldName("name"), n.ChildByFieldName("body")
		if present(name) && present(body) {
			emit(p.text(name), body)
		}
		return
	case "type_alias_declaration":
		name, value := n.ChildByFieldName("name"), n.ChildByFieldName("value")
		if present(name) && present(value) && value.Type() == "object_type" {
			emit(p.text(name), value)
		}
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p.walk(n.NamedChild(i), emit)
	}
}

// members parses the property signatures of an object type or interface
// body. A doc comment attaches to the property that follows it; comments
// trailing a property on the same line are ignored.
func (p *declParser) members(body *sitter.Node) []Property {
	var (
		props   []Property
		pending string
		lastRow = -1
	)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		child := body.NamedChild(i)
		switch child.Type() {
		case "comment":
			if int(child.StartPoint().Row) == lastRow {
				continue
			}
			pending = p.text(child)
		case "property_signature":
			if prop, ok := p.property(child, pending); ok {
				props = append(props, prop)
			}
			pending = ""
			lastRow = int(child.EndPoint().Row)
		default:
			pending = ""
			lastRow = int(child.EndPoint().Row)
		}
	}
	return props
}

func (p *declParser) property(n *sitter.Node, comment string) (Property, bool) {
	nameNode := n.ChildByFieldName("name")
	if !present(nameNode) {
		return Property{}, false
	}

	var name string
	switch nameNode.Type() {
	case "property_identifier", "identifier", "number":
		name = p.text(nameNode)
	case "string":
		name = unquote(p.text(nameNode))
	default:
		return Property{}, false
	}

	prop := Property{Name: name}
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); !c.IsNamed() && c.Type() == "?" {
			prop.Optional = true
		}
	}
	if ann := n.ChildByFieldName("type"); present(ann) && ann.NamedChildCount() > 0 {
		prop.Type = p.typeOf(ann.NamedChild(0))
	}
	if comment != "" {
		if d, ok := DirectiveFromComment(comment); ok {
			prop.Directive = d
		}
	}

	return prop, true
}

func (p *declParser) typeOf(n *sitter.Node) Type {
	switch n.Type() {
	case "predefined_type":
		switch p.text(n) {
		case "string":
			return Type{Kind: KindString}
		case "number", "bigint":
			return Type{Kind: KindNumber}
		case "boolean":
			return Type{Kind: KindBoolean}
		case "object":
			return Type{Kind: KindObject}
		}
		return Type{Kind: KindUnknown}
	case "type_identifier":
		return named(p.text(n))
	case "nested_type_identifier":
		return Type{Kind: KindReference, Ref: p.text(n)}
	case "array_type":
		if n.NamedChildCount() == 0 {
			return Type{Kind: KindUnknown}
		}
		elem := p.typeOf(n.NamedChild(0))
		return Type{Kind: KindArray, Elem: &elem}
	case "tuple_type":
		if n.NamedChildCount() == 0 {
			return Type{Kind: KindArray, Elem: &Type{Kind: KindUnknown}}
		}
		elem := p.typeOf(n.NamedChild(0))
		return Type{Kind: KindArray, Elem: &elem}
	case "generic_type":
		return p.generic(n)
	case "object_type":
		return Type{Kind: KindObject, Properties: p.members(n)}
	case "union_type":
		return p.union(n)
	case "literal_type":
		return p.literal(n)
	case "parenthesized_type", "readonly_type":
		if n.NamedChildCount() > 0 {
			return p.typeOf(n.NamedChild(0))
		}
	}
	return Type{Kind: KindUnknown}
}

func named(name string) Type {
	switch name {
	case "String":
		return Type{Kind: KindString}
	case "Number":
		return Type{Kind: KindNumber}
	case "Boolean":
		return Type{Kind: KindBoolean}
	case "Date":
		return Type{Kind: KindString, Format: FormatDateTime}
	case "Object":
		return Type{Kind: KindObject}
	}
	return Type{Kind: KindReference, Ref: name}
}

func (p *declParser) generic(n *sitter.Node) Type {
	nameNode := n.ChildByFieldName("name")
	if !present(nameNode) {
		return Type{Kind: KindUnknown}
	}
	name := p.text(nameNode)
	args := n.ChildByFieldName("type_arguments")

	switch name {
	case "Array", "ReadonlyArray", "Set":
		if present(args) && args.NamedChildCount() > 0 {
			elem := p.typeOf(args.NamedChild(0))
			return Type{Kind: KindArray, Elem: &elem}
		}
		return Type{Kind: KindArray, Elem: &Type{Kind: KindUnknown}}
	case "Record", "Map", "Partial", "Required", "Readonly":
		if name != "Record" && name != "Map" && present(args) && args.NamedChildCount() > 0 {
			return p.typeOf(args.NamedChild(0))
		}
		return Type{Kind: KindObject}
	}
	return Type{Kind: KindReference, Ref: name}
}

// union flattens nested unions and drops null/undefined members so that
// nullable declarations synthesize their non-null shape.
func (p *declParser) union(n *sitter.Node) Type {
	var variants []Type
	var collect func(*sitter.Node)
	collect = func(n *sitter.Node) {
		if n.Type() == "union_type" {
			for i := 0; i < int(n.NamedChildCount()); i++ {
				collect(n.NamedChild(i))
			}
			return
		}
		t := p.typeOf(n)
		if t.Kind == KindLiteral && t.Literal == nil {
			return
		}
		if t.Kind == KindUnknown && (p.text(n) == "null" || p.text(n) == "undefined") {
			return
		}
		variants = append(variants, t)
	}
	collect(n)

	switch len(variants) {
	case 0:
		return Type{Kind: KindLiteral}
	case 1:
		return variants[0]
	}
	return Type{Kind: KindUnion, Variants: variants}
}

func (p *declParser) literal(n *sitter.Node) Type {
	if n.NamedChildCount() == 0 {
		return Type{Kind: KindUnknown}
	}
	v := n.NamedChild(0)
	raw := p.text(v)
	switch v.Type() {
	case "string":
		return Type{Kind: KindLiteral, Literal: unquote(raw)}
	case "number":
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return Type{Kind: KindNumber}
		}
		return Type{Kind: KindLiteral, Literal: f}
	case "true":
		return Type{Kind: KindLiteral, Literal: true}
	case "false":
		return Type{Kind: KindLiteral, Literal: false}
	case "null", "undefined":
		return Type{Kind: KindLiteral}
	case "unary_expression":
		if f, err := strconv.ParseFloat(strings.ReplaceAll(raw, " ", ""), 64); err == nil {
			return Type{Kind: KindLiteral, Literal: f}
		}
	}
	return Type{Kind: KindUnknown}
}

func present(n *sitter.Node) bool {
	return n != nil && !n.IsNull()
}

func unquote(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '"' || q == '\'' || q == '`') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		if child.HasError() || child.IsError() || child.IsMissing() {
			if found := firstError(child); found != nil {
				return found
			}
		}
	}
	return nil
}
