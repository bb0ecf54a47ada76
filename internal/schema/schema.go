// Package schema holds the structural declarations that drive response
// synthesis: named property lists with structural types and optional
// per-property generation directives.
//
// Declarations are parsed from TypeScript sources (see [Parse]). Once parsed a
// Schema is an immutable snapshot identified by its name and the fingerprint
// of the source it came from.
package schema

// Kind is the structural type alphabet understood by the synthesizer.
type Kind int

const (
	KindUnknown Kind = iota
	KindString
	KindNumber
	KindBoolean
	KindArray
	KindObject
	KindReference
	KindLiteral
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	case KindBoolean:
		return "boolean"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindReference:
		return "reference"
	case KindLiteral:
		return "literal"
	case KindUnion:
		return "union"
	default:
		return "unknown"
	}
}

// FormatDateTime marks string types declared as Date.
const FormatDateTime = "date-time"

// Type describes the declared type of a property.
type Type struct {
	Kind Kind

	// Format refines KindString, e.g. FormatDateTime.
	Format string

	// Elem is the element type of KindArray.
	Elem *Type

	// Properties are the members of an inline KindObject.
	Properties []Property

	// Ref names the declaration a KindReference points at.
	Ref string

	// Literal is the value of a KindLiteral (string, float64, bool or nil).
	Literal any

	// Variants are the members of a KindUnion.
	Variants []Type
}

// Property is one member of a declaration.
type Property struct {
	Name      string
	Type      Type
	Optional  bool
	Directive *Directive
}

// Schema is a named structural declaration.
type Schema struct {
	Name       string
	Properties []Property

	// Source is the path of the file the declaration was parsed from.
	Source string

	// Fingerprint is the content hash of Source at parse time.
	Fingerprint uint64
}
