package schema

import (
	"regexp"
	"strings"
)

// DirectiveTag introduces a directive inside a property's doc comment.
const DirectiveTag = "@mock"

// LibraryNamespace is the prefix of template-library directives.
const LibraryNamespace = "faker"

type DirectiveKind int

const (
	// DirectiveLiteral is a JSON (or quoted) value used as-is.
	DirectiveLiteral DirectiveKind = iota + 1
	// DirectiveGenerator is a zero-argument expression: () => expr.
	DirectiveGenerator
	// DirectiveBodyGenerator is a one-argument expression bound to the
	// request body: (body) => expr.
	DirectiveBodyGenerator
	// DirectiveLibrary is a call into the generator library:
	// faker.namespace.member(args).
	DirectiveLibrary
)

func (k DirectiveKind) String() string {
	switch k {
	case DirectiveLiteral:
		return "literal"
	case DirectiveGenerator:
		return "generator"
	case DirectiveBodyGenerator:
		return "body-generator"
	case DirectiveLibrary:
		return "library"
	default:
		return "invalid"
	}
}

// Directive is a per-property generation instruction. Directives are attached
// to properties at parse time and never change afterwards.
type Directive struct {
	Kind DirectiveKind

	// Source is the directive text as written.
	Source string

	// Param is the parameter name of a DirectiveBodyGenerator.
	Param string

	// Expr is the expression of a generator directive.
	Expr string

	// Namespace, Member and Args describe a DirectiveLibrary call. Args is
	// the raw text between the parentheses.
	Namespace string
	Member    string
	Args      string
}

var (
	noArgArrow  = regexp.MustCompile(`^\(\s*\)\s*=>\s*(.+)$`)
	oneArgArrow = regexp.MustCompile(`^\(?\s*([A-Za-z_$][A-Za-z0-9_$]*)\s*\)?\s*=>\s*(.+)$`)
	libraryCall = regexp.MustCompile(`^` + LibraryNamespace + `\.([A-Za-z_][A-Za-z0-9_]*)\.([A-Za-z_][A-Za-z0-9_]*)(?:\((.*)\))?$`)
)

// ParseDirective recognizes one of the four directive forms. Text matching
// none of them is not a directive.
func ParseDirective(text string) (*Directive, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false
	}

	if m := noArgArrow.FindStringSubmatch(text); m != nil {
		return &Directive{Kind: DirectiveGenerator, Source: text, Expr: strings.TrimSpace(m[1])}, true
	}
	if m := oneArgArrow.FindStringSubmatch(text); m != nil {
		return &Directive{Kind: DirectiveBodyGenerator, Source: text, Param: m[1], Expr: strings.TrimSpace(m[2])}, true
	}
	if m := libraryCall.FindStringSubmatch(text); m != nil {
		return &Directive{
			Kind:      DirectiveLibrary,
			Source:    text,
			Namespace: m[1],
			Member:    m[2],
			Args:      strings.TrimSpace(m[3]),
		}, true
	}
	if isLiteral(text) {
		return &Directive{Kind: DirectiveLiteral, Source: text}, true
	}

	return nil, false
}

func isLiteral(text string) bool {
	switch text {
	case "true", "false", "null":
		return true
	}
	switch c := text[0]; {
	case c == '"', c == '\'', c == '{', c == '[', c == '-':
		return true
	case c >= '0' && c <= '9':
		return true
	}
	return false
}

// DirectiveFromComment extracts the directive of a doc comment such as
//
//	/** The user's role. @mock 'admin' */
//
// The directive text runs from the tag to the next tag or the end of the
// comment.
func DirectiveFromComment(comment string) (*Directive, bool) {
	lines := commentLines(comment)

	var (
		found bool
		parts []string
	)
	for _, line := range lines {
		if !found {
			idx := strings.Index(line, DirectiveTag)
			if idx < 0 {
				continue
			}
			found = true
			line = line[idx+len(DirectiveTag):]
		} else if strings.HasPrefix(line, "@") {
			break
		}
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	if !found {
		return nil, false
	}

	return ParseDirective(strings.Join(parts, " "))
}

func commentLines(comment string) []string {
	comment = strings.TrimSpace(comment)
	switch {
	case strings.HasPrefix(comment, "/*"):
		comment = strings.TrimPrefix(comment, "/*")
		comment = strings.TrimPrefix(comment, "*")
		comment = strings.TrimSuffix(comment, "*/")
	case strings.HasPrefix(comment, "//"):
		comment = strings.TrimPrefix(comment, "//")
	}

	raw := strings.Split(comment, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		line = strings.TrimPrefix(line, "*")
		lines = append(lines, strings.TrimSpace(line))
	}
	return lines
}
