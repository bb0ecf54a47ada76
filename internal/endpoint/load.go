package endpoint

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/aarondl/opt/omitnull"
	"gopkg.in/yaml.v3"

	"github.com/artefactual-labs/apimock/internal/guard"
)

type rawEndpoint struct {
	Method  string    `yaml:"method"`
	Path    string    `yaml:"path"`
	Status  int       `yaml:"status"`
	Body    yaml.Node `yaml:"body"`
	DelayMs int       `yaml:"delayMs"`
	Guard   *rawGuard `yaml:"guard"`
}

type rawGuard struct {
	Condition rawCondition `yaml:"condition"`
	Left      rawBranch    `yaml:"left"`
	Right     rawBranch    `yaml:"right"`
}

type rawCondition struct {
	Field    string    `yaml:"field"`
	Operator string    `yaml:"operator"`
	Value    yaml.Node `yaml:"value"`
}

type rawBranch struct {
	Status int       `yaml:"status"`
	Body   yaml.Node `yaml:"body"`
	Schema string    `yaml:"schema"`
}

// IsSource reports whether path names an endpoint file.
func IsSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// LoadDir loads every endpoint file under dir in lexical order. When two
// endpoints share a method and path the one loaded last wins.
func LoadDir(ctx context.Context, dir string, logger *slog.Logger) ([]*Endpoint, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	var (
		all   []*Endpoint
		index = map[Key]int{}
	)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !IsSource(path) {
			return nil
		}

		eps, err := LoadFile(path)
		if err != nil {
			return err
		}
		for _, ep := range eps {
			key := ep.Key()
			if i, ok := index[key]; ok {
				logger.Warn("Endpoint overridden.", "endpoint", key.String(), "source", ep.Source, "previous", all[i].Source)
				all[i] = ep
				continue
			}
			index[key] = len(all)
			all = append(all, ep)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("load endpoints: %w", err)
	}

	return all, nil
}

// LoadFile loads the endpoints of a single file.
func LoadFile(path string) ([]*Endpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open endpoint file: %w", err)
	}
	defer f.Close()

	eps, err := Decode(f, path)
	if err != nil {
		return nil, err
	}
	return eps, nil
}

// Decode reads endpoints from a YAML stream. Each document holds a single
// endpoint mapping or a sequence of them. source is recorded on every
// endpoint and used in error messages.
func Decode(r io.Reader, source string) ([]*Endpoint, error) {
	dec := yaml.NewDecoder(r)

	var eps []*Endpoint
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: decode: %w", source, err)
		}
		if len(doc.Content) == 0 {
			continue
		}

		root := doc.Content[0]
		items := []*yaml.Node{root}
		switch root.Kind {
		case yaml.SequenceNode:
			items = root.Content
		case yaml.MappingNode:
		default:
			if isNull(root) {
				continue
			}
			return nil, fmt.Errorf("%s:%d: %w: expected a mapping or a list of mappings", source, root.Line, ErrInvalid)
		}

		for _, item := range items {
			ep, err := decodeEndpoint(item)
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", source, item.Line, err)
			}
			ep.Source = source
			eps = append(eps, ep)
		}
	}

	return eps, nil
}

func decodeEndpoint(n *yaml.Node) (*Endpoint, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("%w: expected a mapping", ErrInvalid)
	}

	var raw rawEndpoint
	if err := n.Decode(&raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	body, err := decodeBody(&raw.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: body: %v", ErrInvalid, err)
	}
	ep := &Endpoint{
		Method:  strings.ToUpper(strings.TrimSpace(raw.Method)),
		Path:    strings.TrimSpace(raw.Path),
		Status:  raw.Status,
		Body:    body,
		DelayMs: raw.DelayMs,
	}

	if raw.Guard != nil {
		g, err := decodeGuard(raw.Guard)
		if err != nil {
			return nil, fmt.Errorf("%w: guard: %v", ErrInvalid, err)
		}
		ep.Guard = g
	}

	if err := ep.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ep.Key(), err)
	}

	return ep, nil
}

func decodeGuard(raw *rawGuard) (*guard.Guard, error) {
	value, err := decodeValue(&raw.Condition.Value)
	if err != nil {
		return nil, fmt.Errorf("condition value: %v", err)
	}
	left, err := decodeBranch(&raw.Left)
	if err != nil {
		return nil, fmt.Errorf("left: %v", err)
	}
	right, err := decodeBranch(&raw.Right)
	if err != nil {
		return nil, fmt.Errorf("right: %v", err)
	}

	return &guard.Guard{
		Condition: guard.Condition{
			Field:    strings.TrimSpace(raw.Condition.Field),
			Operator: guard.Operator(strings.TrimSpace(raw.Condition.Operator)),
			Value:    value,
		},
		Left:  left,
		Right: right,
	}, nil
}

func decodeBranch(raw *rawBranch) (guard.Branch, error) {
	body, err := decodeBody(&raw.Body)
	if err != nil {
		return guard.Branch{}, fmt.Errorf("body: %v", err)
	}
	return guard.Branch{
		Status: raw.Status,
		Body:   body,
		Schema: strings.TrimSpace(raw.Schema),
	}, nil
}

// decodeBody keeps the difference between an absent key (unset) and an
// explicit null.
func decodeBody(n *yaml.Node) (omitnull.Val[any], error) {
	var body omitnull.Val[any]
	if n.Kind == 0 {
		return body, nil
	}
	if isNull(n) {
		body.Null()
		return body, nil
	}
	v, err := decodeValue(n)
	if err != nil {
		return body, err
	}
	return omitnull.From(v), nil
}

func decodeValue(n *yaml.Node) (any, error) {
	if n.Kind == 0 || isNull(n) {
		return nil, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	return Normalize(v), nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// Normalize converts decoded YAML into the shapes produced by decoding
// JSON: float64 numbers, map[string]any objects and []any arrays.
func Normalize(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case uint64:
		return float64(t)
	case float32:
		return float64(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = Normalize(e)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[fmt.Sprint(k)] = Normalize(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = Normalize(e)
		}
		return out
	}
	return v
}
