package mockserver

import (
	"slices"
	"strings"

	"github.com/artefactual-labs/apimock/internal/endpoint"
)

// router matches request paths against endpoint patterns. A pattern
// segment starting with ":" captures one path segment. When several
// patterns match, the one with a static segment at the first position
// where they differ wins.
type router struct {
	routes []route
}

type route struct {
	ep       *endpoint.Endpoint
	segments []string
}

type match struct {
	ep     *endpoint.Endpoint
	params map[string]any
	// allow lists the methods available for the path when no endpoint
	// matched the request method.
	allow []string
}

func newRouter(eps []*endpoint.Endpoint) *router {
	r := &router{routes: make([]route, 0, len(eps))}
	for _, ep := range eps {
		r.routes = append(r.routes, route{ep: ep, segments: split(ep.Path)})
	}
	return r
}

func split(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

func (r *router) match(method, path string) (match, bool) {
	segs := split(path)

	var (
		best      *route
		bestScore []bool
		allow     []string
	)
	for i := range r.routes {
		rt := &r.routes[i]
		score, ok := rt.score(segs)
		if !ok {
			continue
		}
		if rt.ep.Method != method {
			if !slices.Contains(allow, rt.ep.Method) {
				allow = append(allow, rt.ep.Method)
			}
			continue
		}
		if best == nil || moreSpecific(score, bestScore) {
			best, bestScore = rt, score
		}
	}

	if best == nil {
		slices.Sort(allow)
		return match{allow: allow}, false
	}
	return match{ep: best.ep, params: best.params(segs)}, true
}

// score reports whether rt matches segs and which segments matched
// statically.
func (rt *route) score(segs []string) ([]bool, bool) {
	if len(rt.segments) != len(segs) {
		return nil, false
	}
	static := make([]bool, len(segs))
	for i, s := range rt.segments {
		if isParam(s) {
			if segs[i] == "" {
				return nil, false
			}
			continue
		}
		if s != segs[i] {
			return nil, false
		}
		static[i] = true
	}
	return static, true
}

func (rt *route) params(segs []string) map[string]any {
	params := map[string]any{}
	for i, s := range rt.segments {
		if isParam(s) {
			params[s[1:]] = segs[i]
		}
	}
	return params
}

func moreSpecific(a, b []bool) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i]
		}
	}
	return false
}

func isParam(seg string) bool {
	return len(seg) > 1 && seg[0] == ':'
}
