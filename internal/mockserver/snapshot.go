package mockserver

import (
	"sort"

	"github.com/pelletier/go-toml/v2"
)

// Snapshot is an immutable view of the served endpoints and the schemas
// known to the registry.
type Snapshot struct {
	Routes  []RouteSnapshot
	Schemas []SchemaSnapshot
}

type RouteSnapshot struct {
	Method string
	Path   string
	Hits   int
}

type SchemaSnapshot struct {
	Name   string
	Source string
}

// Snapshot returns a copy of the current server state.
func (s *Server) Snapshot() Snapshot {
	s.mu.RLock()
	snap := Snapshot{Routes: make([]RouteSnapshot, 0, len(s.router.routes))}
	for _, rt := range s.router.routes {
		snap.Routes = append(snap.Routes, RouteSnapshot{
			Method: rt.ep.Method,
			Path:   rt.ep.Path,
			Hits:   s.hits[rt.ep.Key()],
		})
	}
	s.mu.RUnlock()

	for _, e := range s.resolver.Registry().Entries() {
		snap.Schemas = append(snap.Schemas, SchemaSnapshot{Name: e.Schema.Name, Source: e.SourcePath})
	}
	return snap
}

type snapshotTOML struct {
	Routes  []snapshotRoute  `toml:"route"`
	Schemas []snapshotSchema `toml:"schema,omitempty"`
}

type snapshotRoute struct {
	Method string `toml:"method"`
	Path   string `toml:"path"`
	Hits   int    `toml:"hits"`
}

type snapshotSchema struct {
	Name string `toml:"name"`
}

func (snap Snapshot) MarshalTOML() ([]byte, error) {
	routes := make([]snapshotRoute, 0, len(snap.Routes))
	for _, r := range snap.Routes {
		routes = append(routes, snapshotRoute{Method: r.Method, Path: r.Path, Hits: r.Hits})
	}
	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})

	out := snapshotTOML{Routes: routes}
	for _, s := range snap.Schemas {
		out.Schemas = append(out.Schemas, snapshotSchema{Name: s.Name})
	}

	data, err := toml.Marshal(out)
	if err != nil {
		return nil, err
	}
	return data, nil
}
