package adminclient

import (
	"context"
	"net/http"
)

type RouteService struct {
	client *Client
}

type Route struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Status  int    `json:"status,omitempty"`
	Guarded bool   `json:"guarded,omitempty"`
	DelayMs int    `json:"delayMs,omitempty"`
	Source  string `json:"source"`
}

func (s *RouteService) List(ctx context.Context) ([]Route, error) {
	var routes []Route
	err := s.client.Call(ctx, http.MethodGet, "/_internal/routes", &routes)
	return routes, err
}

// Reload asks the server to reload its endpoint files and returns how many
// endpoints it now serves.
func (s *RouteService) Reload(ctx context.Context) (int, error) {
	var res struct {
		Endpoints int `json:"endpoints"`
	}
	err := s.client.Call(ctx, http.MethodPost, "/_internal/reload", &res)
	return res.Endpoints, err
}
