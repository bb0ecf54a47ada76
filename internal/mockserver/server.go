package mockserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/artefactual-labs/apimock/internal/endpoint"
	"github.com/artefactual-labs/apimock/internal/resolve"
)

// maxBodyBytes bounds the request body read for templates and guards.
const maxBodyBytes = 1 << 20

// Server serves the endpoints found in a mock directory.
type Server struct {
	cfg      *Config
	logger   *slog.Logger
	resolver *resolve.Resolver

	mu     sync.RWMutex
	router *router
	hits   map[endpoint.Key]int

	srv *http.Server
	ln  net.Listener
	wg  sync.WaitGroup

	started bool
}

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer loads the endpoints under cfg.Mocks.Dir and returns a server
// ready to start.
func NewServer(cfg *Config, opts ...Option) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	srv := &Server{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
		hits:   map[endpoint.Key]int{},
	}
	for _, opt := range opts {
		opt(srv)
	}
	srv.resolver = resolve.New(cfg.ResolverConfig(), srv.logger)

	if _, err := srv.Reload(context.Background()); err != nil {
		return nil, err
	}
	return srv, nil
}

// NewServerFromFile loads a TOML configuration file and returns a server.
func NewServerFromFile(path string, opts ...Option) (*Server, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return NewServer(cfg, opts...)
}

// Reload reads the endpoint files again and forgets every cached schema.
// The previous endpoints stay in place when loading fails.
func (s *Server) Reload(ctx context.Context) (int, error) {
	eps, err := endpoint.LoadDir(ctx, s.cfg.Mocks.Dir, s.logger)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	s.router = newRouter(eps)
	s.hits = map[endpoint.Key]int{}
	s.mu.Unlock()

	s.resolver.Reset()
	s.logger.Info("Endpoints loaded.", "dir", s.cfg.Mocks.Dir, "count", len(eps))

	return len(eps), nil
}

// Start begins serving HTTP requests in the background.
func (s *Server) Start() error {
	if s.started {
		return errors.New("server already started")
	}
	ln, err := net.Listen("tcp", s.cfg.Server.Listen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.ln = ln

	s.srv = &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  time.Duration(s.cfg.Server.ReadTimeout),
		WriteTimeout: time.Duration(s.cfg.Server.WriteTimeout),
	}
	s.started = true

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.srv.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Server stopped.", "err", err)
		}
	}()
	return nil
}

// Handler returns the HTTP handler serving the mock and internal endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/_internal/reload", s.handleReload)
	mux.HandleFunc("/_internal/routes", s.handleRoutes)
	mux.HandleFunc("/", s.handleMock)
	return mux
}

// Run starts the server and blocks until the provided context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(); err != nil {
		return err
	}
	s.logger.Info("Listening.", "addr", s.Addr())
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	return s.Shutdown(shutdownCtx)
}

// Addr returns the address the server is listening on.
func (s *Server) Addr() string {
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// WaitReady polls the health endpoint until the server responds or the context
// is cancelled.
func (s *Server) WaitReady(ctx context.Context) error {
	if !s.started {
		return errors.New("server not started")
	}
	healthURL := fmt.Sprintf("http://%s/healthz", s.Addr())
	client := &http.Client{Timeout: 200 * time.Millisecond}

	b := backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(10*time.Millisecond),
		backoff.WithMaxInterval(200*time.Millisecond),
		backoff.WithMaxElapsedTime(0),
	)

	return backoff.Retry(func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		res, err := client.Do(req)
		if err != nil {
			return err
		}
		res.Body.Close() //nolint:errcheck
		if res.StatusCode != http.StatusOK {
			return fmt.Errorf("health check: unexpected status %d", res.StatusCode)
		}
		return nil
	}, backoff.WithContext(b, ctx))
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if !s.started {
		return nil
	}
	err := s.srv.Shutdown(ctx)
	s.wg.Wait()
	s.started = false
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}
	n, err := s.Reload(r.Context())
	if err != nil {
		s.logger.Warn("Reload failed.", "err", err)
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"endpoints": n})
}

type routeInfo struct {
	Method  string `json:"method"`
	Path    string `json:"path"`
	Status  int    `json:"status,omitempty"`
	Guarded bool   `json:"guarded,omitempty"`
	DelayMs int    `json:"delayMs,omitempty"`
	Source  string `json:"source"`
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}
	writeJSON(w, http.StatusOK, s.routes())
}

func (s *Server) routes() []routeInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]routeInfo, 0, len(s.router.routes))
	for _, rt := range s.router.routes {
		out = append(out, routeInfo{
			Method:  rt.ep.Method,
			Path:    rt.ep.Path,
			Status:  rt.ep.Status,
			Guarded: rt.ep.Guard != nil,
			DelayMs: rt.ep.DelayMs,
			Source:  rt.ep.Source,
		})
	}
	return out
}

func (s *Server) handleMock(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	m, ok := s.router.match(r.Method, r.URL.Path)
	if ok {
		s.hits[m.ep.Key()]++
	}
	s.mu.Unlock()

	if !ok {
		if len(m.allow) > 0 {
			methodNotAllowed(w, strings.Join(m.allow, ", "))
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]any{
			"error": fmt.Sprintf("no mock for %s %s", r.Method, r.URL.Path),
		})
		return
	}

	req := resolve.Request{
		Method:     r.Method,
		PathParams: m.params,
		Query:      queryParams(r.URL.Query()),
		Body:       readBody(r),
	}
	res := s.resolver.Resolve(r.Context(), m.ep, req)

	if d := m.ep.Delay(); d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-r.Context().Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}

	s.logger.Debug("Request served.", "method", r.Method, "path", r.URL.Path, "endpoint", m.ep.Path, "status", res.Status)

	if res.Body.IsUnset() {
		w.WriteHeader(res.Status)
		return
	}
	writeJSON(w, res.Status, res.Body.GetOrZero())
}

// queryParams keeps single values as strings and repeated values as lists.
func queryParams(values url.Values) map[string]any {
	out := make(map[string]any, len(values))
	for k, vs := range values {
		if len(vs) == 1 {
			out[k] = vs[0]
			continue
		}
		list := make([]any, len(vs))
		for i, v := range vs {
			list[i] = v
		}
		out[k] = list
	}
	return out
}

// readBody decodes a JSON request body. Absent or unparseable bodies are
// an empty object.
func readBody(r *http.Request) any {
	if r.Body == nil {
		return map[string]any{}
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil || len(data) == 0 {
		return map[string]any{}
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return map[string]any{}
	}
	return v
}

func methodNotAllowed(w http.ResponseWriter, method string) {
	w.Header().Set("Allow", method)
	http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Debug("Encode response.", "err", err)
	}
}
