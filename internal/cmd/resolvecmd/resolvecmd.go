package resolvecmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/peterbourgon/ff/v4"

	"github.com/artefactual-labs/apimock/internal/cmd/rootcmd"
	"github.com/artefactual-labs/apimock/internal/mockserver"
)

type Config struct {
	*rootcmd.RootConfig
	Command *ff.Command
	Flags   *ff.FlagSet

	dir     string
	schemas string
	query   []string
	body    string
}

func New(parent *rootcmd.RootConfig) *Config {
	cfg := &Config{RootConfig: parent}
	cfg.Flags = ff.NewFlagSet("resolve").SetParent(parent.Flags)
	cfg.Flags.StringVar(&cfg.dir, 0, "dir", "", "directory holding the endpoint files")
	cfg.Flags.StringVar(&cfg.schemas, 0, "schemas", "", "directory holding the declarations (defaults to --dir)")
	cfg.Flags.StringListVar(&cfg.query, 'q', "query", "query parameter as KEY=VALUE (repeatable)")
	cfg.Flags.StringVar(&cfg.body, 'b', "body", "", "JSON request body")

	cfg.Command = &ff.Command{
		Name:      "resolve",
		Usage:     "apimock resolve [FLAGS] <METHOD> <PATH>",
		ShortHelp: "Print the response a mock endpoint gives to one request.",
		Flags:     cfg.Flags,
		Exec:      cfg.Exec,
	}

	parent.Command.Subcommands = append(parent.Command.Subcommands, cfg.Command)
	return cfg
}

func (cfg *Config) Exec(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return errors.New("expected <METHOD> <PATH>")
	}
	method, path := strings.ToUpper(args[0]), args[1]

	c, err := cfg.ServerConfig()
	if err != nil {
		return err
	}
	if cfg.dir != "" {
		c.Mocks.Dir = cfg.dir
	}
	if cfg.schemas != "" {
		c.Mocks.Schemas = cfg.schemas
	}

	srv, err := mockserver.NewServer(c, mockserver.WithLogger(cfg.Logger()))
	if err != nil {
		return err
	}

	target, err := requestURL(path, cfg.query)
	if err != nil {
		return err
	}
	var body io.Reader
	if cfg.body != "" {
		body = strings.NewReader(cfg.body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)

	printf(cfg.Stdout, "%d %s\n", rec.Code, http.StatusText(rec.Code))
	if out := bytes.TrimSpace(rec.Body.Bytes()); len(out) > 0 {
		printf(cfg.Stdout, "%s\n", out)
	} else {
		printf(cfg.Stdout, "<no content>\n")
	}

	return nil
}

func requestURL(path string, query []string) (string, error) {
	u, err := url.Parse(path)
	if err != nil {
		return "", fmt.Errorf("parse path: %w", err)
	}
	values := u.Query()
	for _, kv := range query {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			return "", fmt.Errorf("invalid query parameter %q (want KEY=VALUE)", kv)
		}
		values.Add(k, v)
	}
	u.RawQuery = values.Encode()
	return u.String(), nil
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
