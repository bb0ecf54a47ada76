package routescmd

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/peterbourgon/ff/v4"

	"github.com/artefactual-labs/apimock/internal/adminclient"
	"github.com/artefactual-labs/apimock/internal/cmd/rootcmd"
)

type Config struct {
	*rootcmd.RootConfig
	Command *ff.Command
	Flags   *ff.FlagSet

	url    string
	reload bool
}

func New(parent *rootcmd.RootConfig) *Config {
	cfg := &Config{RootConfig: parent}
	cfg.Flags = ff.NewFlagSet("routes").SetParent(parent.Flags)
	cfg.Flags.StringVar(&cfg.url, 'u', "url", "http://127.0.0.1:8080", "base URL of a running mock server")
	cfg.Flags.BoolVar(&cfg.reload, 'r', "reload", "reload the endpoint files before listing")

	cfg.Command = &ff.Command{
		Name:      "routes",
		Usage:     "apimock routes [FLAGS]",
		ShortHelp: "List the endpoints served by a running mock server.",
		Flags:     cfg.Flags,
		Exec:      cfg.Exec,
	}

	parent.Command.Subcommands = append(parent.Command.Subcommands, cfg.Command)
	return cfg
}

func (cfg *Config) Exec(ctx context.Context, _ []string) error {
	api := adminclient.NewAPI(&http.Client{Timeout: 10 * time.Second}, cfg.url)

	if cfg.reload {
		n, err := api.Routes.Reload(ctx)
		if err != nil {
			return fmt.Errorf("reload: %w", err)
		}
		cfg.Logger().Info("Reloaded endpoints.", "count", n)
	}

	routes, err := api.Routes.List(ctx)
	if err != nil {
		return fmt.Errorf("list routes: %w", err)
	}

	w := tabwriter.NewWriter(cfg.Stdout, 0, 4, 2, ' ', 0)
	printf(w, "METHOD\tPATH\tSTATUS\tGUARDED\tDELAY\tSOURCE\n")
	for _, r := range routes {
		status := "-"
		if r.Status != 0 {
			status = fmt.Sprint(r.Status)
		}
		printf(w, "%s\t%s\t%s\t%t\t%dms\t%s\n", r.Method, r.Path, status, r.Guarded, r.DelayMs, r.Source)
	}

	return w.Flush()
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
