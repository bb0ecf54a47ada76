package schemascmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/peterbourgon/ff/v4"

	"github.com/artefactual-labs/apimock/internal/cmd/rootcmd"
	"github.com/artefactual-labs/apimock/internal/schemastore"
)

type Config struct {
	*rootcmd.RootConfig
	Command *ff.Command
	Flags   *ff.FlagSet

	dir string
}

func New(parent *rootcmd.RootConfig) *Config {
	cfg := &Config{RootConfig: parent}
	cfg.Flags = ff.NewFlagSet("schemas").SetParent(parent.Flags)
	cfg.Flags.StringVar(&cfg.dir, 0, "dir", "", "directory holding the declarations")

	cfg.Command = &ff.Command{
		Name:      "schemas",
		Usage:     "apimock schemas [FLAGS]",
		ShortHelp: "List the declarations found in a directory.",
		Flags:     cfg.Flags,
		Exec:      cfg.Exec,
	}

	parent.Command.Subcommands = append(parent.Command.Subcommands, cfg.Command)
	return cfg
}

func (cfg *Config) Exec(ctx context.Context, _ []string) error {
	c, err := cfg.ServerConfig()
	if err != nil {
		return err
	}
	dir := cfg.dir
	if dir == "" {
		dir = c.SchemaDir()
	}

	rc := c.ResolverConfig()
	registry := schemastore.NewRegistry(
		schemastore.NewCache(rc.Cache),
		rc.Registry,
		schemastore.WithLogger(cfg.Logger()),
	)
	if err := registry.Scan(ctx, dir); err != nil {
		return fmt.Errorf("scan %s: %w", dir, err)
	}

	w := tabwriter.NewWriter(cfg.Stdout, 0, 4, 2, ' ', 0)
	printf(w, "NAME\tFIELDS\tSOURCE\n")
	for _, e := range registry.Entries() {
		source := e.SourcePath
		if rel, err := filepath.Rel(dir, source); err == nil {
			source = rel
		}
		printf(w, "%s\t%d\t%s\n", e.Schema.Name, len(e.Schema.Properties), filepath.ToSlash(source))
	}

	return w.Flush()
}

func printf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
