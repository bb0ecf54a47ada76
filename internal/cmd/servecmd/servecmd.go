package servecmd

import (
	"context"

	"github.com/peterbourgon/ff/v4"

	"github.com/artefactual-labs/apimock/internal/cmd/rootcmd"
	"github.com/artefactual-labs/apimock/internal/mockserver"
)

type Config struct {
	*rootcmd.RootConfig
	Command *ff.Command
	Flags   *ff.FlagSet

	listen  string
	dir     string
	schemas string
}

func New(parent *rootcmd.RootConfig) *Config {
	cfg := &Config{RootConfig: parent}
	cfg.Flags = ff.NewFlagSet("serve").SetParent(parent.Flags)
	cfg.Flags.StringVar(&cfg.listen, 'l', "listen", "", "address to listen on")
	cfg.Flags.StringVar(&cfg.dir, 0, "dir", "", "directory holding the endpoint files")
	cfg.Flags.StringVar(&cfg.schemas, 0, "schemas", "", "directory holding the declarations (defaults to --dir)")

	cfg.Command = &ff.Command{
		Name:      "serve",
		Usage:     "apimock serve [FLAGS]",
		ShortHelp: "Serve the mock endpoints until interrupted.",
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
	if cfg.listen != "" {
		c.Server.Listen = cfg.listen
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

	return srv.Run(ctx)
}
