package versioncmd

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/peterbourgon/ff/v4"

	"github.com/artefactual-labs/apimock/internal/cmd/rootcmd"
)

type Config struct {
	*rootcmd.RootConfig
	Command *ff.Command
	Flags   *ff.FlagSet

	short bool
}

func New(parent *rootcmd.RootConfig) *Config {
	cfg := &Config{RootConfig: parent}
	cfg.Flags = ff.NewFlagSet("version").SetParent(parent.Flags)
	cfg.Flags.BoolVar(&cfg.short, 's', "short", "print only the version number")

	cfg.Command = &ff.Command{
		Name:      "version",
		Usage:     "apimock version [FLAGS]",
		ShortHelp: "Print the apimock version and the toolchain it was built with.",
		Flags:     cfg.Flags,
		Exec:      cfg.Exec,
	}
	parent.Command.Subcommands = append(parent.Command.Subcommands, cfg.Command)
	return cfg
}

func (cfg *Config) Exec(ctx context.Context, _ []string) error {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("build info not available")
	}

	version := info.Main.Version
	if version == "" {
		version = "(devel)"
	}
	if cfg.short {
		_, err := fmt.Fprintln(cfg.Stdout, version)
		return err
	}

	revision := ""
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 12 {
			revision = " " + s.Value[:12]
		}
	}
	_, err := fmt.Fprintf(cfg.Stdout, "apimock %s%s (built with %s)\n", version, revision, info.GoVersion)

	return err
}
