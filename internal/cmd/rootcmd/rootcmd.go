package rootcmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/artefactual-labs/apimock/internal/mockserver"
)

// EnvVarPrefix is the prefix of environment variables that set flags.
const EnvVarPrefix = "APIMOCK"

const (
	defaultListen = "127.0.0.1:8080"
	defaultDir    = "mocks"
)

type RootConfig struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Flags   *ff.FlagSet
	Command *ff.Command

	ConfigPath string
	Debug      bool

	loggerOnce sync.Once
	logger     *slog.Logger

	serverOnce sync.Once
	server     *mockserver.Config
	serverErr  error
}

func New(stdin io.Reader, stdout, stderr io.Writer) *RootConfig {
	cfg := &RootConfig{
		Stdin:  stdin,
		Stdout: stdout,
		Stderr: stderr,
	}

	cfg.Flags = ff.NewFlagSet("apimock")
	cfg.Flags.StringVar(&cfg.ConfigPath, 'c', "config", "", "path to a TOML configuration file")
	cfg.Flags.BoolVar(&cfg.Debug, 'd', "debug", "log debug messages")

	cfg.Command = &ff.Command{
		Name:      "apimock",
		Usage:     "apimock [FLAGS] <SUBCOMMAND> ...",
		ShortHelp: "Serve mock HTTP APIs from endpoint and declaration files.",
		Flags:     cfg.Flags,
		Exec:      cfg.exec,
	}

	return cfg
}

func (cfg *RootConfig) exec(_ context.Context, args []string) error {
	if len(args) == 0 {
		_, _ = fmt.Fprintln(cfg.Stdout, ffhelp.Command(cfg.Command))
		return ff.ErrHelp
	}
	return errors.New("missing command")
}

func (cfg *RootConfig) Logger() *slog.Logger {
	cfg.loggerOnce.Do(func() {
		level := slog.LevelInfo
		if cfg.Debug {
			level = slog.LevelDebug
		}
		handler := slog.NewTextHandler(cfg.Stderr, &slog.HandlerOptions{Level: level})
		cfg.logger = slog.New(handler)
	})
	return cfg.logger
}

// ServerConfig returns the configuration read from --config, or the
// defaults when no file was given. Callers apply their own flag overrides
// and validate the result.
func (cfg *RootConfig) ServerConfig() (*mockserver.Config, error) {
	cfg.serverOnce.Do(func() {
		if cfg.ConfigPath == "" {
			cfg.server = &mockserver.Config{}
		} else {
			c, err := mockserver.ReadConfig(cfg.ConfigPath)
			if err != nil {
				cfg.serverErr = err
				return
			}
			cfg.Logger().Debug("Loaded config.", slog.String("path", cfg.ConfigPath))
			cfg.server = c
		}
		if cfg.server.Server.Listen == "" {
			cfg.server.Server.Listen = defaultListen
		}
		if cfg.server.Mocks.Dir == "" {
			cfg.server.Mocks.Dir = defaultDir
		}
	})

	return cfg.server, cfg.serverErr
}
