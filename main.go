package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"github.com/artefactual-labs/apimock/internal/cmd/resolvecmd"
	"github.com/artefactual-labs/apimock/internal/cmd/rootcmd"
	"github.com/artefactual-labs/apimock/internal/cmd/routescmd"
	"github.com/artefactual-labs/apimock/internal/cmd/schemascmd"
	"github.com/artefactual-labs/apimock/internal/cmd/servecmd"
	"github.com/artefactual-labs/apimock/internal/cmd/versioncmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	args := os.Args[1:]
	stdin := os.Stdin
	stdout := os.Stdout
	stderr := os.Stderr

	err := exec(ctx, args, stdin, stdout, stderr)
	stop()
	if err != nil {
		if errors.Is(err, ff.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintf(stderr, "error: %v\n", err) //nolint:errcheck
		os.Exit(1)
	}
}

func exec(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := rootcmd.New(stdin, stdout, stderr)
	_ = resolvecmd.New(root)
	_ = routescmd.New(root)
	_ = schemascmd.New(root)
	_ = servecmd.New(root)
	_ = versioncmd.New(root)

	if err := root.Command.Parse(args, ff.WithEnvVarPrefix(rootcmd.EnvVarPrefix)); err != nil {
		_, _ = fmt.Fprintf(stderr, "\n%s\n", ffhelp.Command(root.Command))
		return err
	}

	return root.Command.Run(ctx)
}
