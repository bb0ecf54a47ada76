package mockserver

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/rogpeppe/go-internal/testscript"

	"github.com/artefactual-labs/apimock/internal/testutil"
)

// TestScriptCmd implements the "apimock-server" testscript command.
func TestScriptCmd(ts *testscript.TestScript, neg bool, args []string) {
	if len(args) == 0 {
		ts.Fatalf("apimock-server: missing subcommand")
	}
	sub := args[0]
	switch sub {
	case "start":
		serverStart(ts, neg, args[1:])
	case "snapshot":
		serverSnapshot(ts, neg, args[1:])
	default:
		ts.Fatalf("apimock-server: unknown subcommand %q", sub)
	}
}

func serverStart(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("apimock-server start: negation not supported")
	}
	if _, ok := getInstance(ts); ok {
		ts.Fatalf("apimock-server start: server already running")
	}

	fs := flag.NewFlagSet("apimock-server start", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	configPath := fs.String("config", "", "path to a TOML configuration")
	dir := fs.String("dir", "", "directory holding the endpoint files")
	schemas := fs.String("schemas", "", "directory holding the declarations")
	portFlag := fs.Int("port", 0, "port to listen on (default random)")
	if err := fs.Parse(args); err != nil {
		ts.Fatalf("apimock-server start: %v", err)
	}

	cfg := &Config{}
	if *configPath != "" {
		loaded, err := ReadConfig(ts.MkAbs(*configPath))
		if err != nil {
			ts.Fatalf("apimock-server start: load config: %v", err)
		}
		cfg = loaded
	}
	if *dir != "" {
		cfg.Mocks.Dir = ts.MkAbs(*dir)
	} else if cfg.Mocks.Dir != "" {
		cfg.Mocks.Dir = ts.MkAbs(cfg.Mocks.Dir)
	}
	if *schemas != "" {
		cfg.Mocks.Schemas = ts.MkAbs(*schemas)
	} else if cfg.Mocks.Schemas != "" {
		cfg.Mocks.Schemas = ts.MkAbs(cfg.Mocks.Schemas)
	}

	port := *portFlag
	if port == 0 {
		p, err := testutil.FreePort()
		if err != nil {
			ts.Fatalf("apimock-server start: acquire port: %v", err)
		}
		port = p
	}
	listen := fmt.Sprintf("127.0.0.1:%d", port)
	cfg.Server.Listen = listen

	if err := cfg.Validate(); err != nil {
		ts.Fatalf("apimock-server start: validate config: %v", err)
	}

	srv, stop, err := StartServer(context.Background(), cfg)
	if err != nil {
		ts.Fatalf("apimock-server start: %v", err)
	}

	baseURL := fmt.Sprintf("http://%s", listen)
	ts.Setenv("APIMOCK_URL", baseURL)

	inst := &instance{srv: srv, stop: stop, baseURL: baseURL}
	setInstance(ts, inst)
	ts.Defer(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := inst.stop(ctx); err != nil {
			ts.Logf("apimock-server: shutdown error: %v", err)
		}
		clearInstance(ts)
	})

	ts.Logf("apimock server listening on %s", baseURL)
}

func serverSnapshot(ts *testscript.TestScript, neg bool, args []string) {
	if neg {
		ts.Fatalf("apimock-server snapshot: negation not supported")
	}
	if len(args) != 0 {
		ts.Fatalf("apimock-server snapshot: unexpected arguments: %v", args)
	}
	inst, ok := getInstance(ts)
	if !ok {
		ts.Fatalf("apimock-server snapshot: server not running")
	}

	data, err := inst.srv.Snapshot().MarshalTOML()
	if err != nil {
		ts.Fatalf("apimock-server snapshot: marshal: %v", err)
	}
	if len(data) == 0 || data[len(data)-1] != '\n' {
		data = append(data, '\n')
	}
	if _, err := ts.Stdout().Write(data); err != nil {
		ts.Fatalf("apimock-server snapshot: write stdout: %v", err)
	}
}

type instance struct {
	srv     *Server
	stop    func(context.Context) error
	baseURL string
}

var (
	instancesMu sync.Mutex
	instances   = make(map[*testscript.TestScript]*instance)
)

func setInstance(ts *testscript.TestScript, inst *instance) {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	instances[ts] = inst
}

func getInstance(ts *testscript.TestScript) (*instance, bool) {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	inst, ok := instances[ts]
	return inst, ok
}

func clearInstance(ts *testscript.TestScript) {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	delete(instances, ts)
}
