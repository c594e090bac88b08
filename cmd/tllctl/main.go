// Package main implements tllctl, a small driver that reads a channel
// graph from a YAML file, constructs and opens every channel through a
// registry.Context, and pumps them through an eventloop.Loop until it
// receives SIGINT/SIGTERM.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/Diego2la/tll/curl"
	"github.com/Diego2la/tll/eventloop"
	"github.com/Diego2la/tll/impl/echo"
	"github.com/Diego2la/tll/impl/null"
	"github.com/Diego2la/tll/impl/reopen"
	"github.com/Diego2la/tll/impl/tcp"
	"github.com/Diego2la/tll/pkg/retry"
	"github.com/Diego2la/tll/registry"
)

const (
	Version = "0.1.0"
	appName = "tllctl"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := run(); err != nil {
		slog.Error("tllctl failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := parseFlags()

	if cfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil
	}
	if cfg.ShowHelp {
		printDetailedHelp()
		return nil
	}
	if err := validateFlags(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	log := setupLogging(cfg.LogLevel, cfg.LogFormat)
	log.Info("starting tllctl", "version", Version, "config", cfg.ConfigPath)

	raw, err := os.ReadFile(cfg.ConfigPath)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	graph, err := loadGraph(raw)
	if err != nil {
		return fmt.Errorf("load channel graph: %w", err)
	}

	ctx := registry.New()
	registerBuiltins(ctx)

	loop, err := eventloop.New()
	if err != nil {
		return fmt.Errorf("create event loop: %w", err)
	}
	defer loop.Close()

	channels, err := openGraph(ctx, loop, graph, log)
	if err != nil {
		return fmt.Errorf("open channel graph: %w", err)
	}
	log.Info("channel graph open", "count", len(channels))

	return pump(loop, cfg.ShutdownTimeout, log)
}

// registerBuiltins installs the framework's four built-in protocols. tcp
// and reopen are handed ctx itself so their Init-time child construction
// (tcp+server's per-connection children, reopen's wrapped inner channel)
// goes through the same registry every top-level channel does.
func registerBuiltins(ctx *registry.Context) {
	_ = ctx.Register(&null.Impl{}, "")
	_ = ctx.Register(&echo.Impl{}, "")
	_ = ctx.Register(&tcp.Client{}, "")
	_ = ctx.Register(tcp.NewServer(ctx), "")
	_ = ctx.Register(reopen.New(ctx, retry.DefaultConfig()), "reopen+")
}

func openGraph(ctx *registry.Context, loop *eventloop.Loop, graph *GraphConfig, log *slog.Logger) ([]string, error) {
	var opened []string
	for _, spec := range graph.Channels {
		u, err := curl.Parse(spec.URL)
		if err != nil {
			return opened, fmt.Errorf("parse channel url %q: %w", spec.URL, err)
		}
		ch, err := ctx.Init(u, nil, nil)
		if err != nil {
			return opened, fmt.Errorf("construct channel %q: %w", spec.URL, err)
		}
		if err := ch.Open(u); err != nil {
			return opened, fmt.Errorf("open channel %q: %w", spec.URL, err)
		}
		loop.Add(ch)
		log.Info("channel opened", "name", ch.Name(), "state", ch.State())
		opened = append(opened, ch.Name())
	}
	return opened, nil
}

// pump drives the event loop until SIGINT/SIGTERM, then waits up to
// shutdownTimeout for the pumping goroutine to stop.
func pump(loop *eventloop.Loop, shutdownTimeout time.Duration, log *slog.Logger) error {
	sigCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for sigCtx.Err() == nil {
			if err := loop.Process(); err != nil {
				if _, err := loop.Poll(100 * time.Millisecond); err != nil {
					log.Warn("poll error", "error", err)
				}
			}
		}
	}()

	<-sigCtx.Done()
	log.Info("shutdown signal received", "timeout", shutdownTimeout)

	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		log.Warn("shutdown timeout elapsed before loop drained")
	}
	return nil
}
