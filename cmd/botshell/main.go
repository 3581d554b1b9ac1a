// Command botshell hosts the bot worker process.
//
// It spawns the worker, prints subscribed events to stdout, and shuts the
// worker down gracefully on SIGINT/SIGTERM. Presentation chrome (tray, UI)
// lives in the desktop shell, not here.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/botwright/sidecar"
	"github.com/botwright/sidecar/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML config file")
	workerPath := flag.String("worker", "", "explicit path to the worker executable")
	flag.Parse()

	if err := run(*configPath, *workerPath); err != nil {
		fmt.Fprintln(os.Stderr, "botshell:", err)
		os.Exit(1)
	}
}

func run(configPath, workerPath string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := &config.FileConfig{}

	if configPath != "" {
		loaded, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}

		cfg = loaded
	}

	if workerPath != "" {
		cfg.Worker.Path = workerPath
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel(),
	}))

	s := sidecar.New()

	// Subscribe before Start so no early event is missed.
	type namedEvents struct {
		name   string
		ch     <-chan any
		cancel func()
	}

	subs := make([]namedEvents, 0, len(cfg.Events))

	for _, name := range cfg.Events {
		ch, cancel := s.Subscribe(name)
		subs = append(subs, namedEvents{name: name, ch: ch, cancel: cancel})
	}

	err := s.Start(ctx,
		sidecar.WithLogger(logger),
		sidecar.WithWorkerPath(cfg.Worker.Path),
		sidecar.WithWorkerArgs(cfg.Worker.Args...),
		sidecar.WithCwd(cfg.Worker.Cwd),
		sidecar.WithCallTimeout(cfg.CallTimeout()),
		sidecar.WithStderr(func(line string) {
			fmt.Fprintln(os.Stderr, "[worker]", line)
		}),
	)
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, sub := range subs {
		sub := sub

		g.Go(func() error {
			defer sub.cancel()

			for {
				select {
				case data, ok := <-sub.ch:
					if !ok {
						return nil
					}

					fmt.Printf("event %s: %v\n", sub.name, data)

				case <-gctx.Done():
					return nil
				}
			}
		})
	}

	// Session watcher: exit when the worker goes away or a signal arrives.
	g.Go(func() error {
		select {
		case <-s.Done():
			return s.Err()
		case <-gctx.Done():
			return nil
		}
	})

	servers, err := s.GetServers(gctx)
	if err != nil {
		logger.Warn("getServers failed", "error", err)
	} else {
		fmt.Println("servers:", servers)
	}

	runErr := g.Wait()

	// The signal context is already gone here; give shutdown its own bound.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}

	return runErr
}
