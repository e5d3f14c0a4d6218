package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aevon-lab/eventbook/internal/config"
	"github.com/aevon-lab/eventbook/internal/conn"
	"github.com/aevon-lab/eventbook/internal/records"
	"github.com/aevon-lab/eventbook/internal/seed"
	"github.com/aevon-lab/eventbook/internal/server"
)

func main() {
	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		slog.Error("Eventbook exited with error", "error", err)
		stop()
		os.Exit(1)
	}
	slog.Info("Shutdown complete")
}

// run owns every resource it opens, so all deferred cleanup has happened by
// the time it returns.
func run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("eventbook", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	seedPath := fs.String("seed", "", "YAML file of events to load at startup (overrides seed.path)")
	uriEnv := fs.String("uri-env", "", "Read the database URI from this environment variable instead of database.uri")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	uri := cfg.Database.URI
	if *uriEnv != "" {
		uri = conn.FromEnv(*uriEnv)
	}
	if *seedPath != "" {
		cfg.Seed.Path = *seedPath
	}

	// 2. Connection cache; nothing is dialed until first use.
	cache := conn.NewCache(uri, conn.Dial(cfg.Database))
	defer func() {
		if err := cache.Close(); err != nil {
			slog.Error("Failed to close record store", "error", err)
		}
	}()

	svc := records.NewService(cache)

	// 3. Optional seeding
	if cfg.Seed.Path != "" {
		file, err := seed.LoadFile(cfg.Seed.Path)
		if err != nil {
			return fmt.Errorf("failed to load seed file %s: %w", cfg.Seed.Path, err)
		}
		if _, err := seed.Apply(ctx, svc, file); err != nil {
			return fmt.Errorf("failed to seed events: %w", err)
		}
	}

	// 4. Health server
	srv := server.New(cfg.Server.Addr(), cache, cfg.Server.Mode)
	srv.ShutdownTimeout = cfg.Server.ShutdownGrace()

	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server stopped: %w", err)
	}
	slog.Info("Health server stopped")
	return nil
}
