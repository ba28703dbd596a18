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

	"github.com/webpbin/trafficd/internal/config"
	"github.com/webpbin/trafficd/internal/core/storage/postgres"
	"github.com/webpbin/trafficd/internal/ingest"
	"github.com/webpbin/trafficd/internal/migrations"
	"github.com/webpbin/trafficd/internal/query"
	"github.com/webpbin/trafficd/internal/retention"
	"github.com/webpbin/trafficd/internal/server"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	window, err := time.ParseDuration(cfg.Retention.Window)
	if err != nil {
		slog.Error("Invalid retention window", "value", cfg.Retention.Window, "error", err)
		os.Exit(1)
	}

	adapter, err := postgres.NewAdapter(cfg.Database.DSN,
		cfg.Database.MaxOpenConns, cfg.Database.MaxIdleConns)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer adapter.Close()

	if err := migrations.RunMigrations(adapter.DB(), cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	sweeper := retention.NewSweeper(adapter, window)
	ingestSvc := ingest.NewService(adapter, sweeper)
	querySvc := query.NewService(adapter, query.Options{
		RetentionWindow: window,
		DefaultDays:     cfg.Query.DefaultDays,
		DefaultTopLimit: cfg.Query.DefaultTopLimit,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := server.New(addr, adapter, cfg.Server.Mode)

	ingestSvc.RegisterRoutes(srv.Engine)
	querySvc.RegisterRoutes(srv.Engine)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigCh
		slog.Info("Received shutdown signal", "signal", sig)
		cancel()
	}()

	if err := srv.Run(ctx); err != nil {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped gracefully")
}
