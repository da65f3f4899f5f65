// Command boardd serves the client-facing kanban board view: issues
// fetched from the external ticket tracker, classified into board
// columns, counted, and cached across tiers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/clientview/boardd/internal/board"
	"github.com/clientview/boardd/internal/cache"
	"github.com/clientview/boardd/internal/config"
	boardhttp "github.com/clientview/boardd/internal/http"
	"github.com/clientview/boardd/internal/service"
	"github.com/clientview/boardd/internal/tracker"
)

var configPath string

func main() {
	root := &cobra.Command{
		Use:   "boardd",
		Short: "Issue classification and board cache engine",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default ~/.config/boardd/config.yaml)")

	root.AddCommand(serveCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the board HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return serve(cfg)
		},
	}
}

func serve(cfg *config.Config) error {
	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // stdout sync errors are harmless

	metrics := cache.NewMetrics()

	// Durable tier failure is non-fatal: the engine degrades to
	// volatile-only operation with durability lost, never correctness.
	var durable cache.Durable
	if cfg.Cache.DurablePath != "" {
		sqlite, err := cache.OpenSQLite(cfg.Cache.DurablePath)
		if err != nil {
			logger.Warn("durable cache tier unavailable, running volatile-only",
				zap.String("path", cfg.Cache.DurablePath),
				zap.Error(err),
			)
		} else {
			durable = sqlite
		}
	}

	store := cache.NewStore(cache.Options{
		Durable:         durable,
		Logger:          logger.Named("cache"),
		Metrics:         metrics,
		JanitorInterval: cfg.Cache.JanitorInterval,
	})
	defer store.Close() //nolint:errcheck // shutdown path

	orch := cache.NewOrchestrator(store, cache.TTLClasses{
		Issues:   cfg.Cache.IssuesTTL,
		Config:   cfg.Cache.ConfigTTL,
		Identity: cfg.Cache.IdentityTTL,
	}, logger.Named("cache"), metrics)

	client, err := tracker.NewClient(tracker.ClientConfig{
		Endpoint: cfg.Tracker.Endpoint,
		Token:    cfg.Tracker.Token,
		Timeout:  cfg.Tracker.Timeout,
	})
	if err != nil {
		return fmt.Errorf("failed to create tracker client: %w", err)
	}

	assembler := board.NewAssembler(logger.Named("board"))
	boards := service.NewBoardService(client, orch, assembler, logger.Named("service"))

	server, err := boardhttp.NewServer(boards, logger.Named("http"), &boardhttp.Config{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

// newLogger builds a zap logger from the logging config.
func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	var zc zap.Config
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
