package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/nemanja-m/gopool/internal/admin"
	"github.com/nemanja-m/gopool/internal/metrics"
	"github.com/nemanja-m/gopool/internal/server"
	"github.com/nemanja-m/gopool/internal/shared/config"
	"github.com/nemanja-m/gopool/pkg/pool"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.LoadServer(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := cfg.Logging.NewLogger(os.Stdout)
	if err != nil {
		slog.Error("Failed to create logger", "error", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	p := pool.New(cfg.Pool.Size,
		pool.WithLogger(logger),
		pool.WithObserver(metrics.NewPoolMetrics(registry)),
	)

	var healthServer *admin.HealthServer
	if cfg.Admin.GRPCAddr != "" {
		healthServer = admin.NewHealthServer(cfg.Admin.EnableReflection, logger)
		go func() {
			if err := healthServer.Start(cfg.Admin.GRPCAddr); err != nil {
				logger.Error("Health server error", "error", err)
			}
		}()
	}

	var adminServer *http.Server
	if cfg.Admin.HTTPAddr != "" {
		adminServer = admin.NewHTTPServer(cfg.Admin.HTTPAddr, p, registry, logger)
		go func() {
			logger.Info("Admin server listening", "addr", cfg.Admin.HTTPAddr)
			if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Admin server error", "error", err)
			}
		}()
	}

	handler := server.ChainMiddleware(
		server.NewStaticHandler(cfg.Server, cfg.Static, cfg.Routes, logger),
		server.RecoveryMiddleware(logger),
		server.LoggingMiddleware(logger),
	)
	srv := server.NewServer(p, handler, cfg.Server.MaxConnections, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Server started",
		"addr", cfg.Server.Addr,
		"pool_size", cfg.Pool.Size,
		"max_connections", cfg.Server.MaxConnections,
	)

	serveErr := srv.ListenAndServe(ctx, cfg.Server.Addr)
	if serveErr != nil {
		logger.Error("Server error", "error", serveErr)
	}

	logger.Info("Shutting down server")
	if healthServer != nil {
		healthServer.MarkNotServing()
	}

	// Blocks until every accepted connection has been served.
	if err := p.Close(); err != nil {
		logger.Error("Failed to close pool", "error", err)
	}

	if adminServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := adminServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Admin server forced to shutdown", "error", err)
		}
		cancel()
	}
	if healthServer != nil {
		healthServer.Stop()
	}

	logger.Info("Server stopped")
	if serveErr != nil {
		os.Exit(1)
	}
}
