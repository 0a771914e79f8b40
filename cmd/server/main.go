package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/me/bizdir/internal/config"
	"github.com/me/bizdir/internal/logging"
	"github.com/me/bizdir/internal/metrics"
	"github.com/me/bizdir/internal/server"
	"github.com/me/bizdir/internal/store"
)

func main() {
	configFile := flag.String("config", "", "Path to a YAML config file")
	addr := flag.String("addr", "", "Listen address (default :8090)")
	backend := flag.String("backend", "", "Base URL of the directory API")
	dbPath := flag.String("db", "", "Database path (default ~/.bizdir/bizdir.db)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	logFormat := flag.String("log-format", "", "Log format (text, json)")
	secure := flag.Bool("secure", false, "Set the Secure flag on cookies (serve behind HTTPS)")
	cleanupEvery := flag.Duration("cleanup-interval", 10*time.Minute, "How often idle visitors are forgotten (0 disables)")
	debug := flag.Bool("debug", false, "Shorthand for --log-level=debug")
	flag.Parse()

	cfg, err := config.LoadServerConfig(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// Flags win over the file and the environment.
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *backend != "" {
		cfg.BackendURL = *backend
	}
	if *dbPath != "" {
		cfg.DBPath = *dbPath
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if *logFormat != "" {
		cfg.LogFormat = *logFormat
	}
	if flag.CommandLine.Changed("secure") {
		cfg.Secure = *secure
	}
	if *debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	path, err := cfg.ResolveDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "database path: %v\n", err)
		os.Exit(1)
	}

	// Open store and run migrations.
	st, err := store.NewSQLiteStore(path, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open database: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	if err := st.Migrate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "migrate database: %v\n", err)
		os.Exit(1)
	}
	logger.Info("database ready", "path", path)

	srv := server.New(cfg, st, logger, server.WithMetrics(metrics.New()))

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv.StartCleanup(ctx, *cleanupEvery)

	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "backend", cfg.BackendURL)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown error: %v\n", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
