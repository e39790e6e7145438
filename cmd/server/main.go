package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/smmops/panel/internal/api"
	"github.com/smmops/panel/internal/config"
	"github.com/smmops/panel/internal/db"
	"github.com/smmops/panel/internal/importer"
	"github.com/smmops/panel/internal/logging"
	"github.com/smmops/panel/internal/provider"
	"github.com/smmops/panel/internal/registry"
)

var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		if err := runServe(); err != nil {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	case "version":
		fmt.Printf("smmpanel %s\n", version)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage: smmpanel <command>

Commands:
  serve     Start the HTTP server
  version   Print version information
`)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logCloser, err := logging.Setup(cfg.LogLevel, cfg.LogDir)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer logCloser.Close()

	slog.Info("starting smmpanel",
		"version", version,
		"port", cfg.Port,
		"dbPath", cfg.DBPath,
	)

	store, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	if err := store.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("database ready", "path", cfg.DBPath)

	// Provider plumbing: profile registry, adapter pool, roster.
	profiles := provider.NewProfileRegistry()
	pool := provider.NewAdapterPool(profiles)
	reg := registry.New(store, pool)
	reg.AttachHealthStore(store)

	balance := provider.NewBalanceService(reg, pool)
	catalog := provider.NewCatalogService(reg, pool)
	orders := provider.NewOrderService(reg, pool)
	im := importer.New(reg, catalog, store)

	diagClient := provider.NewHTTPClient(config.ProbeTimeout)
	troubleshooter := provider.NewTroubleshooter(
		provider.NewProber(diagClient),
		provider.NewVerifier(provider.NewHTTPClient(config.VerifyTimeout)),
		provider.NewIPDiagnostic(provider.NewHTTPClient(config.IPCheckTimeout),
			cfg.IPEchoURL, cfg.HTTPProbeURL, cfg.HTTPSProbeURL),
		provider.NewAltConnector(provider.NewHTTPClient(config.AltMethodTimeout)),
	)

	checker := registry.NewHealthChecker(reg, store)

	// Initial sweep runs in the background so startup is not gated on
	// slow providers.
	go checker.RunSweep(context.Background())

	router := api.NewRouter(&api.Dependencies{
		Config:        cfg,
		DB:            store,
		Registry:      reg,
		Balance:       balance,
		Catalog:       catalog,
		Orders:        orders,
		Importer:      im,
		Troubleshoot:  troubleshooter,
		HealthChecker: checker,
		Version:       version,
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:           addr,
		Handler:        router,
		ReadTimeout:    config.ServerReadTimeout,
		WriteTimeout:   config.ServerWriteTimeout,
		IdleTimeout:    config.ServerIdleTimeout,
		MaxHeaderBytes: config.ServerMaxHeaderBytes,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	sig := <-done
	slog.Info("shutdown signal received", "signal", sig)

	ctx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("smmpanel stopped")
	return nil
}
