package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trading-dashboard-go/internal/config"
	"trading-dashboard-go/internal/dashboard"
	"trading-dashboard-go/internal/journal"
	"trading-dashboard-go/internal/logger"
	"trading-dashboard-go/internal/tradeapi"

	"go.uber.org/zap"
)

func main() {
	// Load application configuration
	cfg, err := config.LoadConfig("./configs")
	if err != nil {
		// We can't use the logger here because it's not initialized yet.
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewLogger(cfg.Logger.Level, cfg.Logger.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()
	log.Info("Configuration loaded")

	// Open the local action journal
	jnl, err := journal.Open(cfg.Journal.DSN, log)
	if err != nil {
		log.Fatal("Failed to open action journal", zap.Error(err))
	}
	log.Info("Action journal ready", zap.String("dsn", cfg.Journal.DSN))

	// Initialize the trading API client. Quotes are a placeholder source
	// until a real price feed is integrated.
	quotes := tradeapi.NewPlaceholderQuotes(time.Now().UnixNano())
	client := tradeapi.NewClient(&cfg.Upstream, quotes, log)

	// Setup context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigchan := make(chan os.Signal, 1)
		signal.Notify(sigchan, syscall.SIGINT, syscall.SIGTERM)
		<-sigchan
		log.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	// Build the view-state shell and load every collection up front.
	shell := dashboard.NewShell(client, jnl, log,
		cfg.Dashboard.FuturesPageSize,
		time.Duration(cfg.Dashboard.ToastTTLSeconds)*time.Second)
	shell.LoadAll(ctx)
	log.Info("Initial collections loaded")

	server := dashboard.NewServer(shell, jnl, log, cfg.Server.Port)
	server.Start()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error("Failed to stop dashboard server", zap.Error(err))
	}

	log.Info("Dashboard has been shut down.")
}
