package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/menobass/hive-checkin-bot/internal/config"
	"github.com/menobass/hive-checkin-bot/internal/domain"
	"github.com/menobass/hive-checkin-bot/internal/hive"
	"github.com/menobass/hive-checkin-bot/internal/httpserver"
	"github.com/menobass/hive-checkin-bot/internal/metrics"
	"github.com/menobass/hive-checkin-bot/internal/poller"
	"github.com/menobass/hive-checkin-bot/internal/sqlite"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "config.json", "path to the JSON config file")
	flag.Parse()

	// Credentials may live in a local .env file during development.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := sqlite.Open(cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()
	logger.Info("store opened", "file", cfg.DatabaseFile)

	client := hive.NewClient(cfg.NodeURL)
	defer client.Close()

	feed := hive.NewFeedSource(client, logger)
	oracle := hive.NewBalanceOracle(client, logger)

	var executor domain.ActionExecutor
	if cfg.DryRun {
		executor = hive.NewSimulatedExecutor(logger)
	} else {
		executor = hive.NewBroadcastExecutor(client, cfg.AccountName, logger)
	}

	processor := domain.NewProcessor(domain.ProcessorConfig{
		Requirements:      cfg.RequiredMetadata,
		Account:           cfg.AccountName,
		WelcomeMessage:    cfg.WelcomeMessage,
		TransferAmount:    cfg.TransferAmount,
		TransferMemo:      cfg.TransferMemo,
		UpvoteWeight:      cfg.UpvoteWeight(),
		MaxDailyTransfers: cfg.MaxDailyTransfers,
		MinAccountBalance: cfg.MinAccountBalance,
	}, store, executor, oracle, logger)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	p := poller.New(poller.Options{
		Community:  cfg.Community,
		Interval:   cfg.CheckInterval(),
		FetchLimit: cfg.FetchLimit,
		MaxPostAge: cfg.MaxPostAge(),
	}, feed, store, store, processor, m, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go p.Run(ctx)

	server := httpserver.NewServer(cfg.Port, cfg.Community, cfg.DryRun, store, registry, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server exited with error", "error", err)
		}
	}()

	logger.Info("bot started",
		"community", cfg.Community,
		"node", cfg.NodeURL,
		"dry_run", cfg.DryRun,
		"port", cfg.Port,
	)

	sig := <-sigCh
	logger.Info("received signal, shutting down", "signal", sig)
	cancel()

	if err := server.Shutdown(context.Background()); err != nil {
		logger.Error("error shutting down http server", "error", err)
	}

	return nil
}
