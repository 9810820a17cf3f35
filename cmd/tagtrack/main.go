package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"tagtrack/internal/aggregate"
	"tagtrack/internal/amqp"
	"tagtrack/internal/cli"
	"tagtrack/internal/fx"
	"tagtrack/internal/services"
	ports "tagtrack/internal/sheets"
	gsheet "tagtrack/internal/sheets/google"
	mem "tagtrack/internal/sheets/memory"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger()
	cfg := cli.LoadAndValidateConfig(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store ports.CellStore
	switch cfg.DataBackend {
	case "sheets":
		client, err := gsheet.NewFromEnv(ctx)
		if err != nil {
			logger.Error("Failed to initialize Google Sheets client", "error", err)
			os.Exit(1)
		}
		store = client
		logger.Info("Initialized Google Sheets backend", "spreadsheet_id", cfg.SpreadsheetID)
	default:
		store = mem.New()
		logger.Info("Initialized memory backend, nothing will be persisted remotely")
	}

	rates := fx.NewClient(cfg.RatesBaseURL, cfg.RateCacheSize, cfg.RateCacheTTL)
	conv := fx.NewConverter(rates)
	updater := aggregate.NewUpdater(store, conv)

	// The AMQP client is optional: a missing broker degrades to no archiving,
	// never to a failed session.
	var amqpClient *amqp.Client
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, sessions will not be archived", "error", err)
		} else {
			amqpClient = client
			defer amqpClient.Close()
		}
	}

	svc := services.NewSessionService(store, conv, updater, amqpClient)
	wizard := cli.NewWizard(svc, os.Stdin, os.Stdout)

	if err := wizard.Run(ctx); err != nil {
		logger.Error("Session failed", "error", err)
		os.Exit(1)
	}
}
