package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"gastos/internal/amqp"
	"gastos/internal/cli"
	"gastos/internal/config"
	"gastos/internal/core"
	"gastos/internal/log"
	gsheet "gastos/internal/sheets/google"
	"gastos/internal/worker"
)

func main() {
	resyncMonth := flag.String("resync-month", "", "mirror every expense of this month (YYYY-MM) before consuming events")
	resyncOwner := flag.String("resync-owner", "", "owner whose month is mirrored by -resync-month")
	flag.Parse()

	cfg, err := cli.LoadConfig((*config.Config).ValidateMirror)
	logger := cli.SetupLogger(cfg, log.ComponentWorker)
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}
	logger.Info("Starting gastos-worker", log.FieldOperation, log.OpStartup)

	ctx, stop := cli.SignalContext(logger)
	defer stop()

	be, err := cli.OpenStore(ctx, cfg, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to open expense store", err)
	}
	defer func() {
		if err := be.Cleanup(); err != nil {
			logger.Error("Store cleanup failed", log.FieldError, err)
		}
	}()

	mirror, err := gsheet.New(ctx, cfg.GoogleSpreadsheetID, cfg.GoogleSheetName, gsheet.Credentials{
		JSON: cfg.GoogleServiceAccountJSON,
		File: cfg.GoogleServiceAccountFile,
	}, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize Google Sheets client", err)
	}
	if err := mirror.EnsureHeader(ctx); err != nil {
		cli.Fatal(logger, "Failed to prepare the mirror sheet", err)
	}

	sync := worker.NewSyncWorker(be.Store, mirror, logger)

	if *resyncMonth != "" {
		if *resyncOwner == "" {
			cli.Fatal(logger, "Invalid resync flags", errors.New("-resync-owner is required with -resync-month"))
		}
		p, err := monthPeriod(*resyncMonth)
		if err != nil {
			cli.Fatal(logger, "Invalid resync flags", err)
		}
		n, err := sync.Resync(ctx, *resyncOwner, p)
		if err != nil {
			cli.Fatal(logger, "Resync failed", err)
		}
		logger.Info("Resync complete", log.FieldPeriod, p.String(), log.FieldCount, n)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		cli.Fatal(logger, "Failed to initialize AMQP client", err)
	}
	defer client.Close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.Consume(gctx, sync.HandleEvent)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
	}
	logger.Info("Worker stopped gracefully", log.FieldOperation, log.OpShutdown)
}

// monthPeriod parses YYYY-MM into the period covering that month.
func monthPeriod(s string) (core.Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return core.Period{}, fmt.Errorf("parse month %q: %w", s, err)
	}
	return core.MonthPeriod(core.DateOf(t)), nil
}
