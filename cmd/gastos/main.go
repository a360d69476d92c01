package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"gastos/internal/amqp"
	"gastos/internal/cache"
	"gastos/internal/cli"
	"gastos/internal/core"
	apphttp "gastos/internal/http"
	"gastos/internal/log"
	"gastos/internal/services"
	"gastos/internal/storage"
)

func main() {
	cfg, err := cli.LoadConfig()
	logger := cli.SetupLogger(cfg, log.ComponentApp)
	if err != nil {
		cli.Fatal(logger, "Configuration validation failed", err)
	}

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

	// Events are only published when a broker is configured.
	var publisher services.Publisher
	if cfg.AMQPURL != "" {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			cli.Fatal(logger, "Failed to initialize AMQP client", err)
		}
		defer client.Close()
		publisher = client
		logger.Info("Publishing expense events", "exchange", cfg.AMQPExchange)
	} else {
		logger.Info("AMQP disabled, expense events will not be published")
	}

	ranges := cache.NewLRUCache[[]core.Expense](cfg.CacheSize, cfg.CacheTTL)
	caches := cache.NewManager(logger)
	caches.Register(ranges)
	caches.StartCleanup(ctx, cfg.CacheTTL)
	defer caches.Stop()

	expenses := services.NewExpenseService(be.Store, publisher, ranges, logger)
	reports := services.NewReportService(expenses, logger)

	var ready func(context.Context) error
	if p, ok := be.Store.(storage.Pinger); ok {
		ready = p.Ping
	}

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Expenses:           expenses,
		Reports:            reports,
		SessionSecret:      cfg.SessionSecret,
		WeekStart:          cfg.Week(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ready:              ready,
		Logger:             logger,
	})

	errc := make(chan error, 1)
	go func() {
		logger.Info("Starting gastos server",
			log.FieldOperation, log.OpStartup,
			"port", cfg.Port,
			log.FieldBackend, cfg.DataBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			cli.Fatal(logger, "Server error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", log.FieldError, err)
	}
	logger.Info("Server stopped gracefully")
}
