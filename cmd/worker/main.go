package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/odyssey-erp/backoffice/internal/app"
	"github.com/odyssey-erp/backoffice/internal/observability"
	"github.com/odyssey-erp/backoffice/internal/platform/cache"
	"github.com/odyssey-erp/backoffice/internal/storage"
	"github.com/odyssey-erp/backoffice/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	redisOpts, err := cache.Options(cfg.RedisAddr)
	if err != nil {
		logger.Error("redis options", slog.Any("error", err))
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	mailer := jobs.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom)
	handlers := []jobs.TaskHandler{
		{Type: jobs.TaskOrderStatusChanged, Handler: jobs.NewOrderStatusJob(mailer, metrics, logger).Handle},
	}
	var cron []jobs.CronRegistration

	// The sweep needs the product table that references the files; an in-memory
	// store in another process would report every image as orphaned.
	if cfg.StoreDriver == app.StoreDriverPostgres {
		stores, err := app.OpenStores(ctx, cfg, logger)
		if err != nil {
			logger.Error("open store", slog.Any("error", err))
			os.Exit(1)
		}
		defer stores.Close()

		disk, err := storage.NewDisk(cfg.StorageRoot, cfg.StorageURLPrefix)
		if err != nil {
			logger.Error("open storage", slog.Any("error", err))
			os.Exit(1)
		}
		sweep := jobs.NewImageSweepJob(disk, stores.Products, metrics, logger)
		handlers = append(handlers, jobs.TaskHandler{Type: jobs.TaskImageSweep, Handler: sweep.Handle})

		sweepTask, err := jobs.NewImageSweepTask(jobs.ImageSweepPayload{MinAge: jobs.DefaultSweepMinAge})
		if err != nil {
			logger.Error("build image sweep task", slog.Any("error", err))
			os.Exit(1)
		}
		if cfg.ImageSweepCron != "" {
			cron = append(cron, jobs.CronRegistration{Spec: cfg.ImageSweepCron, Task: sweepTask})
		}
	} else {
		logger.Warn("image sweep disabled for store driver", slog.String("driver", cfg.StoreDriver))
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: jobs.RedisClientOpt(redisOpts),
		Logger:    logger,
		Handlers:  handlers,
		Cron:      cron,
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if cfg.WorkerMetricsAddr != "" {
		metricsServer := &http.Server{Addr: cfg.WorkerMetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: cfg.AppReadTimeout}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Warn("worker metrics server", slog.Any("error", err))
			}
		}()
		defer func() { _ = metricsServer.Close() }()
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
