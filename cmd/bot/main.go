package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/atelier-bot/api/routes"
	"github.com/angelmondragon/atelier-bot/internal/telegram"
	"github.com/angelmondragon/atelier-bot/pkg/config"
	"github.com/angelmondragon/atelier-bot/pkg/env"
	"github.com/angelmondragon/atelier-bot/pkg/instance"
	"github.com/angelmondragon/atelier-bot/pkg/logger"
	"github.com/angelmondragon/atelier-bot/pkg/metrics"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "bot"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "bot",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"mode":     cfg.Telegram.Mode,
	})

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	botMetrics := metrics.NewBotMetrics(reg)

	app, err := build(ctx, cfg, logg, botMetrics)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap bot", err)
		os.Exit(1)
	}
	defer app.close(context.Background())

	dispatcher, err := telegram.NewDispatcher(app.engine, telegram.DefaultWorkers, logg)
	if err != nil {
		logg.Error(ctx, "failed to create dispatcher", err)
		os.Exit(1)
	}

	deps := routes.Deps{Pingers: app.pingers, Gatherer: reg}
	if cfg.Telegram.Mode == config.TelegramModeWebhook {
		deps.Updates = dispatcher
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	dispatcher.Start(runCtx)

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		logg.Info(ctx, "starting http server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	if cfg.Telegram.Mode == config.TelegramModePolling {
		g.Go(func() error {
			return app.telegram.Poll(gctx, cfg.Telegram.PollTimeout, dispatcher)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		logg.Info(ctx, "shutting down http server")
		return server.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	dispatcher.Close()
	if err != nil {
		logg.Error(ctx, "bot stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "bot stopped")
}
