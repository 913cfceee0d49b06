package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrJamesThe3rd/famvest/internal/backend"
	"github.com/MrJamesThe3rd/famvest/internal/config"
	famvestHttp "github.com/MrJamesThe3rd/famvest/internal/http"
	"github.com/MrJamesThe3rd/famvest/internal/scheduler"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Level()})))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := backend.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	if err := app.Bootstrap(ctx); err != nil {
		return err
	}

	if cfg.Report.Cron != "" {
		sched, err := scheduler.New()
		if err != nil {
			return err
		}

		err = sched.AddCron("household-report", cfg.Report.Cron, func(ctx context.Context) error {
			path, err := app.Report.WriteFile(ctx, cfg.Report.Dir, time.Now())
			if err != nil {
				return err
			}

			slog.Info("household report written", "path", path)

			return nil
		})
		if err != nil {
			return err
		}

		sched.Start()

		defer func() {
			if err := sched.Stop(); err != nil {
				slog.Error("failed to stop scheduler", "error", err)
			}
		}()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           famvestHttp.New(famvestHttp.NewHandlers(app), cfg.Server.AllowedOrigins),
		ReadHeaderTimeout: cfg.Server.Timeout,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "port", srv.Addr, "storage", cfg.Storage.Driver)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.Timeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
