package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"maintenance-tracker-backend/config"
	"maintenance-tracker-backend/internal/api"
	"maintenance-tracker-backend/internal/db"
	"maintenance-tracker-backend/internal/logger"
	"maintenance-tracker-backend/internal/maintenance"
	"maintenance-tracker-backend/internal/notification"
	"maintenance-tracker-backend/internal/reminder"
	"maintenance-tracker-backend/internal/seed"
	"maintenance-tracker-backend/internal/store"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		_, _ = os.Stderr.WriteString("maintd: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "maintd",
		Short:         "Facility maintenance tracker API server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, configPath)
		},
	}

	cmd.PersistentFlags().StringVar(&configPath, "config", defaultConfigPath(), "Path to the YAML configuration file")
	cmd.AddCommand(seedCmd(&configPath))
	return cmd
}

func seedCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Create demo machines and maintenance tasks in an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := setup(*configPath)
			if err != nil {
				return err
			}
			defer app.close()

			_, err = seed.Run(cmd.Context(), app.svc, app.store, app.logger)
			return err
		},
	}
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config/config.yaml" // local development
}

// app holds the components shared by every command.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  store.Store
	svc    *maintenance.Service
	close  func()
}

func setup(configPath string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	log, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, err
	}
	log.Info("configuration loaded", zap.String("path", configPath))

	gormDB, err := db.Init(&cfg.Database, log)
	if err != nil {
		_ = log.Sync()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	appStore := store.NewGormStore(gormDB)
	svc := maintenance.NewService(appStore, log, maintenance.WithUpcomingHorizon(cfg.Maintenance.UpcomingHorizonDays))

	return &app{
		cfg:    cfg,
		logger: log,
		store:  appStore,
		svc:    svc,
		close: func() {
			if sqlDB, err := gormDB.DB(); err == nil {
				_ = sqlDB.Close()
			}
			_ = log.Sync()
		},
	}, nil
}

func serve(ctx context.Context, configPath string) error {
	a, err := setup(configPath)
	if err != nil {
		return err
	}
	defer a.close()
	cfg, log := a.cfg, a.logger

	if cfg.Seed.OnStartup {
		if _, err := seed.Run(ctx, a.svc, a.store, log); err != nil {
			return fmt.Errorf("failed to seed database: %w", err)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	webpushOptions, waitBackground := startNotifications(ctx, a)
	defer func() {
		cancel()
		waitBackground()
	}()

	router := api.NewRouter(a.svc, a.store, webpushOptions, &cfg.Server, log)
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.Int("port", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("HTTP server ListenAndServe: %w", err)
	case <-ctx.Done():
	}
	log.Info("shutdown signal received, stopping services")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("HTTP server Shutdown: %w", err)
	}

	log.Info("server gracefully stopped")
	return nil
}

// startNotifications starts the push worker pool and the reminder sweeper when
// VAPID keys are configured. The returned func blocks until both have exited,
// which happens once ctx is done.
func startNotifications(ctx context.Context, a *app) (*webpush.Options, func()) {
	cfg := a.cfg
	if !cfg.Push.Enabled() {
		a.logger.Warn("VAPID keys not configured, push notifications and reminders are disabled")
		return nil, func() {}
	}

	webpushOptions := &webpush.Options{
		VAPIDPublicKey:  cfg.Push.PublicKey,
		VAPIDPrivateKey: cfg.Push.PrivateKey,
		Subscriber:      cfg.Push.Subject,
		TTL:             cfg.Push.TTL,
	}
	pool := notification.NewWorkerPool(cfg.WorkerPool.Size, a.store, webpushOptions, a.logger)
	pool.Start(ctx)

	var sweeps sync.WaitGroup
	sweeper := reminder.NewService(&cfg.Reminder, a.svc, pool, a.logger)
	sweeps.Add(1)
	go func() {
		defer sweeps.Done()
		sweeper.Run(ctx)
	}()

	return webpushOptions, func() {
		sweeps.Wait()
		pool.Wait()
	}
}
