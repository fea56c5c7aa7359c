package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"alkozay-factory-api/internal/config"
	"alkozay-factory-api/internal/handler"
	"alkozay-factory-api/internal/ledger"
	"alkozay-factory-api/internal/middleware"
	"alkozay-factory-api/internal/repository"
	"alkozay-factory-api/internal/router"
	"alkozay-factory-api/internal/service"
)

func main() {
	cfg := config.MustLoad()
	log := config.NewLogger(cfg.Log)

	log.WithFields(logrus.Fields{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	}).Info("Starting Alkozay factory API")

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("Server exited with error")
	}
	log.Info("Server stopped")
}

func run(cfg *config.Config, log *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	slots, stores, err := repository.OpenSlots(ctx, cfg.Ledger.SlotSpecs(), cfg.Storage, log)
	cancel()
	if err != nil {
		return err
	}
	defer repository.CloseAll(stores)

	ids, err := ledger.NewSnowflakeIDs(cfg.Ledger.NodeID)
	if err != nil {
		return err
	}
	defaults := ledger.DefaultDefaults()
	defaults.Name = cfg.Ledger.FactoryName
	defaults.Location = cfg.Ledger.Location

	store := ledger.NewStore(nil, ledger.WithIDGenerator(ids), ledger.WithDefaults(defaults))
	persist := service.NewPersistence(slots, log)
	ledgerService := service.NewLedgerService(store, persist, log)

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Second)
	err = ledgerService.Load(ctx)
	cancel()
	if err != nil && !errors.Is(err, service.ErrNoSlotWritten) {
		return err
	}

	autoSaver := service.NewAutoSaver(ledgerService, service.AutoSaveConfig{
		Interval: cfg.Ledger.AutosaveInterval,
	}, log)
	autoSaver.Start()

	r := router.New(router.Config{
		Handler:       handler.New(cfg.App.Name, cfg.App.Version, ledgerService),
		LedgerHandler: handler.NewLedgerHandler(ledgerService),
		ReportHandler: handler.NewReportHandler(ledgerService),
		BackupHandler: handler.NewBackupHandler(ledgerService),
		AdminHandler:  handler.NewAdminHandler(ledgerService),
		AuthMiddleware: middleware.NewAuthMiddleware(middleware.AuthConfig{
			APIKeys: cfg.App.APIKeys,
		}),
		Logger:             log,
		AllowedOrigins:     cfg.App.CORSOrigins,
		RateLimitPerMinute: cfg.App.RateLimitPerMinute,
		Production:         cfg.App.IsProduction(),
	})
	if len(cfg.App.APIKeys) == 0 {
		log.Warn("API_KEYS is empty, ledger endpoints are unauthenticated")
	}

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.WithField("addr", cfg.Server.Address()).Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quit:
		log.WithField("signal", sig.String()).Info("Shutting down server...")
	case runErr = <-serverErr:
	}

	ctx, cancel = context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server shutdown error")
	}

	// Final save after the last request has finished
	if err := autoSaver.Stop(ctx); err != nil {
		log.WithError(err).Error("Final save failed")
	}
	return runErr
}
