package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"go.uber.org/zap"

	"github.com/RandySimanca/avicola/internal/config"
	"github.com/RandySimanca/avicola/internal/export/sheets"
	"github.com/RandySimanca/avicola/internal/outbox"
	"github.com/RandySimanca/avicola/internal/repository/mongodb"
	"github.com/RandySimanca/avicola/internal/scheduler"
	"github.com/RandySimanca/avicola/internal/server/handlers"
	"github.com/RandySimanca/avicola/internal/server/router"
	authsvc "github.com/RandySimanca/avicola/internal/service/auth"
	ledgersvc "github.com/RandySimanca/avicola/internal/service/ledger"
	registrysvc "github.com/RandySimanca/avicola/internal/service/registry"
	reportingsvc "github.com/RandySimanca/avicola/internal/service/reporting"
	"github.com/RandySimanca/avicola/pkg/logger"
	"github.com/RandySimanca/avicola/pkg/probe"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	store, err := mongodb.NewStore(context.Background(), cfg.MongoDB.URI, cfg.MongoDB.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb store", zap.Error(err))
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	queue, err := outbox.NewQueue(cfg.Outbox.Path, baseLogger.Named("outbox"))
	if err != nil {
		baseLogger.Fatal("failed to init outbox queue", zap.Error(err))
	}
	defer func() {
		if err := queue.Close(); err != nil {
			baseLogger.Error("failed to close outbox queue", zap.Error(err))
		}
	}()

	ledgerSvc := ledgersvc.NewService(store, baseLogger.Named("svc.ledger"))
	registrySvc := registrysvc.NewService(store, baseLogger.Named("svc.registry"))
	reportingSvc := reportingsvc.NewService(store, baseLogger.Named("svc.reporting"))
	authSvc := authsvc.NewService(store, cfg.Auth.JWTSecret, baseLogger.Named("svc.auth"))
	submitter := outbox.NewSubmitter(ledgerSvc, queue, baseLogger.Named("outbox.submitter"))

	var exporter sheets.Exporter
	if cfg.Sheets.Enabled() {
		exporter, err = sheets.NewGoogleSheetExporter(context.Background(), cfg.Sheets.CredentialsPath, cfg.Sheets.SpreadsheetID, baseLogger.Named("export.sheets"))
		if err != nil {
			baseLogger.Fatal("failed to init sheets exporter", zap.Error(err))
		}
		baseLogger.Info("sheets export enabled")
	} else {
		baseLogger.Warn("sheets credentials missing, summary export disabled")
	}

	engine := router.New(router.Handlers{
		Auth:     handlers.NewAuthHandler(authSvc, baseLogger.Named("handlers.auth")),
		Registry: handlers.NewRegistryHandler(registrySvc, baseLogger.Named("handlers.registry")),
		Ledger:   handlers.NewLedgerHandler(submitter, ledgerSvc, baseLogger.Named("handlers.ledger")),
		Report:   handlers.NewReportHandler(reportingSvc, submitter, baseLogger.Named("handlers.report")),
	}, authSvc, baseLogger.Named("router"))

	prober := probe.New(cfg.Jobs.PingURL, baseLogger.Named("probe"))

	sched := scheduler.NewScheduler(*cfg, submitter, prober, reportingSvc, exporter, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
