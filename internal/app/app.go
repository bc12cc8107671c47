// Package app wires every component (C1-C7) into a running process: it
// loads the rule catalog and classifier, builds the fetcher, courier, and
// job queue, mounts the HTTP surface, and drives graceful shutdown.
package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ILYXAAA/SecretsScanner-service/config"
	"github.com/ILYXAAA/SecretsScanner-service/internal/controller"
	"github.com/ILYXAAA/SecretsScanner-service/internal/credentials"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/catalog"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/classifier"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/courier"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/fetch"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/queue"
	"github.com/ILYXAAA/SecretsScanner-service/internal/usecase/scanner"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutDownSeconds = 3

func Run(logger *zap.Logger, cfg *config.Config) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	tp, err := setupTracing(ctx, cfg.Observability.JaegerURL)
	if err != nil {
		logger.Error("can not set up tracing", zap.Error(err))
		return
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutDownSeconds*time.Second)
		defer shutdownCancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			logger.Error("tracer provider shutdown error", zap.Error(err))
		}
	}()

	cat, err := catalog.Load(logger, cfg.SettingsDir)
	if err != nil {
		logger.Error("can not load rule catalog", zap.Error(err))
		return
	}

	clsf, err := classifier.Initialize(logger, classifier.Paths{
		ModelPath:         cfg.ModelDir + "/model.gob",
		VectorizerPath:    cfg.ModelDir + "/vectorizer.gob",
		SecretsDataset:    cfg.DatasetsDir + "/secrets.txt",
		NonSecretsDataset: cfg.DatasetsDir + "/nonsecrets.txt",
	})
	if err != nil {
		logger.Error("can not initialize classifier", zap.Error(err))
		return
	}

	creds, err := credentials.Load(
		credentials.Keys{
			LoginKeyB64:    cfg.Credentials.LoginKey,
			PasswordKeyB64: cfg.Credentials.PasswordKey,
			PATKeyB64:      cfg.Credentials.PATKey,
		},
		credentials.Files{
			LoginPath:    cfg.SettingsDir + "/login.dat",
			PasswordPath: cfg.SettingsDir + "/password.dat",
			PATPath:      cfg.SettingsDir + "/pat_token.dat",
		},
	)
	if err != nil {
		logger.Error("can not load credentials", zap.Error(err))
		return
	}

	fetcher := fetch.New(logger, cat, creds, cfg.Hub)
	courierClient := courier.New(logger)

	q := queue.New(logger, queue.Config{
		MaxWorkers: cfg.Queue.MaxWorkers,
		IOPoolSize: cfg.Queue.IOPoolSize,
	}, queue.Deps{
		Logger:     logger,
		Catalog:    cat,
		Classifier: clsf,
		Fetcher:    fetcher,
		Courier:    courierClient,
		ScanOpts: scanner.Options{
			MaxLineLength:     cfg.Scan.MaxLineLength,
			MaxSecretsPerFile: cfg.Scan.MaxSecretsPerFile,
			BatchSize:         cfg.Scan.BatchSize,
		},
		TempDir: cfg.TempDir,
	})
	q.Start(ctx)

	svc := controller.New(logger, q, fetcher, cfg.API.Key)

	httpServer := &http.Server{
		Addr:    cfg.HTTP.Host + ":" + cfg.HTTP.Port,
		Handler: svc.Router(),
	}

	go runHTTP(logger, httpServer)
	go runMetrics(logger, cfg.Observability.MetricsPort)

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutDownSeconds*time.Second)
	defer shutdownCancel()

	if err := q.Shutdown(shutdownCtx); err != nil {
		logger.Error("queue shutdown error", zap.Error(err))
	}
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", zap.Error(err))
	}
}

func runHTTP(logger *zap.Logger, server *http.Server) {
	logger.Info("http server listening", zap.String("addr", server.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server listen error", zap.Error(err))
	}
}

func runMetrics(logger *zap.Logger, port string) {
	if port == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	addr := ":" + port
	logger.Info("metrics server listening", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server listen error", zap.Error(err))
	}
}
