package main

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"legalassist-backend/app"
	"legalassist-backend/config"
	"legalassist-backend/handlers"
	"legalassist-backend/logging"
	"legalassist-backend/observability"
	"legalassist-backend/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// lazyDataset opens the dataset through the lazily built components
type lazyDataset struct {
	components *service.Lazy[*app.Components]
}

func (d lazyDataset) DatasetCSV(ctx context.Context) (io.ReadCloser, error) {
	c, err := d.components.Get()
	if err != nil {
		return nil, err
	}
	return c.Archive.DatasetCSV(ctx)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(logging.Config{File: cfg.LogFile, Production: cfg.LogProduction})
	defer logger.Sync()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Components are built on first use so the server starts even when a model key is missing
	components := service.NewLazy(func() (*app.Components, error) {
		return app.Build(ctx, cfg, logger, metrics)
	})
	go func() {
		if _, err := components.Get(); err != nil {
			logger.Warn("assistant warm-up failed", zap.Error(err))
		}
	}()

	assistantHandler := handlers.NewAssistantHandler(func() (handlers.Assistant, error) {
		c, err := components.Get()
		if err != nil {
			return nil, err
		}
		return c.Assistant, nil
	}, logger.Named("http"))
	exportHandler := handlers.NewExportHandler(lazyDataset{components: components}, logger.Named("http"))

	if cfg.LogProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	r := handlers.NewRouter(handlers.RouterConfig{
		Assistant:   assistantHandler,
		Export:      exportHandler,
		Metrics:     metrics,
		Gatherer:    reg,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      logger.Named("http"),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}
	if components.Ready() {
		c, _ := components.Get()
		if err := c.Close(); err != nil {
			logger.Warn("failed to release resources", zap.Error(err))
		}
	}
}
