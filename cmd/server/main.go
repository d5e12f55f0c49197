package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"marketdash/internal/app"
	"marketdash/internal/config"
	"marketdash/internal/logging"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to a config file (json, yaml or toml); defaults to CONFIG_FILE or ./config.json")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, logCloser, err := logging.New(cfg.Log)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer a.Close()

	gin.SetMode(gin.ReleaseMode)
	router := newRouter(routerDeps{
		Facade:         a.Facade,
		Summarizer:     a.Summarizer,
		Metrics:        a.Metrics,
		MetricsPath:    cfg.Metrics.Path,
		Log:            logger,
		RequestTimeout: cfg.RequestTimeout(),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           withGzip(limitBody(router, cfg.Server.MaxBodyBytes)),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout() + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server", "error", err)
			stop()
		}
	}()

	// graceful shutdown
	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
	logger.Info("server stopped")
}
