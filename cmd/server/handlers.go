package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketdash/internal/app"
	"marketdash/internal/config"
	"marketdash/internal/market"
	"marketdash/internal/metrics"
	"marketdash/internal/summary"
)

const maxSymbols = 50

type Summarizer interface {
	Summarize(ctx context.Context, in summary.Input) summary.Summary
}

type routerDeps struct {
	Facade         app.Facade
	Summarizer     Summarizer
	Metrics        *metrics.Metrics
	MetricsPath    string
	Log            *slog.Logger
	RequestTimeout time.Duration
}

type handlers struct {
	facade     app.Facade
	summarizer Summarizer
	log        *slog.Logger
}

func newRouter(d routerDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLog(d.Log))
	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
		path := d.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.GET(path, gin.WrapH(d.Metrics.Handler()))
	}
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	h := &handlers{facade: d.Facade, summarizer: d.Summarizer, log: d.Log}
	api := r.Group("/api", apiHeaders(), withTimeout(d.RequestTimeout))
	api.GET("/fx", h.fx)
	api.GET("/gold", h.gold)
	api.GET("/indices", h.indices)
	api.GET("/dashboard", h.dashboard)
	api.POST("/summary", h.summary)
	api.OPTIONS("/*path", func(c *gin.Context) {})
	return r
}

// respond writes the envelope with 200 for success and 502 for an upstream failure.
func respond[T any](c *gin.Context, r market.Result[T]) {
	status := http.StatusOK
	if !r.OK {
		status = http.StatusBadGateway
	}
	c.JSON(status, r)
}

func (h *handlers) fx(c *gin.Context) {
	respond(c, h.facade.ExchangeRates(c.Request.Context()))
}

func (h *handlers) gold(c *gin.Context) {
	respond(c, h.facade.GoldPrice(c.Request.Context()))
}

func (h *handlers) indices(c *gin.Context) {
	symbols := config.SplitCSV(c.Query("symbols"))
	if len(symbols) > maxSymbols {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many symbols (max 50)"})
		return
	}
	respond(c, h.facade.IndexQuotes(c.Request.Context(), symbols))
}

func (h *handlers) dashboard(c *gin.Context) {
	c.JSON(http.StatusOK, h.facade.Dashboard(c.Request.Context()))
}

func (h *handlers) summary(c *gin.Context) {
	var in summary.Input
	if err := c.ShouldBindJSON(&in); err != nil && !errors.Is(err, io.EOF) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "body too large"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	c.JSON(http.StatusOK, h.summarizer.Summarize(c.Request.Context(), in))
}
