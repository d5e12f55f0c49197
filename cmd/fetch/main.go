package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"marketdash/internal/app"
	"marketdash/internal/config"
	"marketdash/internal/logging"
	"marketdash/internal/summary"
)

func main() {
	var (
		configPath string
		what       string
		symbolsCSV string
	)
	flag.StringVar(&configPath, "config", "", "path to a config file (optional)")
	flag.StringVar(&what, "what", "dashboard", "fx | gold | indices | dashboard | summary")
	flag.StringVar(&symbolsCSV, "symbols", "", "comma-separated index symbols (indices only; default from config)")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	cfg.Metrics.Enabled = false
	// stdout carries the JSON result.
	logger, closer, err := logging.NewTo(cfg.Log, os.Stderr)
	if err != nil {
		log.Fatalf("logging: %v", err)
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if d := cfg.RequestTimeout(); d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup: %v", err)
	}
	defer a.Close()

	out, err := run(ctx, a, what, config.SplitCSV(symbolsCSV))
	if err != nil {
		log.Fatal(err)
	}
	if err := write(os.Stdout, out); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, a *app.App, what string, symbols []string) (any, error) {
	switch what {
	case "fx":
		return a.Facade.ExchangeRates(ctx), nil
	case "gold":
		return a.Facade.GoldPrice(ctx), nil
	case "indices":
		return a.Facade.IndexQuotes(ctx, symbols), nil
	case "dashboard":
		return a.Facade.Dashboard(ctx), nil
	case "summary":
		d := a.Facade.Dashboard(ctx)
		return a.Summarizer.Summarize(ctx, summary.FromDashboard(d)), nil
	default:
		return nil, fmt.Errorf("unknown -what %q", what)
	}
}

func write(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
