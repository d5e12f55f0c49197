// Package config loads settings from defaults, an optional file and the
// environment, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Server struct {
	Port              string `mapstructure:"port"`
	RequestTimeoutSec int    `mapstructure:"request_timeout_sec"`
	MaxBodyBytes      int64  `mapstructure:"max_body_bytes"`
}

type Log struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

type Metrics struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Limits throttle outbound calls to one upstream. Zero values disable throttling.
type Limits struct {
	MaxRequestsPerMinute  int `mapstructure:"max_requests_per_minute"`
	MinRequestIntervalSec int `mapstructure:"min_request_interval_sec"`
	Burst                 int `mapstructure:"burst"`
}

type Frankfurter struct {
	Endpoint string `mapstructure:"endpoint"`
	Limits   `mapstructure:",squash"`
}

type Finnhub struct {
	APIKey   string            `mapstructure:"api_key"`
	Endpoint string            `mapstructure:"endpoint"`
	Names    map[string]string `mapstructure:"names"`
	Limits   `mapstructure:",squash"`
}

type Yahoo struct {
	Endpoint string            `mapstructure:"endpoint"`
	Headers  map[string]string `mapstructure:"headers"`
	Limits   `mapstructure:",squash"`
}

type Stooq struct {
	Endpoint string `mapstructure:"endpoint"`
	Limits   `mapstructure:",squash"`
}

type Pair struct {
	Code string `mapstructure:"code"`
	Name string `mapstructure:"name"`
}

type Market struct {
	Base             string   `mapstructure:"base"`
	Pairs            []Pair   `mapstructure:"pairs"`
	ConvertTo        string   `mapstructure:"convert_to"`
	LookbackDays     int      `mapstructure:"lookback_days"`
	GoldSources      []string `mapstructure:"gold_sources"`
	GoldYahooSymbols []string `mapstructure:"gold_yahoo_symbols"`
	GoldStooqSymbol  string   `mapstructure:"gold_stooq_symbol"`
	IndexSource      string   `mapstructure:"index_source"`
	IndexSymbols     []string `mapstructure:"index_symbols"`
	// FreshnessSec is the upstream max-age; 0 bypasses intermediary caches.
	FreshnessSec int `mapstructure:"freshness_sec"`
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

type Cache struct {
	Backend  string `mapstructure:"backend"`
	TTLSec   int    `mapstructure:"ttl_sec"`
	MaxItems int    `mapstructure:"max_items"`
	Redis    Redis  `mapstructure:"redis"`
}

type Summary struct {
	APIKey     string `mapstructure:"api_key"`
	BaseURL    string `mapstructure:"base_url"`
	Model      string `mapstructure:"model"`
	TimeoutSec int    `mapstructure:"timeout_sec"`
}

type Config struct {
	Server             Server      `mapstructure:"server"`
	Log                Log         `mapstructure:"log"`
	Metrics            Metrics     `mapstructure:"metrics"`
	UpstreamTimeoutSec int         `mapstructure:"upstream_timeout_sec"`
	Frankfurter        Frankfurter `mapstructure:"frankfurter"`
	Finnhub            Finnhub     `mapstructure:"finnhub"`
	Yahoo              Yahoo       `mapstructure:"yahoo"`
	Stooq              Stooq       `mapstructure:"stooq"`
	Market             Market      `mapstructure:"market"`
	Cache              Cache       `mapstructure:"cache"`
	Summary            Summary     `mapstructure:"summary"`
}

func Default() Config {
	return Config{
		Server:             Server{Port: "8080", RequestTimeoutSec: 10, MaxBodyBytes: 1 << 20},
		Log:                Log{Level: "info", Format: "json", Output: "stdout", FilePath: "logs/marketdash.log", MaxSize: 100, MaxBackups: 10, MaxAge: 30, Compress: true},
		Metrics:            Metrics{Enabled: true, Path: "/metrics"},
		UpstreamTimeoutSec: 5,
		Frankfurter:        Frankfurter{Endpoint: "https://api.frankfurter.app"},
		Finnhub: Finnhub{
			Endpoint: "https://finnhub.io/api/v1",
			Limits:   Limits{MaxRequestsPerMinute: 60, Burst: 4},
		},
		Yahoo: Yahoo{Endpoint: "https://query1.finance.yahoo.com/v7/finance/quote"},
		Stooq: Stooq{Endpoint: "https://stooq.com/q/l/"},
		Market: Market{
			Base: "USD",
			Pairs: []Pair{
				{Code: "KRW", Name: "USD/KRW"},
				{Code: "JPY", Name: "USD/JPY"},
				{Code: "EUR", Name: "USD/EUR"},
			},
			ConvertTo:        "KRW",
			LookbackDays:     7,
			GoldSources:      []string{"yahoo", "stooq"},
			GoldYahooSymbols: []string{"XAUUSD=X", "GC=F"},
			GoldStooqSymbol:  "gc.f",
			IndexSource:      "finnhub",
			IndexSymbols:     []string{"SPY", "QQQ", "DIA", "EWY"},
		},
		Cache:   Cache{TTLSec: 15, MaxItems: 1000, Redis: Redis{Addr: "localhost:6379", Prefix: "marketdash:"}},
		Summary: Summary{BaseURL: "https://api.openai.com/v1", Model: "gpt-4o-mini", TimeoutSec: 20},
	}
}

// Load reads path (or CONFIG_FILE, or ./config.json when present) over the
// defaults. A missing file is not an error. Environment variables override
// any key, with "." replaced by "_", e.g. FINNHUB_API_KEY or SERVER_PORT.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		if _, err := os.Stat("config.json"); err == nil {
			path = "config.json"
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Default(), fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("summary.api_key", "SUMMARY_API_KEY", "OPENAI_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default(), fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch c.Market.IndexSource {
	case "finnhub", "yahoo":
	default:
		return fmt.Errorf("market.index_source: unknown source %q", c.Market.IndexSource)
	}
	switch c.Cache.Backend {
	case "", "none", "memory", "redis":
	default:
		return fmt.Errorf("cache.backend: unknown backend %q", c.Cache.Backend)
	}
	if len(c.Market.Pairs) == 0 {
		return errors.New("market.pairs: at least one pair is required")
	}
	return nil
}

func (c Config) UpstreamTimeout() time.Duration { return seconds(c.UpstreamTimeoutSec) }
func (c Config) RequestTimeout() time.Duration { return seconds(c.Server.RequestTimeoutSec) }

func (l Limits) MinInterval() time.Duration { return seconds(l.MinRequestIntervalSec) }

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.request_timeout_sec", d.Server.RequestTimeoutSec)
	v.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.output", d.Log.Output)
	v.SetDefault("log.file_path", d.Log.FilePath)
	v.SetDefault("log.max_size", d.Log.MaxSize)
	v.SetDefault("log.max_backups", d.Log.MaxBackups)
	v.SetDefault("log.max_age", d.Log.MaxAge)
	v.SetDefault("log.compress", d.Log.Compress)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.path", d.Metrics.Path)

	v.SetDefault("upstream_timeout_sec", d.UpstreamTimeoutSec)

	v.SetDefault("frankfurter.endpoint", d.Frankfurter.Endpoint)
	limitDefaults(v, "frankfurter", d.Frankfurter.Limits)

	v.SetDefault("finnhub.api_key", "")
	v.SetDefault("finnhub.endpoint", d.Finnhub.Endpoint)
	limitDefaults(v, "finnhub", d.Finnhub.Limits)

	v.SetDefault("yahoo.endpoint", d.Yahoo.Endpoint)
	limitDefaults(v, "yahoo", d.Yahoo.Limits)

	v.SetDefault("stooq.endpoint", d.Stooq.Endpoint)
	limitDefaults(v, "stooq", d.Stooq.Limits)

	pairs := make([]map[string]any, 0, len(d.Market.Pairs))
	for _, p := range d.Market.Pairs {
		pairs = append(pairs, map[string]any{"code": p.Code, "name": p.Name})
	}
	v.SetDefault("market.base", d.Market.Base)
	v.SetDefault("market.pairs", pairs)
	v.SetDefault("market.convert_to", d.Market.ConvertTo)
	v.SetDefault("market.lookback_days", d.Market.LookbackDays)
	v.SetDefault("market.gold_sources", d.Market.GoldSources)
	v.SetDefault("market.gold_yahoo_symbols", d.Market.GoldYahooSymbols)
	v.SetDefault("market.gold_stooq_symbol", d.Market.GoldStooqSymbol)
	v.SetDefault("market.index_source", d.Market.IndexSource)
	v.SetDefault("market.index_symbols", d.Market.IndexSymbols)
	v.SetDefault("market.freshness_sec", d.Market.FreshnessSec)

	v.SetDefault("cache.backend", d.Cache.Backend)
	v.SetDefault("cache.ttl_sec", d.Cache.TTLSec)
	v.SetDefault("cache.max_items", d.Cache.MaxItems)
	v.SetDefault("cache.redis.addr", d.Cache.Redis.Addr)
	v.SetDefault("cache.redis.password", d.Cache.Redis.Password)
	v.SetDefault("cache.redis.db", d.Cache.Redis.DB)
	v.SetDefault("cache.redis.prefix", d.Cache.Redis.Prefix)

	v.SetDefault("summary.api_key", "")
	v.SetDefault("summary.base_url", d.Summary.BaseURL)
	v.SetDefault("summary.model", d.Summary.Model)
	v.SetDefault("summary.timeout_sec", d.Summary.TimeoutSec)
}

func limitDefaults(v *viper.Viper, prefix string, l Limits) {
	v.SetDefault(prefix+".max_requests_per_minute", l.MaxRequestsPerMinute)
	v.SetDefault(prefix+".min_request_interval_sec", l.MinRequestIntervalSec)
	v.SetDefault(prefix+".burst", l.Burst)
}

// SplitCSV trims and drops empty items from a comma-separated list.
func SplitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
