// Package summary writes a short market briefing, with an LLM when one is
// configured and with fixed rules otherwise.
package summary

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	SourceRules = "rules"
	SourceLLM   = "llm"

	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"
	temperature    = 0.4
)

var ErrEmptyAnswer = errors.New("summary: empty completion")

type Summary struct {
	Text   string `json:"summary"`
	Source string `json:"source"`
}

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

type Summarizer struct {
	cfg    Config
	client *resty.Client
	log    *slog.Logger
}

func New(cfg Config, log *slog.Logger) *Summarizer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("Content-Type", "application/json")
	return &Summarizer{cfg: cfg, client: client, log: log}
}

// Summarize never fails: without a key, or when the completion call fails,
// it returns the rule-based text.
func (s *Summarizer) Summarize(ctx context.Context, in Input) Summary {
	if s.cfg.APIKey == "" {
		return Summary{Text: Rules(in), Source: SourceRules}
	}
	text, err := s.complete(ctx, prompt(in))
	if err != nil {
		s.log.Warn("llm summary failed, using rules", "model", s.cfg.Model, "error", err)
		return Summary{Text: Rules(in), Source: SourceRules}
	}
	return Summary{Text: text, Source: SourceLLM}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (s *Summarizer) complete(ctx context.Context, content string) (string, error) {
	var out chatResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetAuthToken(s.cfg.APIKey).
		SetBody(chatRequest{
			Model:       s.cfg.Model,
			Messages:    []chatMessage{{Role: "user", Content: content}},
			Temperature: temperature,
		}).
		SetResult(&out).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("chat completions: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("chat completions: status %d", resp.StatusCode())
	}
	if len(out.Choices) == 0 {
		return "", ErrEmptyAnswer
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyAnswer
	}
	return text, nil
}

func prompt(in Input) string {
	var fx FX
	if in.FX != nil {
		fx = *in.FX
	}
	var gold Gold
	if in.Gold != nil {
		gold = *in.Gold
	}
	idx := make([]string, 0, len(in.Indices))
	for _, i := range in.Indices {
		idx = append(idx, fmt.Sprintf("%s:%s(%s%%)", i.label(), num(i.RegularMarketPrice), num(i.RegularMarketChangePercent)))
	}
	return strings.Join([]string{
		"You are a financial analyst giving a daily briefing to beginner investors.",
		"Data (do not approximate):",
		fmt.Sprintf("FX: USD/KRW=%s, USD/JPY=%s, USD/EUR=%s", num(fx.USDKRW), num(fx.USDJPY), num(fx.USDEUR)),
		fmt.Sprintf("Gold(oz): USD=%s, KRW=%s", num(gold.USDPerOunce), num(gold.KRWPerOunce)),
		"Indices: " + strings.Join(idx, ", "),
		"Format: at most 3 paragraphs, no overconfidence, include a not-investment-advice notice.",
	}, "\n")
}

func num(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%g", *v)
}
