// Package groq structures record text with the Groq chat completions API.
package groq

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/joseph-ayodele/vet-records/internal/core/llm"
)

// Name identifies this backend in logs and stored records.
const Name = "groq"

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

func (c *Client) Name() string { return Name }

// Available needs no network call.
func (c *Client) Available(context.Context) bool { return c.cfg.Available() }

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Structure sends text to the chat completions endpoint and parses the reply.
func (c *Client) Structure(ctx context.Context, text string) llm.Result {
	start := time.Now()
	c.logger.Info("llm.structure.start", "backend", Name, "model", c.cfg.Model, "text_len", len(text))

	body := chatRequest{
		Model: c.cfg.Model,
		Messages: []message{
			{Role: "system", Content: llm.SystemPrompt},
			{Role: "user", Content: llm.BuildPrompt(text)},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.cfg.APIKey}

	raw, _, err := llm.SendJSON(ctx, c.http, c.cfg.URL, body, headers, c.logger)
	if err != nil {
		return c.fail(start, err)
	}

	var cc chatResponse
	if err := json.Unmarshal(raw, &cc); err != nil {
		return c.fail(start, llm.ParseError("decode chat completion", err))
	}
	if len(cc.Choices) == 0 {
		return c.fail(start, llm.ParseError("no choices in response", nil))
	}

	fields, violations, err := llm.FieldsFromContent(strings.TrimSpace(cc.Choices[0].Message.Content))
	if err != nil {
		return c.fail(start, err)
	}
	if len(violations) > 0 {
		c.logger.Warn("llm.structure.schema_violations",
			"backend", Name,
			"violations", violations,
		)
	}
	c.logger.Info("llm.structure.ok",
		"backend", Name,
		"fields", fields.Count(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Result{Fields: fields, Violations: violations}
}

func (c *Client) fail(start time.Time, err error) llm.Result {
	c.logger.Warn("llm.structure.failed",
		"backend", Name,
		"error", err,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return llm.Failed(err)
}
