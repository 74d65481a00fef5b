// Package ollama structures record text with a local Ollama server.
package ollama

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/joseph-ayodele/vet-records/internal/core/llm"
)

// Name identifies this backend in logs and stored records.
const Name = "ollama"

type Client struct {
	cfg    Config
	http   *http.Client
	probe  *http.Client
	logger *slog.Logger
}

// NewClient applies defaults. An empty URL keeps the backend unavailable.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		probe:  &http.Client{Timeout: cfg.ProbeTimeout},
		logger: logger,
	}
}

func (c *Client) Name() string { return Name }

// Probe checks GET /api/tags within ProbeTimeout.
func (c *Client) Probe(ctx context.Context) error {
	return llm.Probe(ctx, c.probe, c.cfg.TagsURL(), c.cfg.ProbeTimeout, c.logger)
}

// Available is true when configured and the health probe answers 2xx.
// Probe failures are logged, never returned.
func (c *Client) Available(ctx context.Context) bool {
	if !c.cfg.Configured() {
		return false
	}
	if err := c.Probe(ctx); err != nil {
		c.logger.Info("llm.ollama.unavailable", "url", c.cfg.TagsURL(), "error", err)
		return false
	}
	return true
}

type options struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
	NumCtx      int     `json:"num_ctx"`
}

type generateRequest struct {
	Model   string  `json:"model"`
	Prompt  string  `json:"prompt"`
	Stream  bool    `json:"stream"`
	Options options `json:"options"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// Structure calls /api/generate without streaming and parses the reply.
func (c *Client) Structure(ctx context.Context, text string) llm.Result {
	start := time.Now()
	c.logger.Info("llm.structure.start", "backend", Name, "model", c.cfg.Model, "text_len", len(text))

	body := generateRequest{
		Model:  c.cfg.Model,
		Prompt: llm.BuildPrompt(text),
		Stream: false,
		Options: options{
			Temperature: c.cfg.Temperature,
			TopP:        c.cfg.TopP,
			NumPredict:  c.cfg.NumPredict,
			NumCtx:      c.cfg.NumCtx,
		},
	}

	raw, _, err := llm.SendJSON(ctx, c.http, c.cfg.GenerateURL(), body, nil, c.logger)
	if err != nil {
		return c.fail(start, err)
	}

	var gr generateResponse
	if err := json.Unmarshal(raw, &gr); err != nil {
		return c.fail(start, llm.ParseError("decode generate response", err))
	}

	fields, violations, err := llm.FieldsFromContent(gr.Response)
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
