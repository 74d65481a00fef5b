package groq

import (
	"strings"
	"time"
)

const (
	DefaultURL   = "https://api.groq.com/openai/v1/chat/completions"
	DefaultModel = "llama-3.1-8b-instant"
)

// Config for the Groq chat completions backend.
type Config struct {
	Enabled     bool
	APIKey      string
	URL         string        // default DefaultURL
	Model       string        // default DefaultModel
	Temperature float64       // default 0.1
	MaxTokens   int           // default 300
	Timeout     time.Duration // http client timeout, default 30s
}

// Available reports whether the backend may be called: enabled and keyed.
func (c Config) Available() bool {
	return c.Enabled && strings.TrimSpace(c.APIKey) != ""
}

func (c Config) withDefaults() Config {
	if c.URL == "" {
		c.URL = DefaultURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.1
	}
	if c.MaxTokens <= 0 {
		c.MaxTokens = 300
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}
