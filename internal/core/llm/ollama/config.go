package ollama

import (
	"strings"
	"time"
)

const (
	DefaultURL   = "http://localhost:11434"
	DefaultModel = "tinyllama"
)

// Config for a local Ollama server.
type Config struct {
	Enabled      bool
	URL          string        // base URL, default DefaultURL
	Model        string        // default DefaultModel
	Temperature  float64       // default 0.1
	TopP         float64       // default 0.9
	NumPredict   int           // default 200
	NumCtx       int           // default 1024
	Timeout      time.Duration // generate timeout, default 120s
	ProbeTimeout time.Duration // health probe timeout, default 2s
}

// Configured reports whether the backend is enabled with a base URL. Callers
// still need a successful Probe before using it.
func (c Config) Configured() bool {
	return c.Enabled && strings.TrimSpace(c.URL) != ""
}

func (c Config) baseURL() string {
	return strings.TrimRight(strings.TrimSpace(c.URL), "/")
}

// TagsURL is the health endpoint.
func (c Config) TagsURL() string { return c.baseURL() + "/api/tags" }

// GenerateURL is the completion endpoint.
func (c Config) GenerateURL() string { return c.baseURL() + "/api/generate" }

func (c Config) withDefaults() Config {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature <= 0 {
		c.Temperature = 0.1
	}
	if c.TopP <= 0 {
		c.TopP = 0.9
	}
	if c.NumPredict <= 0 {
		c.NumPredict = 200
	}
	if c.NumCtx <= 0 {
		c.NumCtx = 1024
	}
	if c.Timeout <= 0 {
		c.Timeout = 120 * time.Second
	}
	if c.ProbeTimeout <= 0 {
		c.ProbeTimeout = 2 * time.Second
	}
	return c
}
