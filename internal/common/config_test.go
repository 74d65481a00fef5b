package common

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(ConfigFileEnv, "")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OLLAMA_ENABLED", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.GRPCAddr)
	assert.Equal(t, "eng+spa+fra+por+ita", cfg.OCR.Lang)
	assert.Equal(t, 90*time.Second, cfg.OCR.Timeout)
	assert.True(t, cfg.Groq.Enabled)
	assert.False(t, cfg.Ollama.Enabled)
	assert.Equal(t, "http://localhost:11434", cfg.Ollama.URL)
	assert.Equal(t, 2*time.Second, cfg.Ollama.ProbeTimeout)
	assert.Equal(t, 3, cfg.Structuring.MinFields)
	assert.Equal(t, 4, cfg.Queue.Workers)
	assert.Equal(t, 5*time.Minute, cfg.Queue.JobTimeout)
	stages := cfg.OCR.Timeout + cfg.Groq.Timeout + cfg.Ollama.ProbeTimeout + cfg.Ollama.Timeout
	assert.Greater(t, cfg.Queue.JobTimeout, stages, "job budget must cover every stage timeout")
	assert.Equal(t, int64(10*1024*1024), cfg.Ingest.MaxDocumentSize)
}

func TestLoadConfigFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vetrecords.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level = "debug"

[database]
dsn = "file:records.db"

[groq]
enabled = false
model = "llama-3.3-70b"

[structuring]
min_fields = 4

[ingest]
watch_dirs = ["/data/in", "/data/scans"]
debounce = "2s"
`), 0o600))

	t.Setenv("DB_URL", "")
	t.Setenv("GROQ_ENABLED", "")
	t.Setenv("GROQ_MODEL", "")
	t.Setenv("WATCH_DIRS", "")
	t.Setenv("WATCH_DEBOUNCE", "")
	t.Setenv("LOG_LEVEL", "")
	t.Setenv("STRUCTURING_MIN_FIELDS", "5")

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "file:records.db", cfg.Database.DSN)
	assert.False(t, cfg.Groq.Enabled)
	assert.Equal(t, "llama-3.3-70b", cfg.Groq.Model)
	assert.Equal(t, 5, cfg.Structuring.MinFields, "environment wins over the file")
	assert.Equal(t, []string{"/data/in", "/data/scans"}, cfg.Ingest.WatchDirs)
	assert.Equal(t, 2*time.Second, cfg.Ingest.Debounce)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestLoadConfigBadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[database\n"), 0o600))

	_, err := LoadConfig(path)
	var appErr *AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, CodeConfig, appErr.Code)

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorAs(t, err, &appErr)
}

func TestConfigValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Database:    DatabaseConfig{DSN: "postgres://localhost/vet"},
			Server:      ServerConfig{GRPCAddr: ":8080"},
			Structuring: StructuringConfig{MinFields: 3},
			Queue:       QueueConfig{Workers: 4},
			Ingest:      IngestConfig{MaxDocumentSize: 1024},
		}
	}
	tests := []struct {
		name   string
		mutate func(c *Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*Config) {}, ok: true},
		{name: "missing dsn", mutate: func(c *Config) { c.Database.DSN = "" }},
		{name: "missing addr", mutate: func(c *Config) { c.Server.GRPCAddr = "" }},
		{name: "zero min fields", mutate: func(c *Config) { c.Structuring.MinFields = 0 }},
		{name: "zero workers", mutate: func(c *Config) { c.Queue.Workers = 0 }},
		{name: "zero max size", mutate: func(c *Config) { c.Ingest.MaxDocumentSize = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestSlogLevelFallback(t *testing.T) {
	assert.Equal(t, slog.LevelInfo, (&Config{LogLevel: "chatty"}).SlogLevel())
	assert.Equal(t, slog.LevelWarn, (&Config{LogLevel: "warn"}).SlogLevel())
}
