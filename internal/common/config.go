package common

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// ConfigFileEnv names the environment variable pointing at an optional TOML config file.
const ConfigFileEnv = "VETRECORDS_CONFIG"

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	OCR         OCRConfig
	Groq        GroqConfig
	Ollama      OllamaConfig
	Structuring StructuringConfig
	Queue       QueueConfig
	Ingest      IngestConfig
	LogLevel    string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	Tesseract   string
	Pdftoppm    string
	Lang        string
	TessdataDir string
	DPI         int
	MaxPages    int
	Timeout     time.Duration
}

type GroqConfig struct {
	Enabled bool
	APIKey  string
	URL     string
	Model   string
	Timeout time.Duration
}

type OllamaConfig struct {
	Enabled      bool
	URL          string
	Model        string
	Timeout      time.Duration
	ProbeTimeout time.Duration
}

type StructuringConfig struct {
	MinFields int
}

type QueueConfig struct {
	Workers    int
	Size       int
	JobTimeout time.Duration
}

type IngestConfig struct {
	WatchDirs       []string
	Debounce        time.Duration
	MaxDocumentSize int64
}

// fileKeys maps environment variable names onto dotted TOML keys.
var fileKeys = map[string]string{
	"DB_URL":                 "database.dsn",
	"DB_MAX_CONNS":           "database.max_conns",
	"DB_MIN_CONNS":           "database.min_conns",
	"DB_MAX_CONN_LIFETIME":   "database.max_conn_lifetime",
	"DB_MAX_CONN_IDLE_TIME":  "database.max_conn_idle_time",
	"DB_DIAL_TIMEOUT":        "database.dial_timeout",
	"DB_STATEMENT_TIMEOUT":   "database.statement_timeout",
	"GRPC_ADDR":              "server.grpc_addr",
	"TESSERACT_BIN":          "ocr.tesseract",
	"PDFTOPPM_BIN":           "ocr.pdftoppm",
	"TESSERACT_LANG":         "ocr.lang",
	"TESSDATA_PREFIX":        "ocr.tessdata_dir",
	"OCR_DPI":                "ocr.dpi",
	"OCR_MAX_PAGES":          "ocr.max_pages",
	"OCR_TIMEOUT":            "ocr.timeout",
	"GROQ_ENABLED":           "groq.enabled",
	"GROQ_API_KEY":           "groq.api_key",
	"GROQ_API_URL":           "groq.url",
	"GROQ_MODEL":             "groq.model",
	"GROQ_TIMEOUT":           "groq.timeout",
	"OLLAMA_ENABLED":         "ollama.enabled",
	"OLLAMA_URL":             "ollama.url",
	"OLLAMA_MODEL":           "ollama.model",
	"OLLAMA_TIMEOUT":         "ollama.timeout",
	"OLLAMA_PROBE_TIMEOUT":   "ollama.probe_timeout",
	"STRUCTURING_MIN_FIELDS": "structuring.min_fields",
	"QUEUE_WORKERS":          "queue.workers",
	"QUEUE_SIZE":             "queue.size",
	"JOB_TIMEOUT":            "queue.job_timeout",
	"WATCH_DIRS":             "ingest.watch_dirs",
	"WATCH_DEBOUNCE":         "ingest.debounce",
	"MAX_DOCUMENT_SIZE":      "ingest.max_document_size",
	"LOG_LEVEL":              "log_level",
}

// source resolves a setting from the environment first, then the config file.
type source struct {
	file map[string]any
}

// LoadConfig loads configuration from environment variables. When path (or
// $VETRECORDS_CONFIG) names a TOML file its values fill in anything the
// environment leaves unset.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(ConfigFileEnv)
	}
	src := source{file: map[string]any{}}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, NewAppError(CodeConfig, "read config file", err)
		}
		var loaded map[string]any
		if err := toml.Unmarshal(data, &loaded); err != nil {
			return nil, NewAppError(CodeConfig, "parse config file "+path, err)
		}
		src.file = flattenMap(loaded, "")
	}
	return src.load(), nil
}

func (s source) load() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              s.getEnv("DB_URL", ""),
			MaxConns:         s.getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         s.getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  s.getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  s.getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      s.getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: s.getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: s.getEnv("GRPC_ADDR", ":8080"),
		},
		OCR: OCRConfig{
			Tesseract:   s.getEnv("TESSERACT_BIN", "tesseract"),
			Pdftoppm:    s.getEnv("PDFTOPPM_BIN", "pdftoppm"),
			Lang:        s.getEnv("TESSERACT_LANG", "eng+spa+fra+por+ita"),
			TessdataDir: s.getEnv("TESSDATA_PREFIX", ""),
			DPI:         s.getEnvAsInt("OCR_DPI", 300),
			MaxPages:    s.getEnvAsInt("OCR_MAX_PAGES", 0),
			Timeout:     s.getEnvAsDuration("OCR_TIMEOUT", 90*time.Second),
		},
		Groq: GroqConfig{
			Enabled: s.getEnvAsBool("GROQ_ENABLED", true),
			APIKey:  s.getEnv("GROQ_API_KEY", ""),
			URL:     s.getEnv("GROQ_API_URL", ""),
			Model:   s.getEnv("GROQ_MODEL", ""),
			Timeout: s.getEnvAsDuration("GROQ_TIMEOUT", 30*time.Second),
		},
		Ollama: OllamaConfig{
			Enabled:      s.getEnvAsBool("OLLAMA_ENABLED", false),
			URL:          s.getEnv("OLLAMA_URL", "http://localhost:11434"),
			Model:        s.getEnv("OLLAMA_MODEL", ""),
			Timeout:      s.getEnvAsDuration("OLLAMA_TIMEOUT", 120*time.Second),
			ProbeTimeout: s.getEnvAsDuration("OLLAMA_PROBE_TIMEOUT", 2*time.Second),
		},
		Structuring: StructuringConfig{
			MinFields: s.getEnvAsInt("STRUCTURING_MIN_FIELDS", 3),
		},
		Queue: QueueConfig{
			Workers:    s.getEnvAsInt("QUEUE_WORKERS", 4),
			Size:       s.getEnvAsInt("QUEUE_SIZE", 256),
			JobTimeout: s.getEnvAsDuration("JOB_TIMEOUT", 5*time.Minute),
		},
		Ingest: IngestConfig{
			WatchDirs:       s.getEnvAsList("WATCH_DIRS"),
			Debounce:        s.getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
			MaxDocumentSize: s.getEnvAsInt64("MAX_DOCUMENT_SIZE", 10*1024*1024),
		},
		LogLevel: s.getEnv("LOG_LEVEL", "info"),
	}
}

// SlogLevel parses LogLevel, falling back to info.
func (c *Config) SlogLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "GRPC_ADDR is required", ErrInvalidInput)
	}
	if c.Structuring.MinFields < 1 {
		return NewAppError(CodeConfig, "STRUCTURING_MIN_FIELDS must be at least 1", ErrInvalidInput)
	}
	if c.Queue.Workers < 1 {
		return NewAppError(CodeConfig, "QUEUE_WORKERS must be at least 1", ErrInvalidInput)
	}
	if c.Ingest.MaxDocumentSize <= 0 {
		return NewAppError(CodeConfig, "MAX_DOCUMENT_SIZE must be positive", ErrInvalidInput)
	}
	return nil
}

// Helper functions for environment variable parsing
func (s source) lookup(key string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	v, ok := s.file[fileKeys[key]]
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func (s source) getEnv(key, defaultValue string) string {
	if value := s.lookup(key); value != "" {
		return value
	}
	return defaultValue
}

func (s source) getEnvAsInt(key string, defaultValue int) int {
	if value := s.lookup(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func (s source) getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := s.lookup(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func (s source) getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := s.lookup(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func (s source) getEnvAsBool(key string, defaultValue bool) bool {
	if value := s.lookup(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func (s source) getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := s.lookup(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func (s source) getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(s.lookup(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// flattenMap converts nested TOML tables to dot-notation keys.
func flattenMap(m map[string]any, prefix string) map[string]any {
	result := make(map[string]any)
	for key, value := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			for k, v := range flattenMap(nested, fullKey) {
				result[k] = v
			}
			continue
		}
		result[fullKey] = value
	}
	return result
}
