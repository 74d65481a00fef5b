package app

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vet-records/internal/common"
	"github.com/joseph-ayodele/vet-records/internal/core/llm/groq"
	"github.com/joseph-ayodele/vet-records/internal/core/llm/ollama"
	"github.com/joseph-ayodele/vet-records/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStrategies(t *testing.T) {
	tests := []struct {
		name string
		cfg  common.Config
		want []string
	}{
		{"none", common.Config{}, nil},
		{"groq without key", common.Config{Groq: common.GroqConfig{Enabled: true}}, nil},
		{"groq", common.Config{Groq: common.GroqConfig{Enabled: true, APIKey: "k"}}, []string{groq.Name}},
		{"both in priority order", common.Config{
			Groq:   common.GroqConfig{Enabled: true, APIKey: "k"},
			Ollama: common.OllamaConfig{Enabled: true, URL: "http://localhost:11434"},
		}, []string{groq.Name, ollama.Name}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var names []string
			for _, s := range strategies(&tt.cfg, testLogger()) {
				names = append(names, s.Name())
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestNewInMemory(t *testing.T) {
	t.Setenv("DB_URL", "sqlite::memory:")
	t.Setenv("GROQ_API_KEY", "")
	t.Setenv("OLLAMA_ENABLED", "false")
	t.Setenv(common.ConfigFileEnv, "")
	cfg, err := common.LoadConfig("")
	require.NoError(t, err)

	a, err := New(context.Background(), cfg, testLogger())
	require.NoError(t, err)
	t.Cleanup(a.Close)

	ctx := context.Background()
	fields, att := a.Structurer.Structure(ctx, "Patient Name: Max\nSpecies: Dog\nBreed: Beagle")
	assert.Equal(t, "Max", fields.Get("pet_name"))
	assert.Equal(t, "rules", att.Strategy)

	list, err := a.Records.List(ctx, repository.ListFilter{Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, list)
}
