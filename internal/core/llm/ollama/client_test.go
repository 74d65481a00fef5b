package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vet-records/internal/core/llm"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

func TestConfig(t *testing.T) {
	c := Config{Enabled: true, URL: "http://host:11434/"}
	assert.True(t, c.Configured())
	assert.Equal(t, "http://host:11434/api/tags", c.TagsURL())
	assert.Equal(t, "http://host:11434/api/generate", c.GenerateURL())

	assert.False(t, Config{Enabled: false, URL: "http://x"}.Configured())
	assert.False(t, Config{Enabled: true}.Configured())
}

func TestAvailable(t *testing.T) {
	var probes atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		probes.Add(1)
		_, _ = w.Write([]byte(`{"models":[{"name":"tinyllama"}]}`))
	}))
	defer srv.Close()

	assert.True(t, NewClient(Config{Enabled: true, URL: srv.URL}, nil).Available(context.Background()))
	assert.EqualValues(t, 1, probes.Load())

	assert.False(t, NewClient(Config{Enabled: false, URL: srv.URL}, nil).Available(context.Background()))
	assert.EqualValues(t, 1, probes.Load(), "disabled backend must not probe")
}

func TestAvailableProbeFailures(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	downURL := down.URL
	down.Close()

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	broken := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer broken.Close()

	for name, url := range map[string]string{"refused": downURL, "slow": slow.URL, "500": broken.URL} {
		t.Run(name, func(t *testing.T) {
			c := NewClient(Config{Enabled: true, URL: url, ProbeTimeout: 50 * time.Millisecond}, nil)
			assert.False(t, c.Available(context.Background()))
		})
	}
}

func TestStructure(t *testing.T) {
	var req generateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		b, _ := json.Marshal(map[string]any{
			"model":    "tinyllama",
			"response": "```json\n{\"pet_name\": \"Luna\", \"owner_info\": {\"owner_name\": \"Ana\"}, \"date\": null}\n```",
			"done":     true,
		})
		_, _ = w.Write(b)
	}))
	defer srv.Close()

	c := NewClient(Config{Enabled: true, URL: srv.URL}, nil)
	assert.Equal(t, "ollama", c.Name())

	res := c.Structure(context.Background(), "Pet: Luna")
	require.NoError(t, res.Err)
	assert.Equal(t, entity.Fields{"pet_name": "Luna", "owner_name": "Ana"}, res.Fields)
	require.Len(t, res.Violations, 1)
	assert.Contains(t, res.Violations[0], "/date")

	assert.Equal(t, DefaultModel, req.Model)
	assert.False(t, req.Stream)
	assert.Equal(t, llm.BuildPrompt("Pet: Luna"), req.Prompt)
	assert.InDelta(t, 0.1, req.Options.Temperature, 1e-9)
	assert.InDelta(t, 0.9, req.Options.TopP, 1e-9)
	assert.Equal(t, 200, req.Options.NumPredict)
	assert.Equal(t, 1024, req.Options.NumCtx)
}

func TestStructureFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	res := NewClient(Config{Enabled: true, URL: srv.URL}, nil).Structure(context.Background(), "x")
	assert.ErrorIs(t, res.Err, llm.ErrMalformedResponse)

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()

	res = NewClient(Config{Enabled: true, URL: slow.URL, Timeout: 50 * time.Millisecond}, nil).Structure(context.Background(), "x")
	assert.ErrorIs(t, res.Err, llm.ErrRequestFailed)
}
