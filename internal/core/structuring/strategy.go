package structuring

import (
	"context"

	"github.com/joseph-ayodele/vet-records/internal/core/llm"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

//go:generate mockgen -source=strategy.go -destination=strategy_mock.go -package=structuring

// Result is what a strategy returns for one attempt.
type Result = llm.Result

// Strategy is an optional, AI-backed way of structuring record text.
type Strategy interface {
	// Name identifies the strategy ("groq", "ollama").
	Name() string
	// Available reports whether the strategy can be called right now.
	Available(ctx context.Context) bool
	// Structure never panics on purpose; failures are reported through Result.Err.
	Structure(ctx context.Context, text string) Result
}

// Fallback is the deterministic extractor used when no strategy is sufficient.
type Fallback interface {
	Extract(ctx context.Context, raw string) entity.Fields
}
