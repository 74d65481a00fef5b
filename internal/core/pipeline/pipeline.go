// Package pipeline runs one document through text extraction and structuring.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/vet-records/internal/core/extract"
	"github.com/joseph-ayodele/vet-records/internal/core/structuring"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

// Structurer turns raw text into fields; *structuring.Orchestrator satisfies it.
type Structurer interface {
	Structure(ctx context.Context, raw string) (entity.Fields, structuring.Attempt)
}

// Output is the result of one run. Raw is nil when no document was given.
type Output struct {
	Raw     *extract.RawText
	Fields  entity.Fields
	Attempt structuring.Attempt
}

// Text returns the extracted text, or "" when nothing was extracted.
func (o Output) Text() string {
	if o.Raw == nil {
		return ""
	}
	return o.Raw.Text
}

type Pipeline struct {
	logger     *slog.Logger
	extractor  extract.TextExtractor
	structurer Structurer
}

func New(extractor extract.TextExtractor, structurer Structurer, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{logger: logger, extractor: extractor, structurer: structurer}
}

// Run is strictly sequential: extract once, then structure once. The only
// error it returns is the extractor's *extract.ExtractionError.
func (p *Pipeline) Run(ctx context.Context, doc *entity.Document) (Output, error) {
	start := time.Now()
	raw, err := p.extractor.Extract(ctx, doc)
	if err != nil {
		p.logger.Warn("pipeline.extract.failed", "error", err)
		return Output{}, err
	}
	if raw == nil {
		return Output{Fields: entity.Fields{}, Attempt: structuring.Attempt{Strategy: structuring.StrategyNone}}, nil
	}

	fields, att := p.structurer.Structure(ctx, raw.Text)
	p.logger.Info("pipeline.ok",
		"method", raw.Method,
		"pages", raw.Pages,
		"text_chars", len(raw.Text),
		"strategy", att.Strategy,
		"fields", att.Fields,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return Output{Raw: raw, Fields: fields, Attempt: att}, nil
}
