// Package rules extracts medical record fields from text with ordered,
// locale-tagged label patterns. It is deterministic and never fails.
package rules

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/vet-records/internal/core/textnorm"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

// Match records which pattern produced a field.
type Match struct {
	Field  string
	Locale string
	Mode   CaptureMode
}

var acceptors = func() map[string]func(string) (string, bool) {
	m := make(map[string]func(string) (string, bool), len(entity.FieldNames))
	for _, f := range entity.FieldNames {
		m[f] = accept(f)
	}
	return m
}()

// Extract normalizes raw and returns every field it can find. Empty input yields
// an empty, non-nil map.
func Extract(raw string) entity.Fields {
	out, _ := extract(raw)
	return out
}

func extract(raw string) (entity.Fields, []Match) {
	text := textnorm.Normalize(raw)
	out := entity.Fields{}
	if text == "" {
		return out, nil
	}
	var matches []Match
	for _, field := range entity.FieldNames {
		for _, p := range tables[field] {
			if v, ok := p.find(text, acceptors[field]); ok {
				out[field] = v
				matches = append(matches, Match{Field: field, Locale: p.Locale, Mode: p.Mode})
				break
			}
		}
	}
	return out.Compact(), matches
}

// Extractor wraps Extract with logging.
type Extractor struct {
	logger *slog.Logger
}

func NewExtractor(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

func (e *Extractor) Extract(ctx context.Context, raw string) entity.Fields {
	out, matches := extract(raw)
	locales := make(map[string]string, len(matches))
	for _, m := range matches {
		locales[m.Field] = m.Locale
	}
	e.logger.DebugContext(ctx, "rules.extract.ok",
		"fields", out.Count(),
		"input_chars", len(raw),
		"locales", locales,
	)
	return out
}
