// Package structuring turns raw record text into structured fields. AI-backed
// strategies are tried in priority order and trusted only when they return
// enough fields; otherwise the rule-based extractor decides.
package structuring

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/vet-records/internal/core/rules"
	"github.com/joseph-ayodele/vet-records/internal/core/textnorm"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

// DefaultMinFields is the number of non-empty fields an AI result needs to be used.
const DefaultMinFields = 3

// Strategy names recorded on an Attempt besides the AI backends.
const (
	StrategyRules = "rules"
	StrategyNone  = "none"
)

// Skip reasons.
const (
	ReasonUnavailable  = "unavailable"
	ReasonError        = "error"
	ReasonInsufficient = "insufficient"
	ReasonPanic        = "panic"
)

type Config struct {
	MinFields int // default DefaultMinFields
}

// Skip records why a strategy did not produce the final result.
type Skip struct {
	Strategy   string
	Reason     string
	Fields     int
	Violations []string
	Err        error
}

// Attempt describes how the final fields were produced.
type Attempt struct {
	Strategy   string // backend name, StrategyRules or StrategyNone
	Fields     int
	Violations []string // schema violations dropped from the chosen AI result
	Skipped    []Skip
	Duration   time.Duration
}

type Orchestrator struct {
	cfg        Config
	strategies []Strategy
	fallback   Fallback
	logger     *slog.Logger
}

// NewOrchestrator builds an orchestrator over strategies in priority order.
// A nil fallback uses the rule-based extractor.
func NewOrchestrator(cfg Config, fallback Fallback, logger *slog.Logger, strategies ...Strategy) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MinFields <= 0 {
		cfg.MinFields = DefaultMinFields
	}
	if fallback == nil {
		fallback = rules.NewExtractor(logger)
	}
	return &Orchestrator{cfg: cfg, strategies: strategies, fallback: fallback, logger: logger}
}

// Structure never fails. Blank text yields empty fields without consulting
// any strategy. Fields from different strategies are never merged.
func (o *Orchestrator) Structure(ctx context.Context, raw string) (entity.Fields, Attempt) {
	start := time.Now()
	text := textnorm.Normalize(raw)
	if text == "" {
		return entity.Fields{}, Attempt{Strategy: StrategyNone, Duration: time.Since(start)}
	}

	var att Attempt
	for _, s := range o.strategies {
		name := s.Name()
		if !o.available(ctx, s, name) {
			att.Skipped = append(att.Skipped, Skip{Strategy: name, Reason: ReasonUnavailable})
			o.logger.Debug("structuring.strategy.skipped", "strategy", name, "reason", ReasonUnavailable)
			continue
		}

		res, panicked := o.structure(ctx, s, name, text)
		fields := res.Fields.Compact()
		n := fields.Count()
		switch {
		case panicked:
			att.Skipped = append(att.Skipped, Skip{Strategy: name, Reason: ReasonPanic, Err: res.Err})
		case res.Err != nil:
			att.Skipped = append(att.Skipped, Skip{Strategy: name, Reason: ReasonError, Err: res.Err})
		case n < o.cfg.MinFields:
			att.Skipped = append(att.Skipped, Skip{Strategy: name, Reason: ReasonInsufficient, Fields: n, Violations: res.Violations})
		default:
			att.Strategy, att.Fields, att.Duration = name, n, time.Since(start)
			att.Violations = res.Violations
			o.logger.Info("structuring.strategy.ok",
				"strategy", name,
				"fields", n,
				"violations", len(res.Violations),
				"duration_ms", att.Duration.Milliseconds(),
			)
			return fields, att
		}
		last := att.Skipped[len(att.Skipped)-1]
		o.logger.Info("structuring.strategy.skipped",
			"strategy", name,
			"reason", last.Reason,
			"fields", n,
			"min_fields", o.cfg.MinFields,
			"error", last.Err,
		)
	}

	fields := o.fallback.Extract(ctx, text).Compact()
	att.Strategy, att.Fields, att.Duration = StrategyRules, fields.Count(), time.Since(start)
	o.logger.Info("structuring.fallback.rules",
		"fields", att.Fields,
		"skipped", len(att.Skipped),
		"duration_ms", att.Duration.Milliseconds(),
	)
	return fields, att
}

func (o *Orchestrator) available(ctx context.Context, s Strategy, name string) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("structuring.strategy.available_panic", "strategy", name, "panic", fmt.Sprint(r))
			ok = false
		}
	}()
	return s.Available(ctx)
}

func (o *Orchestrator) structure(ctx context.Context, s Strategy, name, text string) (res Result, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("structuring.strategy.panic", "strategy", name, "panic", fmt.Sprint(r))
			res, panicked = Result{Fields: entity.Fields{}, Err: fmt.Errorf("strategy %s panicked: %v", name, r)}, true
		}
	}()
	return s.Structure(ctx, text), false
}
