// Package app wires configuration into the record pipeline and its storage.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/joseph-ayodele/vet-records/internal/common"
	"github.com/joseph-ayodele/vet-records/internal/core"
	"github.com/joseph-ayodele/vet-records/internal/core/extract"
	"github.com/joseph-ayodele/vet-records/internal/core/llm/groq"
	"github.com/joseph-ayodele/vet-records/internal/core/llm/ollama"
	"github.com/joseph-ayodele/vet-records/internal/core/ocr"
	"github.com/joseph-ayodele/vet-records/internal/core/pipeline"
	"github.com/joseph-ayodele/vet-records/internal/core/rules"
	"github.com/joseph-ayodele/vet-records/internal/core/structuring"
	"github.com/joseph-ayodele/vet-records/internal/export"
	"github.com/joseph-ayodele/vet-records/internal/ingest"
	"github.com/joseph-ayodele/vet-records/internal/repository"
)

// App holds the long-lived components shared by the daemon and the CLI.
type App struct {
	DB         *repository.DB
	Records    repository.RecordRepository
	Extractor  *extract.Extractor
	Structurer *structuring.Orchestrator
	Pipeline   *pipeline.Pipeline
	Processor  *core.Processor
	Ingestor   *ingest.FSIngestor
	Exporter   *export.Service

	logger *slog.Logger
}

// NewPipeline builds the storage-free part: extraction and structuring.
func NewPipeline(cfg *common.Config, logger *slog.Logger) (*extract.Extractor, *structuring.Orchestrator, *pipeline.Pipeline) {
	engine := ocr.NewEngine(ocr.Config{
		Pdftoppm:    cfg.OCR.Pdftoppm,
		Tesseract:   cfg.OCR.Tesseract,
		Lang:        cfg.OCR.Lang,
		TessdataDir: cfg.OCR.TessdataDir,
		DPI:         cfg.OCR.DPI,
		MaxPages:    cfg.OCR.MaxPages,
		Timeout:     cfg.OCR.Timeout,
	}, ocr.ExecRunner{}, logger)
	extractor := extract.NewExtractor(engine, extract.ReadPDFText, logger)

	orch := structuring.NewOrchestrator(
		structuring.Config{MinFields: cfg.Structuring.MinFields},
		rules.NewExtractor(logger),
		logger,
		strategies(cfg, logger)...,
	)
	return extractor, orch, pipeline.New(extractor, orch, logger)
}

// strategies returns the AI backends in priority order: Groq, then Ollama.
func strategies(cfg *common.Config, logger *slog.Logger) []structuring.Strategy {
	var out []structuring.Strategy
	gc := groq.Config{
		Enabled: cfg.Groq.Enabled,
		APIKey:  cfg.Groq.APIKey,
		URL:     cfg.Groq.URL,
		Model:   cfg.Groq.Model,
		Timeout: cfg.Groq.Timeout,
	}
	if gc.Available() {
		out = append(out, groq.NewClient(gc, logger))
		logger.Info("structuring.backend.enabled", "strategy", groq.Name, "model", cfg.Groq.Model)
	} else {
		logger.Warn("structuring.backend.disabled", "strategy", groq.Name)
	}

	oc := ollama.Config{
		Enabled:      cfg.Ollama.Enabled,
		URL:          cfg.Ollama.URL,
		Model:        cfg.Ollama.Model,
		Timeout:      cfg.Ollama.Timeout,
		ProbeTimeout: cfg.Ollama.ProbeTimeout,
	}
	if oc.Configured() {
		out = append(out, ollama.NewClient(oc, logger))
		logger.Info("structuring.backend.enabled", "strategy", ollama.Name, "url", cfg.Ollama.URL)
	}
	return out
}

// New opens and migrates the database and wires every component on top of it.
func New(ctx context.Context, cfg *common.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := repository.Open(ctx, repository.Config{
		DSN:              cfg.Database.DSN,
		MaxConns:         cfg.Database.MaxConns,
		MinConns:         cfg.Database.MinConns,
		MaxConnLifetime:  cfg.Database.MaxConnLifetime,
		MaxConnIdleTime:  cfg.Database.MaxConnIdleTime,
		DialTimeout:      cfg.Database.DialTimeout,
		StatementTimeout: cfg.Database.StatementTimeout,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := repository.Migrate(ctx, db.Driver, logger); err != nil {
		db.Close(logger)
		return nil, fmt.Errorf("migrate: %w", err)
	}

	records := repository.NewRecordRepository(db.Driver, logger)
	extractor, orch, pipe := NewPipeline(cfg, logger)

	return &App{
		DB:         db,
		Records:    records,
		Extractor:  extractor,
		Structurer: orch,
		Pipeline:   pipe,
		Processor:  core.NewProcessor(logger, pipe, records),
		Ingestor:   ingest.NewFSIngestor(records, cfg.Ingest.MaxDocumentSize, logger),
		Exporter:   export.NewService(records, logger),
		logger:     logger,
	}, nil
}

func (a *App) Close() {
	a.DB.Close(a.logger)
}
