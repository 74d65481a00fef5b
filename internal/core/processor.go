package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/vet-records/internal/common"
	"github.com/joseph-ayodele/vet-records/internal/core/extract"
	"github.com/joseph-ayodele/vet-records/internal/core/pipeline"
	"github.com/joseph-ayodele/vet-records/internal/entity"
	"github.com/joseph-ayodele/vet-records/internal/repository"
)

// DocumentRunner runs the extraction and structuring stages; *pipeline.Pipeline satisfies it.
type DocumentRunner interface {
	Run(ctx context.Context, doc *entity.Document) (pipeline.Output, error)
}

// Processor drives a stored record through the pipeline and its status machine.
type Processor struct {
	logger   *slog.Logger
	pipeline DocumentRunner
	records  repository.RecordRepository
}

func NewProcessor(logger *slog.Logger, runner DocumentRunner, records repository.RecordRepository) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		logger:   logger,
		pipeline: runner,
		records:  records,
	}
}

// ProcessRecord moves a pending record to processing, runs the pipeline on its
// document and stores the outcome. A record completes even when no field was
// found; it fails only on an unsupported format or an unexpected error.
func (p *Processor) ProcessRecord(ctx context.Context, id uuid.UUID) (*entity.MedicalRecord, error) {
	ctx = common.WithRecordID(ctx, id.String())
	logger := common.LoggerFrom(ctx, p.logger)

	if err := p.records.MarkProcessing(ctx, id); err != nil {
		logger.Error("processor.start.failed", "error", err)
		return nil, err
	}

	doc, err := p.records.Document(ctx, id)
	if err != nil {
		return p.fail(ctx, logger, id, fmt.Errorf("load document: %w", err))
	}

	out, err := p.run(ctx, doc)
	if err != nil {
		return p.fail(ctx, logger, id, err)
	}

	// The stages degrade on an expired ctx; their output is still stored.
	store := context.WithoutCancel(ctx)
	if err := p.records.Complete(store, id, out.Text(), out.Fields, out.Attempt.Strategy); err != nil {
		logger.Error("processor.complete.failed", "error", err)
		return p.fail(store, logger, id, fmt.Errorf("store result: %w", err))
	}
	logger.Info("processor.ok",
		"strategy", out.Attempt.Strategy,
		"fields", out.Fields.Count(),
		"skipped", len(out.Attempt.Skipped),
		"violations", len(out.Attempt.Violations),
		"ctx_err", ctx.Err(),
	)
	return p.records.Get(store, id)
}

func (p *Processor) run(ctx context.Context, doc *entity.Document) (out pipeline.Output, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panicked: %v", r)
		}
	}()
	return p.pipeline.Run(ctx, doc)
}

// fail records cause on the record even when ctx has already expired.
func (p *Processor) fail(ctx context.Context, logger *slog.Logger, id uuid.UUID, cause error) (*entity.MedicalRecord, error) {
	var extErr *extract.ExtractionError
	if errors.As(cause, &extErr) {
		logger.Warn("processor.unsupported", "content_type", extErr.ContentType)
	} else {
		logger.Error("processor.failed", "error", cause)
	}

	ctx = context.WithoutCancel(ctx)
	if err := p.records.Fail(ctx, id, cause.Error()); err != nil {
		logger.Error("processor.fail.persist_failed", "error", err)
		return nil, errors.Join(cause, err)
	}
	rec, err := p.records.Get(ctx, id)
	if err != nil {
		return nil, errors.Join(cause, err)
	}
	return rec, cause
}
