package server

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/vet-records/constants"
	"github.com/joseph-ayodele/vet-records/internal/common"
	"github.com/joseph-ayodele/vet-records/internal/core/async"
	"github.com/joseph-ayodele/vet-records/internal/core/pipeline"
	"github.com/joseph-ayodele/vet-records/internal/entity"
	"github.com/joseph-ayodele/vet-records/internal/export"
	"github.com/joseph-ayodele/vet-records/internal/ingest"
	"github.com/joseph-ayodele/vet-records/internal/repository"
)

// maxTextChars bounds StructureText input.
const maxTextChars = 200_000

// Deps are the collaborators of RecordsService. Queue and Ingestor are optional.
type Deps struct {
	Structurer      pipeline.Structurer
	Records         repository.RecordRepository
	Processor       async.RecordProcessor
	Queue           async.Queue
	Exporter        *export.Service
	Ingestor        ingest.Ingestor
	MaxDocumentSize int64
}

type RecordsService struct {
	deps   Deps
	logger *slog.Logger
}

var _ RecordsServer = (*RecordsService)(nil)

func NewRecordsService(deps Deps, logger *slog.Logger) *RecordsService {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.MaxDocumentSize <= 0 {
		deps.MaxDocumentSize = constants.MaxDocumentSize
	}
	return &RecordsService{deps: deps, logger: logger}
}

// StructureText runs the structuring stage on caller-supplied text.
// Request: {"text": string}. Response: {"fields", "strategy", "skipped", "violations"}.
func (s *RecordsService) StructureText(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	text := stringField(req, "text")
	v := common.NewValidator().Field("text", text, common.MaxLength(maxTextChars))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}

	fields, att := s.deps.Structurer.Structure(ctx, text)
	skipped := make([]any, 0, len(att.Skipped))
	for _, sk := range att.Skipped {
		skipped = append(skipped, map[string]any{"strategy": sk.Strategy, "reason": sk.Reason})
	}
	violations := make([]any, 0, len(att.Violations))
	for _, v := range att.Violations {
		violations = append(violations, v)
	}
	return structpb.NewStruct(map[string]any{
		"fields":     fieldsValue(fields),
		"strategy":   att.Strategy,
		"skipped":    skipped,
		"violations": violations,
	})
}

// SubmitDocument stores an upload as a pending record and queues it.
// Request: {"filename", "content_type", "content" (base64), "wait" (bool)}.
// With wait, or without a queue, the record is processed before returning.
func (s *RecordsService) SubmitDocument(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filename := strings.TrimSpace(stringField(req, "filename"))
	v := common.NewValidator().Field("filename", filename, common.Required, common.MaxLength(255))
	if err := common.ValidateAndReturnError(v); err != nil {
		return nil, err
	}
	content, err := base64.StdEncoding.DecodeString(stringField(req, "content"))
	if err != nil {
		return nil, common.InvalidArgumentError("content must be base64")
	}
	ct := stringField(req, "content_type")
	if ct == "" {
		ct = ingest.DetectContentType(filename, content)
	}

	doc := entity.NewDocument(filename, ct, content)
	if err := entity.ValidateDocument(doc, s.deps.MaxDocumentSize); err != nil {
		s.logger.Warn("server.submit.invalid", "filename", filename, "error", err)
		return nil, common.InvalidArgumentError(err.Error())
	}

	rec, err := s.deps.Records.Create(ctx, doc, "")
	if err != nil {
		return nil, common.ToStatus(err, "create record")
	}
	s.logger.Info("server.submit.ok", "record_id", rec.ID, "filename", filename, "bytes", doc.Size)

	rec, err = s.dispatch(ctx, rec, boolField(req, "wait"))
	if err != nil {
		return nil, err
	}
	return recordStruct(rec, false)
}

// IngestPath ingests a file already on the server's filesystem.
// Request: {"path": string}. Response: {"record", "deduplicated"}.
func (s *RecordsService) IngestPath(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.deps.Ingestor == nil {
		return nil, common.FailedPreconditionError("filesystem ingest is not enabled")
	}
	path := strings.TrimSpace(stringField(req, "path"))
	if err := common.ValidateAndReturnError(common.NewValidator().Field("path", path, common.Required)); err != nil {
		return nil, err
	}

	res, err := s.deps.Ingestor.IngestPath(ctx, path)
	if err != nil {
		s.logger.Warn("server.ingest.failed", "path", path, "error", err)
		return nil, common.InvalidArgumentErrorf("ingest: %v", err)
	}
	rec, err := s.deps.Records.Get(ctx, res.RecordID)
	if err != nil {
		return nil, common.ToStatus(err, "load record")
	}
	if rec.Status == constants.RecordStatusPending {
		if rec, err = s.dispatch(ctx, rec, boolField(req, "wait")); err != nil {
			return nil, err
		}
	}
	recVal, err := recordMap(rec, false)
	if err != nil {
		return nil, common.InternalErrorf("encode record: %v", err)
	}
	return structpb.NewStruct(map[string]any{"record": recVal, "deduplicated": res.Deduplicated})
}

// GetRecord request: {"id": uuid, "include_text": bool}.
func (s *RecordsService) GetRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw := strings.TrimSpace(stringField(req, "id"))
	if err := common.ValidateAndReturnError(common.NewValidator().Field("id", raw, common.Required, common.UUID)); err != nil {
		return nil, err
	}
	rec, err := s.deps.Records.Get(ctx, uuid.MustParse(raw))
	if err != nil {
		return nil, common.ToStatus(err, "record not found")
	}
	return recordStruct(rec, boolField(req, "include_text"))
}

// ListRecords request: {"status": string, "limit": number}. Newest first.
func (s *RecordsService) ListRecords(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	filter, err := listFilter(req)
	if err != nil {
		return nil, err
	}
	recs, err := s.deps.Records.List(ctx, filter)
	if err != nil {
		s.logger.Error("server.list.failed", "error", err)
		return nil, common.ToStatus(err, "list records")
	}
	out := make([]any, 0, len(recs))
	for _, r := range recs {
		m, err := recordMap(r, false)
		if err != nil {
			return nil, common.InternalErrorf("encode record: %v", err)
		}
		out = append(out, m)
	}
	return structpb.NewStruct(map[string]any{"records": out})
}

// ExportRecords returns an XLSX workbook. Request: {"status", "limit"}.
func (s *RecordsService) ExportRecords(ctx context.Context, req *structpb.Struct) (*wrapperspb.BytesValue, error) {
	if s.deps.Exporter == nil {
		return nil, common.FailedPreconditionError("export is not enabled")
	}
	filter, err := listFilter(req)
	if err != nil {
		return nil, err
	}
	xlsx, err := s.deps.Exporter.ExportRecordsXLSX(ctx, filter)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "error", err)
		return nil, common.InternalError(err.Error())
	}
	return wrapperspb.Bytes(xlsx), nil
}

// dispatch queues rec, or processes it inline when wait is set or no queue is wired.
func (s *RecordsService) dispatch(ctx context.Context, rec *entity.MedicalRecord, wait bool) (*entity.MedicalRecord, error) {
	if !wait && s.deps.Queue != nil {
		job := async.Job{RecordID: rec.ID, SubmittedAt: time.Now(), TraceID: common.RequestIDFromContext(ctx)}
		if err := s.deps.Queue.Enqueue(ctx, job); err != nil {
			if errors.Is(err, async.ErrQueueClosed) {
				return nil, common.FailedPreconditionError("server is shutting down")
			}
			return nil, common.InternalErrorf("enqueue: %v", err)
		}
		return rec, nil
	}
	if s.deps.Processor == nil {
		return rec, nil
	}
	done, err := s.deps.Processor.ProcessRecord(ctx, rec.ID)
	if done != nil {
		// A failed record is a valid answer; the reason is on the record.
		return done, nil
	}
	return nil, common.ToStatus(err, "process record")
}

func listFilter(req *structpb.Struct) (repository.ListFilter, error) {
	var f repository.ListFilter
	if raw := strings.TrimSpace(stringField(req, "status")); raw != "" {
		st, ok := constants.ParseRecordStatus(raw)
		if !ok {
			return f, common.InvalidArgumentErrorf("unknown status %q", raw)
		}
		f.Status = &st
	}
	if v, ok := req.GetFields()["limit"]; ok {
		n := v.GetNumberValue()
		if n < 0 || n > 10_000 {
			return f, common.InvalidArgumentError("limit must be between 0 and 10000")
		}
		f.Limit = int(n)
	}
	return f, nil
}
