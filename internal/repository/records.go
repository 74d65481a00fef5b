package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/vet-records/constants"
	"github.com/joseph-ayodele/vet-records/internal/common"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

// Fixed-width UTC timestamps keep created_at ordering correct as text on every backend.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DefaultListLimit caps List when no limit is given.
const DefaultListLimit = 100

// fieldColumns maps structured fields onto their denormalised columns.
var fieldColumns = map[string]string{
	entity.FieldPetName:      "pet_name",
	entity.FieldSpecies:      "species",
	entity.FieldBreed:        "breed",
	entity.FieldAge:          "age",
	entity.FieldOwnerName:    "owner_name",
	entity.FieldDiagnosis:    "diagnosis",
	entity.FieldTreatment:    "treatment",
	entity.FieldVeterinarian: "veterinarian",
	entity.FieldDate:         "visit_date",
}

var recordColumns = []string{
	"id", "filename", "source_path", "content_type", "byte_size", "content_hash", "status",
	"raw_text", "structured_data", "strategy", "error_message", "created_at", "updated_at",
}

// ListFilter narrows List. A nil Status matches every record.
type ListFilter struct {
	Status *constants.RecordStatus
	Limit  int
}

type RecordRepository interface {
	Create(ctx context.Context, doc *entity.Document, sourcePath string) (*entity.MedicalRecord, error)
	Get(ctx context.Context, id uuid.UUID) (*entity.MedicalRecord, error)
	Document(ctx context.Context, id uuid.UUID) (*entity.Document, error)
	FindByHash(ctx context.Context, hash string) (*entity.MedicalRecord, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.MedicalRecord, error)
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	Complete(ctx context.Context, id uuid.UUID, rawText string, fields entity.Fields, strategy string) error
	Fail(ctx context.Context, id uuid.UUID, message string) error
}

type recordRepository struct {
	drv    *entsql.Driver
	logger *slog.Logger
	now    func() time.Time
}

func NewRecordRepository(drv *entsql.Driver, logger *slog.Logger) RecordRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &recordRepository{
		drv:    drv,
		logger: logger,
		now:    time.Now,
	}
}

func (r *recordRepository) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.drv.Dialect())
}

func (r *recordRepository) timestamp() string {
	return r.now().UTC().Format(timeLayout)
}

func (r *recordRepository) Create(ctx context.Context, doc *entity.Document, sourcePath string) (*entity.MedicalRecord, error) {
	if doc == nil {
		return nil, common.NewAppError(common.CodeInvalidInput, "document is required", common.ErrInvalidInput)
	}
	id := uuid.New()
	ts := r.timestamp()
	q, args := r.builder().Insert(recordsTable).
		Columns("id", "filename", "source_path", "content_type", "byte_size", "content", "content_hash", "status", "created_at", "updated_at").
		Values(id.String(), doc.Filename, sourcePath, doc.ContentType, doc.Size, doc.Content, ContentHash(doc.Content),
			string(constants.RecordStatusPending), ts, ts).
		Query()
	if err := r.drv.Exec(ctx, q, args, nil); err != nil {
		r.logger.Error("failed to create medical record", "filename", doc.Filename, "error", err)
		return nil, fmt.Errorf("%w: create record: %w", common.ErrDatabase, err)
	}
	r.logger.Debug("medical record created", "record_id", id, "filename", doc.Filename, "bytes", doc.Size)
	return r.Get(ctx, id)
}

func (r *recordRepository) Get(ctx context.Context, id uuid.UUID) (*entity.MedicalRecord, error) {
	b := r.builder()
	q, args := b.Select(recordColumns...).
		From(b.Table(recordsTable)).
		Where(entsql.EQ("id", id.String())).
		Query()
	recs, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to get medical record", "record_id", id, "error", err)
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	return recs[0], nil
}

// FindByHash returns the oldest record whose content has the given SHA-256 hex digest.
func (r *recordRepository) FindByHash(ctx context.Context, hash string) (*entity.MedicalRecord, error) {
	b := r.builder()
	q, args := b.Select(recordColumns...).
		From(b.Table(recordsTable)).
		Where(entsql.EQ("content_hash", hash)).
		OrderBy("created_at").
		Limit(1).
		Query()
	recs, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to find medical record by hash", "hash", hash, "error", err)
		return nil, err
	}
	if len(recs) == 0 {
		return nil, fmt.Errorf("record with hash %s: %w", hash, common.ErrNotFound)
	}
	return recs[0], nil
}

// Document loads the stored upload for a record.
func (r *recordRepository) Document(ctx context.Context, id uuid.UUID) (*entity.Document, error) {
	b := r.builder()
	q, args := b.Select("filename", "content_type", "content").
		From(b.Table(recordsTable)).
		Where(entsql.EQ("id", id.String())).
		Query()
	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: load document: %w", common.ErrDatabase, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: load document: %w", common.ErrDatabase, err)
		}
		return nil, fmt.Errorf("record %s: %w", id, common.ErrNotFound)
	}
	var (
		filename, contentType string
		content               []byte
	)
	if err := rows.Scan(&filename, &contentType, &content); err != nil {
		return nil, fmt.Errorf("%w: scan document: %w", common.ErrDatabase, err)
	}
	return entity.NewDocument(filename, contentType, content), nil
}

// List returns records newest first.
func (r *recordRepository) List(ctx context.Context, filter ListFilter) ([]*entity.MedicalRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	b := r.builder()
	sel := b.Select(recordColumns...).From(b.Table(recordsTable))
	if filter.Status != nil {
		sel = sel.Where(entsql.EQ("status", string(*filter.Status)))
	}
	q, args := sel.OrderBy(entsql.Desc("created_at"), entsql.Desc("id")).Limit(limit).Query()
	recs, err := r.query(ctx, q, args)
	if err != nil {
		r.logger.Error("failed to list medical records", "error", err)
		return nil, err
	}
	return recs, nil
}

func (r *recordRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	upd := r.builder().Update(recordsTable).
		Set("status", string(constants.RecordStatusProcessing)).
		Set("updated_at", r.timestamp())
	return r.transition(ctx, id, constants.RecordStatusProcessing, upd, constants.RecordStatusPending)
}

// Complete stores the pipeline output. Empty fields are a valid completion.
func (r *recordRepository) Complete(ctx context.Context, id uuid.UUID, rawText string, fields entity.Fields, strategy string) error {
	fields = fields.Compact()
	data, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("marshal structured data: %w", err)
	}
	upd := r.builder().Update(recordsTable).
		Set("status", string(constants.RecordStatusCompleted)).
		Set("raw_text", rawText).
		Set("structured_data", string(data)).
		Set("strategy", strategy).
		SetNull("error_message").
		Set("updated_at", r.timestamp())
	for _, name := range entity.FieldNames {
		if v, ok := fields[name]; ok {
			upd = upd.Set(fieldColumns[name], v)
		} else {
			upd = upd.SetNull(fieldColumns[name])
		}
	}
	return r.transition(ctx, id, constants.RecordStatusCompleted, upd, constants.RecordStatusProcessing)
}

func (r *recordRepository) Fail(ctx context.Context, id uuid.UUID, message string) error {
	upd := r.builder().Update(recordsTable).
		Set("status", string(constants.RecordStatusFailed)).
		Set("error_message", message).
		Set("updated_at", r.timestamp())
	return r.transition(ctx, id, constants.RecordStatusFailed, upd, constants.RecordStatusPending, constants.RecordStatusProcessing)
}

// transition applies upd only while the record is in one of from.
func (r *recordRepository) transition(ctx context.Context, id uuid.UUID, to constants.RecordStatus, upd *entsql.UpdateBuilder, from ...constants.RecordStatus) error {
	allowed := make([]any, len(from))
	for i, st := range from {
		allowed[i] = string(st)
	}
	q, args := upd.Where(entsql.And(entsql.EQ("id", id.String()), entsql.In("status", allowed...))).Query()

	var res sql.Result
	if err := r.drv.Exec(ctx, q, args, &res); err != nil {
		r.logger.Error("failed to update medical record", "record_id", id, "to", to, "error", err)
		return fmt.Errorf("%w: update record: %w", common.ErrDatabase, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %w", common.ErrDatabase, err)
	}
	if n > 0 {
		r.logger.Debug("medical record status changed", "record_id", id, "to", to)
		return nil
	}

	cur, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	r.logger.Warn("rejected status transition", "record_id", id, "from", cur.Status, "to", to)
	return fmt.Errorf("%w: %s -> %s", common.ErrInvalidTransition, cur.Status, to)
}

func (r *recordRepository) query(ctx context.Context, q string, args []any) ([]*entity.MedicalRecord, error) {
	var rows entsql.Rows
	if err := r.drv.Query(ctx, q, args, &rows); err != nil {
		return nil, fmt.Errorf("%w: query records: %w", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*entity.MedicalRecord
	for rows.Next() {
		rec, err := scanRecord(&rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate records: %w", common.ErrDatabase, err)
	}
	return out, nil
}

func scanRecord(rows *entsql.Rows) (*entity.MedicalRecord, error) {
	var (
		id, filename, sourcePath, contentType, hash, status, createdAt, updatedAt string
		byteSize                                                                  int64
		rawText, structured, strategy, errMsg                                     sql.NullString
	)
	if err := rows.Scan(&id, &filename, &sourcePath, &contentType, &byteSize, &hash, &status,
		&rawText, &structured, &strategy, &errMsg, &createdAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("%w: scan record: %w", common.ErrDatabase, err)
	}

	rec := &entity.MedicalRecord{
		Filename:    filename,
		SourcePath:  sourcePath,
		ContentType: contentType,
		ByteSize:    byteSize,
		ContentHash: hash,
		Status:      constants.RecordStatus(status),
		Strategy:    strategy.String,
	}
	var err error
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse record id %q: %w", id, err)
	}
	if rawText.Valid {
		rec.RawText = &rawText.String
	}
	if errMsg.Valid {
		rec.ErrorMessage = &errMsg.String
	}
	if structured.Valid && structured.String != "" {
		if err := json.Unmarshal([]byte(structured.String), &rec.StructuredData); err != nil {
			return nil, fmt.Errorf("decode structured data for %s: %w", id, err)
		}
	}
	if rec.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	return rec, nil
}

// ContentHash is the SHA-256 hex digest used to deduplicate uploads.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrNotFound)
}
