package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/vet-records/constants"
	"github.com/joseph-ayodele/vet-records/internal/entity"
	"github.com/joseph-ayodele/vet-records/internal/repository"
)

// RecordStore is the part of the record store ingestion writes to.
type RecordStore interface {
	Create(ctx context.Context, doc *entity.Document, sourcePath string) (*entity.MedicalRecord, error)
	FindByHash(ctx context.Context, hash string) (*entity.MedicalRecord, error)
}

// FSIngestor reads from the local filesystem.
type FSIngestor struct {
	records RecordStore
	maxSize int64
	logger  *slog.Logger
}

// NewFSIngestor builds an ingestor; maxSize 0 means constants.MaxDocumentSize.
func NewFSIngestor(records RecordStore, maxSize int64, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	if maxSize <= 0 {
		maxSize = constants.MaxDocumentSize
	}
	return &FSIngestor{records: records, maxSize: maxSize, logger: logger}
}

// IngestPath stores one file as a pending record. Identical content already
// on record is reported as Deduplicated instead of being stored twice.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	out := IngestionResult{SourcePath: path}

	abs, err := filepath.Abs(path)
	if err != nil {
		return out, fmt.Errorf("abs path: %w", err)
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		return out, fmt.Errorf("unsupported or missing extension: %q", ext)
	}

	st, err := os.Stat(abs)
	if err != nil {
		return out, err
	}
	if st.Size() > i.maxSize {
		return out, fmt.Errorf("file is %d bytes, limit is %d", st.Size(), i.maxSize)
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return out, fmt.Errorf("read: %w", err)
	}

	doc := entity.NewDocument(filepath.Base(abs), DetectContentType(abs, content), content)
	if err := entity.ValidateDocument(doc, i.maxSize); err != nil {
		return out, err
	}
	out.ContentType, out.Size = doc.ContentType, doc.Size

	if existing, err := i.records.FindByHash(ctx, repository.ContentHash(content)); err == nil {
		out.RecordID, out.Deduplicated, out.Status = existing.ID, true, existing.Status
		i.logger.Info("ingest.deduplicated", "path", abs, "record_id", existing.ID, "status", existing.Status)
		return out, nil
	} else if !repository.IsNotFound(err) {
		return out, err
	}

	rec, err := i.records.Create(ctx, doc, abs)
	if err != nil {
		return out, err
	}
	out.RecordID, out.Status = rec.ID, rec.Status
	i.logger.Info("ingest.ok", "path", abs, "record_id", rec.ID, "content_type", doc.ContentType, "bytes", doc.Size)
	return out, nil
}

// IngestDirectory walks root, skips hidden if requested,
// and calls IngestPath for each file. Returns per-file results + aggregate stats.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root path is required")
	}

	var results []IngestionResult
	var stats DirStats

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, IngestionResult{SourcePath: path, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !AllowedExt(filepath.Ext(path)) {
			return nil
		}
		stats.Matched++

		r, err := i.IngestPath(ctx, path)
		if err != nil {
			i.logger.Warn("ingest.failed", "path", path, "error", err)
			r.Err = err.Error()
			results = append(results, r)
			stats.Failed++
			return nil
		}
		results = append(results, r)
		stats.Succeeded++
		if r.Deduplicated {
			stats.Deduplicated++
		}
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}
	i.logger.Info("ingest.directory.ok",
		"root", root,
		"scanned", stats.Scanned,
		"matched", stats.Matched,
		"succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated,
		"failed", stats.Failed,
	)
	return results, stats, nil
}
