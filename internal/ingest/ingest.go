package ingest

import (
	"context"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/vet-records/constants"
)

// IngestionResult is the per-file ingest outcome. Status is the record's
// status at ingest time, the existing record's for a duplicate.
type IngestionResult struct {
	SourcePath   string
	RecordID     uuid.UUID
	ContentType  string
	Size         int64
	Deduplicated bool
	Status       constants.RecordStatus
	Err          string
}

// Pending reports whether the record still waits for processing. A duplicate
// of a record that never got queued is pending too.
func (r IngestionResult) Pending() bool {
	return r.Err == "" && r.Status == constants.RecordStatusPending
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// Ingestor turns files on disk into pending medical records.
type Ingestor interface {
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, root string, skipHidden bool) ([]IngestionResult, DirStats, error)
}
