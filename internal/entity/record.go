package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/vet-records/constants"
)

// MedicalRecord represents a stored record for data transfer between layers.
type MedicalRecord struct {
	ID             uuid.UUID              `json:"id"`
	Filename       string                 `json:"filename"`
	SourcePath     string                 `json:"source_path,omitempty"`
	ContentType    string                 `json:"content_type"`
	ByteSize       int64                  `json:"byte_size"`
	ContentHash    string                 `json:"content_hash,omitempty"`
	Status         constants.RecordStatus `json:"status"`
	RawText        *string                `json:"raw_text,omitempty"`
	StructuredData Fields                 `json:"structured_data,omitempty"`
	Strategy       string                 `json:"strategy,omitempty"`
	ErrorMessage   *string                `json:"error_message,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// Processed reports whether the record reached a terminal status.
func (r *MedicalRecord) Processed() bool {
	return r.Status.Terminal()
}

// HasStructuredData reports whether at least one field was extracted.
func (r *MedicalRecord) HasStructuredData() bool {
	return r.StructuredData.Count() > 0
}
