package entity

import (
	"fmt"

	"github.com/joseph-ayodele/vet-records/constants"
)

// Document is an uploaded file as handed to the pipeline. It is never mutated.
type Document struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Content     []byte `json:"-"`
}

// NewDocument builds a Document, taking Size from the content length.
func NewDocument(filename, contentType string, content []byte) *Document {
	return &Document{
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(content)),
		Content:     content,
	}
}

// ValidateDocument checks a document against the upload rules: an accepted
// content type, non-empty content and at most maxSize bytes (0 means
// constants.MaxDocumentSize).
func ValidateDocument(d *Document, maxSize int64) error {
	if d == nil {
		return fmt.Errorf("document is required")
	}
	if maxSize <= 0 {
		maxSize = constants.MaxDocumentSize
	}
	ct := constants.NormalizeContentType(d.ContentType)
	if _, ok := constants.AcceptedContentTypes[ct]; !ok {
		return fmt.Errorf("document must be a PDF, image (PNG/JPG/WEBP), or Word document, got %q", d.ContentType)
	}
	if len(d.Content) == 0 {
		return fmt.Errorf("document is empty")
	}
	if d.Size > maxSize || int64(len(d.Content)) > maxSize {
		return fmt.Errorf("document size must be less than %d bytes", maxSize)
	}
	return nil
}
