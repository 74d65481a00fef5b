package extract

import (
	"context"
	"time"

	"github.com/joseph-ayodele/vet-records/internal/core/ocr"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

// TextExtractor is Stage 1: document -> raw text.
type TextExtractor interface {
	Extract(ctx context.Context, doc *entity.Document) (*RawText, error)
}

// Recognizer is the OCR collaborator; *ocr.Engine satisfies it.
type Recognizer interface {
	Recognize(ctx context.Context, content []byte, contentType string) (ocr.Result, error)
}

// Extraction methods.
const (
	MethodPDFText  = "pdf-text"
	MethodPDFOCR   = "pdf-ocr"
	MethodImageOCR = "image-ocr"
)

// RawText is the text pulled out of one document. Text may be empty.
type RawText struct {
	Text     string
	Method   string // MethodPDFText | MethodPDFOCR | MethodImageOCR
	Pages    int
	Duration time.Duration
	Warnings []string
}
