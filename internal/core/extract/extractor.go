// Package extract converts uploaded documents into raw text, reading the PDF
// text layer when there is one and falling back to OCR otherwise.
package extract

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/joseph-ayodele/vet-records/constants"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

type Extractor struct {
	ocr     Recognizer
	pdfText PDFTextFunc
	logger  *slog.Logger
}

// NewExtractor wires the OCR collaborator. A nil pdfText uses ReadPDFText.
func NewExtractor(ocr Recognizer, pdfText PDFTextFunc, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if pdfText == nil {
		pdfText = ReadPDFText
	}
	return &Extractor{ocr: ocr, pdfText: pdfText, logger: logger}
}

// Extract returns (nil, nil) when doc is nil. For PDFs and images it always
// returns a RawText, possibly with empty Text when OCR fails. Any other type
// yields *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, doc *entity.Document) (*RawText, error) {
	if doc == nil {
		return nil, nil
	}
	start := time.Now()
	ct := constants.NormalizeContentType(doc.ContentType)

	var out *RawText
	switch constants.FormatForContentType(ct) {
	case constants.PDF:
		out = e.extractPDF(ctx, doc, ct)
	case constants.IMAGE:
		out = e.runOCR(ctx, doc, ct, MethodImageOCR)
	default:
		e.logger.Warn("extract.unsupported", "filename", doc.Filename, "content_type", doc.ContentType)
		return nil, &ExtractionError{ContentType: doc.ContentType}
	}
	out.Duration = time.Since(start)

	e.logger.Info("extract.ok",
		"filename", doc.Filename,
		"content_type", ct,
		"method", out.Method,
		"pages", out.Pages,
		"chars", len(out.Text),
		"duration_ms", out.Duration.Milliseconds(),
	)
	return out, nil
}

func (e *Extractor) extractPDF(ctx context.Context, doc *entity.Document, ct string) *RawText {
	text, pages, err := e.pdfText(doc.Content)
	if err != nil {
		e.logger.Warn("extract.pdf.text_layer_failed", "filename", doc.Filename, "error", err)
	}
	if err == nil && text != "" {
		return &RawText{Text: text, Method: MethodPDFText, Pages: pages}
	}
	e.logger.Debug("extract.pdf.fallback_ocr", "filename", doc.Filename, "pages", pages)
	return e.runOCR(ctx, doc, ct, MethodPDFOCR)
}

func (e *Extractor) runOCR(ctx context.Context, doc *entity.Document, ct, method string) *RawText {
	if e.ocr == nil {
		e.logger.Warn("extract.ocr.unavailable", "filename", doc.Filename)
		return &RawText{Method: method}
	}
	res, err := e.ocr.Recognize(ctx, doc.Content, ct)
	if err != nil {
		e.logger.Warn("extract.ocr.failed", "filename", doc.Filename, "method", method, "error", err)
		return &RawText{Method: method, Pages: res.Pages, Warnings: res.Warnings}
	}
	return &RawText{Text: strings.TrimSpace(res.Text), Method: method, Pages: res.Pages, Warnings: res.Warnings}
}
