// Package ocr turns scanned documents into text with tesseract, rasterising
// PDFs with pdftoppm first.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joseph-ayodele/vet-records/constants"
)

// Config holds binaries and tuning for the OCR tools.
type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	Lang        string // default "eng+spa+fra+por+ita"
	TessdataDir string
	DPI         int // rasterization DPI for scanned PDFs, default 300
	MaxPages    int // 0 = no limit
	PSM         int // e.g., 6 is good for uniform block of text

	Timeout time.Duration // whole-document budget, default 90s
}

// DefaultLang covers the five record languages.
const DefaultLang = "eng+spa+fra+por+ita"

// Result is the text recognised in one document.
type Result struct {
	Text     string
	Pages    int
	Method   string // "pdf-ocr" | "image-ocr"
	Duration time.Duration
	Warnings []string
}

// Engine runs OCR over document bytes.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = DefaultLang
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	return &Engine{cfg: cfg, runner: runner, logger: logger}
}

// Recognize writes content to a temp file and OCRs it according to contentType.
// The temp file is always removed.
func (e *Engine) Recognize(ctx context.Context, content []byte, contentType string) (Result, error) {
	start := time.Now()
	format := constants.FormatForContentType(contentType)
	if format != constants.PDF && format != constants.IMAGE {
		return Result{}, fmt.Errorf("ocr: unsupported content type %q", contentType)
	}

	ctx, cancel := context.WithTimeout(ctx, e.cfg.Timeout)
	defer cancel()

	f, err := os.CreateTemp("", "vr-ocr-*"+constants.ExtForContentType(contentType))
	if err != nil {
		return Result{}, fmt.Errorf("ocr: temp file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			e.logger.Warn("ocr.tempfile.remove_failed", "path", path, "error", err)
		}
	}()
	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return Result{}, fmt.Errorf("ocr: write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return Result{}, fmt.Errorf("ocr: close temp file: %w", err)
	}

	var res Result
	if format == constants.PDF {
		res, err = e.pdfToOCR(ctx, path)
	} else {
		res, err = e.imageOCR(ctx, path)
	}
	res.Duration = time.Since(start)
	if err != nil {
		e.logger.Warn("ocr.failed", "content_type", contentType, "duration_ms", res.Duration.Milliseconds(), "error", err)
		return res, err
	}
	e.logger.Info("ocr.ok",
		"content_type", contentType,
		"method", res.Method,
		"pages", res.Pages,
		"chars", len(res.Text),
		"duration_ms", res.Duration.Milliseconds(),
	)
	return res, nil
}
