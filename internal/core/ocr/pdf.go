package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

func (e *Engine) pdfToOCR(ctx context.Context, path string) (Result, error) {
	tmpDir, err := os.MkdirTemp("", "vr-pp-*")
	if err != nil {
		return Result{Method: "pdf-ocr"}, err
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			e.logger.Warn("ocr.tempdir.remove_failed", "path", tmpDir, "error", err)
		}
	}()

	prefix := filepath.Join(tmpDir, "page")
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, prefix)

	// pdftoppm -r 300 -png [-l N] <in.pdf> <tmp/page>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, e.logger, args...)
	if err != nil {
		return Result{Method: "pdf-ocr", Warnings: []string{string(errb)}}, fmt.Errorf("pdftoppm: %w", err)
	}

	// prefix-1.png, prefix-2.png, ... (zero padded when there are 10+ pages)
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{Method: "pdf-ocr", Warnings: []string{"pdftoppm produced no images"}}, fmt.Errorf("no pages rendered")
	}

	var (
		pages []string
		warns []string
	)
	for _, img := range matches {
		txt, w, err := e.tesseract(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		pages = append(pages, strings.TrimSpace(txt))
	}
	if len(pages) == 0 {
		return Result{Method: "pdf-ocr", Pages: len(matches), Warnings: warns}, fmt.Errorf("tesseract failed on all %d pages", len(matches))
	}
	return Result{
		Text:     strings.Join(pages, "\n"),
		Pages:    len(matches),
		Method:   "pdf-ocr",
		Warnings: warns,
	}, nil
}
