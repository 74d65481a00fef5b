package ocr

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
)

var reBoxNoise = regexp.MustCompile(`(?m)^\s*[_\-=]{3,}\s*$`)

func (e *Engine) imageOCR(ctx context.Context, path string) (Result, error) {
	txt, warn, err := e.tesseract(ctx, path)
	if err != nil {
		return Result{Method: "image-ocr", Warnings: warn}, err
	}
	return Result{
		Text:     txt,
		Pages:    1,
		Method:   "image-ocr",
		Warnings: warn,
	}, nil
}

// tesseract <file> stdout -l <lang> [--psm N] [--tessdata-dir D]
func (e *Engine) tesseract(ctx context.Context, path string) (string, []string, error) {
	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.logger, args...)
	if err != nil {
		return "", []string{string(errb)}, fmt.Errorf("tesseract: %w", err)
	}

	txt := reBoxNoise.ReplaceAllString(string(out), "")
	return txt, nil, nil
}
