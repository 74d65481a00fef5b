package extract

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"
)

// PDFTextFunc reads the embedded text layer of a PDF.
type PDFTextFunc func(content []byte) (text string, pages int, err error)

// ReadPDFText returns the text of every page joined with newlines and trimmed.
// Panics from the parser are reported as errors.
func ReadPDFText(content []byte) (text string, pages int, err error) {
	defer func() {
		if r := recover(); r != nil {
			text, pages, err = "", 0, fmt.Errorf("pdf: malformed document: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", 0, fmt.Errorf("pdf: open: %w", err)
	}

	n := r.NumPage()
	parts := make([]string, 0, n)
	for i := 1; i <= n; i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			return "", n, fmt.Errorf("pdf: page %d: %w", i, err)
		}
		parts = append(parts, txt)
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), n, nil
}
