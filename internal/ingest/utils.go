package ingest

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/joseph-ayodele/vet-records/constants"
)

// AllowedExt checks if a file extension is picked up by ingestion.
func AllowedExt(ext string) bool {
	ext = constants.NormalizeExt(ext)
	_, ok := constants.AllowedExtensions[ext]
	return ok
}

// IsHidden checks if a file or directory is hidden (starts with '.').
func IsHidden(path string) bool {
	base := filepath.Base(path)
	return strings.HasPrefix(base, ".")
}

// DetectContentType sniffs content, trusting the extension when the sniffed
// type is not one the pipeline accepts (e.g. a truncated scan).
func DetectContentType(path string, content []byte) string {
	sniffed := constants.NormalizeContentType(mimetype.Detect(content).String())
	if _, ok := constants.AcceptedContentTypes[sniffed]; ok {
		return sniffed
	}
	return constants.ContentTypeForExt(filepath.Ext(path))
}
