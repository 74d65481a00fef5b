package extract

import "fmt"

// ExtractionError is returned when a document's format has no extractor.
// It is the only error that fails a pipeline run.
type ExtractionError struct {
	ContentType string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("unsupported file type: %s", e.ContentType)
}
