package llm

import "github.com/joseph-ayodele/vet-records/internal/entity"

// Result is the outcome of one structuring attempt. Err is set on failure;
// Fields may still be empty on success. Violations lists what the reply
// carried beyond the schema and was dropped from Fields.
type Result struct {
	Fields     entity.Fields
	Violations []string
	Err        error
}

// Failed builds a failed Result.
func Failed(err error) Result {
	return Result{Fields: entity.Fields{}, Err: err}
}
