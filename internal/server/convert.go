package server

import (
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/vet-records/internal/entity"
)

func stringField(s *structpb.Struct, key string) string {
	return s.GetFields()[key].GetStringValue()
}

func boolField(s *structpb.Struct, key string) bool {
	return s.GetFields()[key].GetBoolValue()
}

func fieldsValue(f entity.Fields) map[string]any {
	out := make(map[string]any, len(f))
	for k, v := range f.Compact() {
		out[k] = v
	}
	return out
}

func recordMap(r *entity.MedicalRecord, includeText bool) (map[string]any, error) {
	m := map[string]any{
		"id":              r.ID.String(),
		"filename":        r.Filename,
		"content_type":    r.ContentType,
		"byte_size":       float64(r.ByteSize),
		"status":          string(r.Status),
		"strategy":        r.Strategy,
		"structured_data": fieldsValue(r.StructuredData),
		"created_at":      r.CreatedAt.UTC().Format(time.RFC3339Nano),
		"updated_at":      r.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
	if r.SourcePath != "" {
		m["source_path"] = r.SourcePath
	}
	if r.ErrorMessage != nil {
		m["error_message"] = *r.ErrorMessage
	}
	if includeText && r.RawText != nil {
		m["raw_text"] = *r.RawText
	}
	return m, nil
}

func recordStruct(r *entity.MedicalRecord, includeText bool) (*structpb.Struct, error) {
	m, err := recordMap(r, includeText)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(m)
}
