package entity

import "strings"

// Field names produced by the structuring pipeline. No other keys are ever emitted.
const (
	FieldPetName      = "pet_name"
	FieldSpecies      = "species"
	FieldBreed        = "breed"
	FieldAge          = "age"
	FieldOwnerName    = "owner_name"
	FieldDiagnosis    = "diagnosis"
	FieldTreatment    = "treatment"
	FieldVeterinarian = "veterinarian"
	FieldDate         = "date"
)

// FieldNames is the closed, ordered set of structured fields.
var FieldNames = []string{
	FieldPetName,
	FieldSpecies,
	FieldBreed,
	FieldAge,
	FieldOwnerName,
	FieldDiagnosis,
	FieldTreatment,
	FieldVeterinarian,
	FieldDate,
}

var fieldSet = func() map[string]struct{} {
	m := make(map[string]struct{}, len(FieldNames))
	for _, f := range FieldNames {
		m[f] = struct{}{}
	}
	return m
}()

// IsField reports whether name is one of FieldNames.
func IsField(name string) bool {
	_, ok := fieldSet[name]
	return ok
}

// Fields is structured record data: field name -> trimmed, non-empty value.
type Fields map[string]string

// Compact returns a copy holding only known fields with non-blank values, trimmed.
func (f Fields) Compact() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		if !IsField(k) {
			continue
		}
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// Count returns the number of non-blank values.
func (f Fields) Count() int {
	n := 0
	for _, v := range f {
		if strings.TrimSpace(v) != "" {
			n++
		}
	}
	return n
}

// Get returns the value for name or "".
func (f Fields) Get(name string) string {
	if f == nil {
		return ""
	}
	return f[name]
}
