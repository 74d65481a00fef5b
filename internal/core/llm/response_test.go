package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vet-records/internal/entity"
)

func TestFindJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"prose around", "Here you go:\n{\"a\":\"b\"}\nThanks!", `{"a":"b"}`, true},
		{"nested", `x {"a":{"b":{"c":1}}} y`, `{"a":{"b":{"c":1}}}`, true},
		{"braces inside strings", `{"a":"}{","b":"\"}"}`, `{"a":"}{","b":"\"}"}`, true},
		{"invalid first candidate", `{not json} then {"a":1}`, `{"a":1}`, true},
		{"first of two", `{"a":1} {"b":2}`, `{"a":1}`, true},
		{"no object", "no json here", "", false},
		{"unbalanced", `{"a":1`, "", false},
		{"empty", "", "", false},
		{"code fence", "```json\n{\"pet_name\":\"Max\"}\n```", `{"pet_name":"Max"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FindJSONObject(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindJSONObjectTooDeep(t *testing.T) {
	deep := strings.Repeat(`{"a":`, maxJSONDepth+1) + "1" + strings.Repeat("}", maxJSONDepth+1)
	got, ok := FindJSONObject(deep)
	// the outer candidates are rejected; an inner one within the depth bound is accepted
	require.True(t, ok)
	assert.Less(t, len(got), len(deep))
}

func TestParseFields(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want entity.Fields
	}{
		{
			name: "plain",
			in:   `{"pet_name":"Max","species":"Dog","breed":"Beagle"}`,
			want: entity.Fields{"pet_name": "Max", "species": "Dog", "breed": "Beagle"},
		},
		{
			name: "wrapped in prose",
			in:   "Sure! Here is the JSON:\n{\"pet_name\": \"Luna\", \"species\": \"Cat\"}\nLet me know.",
			want: entity.Fields{"pet_name": "Luna", "species": "Cat"},
		},
		{
			name: "nested groups flattened one level",
			in:   `{"patient_info":{"pet_name":"Max","species":"Dog"},"owner_info":{"owner_name":"John Smith"},"diagnosis":"Otitis"}`,
			want: entity.Fields{"pet_name": "Max", "species": "Dog", "owner_name": "John Smith", "diagnosis": "Otitis"},
		},
		{
			name: "later keys override earlier",
			in:   `{"pet_name":"Max","patient":{"pet_name":"Maximus"}}`,
			want: entity.Fields{"pet_name": "Maximus"},
		},
		{
			name: "later null drops earlier value",
			in:   `{"patient":{"species":"Dog"},"species":null,"breed":"Pug"}`,
			want: entity.Fields{"breed": "Pug"},
		},
		{
			name: "null and empty dropped",
			in:   `{"pet_name":"Max","breed":null,"age":"","owner_name":"   "}`,
			want: entity.Fields{"pet_name": "Max"},
		},
		{
			name: "unknown keys dropped",
			in:   `{"pet_name":"Max","weight":"30kg","notes":"x"}`,
			want: entity.Fields{"pet_name": "Max"},
		},
		{
			name: "numbers and booleans stringified",
			in:   `{"age":5,"date":2024.50,"species":true}`,
			want: entity.Fields{"age": "5", "date": "2024.5", "species": "true"},
		},
		{
			name: "arrays and deeper objects dropped",
			in:   `{"treatment":["fluids","rest"],"a":{"diagnosis":{"primary":"x"}},"pet_name":"Max"}`,
			want: entity.Fields{"pet_name": "Max"},
		},
		{
			name: "values trimmed",
			in:   `{"pet_name":"  Max  "}`,
			want: entity.Fields{"pet_name": "Max"},
		},
		{name: "no json", in: "I could not parse this record.", want: entity.Fields{}},
		{name: "malformed json", in: `{"pet_name": "Max",}`, want: entity.Fields{}},
		{name: "top level array", in: `[{"pet_name":"Max"}]`, want: entity.Fields{"pet_name": "Max"}},
		{name: "empty", in: "", want: entity.Fields{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseFields(tt.in)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, ValidateFields(got))
		})
	}
}

func TestValidateFields(t *testing.T) {
	assert.NoError(t, ValidateFields(entity.Fields{}))
	assert.NoError(t, ValidateFields(entity.Fields{"pet_name": "Max", "date": "2024-01-01"}))
	assert.Error(t, ValidateFields(entity.Fields{"weight": "30kg"}))
	assert.Error(t, ValidateFields(entity.Fields{"pet_name": ""}))
}

func TestFieldsFromContent(t *testing.T) {
	tests := []struct {
		name       string
		in         string
		want       entity.Fields
		violations []string // substrings, one per expected entry
	}{
		{
			name: "clean reply",
			in:   `{"pet_name":"Max","species":"Dog","age":"3"}`,
			want: entity.Fields{"pet_name": "Max", "species": "Dog", "age": "3"},
		},
		{
			name:       "extra keys and a number",
			in:         `Here you go: {"pet_name":"Max","weight":"30kg","age":5}`,
			want:       entity.Fields{"pet_name": "Max", "age": "5"},
			violations: []string{"weight", "/age"},
		},
		{
			name:       "null and empty values",
			in:         `{"pet_name":"Max","breed":null,"diagnosis":""}`,
			want:       entity.Fields{"pet_name": "Max"},
			violations: []string{"/breed", "/diagnosis"},
		},
		{
			name:       "nested group flattened before the check",
			in:         `{"patient":{"pet_name":"Max","microchip":"985"}}`,
			want:       entity.Fields{"pet_name": "Max"},
			violations: []string{"microchip"},
		},
		{name: "no json", in: "nothing useful", want: entity.Fields{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, violations, err := FieldsFromContent(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NoError(t, ValidateFields(got))
			if len(tt.violations) == 0 {
				assert.Empty(t, violations)
				return
			}
			joined := strings.Join(violations, "\n")
			for _, v := range tt.violations {
				assert.Contains(t, joined, v)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("Patient Name: Max")
	assert.True(t, strings.HasPrefix(p, "Parse this veterinary medical record and return data in JSON format.\n\n"))
	assert.Contains(t, p, "Required fields: pet_name, species, breed, age, owner_name, diagnosis, treatment, veterinarian, date\n\n")
	assert.Contains(t, p, "Medical record:\nPatient Name: Max\n\nRespond with JSON only:")
}

func TestBuildPromptTruncates(t *testing.T) {
	long := strings.Repeat("é", MaxPromptChars) + "TAIL"
	p := BuildPrompt(long)
	assert.NotContains(t, p, "TAIL")
	assert.Contains(t, p, strings.Repeat("é", MaxPromptChars)+"\n\nRespond")
}

func TestTruncateChars(t *testing.T) {
	assert.Equal(t, "abc", TruncateChars("abc", 5))
	assert.Equal(t, "ab", TruncateChars("abc", 2))
	assert.Equal(t, "añ", TruncateChars("año", 2))
	assert.Equal(t, "", TruncateChars("abc", 0))
	assert.Equal(t, "abc", TruncateChars("abc", 3))
}
