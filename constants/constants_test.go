package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordStatusTransitions(t *testing.T) {
	tests := []struct {
		from, to RecordStatus
		ok       bool
	}{
		{RecordStatusPending, RecordStatusProcessing, true},
		{RecordStatusPending, RecordStatusFailed, true},
		{RecordStatusPending, RecordStatusCompleted, false},
		{RecordStatusProcessing, RecordStatusCompleted, true},
		{RecordStatusProcessing, RecordStatusFailed, true},
		{RecordStatusProcessing, RecordStatusPending, false},
		{RecordStatusCompleted, RecordStatusFailed, false},
		{RecordStatusFailed, RecordStatusProcessing, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.ok, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestParseRecordStatus(t *testing.T) {
	st, ok := ParseRecordStatus("completed")
	assert.True(t, ok)
	assert.Equal(t, RecordStatusCompleted, st)
	assert.True(t, st.Terminal())

	_, ok = ParseRecordStatus("archived")
	assert.False(t, ok)
}

func TestContentTypes(t *testing.T) {
	assert.Equal(t, ContentTypeJPEG, ContentTypeForExt(".JPG"))
	assert.Equal(t, "", ContentTypeForExt("txt"))
	assert.Equal(t, "application/pdf", NormalizeContentType(" Application/PDF; charset=binary"))
	assert.Equal(t, IMAGE, FormatForContentType(ContentTypeWEBP))
	assert.Equal(t, WORD, FormatForContentType(ContentTypeDOC))
	assert.Equal(t, ".jpg", ExtForContentType(ContentTypeJPG))
	assert.Equal(t, "", ExtForContentType(ContentTypeDOCX))
}
