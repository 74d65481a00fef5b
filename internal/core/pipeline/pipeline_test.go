package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vet-records/internal/core/extract"
	"github.com/joseph-ayodele/vet-records/internal/core/structuring"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

type fakeExtractor struct {
	raw   *extract.RawText
	err   error
	calls int
}

func (f *fakeExtractor) Extract(context.Context, *entity.Document) (*extract.RawText, error) {
	f.calls++
	return f.raw, f.err
}

type fakeStructurer struct {
	got   []string
	calls int
}

func (f *fakeStructurer) Structure(_ context.Context, raw string) (entity.Fields, structuring.Attempt) {
	f.calls++
	f.got = append(f.got, raw)
	return entity.Fields{"pet_name": "Max"}, structuring.Attempt{Strategy: "rules", Fields: 1}
}

func TestRun(t *testing.T) {
	ex := &fakeExtractor{raw: &extract.RawText{Text: "Pet: Max", Method: extract.MethodPDFText, Pages: 1}}
	st := &fakeStructurer{}

	out, err := New(ex, st, nil).Run(context.Background(), entity.NewDocument("a.pdf", "application/pdf", []byte("x")))
	require.NoError(t, err)
	assert.Equal(t, "Pet: Max", out.Text())
	assert.Equal(t, entity.Fields{"pet_name": "Max"}, out.Fields)
	assert.Equal(t, "rules", out.Attempt.Strategy)
	assert.Equal(t, 1, ex.calls)
	assert.Equal(t, []string{"Pet: Max"}, st.got)
}

func TestRunEmptyTextStillStructures(t *testing.T) {
	ex := &fakeExtractor{raw: &extract.RawText{Method: extract.MethodImageOCR}}
	st := &fakeStructurer{}

	out, err := New(ex, st, nil).Run(context.Background(), entity.NewDocument("a.png", "image/png", []byte("x")))
	require.NoError(t, err)
	assert.Equal(t, "", out.Text())
	assert.Equal(t, 1, st.calls)
}

func TestRunNoDocument(t *testing.T) {
	st := &fakeStructurer{}
	out, err := New(&fakeExtractor{}, st, nil).Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, out.Raw)
	assert.Empty(t, out.Fields)
	assert.Equal(t, structuring.StrategyNone, out.Attempt.Strategy)
	assert.Zero(t, st.calls)
}

func TestRunExtractionError(t *testing.T) {
	ex := &fakeExtractor{err: &extract.ExtractionError{ContentType: "application/msword"}}
	st := &fakeStructurer{}

	_, err := New(ex, st, nil).Run(context.Background(), entity.NewDocument("a.doc", "application/msword", []byte("x")))
	var extErr *extract.ExtractionError
	require.True(t, errors.As(err, &extErr))
	assert.Equal(t, "unsupported file type: application/msword", err.Error())
	assert.Zero(t, st.calls)
}
