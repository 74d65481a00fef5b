package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/vet-records/constants"
	"github.com/joseph-ayodele/vet-records/internal/entity"
)

type fakeProcessor struct {
	mu       sync.Mutex
	seen     []uuid.UUID
	inflight atomic.Int32
	peak     atomic.Int32
	delay    time.Duration
	err      error
	panicOn  uuid.UUID
	deadline bool
}

func (f *fakeProcessor) ProcessRecord(ctx context.Context, id uuid.UUID) (*entity.MedicalRecord, error) {
	n := f.inflight.Add(1)
	defer f.inflight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if _, ok := ctx.Deadline(); ok {
		f.mu.Lock()
		f.deadline = true
		f.mu.Unlock()
	}
	if id == f.panicOn {
		panic("boom")
	}
	time.Sleep(f.delay)

	f.mu.Lock()
	f.seen = append(f.seen, id)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return &entity.MedicalRecord{ID: id, Status: constants.RecordStatusCompleted}, nil
}

func (f *fakeProcessor) processed() []uuid.UUID {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]uuid.UUID(nil), f.seen...)
}

func TestQueueProcessesAllJobs(t *testing.T) {
	proc := &fakeProcessor{delay: 5 * time.Millisecond}
	q := NewProcessorQueue(proc, nil, WithWorkers(3), WithQueueSize(2), WithProcessTimeout(time.Second))

	var want []uuid.UUID
	for i := 0; i < 10; i++ {
		id := uuid.New()
		want = append(want, id)
		require.NoError(t, q.Enqueue(context.Background(), Job{RecordID: id}))
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	q.Shutdown(ctx)

	assert.ElementsMatch(t, want, proc.processed())
	assert.LessOrEqual(t, proc.peak.Load(), int32(3))
	assert.True(t, proc.deadline, "jobs run under a timeout")
}

func TestQueueSurvivesFailuresAndPanics(t *testing.T) {
	bad := uuid.New()
	proc := &fakeProcessor{panicOn: bad}
	q := NewProcessorQueue(proc, nil, WithWorkers(1))

	good := uuid.New()
	require.NoError(t, q.Enqueue(context.Background(), Job{RecordID: bad}))
	require.NoError(t, q.Enqueue(context.Background(), Job{RecordID: good}))
	q.Shutdown(context.Background())

	assert.Equal(t, []uuid.UUID{good}, proc.processed())

	proc2 := &fakeProcessor{err: errors.New("unsupported file type: text/plain")}
	q2 := NewProcessorQueue(proc2, nil)
	require.NoError(t, q2.Enqueue(context.Background(), Job{RecordID: good}))
	q2.Shutdown(context.Background())
	assert.Len(t, proc2.processed(), 1)
}

func TestEnqueueAfterShutdown(t *testing.T) {
	q := NewProcessorQueue(&fakeProcessor{}, nil)
	q.Shutdown(context.Background())
	q.Shutdown(context.Background())

	err := q.Enqueue(context.Background(), Job{RecordID: uuid.New()})
	assert.ErrorIs(t, err, ErrQueueClosed)
}

func TestEnqueueFullRespectsContext(t *testing.T) {
	proc := &fakeProcessor{delay: 200 * time.Millisecond}
	q := NewProcessorQueue(proc, nil, WithWorkers(1), WithQueueSize(1))
	defer q.Shutdown(context.Background())

	require.NoError(t, q.Enqueue(context.Background(), Job{RecordID: uuid.New()}))
	require.Eventually(t, func() bool { return proc.inflight.Load() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), Job{RecordID: uuid.New()}))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, Job{RecordID: uuid.New()})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
