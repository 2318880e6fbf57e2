package worker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codearena.net/internal/adapter/memory"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

type fakeQueue struct {
	mu         sync.Mutex
	deliveries chan secondary.Delivery
	published  []*domain.Submission
}

func newFakeQueue() *fakeQueue {
	return &fakeQueue{deliveries: make(chan secondary.Delivery, 16)}
}

func (q *fakeQueue) Publish(ctx context.Context, sub *domain.Submission) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.published = append(q.published, sub)
	return nil
}

func (q *fakeQueue) Consume(ctx context.Context) (<-chan secondary.Delivery, error) {
	return q.deliveries, nil
}

func (q *fakeQueue) publishedJobs() []*domain.Submission {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]*domain.Submission(nil), q.published...)
}

type fakeGrader struct {
	report *domain.JobReport
	err    error
}

func (g *fakeGrader) GradeSubmission(ctx context.Context, sub *domain.Submission) (*domain.JobReport, error) {
	if g.err != nil {
		return nil, g.err
	}
	return g.report, nil
}

type deliveryProbe struct {
	acked  chan struct{}
	nacked chan bool
}

func makeDelivery(sub *domain.Submission) (secondary.Delivery, *deliveryProbe) {
	probe := &deliveryProbe{
		acked:  make(chan struct{}, 1),
		nacked: make(chan bool, 1),
	}
	return secondary.Delivery{
		Submission: sub,
		Ack: func() error {
			probe.acked <- struct{}{}
			return nil
		},
		Nack: func(requeue bool) error {
			probe.nacked <- requeue
			return nil
		},
	}, probe
}

func waitSignal[T any](t *testing.T, ch chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for queue signal")
		panic("unreachable")
	}
}

func testSubmission(retryCount int) *domain.Submission {
	return &domain.Submission{
		JobID:      "job-1",
		SourceCode: "def f():\n    return 1\n",
		Language:   domain.LanguagePython,
		TestCases:  []domain.TestCase{{Input: "", ExpectedOutput: "1"}},
		RetryCount: retryCount,
		CreatedAt:  time.Now(),
	}
}

func TestPoolCompletesJobAndAcks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := newFakeQueue()
	store := memory.NewResultStore(time.Hour)
	defer store.Close()
	report := &domain.JobReport{TotalTests: 1, PassedTests: 1, Results: []domain.TestResult{{Passed: true}}}
	pool := NewPool(queue, &fakeGrader{report: report}, store, nil, nopLogger{}, 2, 1)

	require.NoError(t, pool.Start(ctx))

	sub := testSubmission(0)
	require.NoError(t, store.MarkPending(ctx, sub.JobID, sub.CreatedAt))
	delivery, probe := makeDelivery(sub)
	queue.deliveries <- delivery

	waitSignal(t, probe.acked)

	record, err := store.Get(ctx, sub.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, record.Status)
	assert.Equal(t, 1, record.Report.PassedTests)
}

func TestPoolAllFailingReportIsQueueSuccess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := newFakeQueue()
	store := memory.NewResultStore(time.Hour)
	defer store.Close()
	report := &domain.JobReport{TotalTests: 2, PassedTests: 0, Results: []domain.TestResult{{}, {}}}
	pool := NewPool(queue, &fakeGrader{report: report}, store, nil, nopLogger{}, 1, 1)

	require.NoError(t, pool.Start(ctx))

	sub := testSubmission(0)
	delivery, probe := makeDelivery(sub)
	queue.deliveries <- delivery

	waitSignal(t, probe.acked)
	assert.Empty(t, queue.publishedJobs())

	record, err := store.Get(ctx, sub.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, record.Status)
}

func TestPoolRetriesInfraFailureOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := newFakeQueue()
	store := memory.NewResultStore(time.Hour)
	defer store.Close()
	pool := NewPool(queue, &fakeGrader{err: errors.New("sandbox failure")}, store, nil, nopLogger{}, 1, 1)

	require.NoError(t, pool.Start(ctx))

	sub := testSubmission(0)
	delivery, probe := makeDelivery(sub)
	queue.deliveries <- delivery

	// The original delivery is acked; a copy with an incremented retry
	// counter goes back on the queue.
	waitSignal(t, probe.acked)
	published := queue.publishedJobs()
	require.Len(t, published, 1)
	assert.Equal(t, 1, published[0].RetryCount)
	assert.Equal(t, sub.JobID, published[0].JobID)
}

func TestPoolQuarantinesAfterRetriesExhausted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := newFakeQueue()
	store := memory.NewResultStore(time.Hour)
	defer store.Close()
	pool := NewPool(queue, &fakeGrader{err: errors.New("sandbox failure")}, store, nil, nopLogger{}, 1, 1)

	require.NoError(t, pool.Start(ctx))

	sub := testSubmission(1) // already retried once
	require.NoError(t, store.MarkPending(ctx, sub.JobID, sub.CreatedAt))
	delivery, probe := makeDelivery(sub)
	queue.deliveries <- delivery

	requeue := waitSignal(t, probe.nacked)
	assert.False(t, requeue)
	assert.Empty(t, queue.publishedJobs())

	record, err := store.Get(ctx, sub.JobID)
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, record.Status)
	assert.Contains(t, record.FailureReason, "sandbox failure")
}

func TestPoolWaitReturnsAfterStreamCloses(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	queue := newFakeQueue()
	store := memory.NewResultStore(time.Hour)
	defer store.Close()
	pool := NewPool(queue, &fakeGrader{report: &domain.JobReport{}}, store, nil, nopLogger{}, 3, 1)

	require.NoError(t, pool.Start(ctx))
	close(queue.deliveries)

	done := make(chan struct{})
	go func() {
		pool.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop after delivery stream closed")
	}
}
