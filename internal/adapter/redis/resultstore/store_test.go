package resultstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Warn(string, ...interface{})  {}

func newTestStore(t *testing.T) (*ResultStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewResultStore(client, time.Hour, nopLogger{}), mr
}

func TestPendingToCompletedPath(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	created := time.Now().Truncate(time.Second)

	require.NoError(t, store.MarkPending(ctx, "job-1", created))

	record, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusPending, record.Status)
	assert.Nil(t, record.Report)

	require.NoError(t, store.MarkRunning(ctx, "job-1"))

	report := &domain.JobReport{TotalTests: 2, PassedTests: 1}
	require.NoError(t, store.Complete(ctx, "job-1", report))

	record, err = store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, record.Status)
	require.NotNil(t, record.Report)
	assert.Equal(t, 1, record.Report.PassedTests)
	assert.NotNil(t, record.CompletedAt)
}

func TestCompleteIsWriteOnce(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkPending(ctx, "job-1", time.Now()))
	require.NoError(t, store.Complete(ctx, "job-1", &domain.JobReport{TotalTests: 3, PassedTests: 3}))

	// Redelivery must not clobber the stored report.
	require.NoError(t, store.Complete(ctx, "job-1", &domain.JobReport{TotalTests: 3, PassedTests: 0}))
	require.NoError(t, store.Fail(ctx, "job-1", "late infra failure"))

	record, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, record.Status)
	assert.Equal(t, 3, record.Report.PassedTests)
	assert.Empty(t, record.FailureReason)
}

func TestFailRecordsReason(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkPending(ctx, "job-1", time.Now()))
	require.NoError(t, store.Fail(ctx, "job-1", "sandbox failure on test case 1"))

	record, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusFailed, record.Status)
	assert.Equal(t, "sandbox failure on test case 1", record.FailureReason)
}

func TestMarkRunningIgnoredAfterTerminal(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkPending(ctx, "job-1", time.Now()))
	require.NoError(t, store.Complete(ctx, "job-1", &domain.JobReport{TotalTests: 1, PassedTests: 1}))
	require.NoError(t, store.MarkRunning(ctx, "job-1"))

	record, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, record.Status)
}

func TestGetUnknownJob(t *testing.T) {
	store, _ := newTestStore(t)

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, errs.JobNotFound)
}

func TestRecordsExpire(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.MarkPending(ctx, "job-1", time.Now()))
	mr.FastForward(2 * time.Hour)

	_, err := store.Get(ctx, "job-1")
	assert.ErrorIs(t, err, errs.JobNotFound)
}

func TestTerminalWriteAfterEvictionRecreatesRecord(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	// No MarkPending: simulates completion arriving after eviction.
	require.NoError(t, store.Complete(ctx, "job-1", &domain.JobReport{TotalTests: 1, PassedTests: 1}))

	record, err := store.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, domain.JobStatusCompleted, record.Status)
}
