// Package memory provides the in-process ResultStore used for
// single-instance deployments and tests. Horizontally-scaled worker pools
// use the Redis-backed store instead.
package memory

import (
	"context"
	"sync"
	"time"

	"gitlab.com/codearena.net/internal/domain"
	"gitlab.com/codearena.net/internal/static/errs"
)

// ResultStore keeps job records in a mutex-guarded map with TTL eviction.
type ResultStore struct {
	mu       sync.RWMutex
	records  map[string]*entry
	ttl      time.Duration
	stopOnce sync.Once
	stop     chan struct{}
}

type entry struct {
	record   domain.JobRecord
	expireAt time.Time
}

// NewResultStore creates a store whose entries are evicted ttl after their
// last status transition. The janitor goroutine runs until Close.
func NewResultStore(ttl time.Duration) *ResultStore {
	s := &ResultStore{
		records: make(map[string]*entry),
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Close stops the eviction janitor.
func (s *ResultStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}

func (s *ResultStore) MarkPending(ctx context.Context, jobID string, createdAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[jobID] = &entry{
		record: domain.JobRecord{
			JobID:     jobID,
			Status:    domain.JobStatusPending,
			CreatedAt: createdAt,
		},
		expireAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *ResultStore) MarkRunning(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.records[jobID]
	if !ok || e.record.Status.IsTerminal() {
		return nil
	}
	e.record.Status = domain.JobStatusRunning
	return nil
}

func (s *ResultStore) Complete(ctx context.Context, jobID string, report *domain.JobReport) error {
	return s.terminal(jobID, domain.JobStatusCompleted, report, "")
}

func (s *ResultStore) Fail(ctx context.Context, jobID string, reason string) error {
	return s.terminal(jobID, domain.JobStatusFailed, nil, reason)
}

// terminal applies the write-once invariant: a job already completed or
// failed keeps its first terminal record.
func (s *ResultStore) terminal(jobID string, status domain.JobStatus, report *domain.JobReport, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.records[jobID]
	if !ok {
		// Redelivered after eviction: recreate so the transition is
		// still observable rather than silently dropped.
		e = &entry{record: domain.JobRecord{JobID: jobID, CreatedAt: time.Now()}}
		s.records[jobID] = e
	}
	if e.record.Status.IsTerminal() {
		return nil
	}

	now := time.Now()
	e.record.Status = status
	e.record.Report = report
	e.record.FailureReason = reason
	e.record.CompletedAt = &now
	e.expireAt = now.Add(s.ttl)
	return nil
}

func (s *ResultStore) Get(ctx context.Context, jobID string) (*domain.JobRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.records[jobID]
	if !ok {
		return nil, errs.JobNotFound
	}
	record := e.record
	return &record, nil
}

func (s *ResultStore) janitor() {
	interval := s.ttl / 4
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case now := <-ticker.C:
			s.mu.Lock()
			for id, e := range s.records {
				if now.After(e.expireAt) {
					delete(s.records, id)
				}
			}
			s.mu.Unlock()
		}
	}
}
