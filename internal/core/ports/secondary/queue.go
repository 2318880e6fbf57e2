package secondary

import (
	"context"

	"gitlab.com/codearena.net/internal/domain"
)

// Delivery is one job handed to a worker. The worker exclusively owns the
// job until it calls exactly one of Ack or Nack.
type Delivery struct {
	Submission *domain.Submission
	Ack        func() error
	// Nack returns the job to the broker. With requeue=false the broker
	// drops it, so callers must have written a terminal state first.
	Nack func(requeue bool) error
}

// JobQueue is the durable, at-least-once FIFO channel between intake and
// the worker pool.
type JobQueue interface {
	// Publish persistently enqueues one submission.
	Publish(ctx context.Context, sub *domain.Submission) error

	// Consume opens a delivery stream with at most one unacknowledged job
	// in flight per stream. The channel closes when ctx is cancelled or
	// the broker connection is lost.
	Consume(ctx context.Context) (<-chan Delivery, error)
}
