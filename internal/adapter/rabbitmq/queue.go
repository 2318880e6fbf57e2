// Package rabbitmq implements the JobQueue interface on a durable
// RabbitMQ queue. The broker holds unacknowledged messages, so a worker
// crash between dequeue and ack redelivers the job instead of losing it.
package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"gitlab.com/codearena.net/internal/config"
	"gitlab.com/codearena.net/internal/core/ports/primary"
	"gitlab.com/codearena.net/internal/core/ports/secondary"
	"gitlab.com/codearena.net/internal/domain"
)

// Queue holds one connection with a dedicated publish channel; every
// Consume call opens its own channel so each worker gets an independent
// prefetch window of one job.
type Queue struct {
	conn      *amqp.Connection
	publishCh *amqp.Channel
	cfg       *config.RabbitMQConfig
	logger    primary.Logger
}

var _ secondary.JobQueue = (*Queue)(nil)

// Connect dials the broker and declares the durable execution queue.
func Connect(cfg *config.RabbitMQConfig, logger primary.Logger) (*Queue, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	publishCh, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := declareQueue(publishCh, cfg.QueueName); err != nil {
		conn.Close()
		return nil, err
	}

	logger.Info("RabbitMQ connected", "queue", cfg.QueueName)
	return &Queue{
		conn:      conn,
		publishCh: publishCh,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

func declareQueue(ch *amqp.Channel, name string) (amqp.Queue, error) {
	q, err := ch.QueueDeclare(
		name,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp.Queue{}, fmt.Errorf("failed to declare queue %q: %w", name, err)
	}
	return q, nil
}

// Close releases the broker connection.
func (q *Queue) Close() error {
	if err := q.publishCh.Close(); err != nil {
		q.logger.Warn("Failed to close publish channel", "error", err)
	}
	return q.conn.Close()
}

// Publish persistently enqueues one submission.
func (q *Queue) Publish(ctx context.Context, sub *domain.Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}

	err = q.publishCh.PublishWithContext(ctx,
		"",
		q.cfg.QueueName,
		false,
		false,
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish job %s: %w", sub.JobID, err)
	}

	q.logger.Debug("Published job", "jobId", sub.JobID)
	return nil
}

// Consume opens a delivery stream with prefetch 1, so a slow worker never
// hoards jobs it cannot yet start.
func (q *Queue) Consume(ctx context.Context) (<-chan secondary.Delivery, error) {
	ch, err := q.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open consumer channel: %w", err)
	}

	if err := ch.Qos(1, 0, false); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to set prefetch: %w", err)
	}

	msgs, err := ch.Consume(
		q.cfg.QueueName,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to start consuming: %w", err)
	}

	out := make(chan secondary.Delivery)
	go func() {
		defer close(out)
		defer ch.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				q.dispatch(ctx, msg, out)
			}
		}
	}()
	return out, nil
}

func (q *Queue) dispatch(ctx context.Context, msg amqp.Delivery, out chan<- secondary.Delivery) {
	var sub domain.Submission
	if err := json.Unmarshal(msg.Body, &sub); err != nil {
		// Malformed payload can never succeed: quarantine, don't loop.
		q.logger.Error("Dropping undecodable job payload", "error", err)
		if nackErr := msg.Nack(false, false); nackErr != nil {
			q.logger.Error("Failed to nack undecodable payload", "error", nackErr)
		}
		return
	}

	delivery := secondary.Delivery{
		Submission: &sub,
		Ack:        func() error { return msg.Ack(false) },
		Nack:       func(requeue bool) error { return msg.Nack(false, requeue) },
	}

	select {
	case out <- delivery:
	case <-ctx.Done():
		// Shutting down before handoff: return the job to the broker.
		if err := msg.Nack(false, true); err != nil {
			q.logger.Error("Failed to requeue job on shutdown", "jobId", sub.JobID, "error", err)
		}
	}
}
