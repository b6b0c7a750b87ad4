package gojob

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	job "github.com/goliatone/go-job"
	"github.com/goliatone/go-job/queue"
)

const defaultMemoryQueueCapacity = 64

// DeadLetter is a message the queue gave up on.
type DeadLetter struct {
	Message     *job.ExecutionMessage
	Attempt     int
	Disposition queue.NackDisposition
	Reason      string
	FailedAt    time.Time
}

type envelope struct {
	msg     *job.ExecutionMessage
	attempt int
	receipt queue.EnqueueReceipt
}

// MemoryQueue is an in-process go-job queue for single instance deployments.
// A message whose execution id matches one still pending or in flight is not
// queued again; the receipt of the pending message is returned instead.
type MemoryQueue struct {
	ready chan envelope

	mu          sync.Mutex
	pending     map[string]queue.EnqueueReceipt
	deadLetters []DeadLetter
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	if capacity <= 0 {
		capacity = defaultMemoryQueueCapacity
	}
	return &MemoryQueue{
		ready:   make(chan envelope, capacity),
		pending: map[string]queue.EnqueueReceipt{},
	}
}

func (q *MemoryQueue) Enqueue(ctx context.Context, msg *job.ExecutionMessage) (queue.EnqueueReceipt, error) {
	return q.EnqueueAfter(ctx, msg, 0)
}

func (q *MemoryQueue) EnqueueAt(ctx context.Context, msg *job.ExecutionMessage, at time.Time) (queue.EnqueueReceipt, error) {
	return q.EnqueueAfter(ctx, msg, time.Until(at))
}

func (q *MemoryQueue) EnqueueAfter(ctx context.Context, msg *job.ExecutionMessage, delay time.Duration) (queue.EnqueueReceipt, error) {
	if q == nil {
		return queue.EnqueueReceipt{}, fmt.Errorf("gojob: memory queue is not configured")
	}
	if err := queue.ValidateRequiredMessage(msg); err != nil {
		return queue.EnqueueReceipt{}, err
	}
	receipt, duplicate := q.reserve(msg.ExecutionID)
	if duplicate {
		return receipt, nil
	}
	env := envelope{msg: msg, attempt: 1, receipt: receipt}
	if delay > 0 {
		time.AfterFunc(delay, func() { q.requeue(env) })
		return receipt, nil
	}
	if err := q.push(ctx, env); err != nil {
		q.release(msg.ExecutionID)
		return queue.EnqueueReceipt{}, err
	}
	return receipt, nil
}

// Dequeue blocks until a message is ready or ctx is done.
func (q *MemoryQueue) Dequeue(ctx context.Context) (queue.Delivery, error) {
	if q == nil {
		return nil, fmt.Errorf("gojob: memory queue is not configured")
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case env := <-q.ready:
		return &memoryDelivery{queue: q, env: env}, nil
	}
}

// Pending reports the number of messages waiting to be dequeued.
func (q *MemoryQueue) Pending() int {
	if q == nil {
		return 0
	}
	return len(q.ready)
}

func (q *MemoryQueue) DeadLetters() []DeadLetter {
	if q == nil {
		return nil
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]DeadLetter, len(q.deadLetters))
	copy(out, q.deadLetters)
	return out
}

func (q *MemoryQueue) reserve(key string) (queue.EnqueueReceipt, bool) {
	receipt := queue.EnqueueReceipt{DispatchID: uuid.NewString(), EnqueuedAt: time.Now().UTC()}
	key = strings.TrimSpace(key)
	if key == "" {
		return receipt, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if existing, ok := q.pending[key]; ok {
		return existing, true
	}
	q.pending[key] = receipt
	return receipt, false
}

func (q *MemoryQueue) release(key string) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	q.mu.Lock()
	delete(q.pending, key)
	q.mu.Unlock()
}

func (q *MemoryQueue) push(ctx context.Context, env envelope) error {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.ready <- env:
		return nil
	}
}

func (q *MemoryQueue) requeue(env envelope) {
	_ = q.push(context.Background(), env)
}

func (q *MemoryQueue) deadLetter(env envelope, opts queue.NackOptions) {
	q.mu.Lock()
	q.deadLetters = append(q.deadLetters, DeadLetter{
		Message:     env.msg,
		Attempt:     env.attempt,
		Disposition: opts.Disposition,
		Reason:      strings.TrimSpace(opts.Reason),
		FailedAt:    time.Now().UTC(),
	})
	q.mu.Unlock()
}

type memoryDelivery struct {
	queue *MemoryQueue
	env   envelope

	mu      sync.Mutex
	settled bool
}

func (d *memoryDelivery) Message() *job.ExecutionMessage {
	return d.env.msg
}

// Attempts is 1 for the first delivery of a message.
func (d *memoryDelivery) Attempts() int {
	return d.env.attempt
}

func (d *memoryDelivery) Ack(context.Context) error {
	if err := d.settle(); err != nil {
		return err
	}
	d.queue.release(d.env.msg.ExecutionID)
	return nil
}

func (d *memoryDelivery) Nack(_ context.Context, opts queue.NackOptions) error {
	if err := queue.ValidateNackOptions(opts); err != nil {
		return err
	}
	if err := d.settle(); err != nil {
		return err
	}
	switch opts.Disposition {
	case queue.NackDispositionRetry:
		next := d.env
		next.attempt++
		if opts.Delay <= 0 {
			go d.queue.requeue(next)
			return nil
		}
		time.AfterFunc(opts.Delay, func() { d.queue.requeue(next) })
	case queue.NackDispositionCanceled:
		d.queue.release(d.env.msg.ExecutionID)
	default:
		d.queue.release(d.env.msg.ExecutionID)
		d.queue.deadLetter(d.env, opts)
	}
	return nil
}

func (d *memoryDelivery) settle() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.settled {
		return fmt.Errorf("gojob: delivery already settled")
	}
	d.settled = true
	return nil
}

var (
	_ queue.ScheduledEnqueuer = (*MemoryQueue)(nil)
	_ queue.Dequeuer          = (*MemoryQueue)(nil)
	_ queue.Delivery          = (*memoryDelivery)(nil)
)
