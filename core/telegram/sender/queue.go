// Package sender runs outbound Telegram API calls on a bounded worker pool
// with retries for transient failures.
package sender

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/m3rciful/taskbot/core/logger"
	"github.com/m3rciful/taskbot/core/metrics"
)

var (
	// ErrQueueClosed is returned when a job is submitted after Close.
	ErrQueueClosed = errors.New("telegram sender: queue closed")
	// ErrQueueFull indicates the queue is saturated and the job was not accepted.
	ErrQueueFull = errors.New("telegram sender: queue full")
)

// Options controls the behaviour of the outbound queue.
type Options struct {
	QueueSize    int
	Workers      int
	MaxRetries   int
	RetryBackoff time.Duration
	// MaxDuration bounds the time spent retrying a single job.
	MaxDuration time.Duration
}

func (o Options) withDefaults() Options {
	if o.QueueSize <= 0 {
		o.QueueSize = 256
	}
	if o.Workers <= 0 {
		o.Workers = 4
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = 500 * time.Millisecond
	}
	if o.MaxDuration <= 0 {
		o.MaxDuration = 12 * time.Second
	}
	return o
}

type job struct {
	ctx    context.Context
	action string
	run    func(ctx context.Context) error
	// done is nil for fire-and-forget jobs.
	done chan error
}

// Queue executes outbound calls on a fixed set of workers.
type Queue struct {
	opts Options
	jobs chan job

	mu     sync.RWMutex
	closed bool

	wg   sync.WaitGroup
	errs atomic.Uint64
}

// NewQueue starts the workers.
func NewQueue(opts Options) *Queue {
	opts = opts.withDefaults()
	q := &Queue{
		opts: opts,
		jobs: make(chan job, opts.QueueSize),
	}
	q.wg.Add(opts.Workers)
	for i := 0; i < opts.Workers; i++ {
		go q.worker()
	}
	return q
}

// Do runs the call on a worker and waits for its final result.
func (q *Queue) Do(ctx context.Context, action string, run func(ctx context.Context) error) error {
	done := make(chan error, 1)
	if err := q.submit(job{ctx: ctx, action: action, run: run, done: done}, true); err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Enqueue schedules the call without waiting. The run closure must be
// idempotent when retries are enabled.
func (q *Queue) Enqueue(ctx context.Context, action string, run func(ctx context.Context) error) error {
	return q.submit(job{ctx: context.WithoutCancel(ctx), action: action, run: run}, false)
}

func (q *Queue) submit(j job, wait bool) error {
	if j.run == nil {
		return errors.New("telegram sender: nil run function")
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	if wait {
		select {
		case q.jobs <- j:
			return nil
		case <-j.ctx.Done():
			return j.ctx.Err()
		}
	}
	select {
	case q.jobs <- j:
		return nil
	default:
		return ErrQueueFull
	}
}

// ErrorCount returns the number of jobs that failed after every retry.
func (q *Queue) ErrorCount() uint64 {
	return q.errs.Load()
}

// Close stops accepting jobs and waits for queued ones to finish.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.jobs)
	q.mu.Unlock()
	q.wg.Wait()
}

func (q *Queue) worker() {
	defer q.wg.Done()
	for j := range q.jobs {
		err := q.handle(j)
		if j.done != nil {
			j.done <- err
		}
	}
}

func (q *Queue) handle(j job) error {
	ctx := j.ctx
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, q.opts.MaxDuration)
	defer cancel()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = q.opts.RetryBackoff
	policy.MaxElapsedTime = q.opts.MaxDuration
	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(q.opts.MaxRetries)), ctx)

	start := time.Now()
	attempt := 0
	err := backoff.RetryNotify(func() error {
		attempt++
		err := j.run(ctx)
		if err != nil && !Transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b, func(err error, wait time.Duration) {
		logger.Debug(ctx, "tg.sender", "send.retry.backoff",
			append(sendLogAttrs(ctx, j),
				slog.Int("attempt", attempt),
				slog.Duration("delay", wait),
				slog.String("error", Sanitize(err)),
			)...,
		)
	})
	metrics.RecordOutbound(j.action, err)

	if err != nil {
		q.errs.Add(1)
		logger.Error(ctx, "tg.sender", "send.fail",
			append(sendLogAttrs(ctx, j),
				slog.String("error", Sanitize(err)),
				slog.String("error_kind", Classify(err)),
				slog.Int("attempts", attempt),
				slog.Duration("elapsed", time.Since(start)),
			)...,
		)
		return err
	}
	if attempt > 1 {
		logger.Info(ctx, "tg.sender", "send.retry.success",
			append(sendLogAttrs(ctx, j),
				slog.Int("attempt", attempt),
				slog.Duration("elapsed", time.Since(start)),
			)...,
		)
	}
	return nil
}

func sendLogAttrs(ctx context.Context, j job) []slog.Attr {
	attrs := []slog.Attr{slog.String("action", j.action)}
	if chatID := logger.ChatIDFrom(ctx); chatID != 0 {
		attrs = append(attrs, slog.Int64("chat_id", chatID))
	}
	return attrs
}
