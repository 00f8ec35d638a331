package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sagarc03/assetgate"
)

// ErrClosed is returned by Record after Close.
var ErrClosed = errors.New("audit dispatcher closed")

// DefaultBuffer is the queue length used when NewAsync is given a size < 1.
const DefaultBuffer = 1024

// DefaultRecordTimeout bounds a single delivery to the wrapped sink unless
// WithRecordTimeout overrides it.
const DefaultRecordTimeout = 5 * time.Second

// Option configures an Async.
type Option func(*Async)

// WithRecordTimeout sets the deadline for one sink delivery. A value <= 0
// delivers without a deadline.
func WithRecordTimeout(d time.Duration) Option {
	return func(a *Async) {
		a.recordTimeout = d
	}
}

// Async queues events in memory and delivers them to a sink from a single
// background worker. Queue overflow and sink failures are logged and dropped.
type Async struct {
	sink   assetgate.AuditSink
	queue  chan assetgate.DownloadEvent
	done   chan struct{}
	mu     sync.RWMutex
	closed bool

	recordTimeout time.Duration

	dropped atomic.Uint64
	failed  atomic.Uint64
}

// NewAsync starts the delivery worker. Call Close to drain and stop it.
func NewAsync(sink assetgate.AuditSink, buffer int, opts ...Option) *Async {
	if buffer < 1 {
		buffer = DefaultBuffer
	}

	a := &Async{
		sink:          sink,
		queue:         make(chan assetgate.DownloadEvent, buffer),
		done:          make(chan struct{}),
		recordTimeout: DefaultRecordTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	go a.run()

	return a
}

// Record enqueues e and returns immediately. It returns ErrClosed after
// Close and nil otherwise, even when the event had to be dropped.
func (a *Async) Record(_ context.Context, e assetgate.DownloadEvent) error {
	a.mu.RLock()
	defer a.mu.RUnlock()

	if a.closed {
		return ErrClosed
	}

	select {
	case a.queue <- e:
	default:
		a.dropped.Add(1)
		slog.Warn("audit queue full, dropping event",
			"file", e.FileName,
			"subject", e.Subject,
			"correlation_id", e.CorrelationID,
		)
	}

	return nil
}

// Dropped returns how many events were discarded because the queue was full.
func (a *Async) Dropped() uint64 {
	return a.dropped.Load()
}

// Failed returns how many events the wrapped sink rejected.
func (a *Async) Failed() uint64 {
	return a.failed.Load()
}

// Close stops accepting events and waits until queued events are delivered
// or ctx is done.
func (a *Async) Close(ctx context.Context) error {
	a.mu.Lock()
	if !a.closed {
		a.closed = true
		close(a.queue)
	}
	a.mu.Unlock()

	select {
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (a *Async) run() {
	defer close(a.done)

	for e := range a.queue {
		err := a.deliver(e)

		if err != nil {
			a.failed.Add(1)
			slog.Error("audit sink failed",
				"file", e.FileName,
				"subject", e.Subject,
				"correlation_id", e.CorrelationID,
				"err", err,
			)
		}
	}
}

func (a *Async) deliver(e assetgate.DownloadEvent) error {
	ctx := context.Background()
	if a.recordTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.recordTimeout)
		defer cancel()
	}
	return a.sink.Record(ctx, e)
}
