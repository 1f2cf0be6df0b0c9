package addon

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrLoopStopped is returned by Post after the loop has stopped.
var ErrLoopStopped = errors.New("event loop stopped")

const eventQueueSize = 256

// Loop runs tick callbacks and posted events on a single goroutine, so
// nothing it runs ever executes concurrently with anything else it runs.
//
// Invariant: tick callbacks run in registration order, at most once per interval.
type Loop struct {
	interval time.Duration
	ticks    []func(ctx context.Context)
	events   chan func(ctx context.Context)
	stop     chan struct{}
	stopOnce sync.Once
	stopped  chan struct{}
	logger   *zap.Logger
}

// NewLoop returns a loop that ticks every interval.
//
// Precondition: interval must be > 0.
func NewLoop(interval time.Duration, logger *zap.Logger) *Loop {
	if interval <= 0 {
		panic("addon.NewLoop: interval must be > 0")
	}
	return &Loop{
		interval: interval,
		events:   make(chan func(ctx context.Context), eventQueueSize),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
		logger:   logger,
	}
}

// OnTick registers fn to run every tick.
//
// Precondition: must be called before Start.
func (l *Loop) OnTick(fn func(ctx context.Context)) {
	l.ticks = append(l.ticks, fn)
}

// Post queues fn to run on the loop goroutine. It blocks while the queue is full.
//
// Postcondition: Returns ErrLoopStopped if the loop has stopped, or ctx.Err().
func (l *Loop) Post(ctx context.Context, fn func(ctx context.Context)) error {
	select {
	case <-l.stopped:
		return ErrLoopStopped
	default:
	}
	select {
	case l.events <- fn:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Call runs fn on the loop goroutine and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func(ctx context.Context)) error {
	done := make(chan struct{})
	if err := l.Post(ctx, func(ctx context.Context) {
		defer close(done)
		fn(ctx)
	}); err != nil {
		return err
	}
	select {
	case <-done:
		return nil
	case <-l.stopped:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Start runs the loop until ctx is cancelled or Stop is called.
//
// Precondition: Start is called at most once.
func (l *Loop) Start(ctx context.Context) error {
	defer close(l.stopped)
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	l.logger.Debug("event loop running", zap.Duration("interval", l.interval))
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.stop:
			return nil
		case <-ticker.C:
			l.Tick(ctx)
		case fn := <-l.events:
			fn(ctx)
		}
	}
}

// Tick runs every tick callback once on the calling goroutine.
func (l *Loop) Tick(ctx context.Context) {
	for _, fn := range l.ticks {
		fn(ctx)
	}
}

// Stop ends Start. It is safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}
