package addon

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func startLoop(t *testing.T, l *Loop) (stop func()) {
	t.Helper()
	ctx, stopCtx := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Start(ctx)
	}()
	return func() {
		stopCtx()
		<-done
	}
}

func TestLoop_TickCallbackInvoked(t *testing.T) {
	l := NewLoop(10*time.Millisecond, zap.NewNop())
	var count atomic.Int64
	l.OnTick(func(context.Context) { count.Add(1) })
	stop := startLoop(t, l)
	defer stop()

	assert.Eventually(t, func() bool { return count.Load() >= 2 }, time.Second, 5*time.Millisecond)
}

func TestLoop_TicksInRegistrationOrder(t *testing.T) {
	l := NewLoop(time.Hour, zap.NewNop())
	var order []int
	l.OnTick(func(context.Context) { order = append(order, 1) })
	l.OnTick(func(context.Context) { order = append(order, 2) })
	l.Tick(context.Background())
	assert.Equal(t, []int{1, 2}, order)
}

func TestLoop_CallRunsOnLoop(t *testing.T) {
	l := NewLoop(time.Hour, zap.NewNop())
	stop := startLoop(t, l)
	defer stop()

	ran := false
	require.NoError(t, l.Call(context.Background(), func(context.Context) { ran = true }))
	assert.True(t, ran)
}

func TestLoop_EventsAndTicksNeverOverlap(t *testing.T) {
	l := NewLoop(time.Millisecond, zap.NewNop())
	var inside atomic.Int32
	var overlap atomic.Bool
	work := func(context.Context) {
		if inside.Add(1) > 1 {
			overlap.Store(true)
		}
		time.Sleep(100 * time.Microsecond)
		inside.Add(-1)
	}
	l.OnTick(work)
	stop := startLoop(t, l)
	defer stop()

	for i := 0; i < 50; i++ {
		require.NoError(t, l.Post(context.Background(), work))
	}
	require.NoError(t, l.Call(context.Background(), func(context.Context) {}))
	assert.False(t, overlap.Load())
}

func TestLoop_PostAfterStop(t *testing.T) {
	l := NewLoop(time.Hour, zap.NewNop())
	stop := startLoop(t, l)
	l.Stop()
	stop()
	l.Stop()

	assert.ErrorIs(t, l.Post(context.Background(), func(context.Context) {}), ErrLoopStopped)
	assert.ErrorIs(t, l.Call(context.Background(), func(context.Context) {}), ErrLoopStopped)
}

func TestNewLoop_RejectsZeroInterval(t *testing.T) {
	assert.Panics(t, func() { NewLoop(0, zap.NewNop()) })
}
