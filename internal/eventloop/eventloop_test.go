package eventloop

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdeck/workdeck/internal/errors"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()

	loop := New()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = loop.Run(ctx) }()

	return loop, cancel
}

func TestLoop_PostWait(t *testing.T) {
	loop, cancel := startLoop(t)
	defer cancel()

	ran := false
	require.NoError(t, loop.PostWait(context.Background(), func() { ran = true }))
	assert.True(t, ran)
}

func TestLoop_TasksRunInOrder(t *testing.T) {
	loop, cancel := startLoop(t)
	defer cancel()

	var order []int
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, loop.Post(func() { order = append(order, i) }))
	}

	// Barrier: everything posted before runs before this.
	require.NoError(t, loop.PostWait(context.Background(), func() {}))

	require.Len(t, order, 10)
	for i, got := range order {
		assert.Equal(t, i, got)
	}
}

func TestLoop_SingleGoroutineExecution(t *testing.T) {
	loop, cancel := startLoop(t)
	defer cancel()

	var concurrent, max int32
	for i := 0; i < 100; i++ {
		require.NoError(t, loop.Post(func() {
			now := atomic.AddInt32(&concurrent, 1)
			if now > atomic.LoadInt32(&max) {
				atomic.StoreInt32(&max, now)
			}
			atomic.AddInt32(&concurrent, -1)
		}))
	}

	require.NoError(t, loop.PostWait(context.Background(), func() {}))
	assert.Equal(t, int32(1), atomic.LoadInt32(&max))
}

func TestLoop_PostAfterStop(t *testing.T) {
	loop, cancel := startLoop(t)

	cancel()
	deadline := time.Now().Add(2 * time.Second)
	for !loop.Stopped() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	require.True(t, loop.Stopped())

	err := loop.Post(func() {})
	require.Error(t, err)
	assert.True(t, errors.IsLoopStopped(err))

	err = loop.PostWait(context.Background(), func() {})
	assert.True(t, errors.IsLoopStopped(err))
}

func TestLoop_PostWaitContextCancel(t *testing.T) {
	loop, cancel := startLoop(t)
	defer cancel()

	block := make(chan struct{})
	require.NoError(t, loop.Post(func() { <-block }))

	ctx, cancelWait := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancelWait()

	err := loop.PostWait(ctx, func() {})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(block)
}
