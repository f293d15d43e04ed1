package poller

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCallsImmediatelyAndOnTicks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var calls atomic.Int32
	done := make(chan struct{})

	go func() {
		Run(ctx, 10*time.Millisecond, func(context.Context) error {
			if calls.Add(1) == 3 {
				cancel()
			}
			return errors.New("backend down")
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("poller did not stop")
	}
	assert.Equal(t, int32(3), calls.Load())
}

func TestGroupStopWaitsForPollers(t *testing.T) {
	g := NewGroup(context.Background())
	var a, b atomic.Int32

	g.Go("a", time.Hour, func(context.Context) error { a.Add(1); return nil })
	g.Go("b", time.Hour, func(context.Context) error { b.Add(1); return nil })

	require.Eventually(t, func() bool { return a.Load() == 1 && b.Load() == 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, g.Stop())

	assert.Equal(t, int32(1), a.Load())
	assert.Equal(t, int32(1), b.Load())
}
