package browser

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestWaitForReadyLater(t *testing.T) {
	var seen atomic.Bool
	go func() {
		time.Sleep(20 * time.Millisecond)
		seen.Store(true)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, waitFor(ctx, time.Millisecond, seen.Load))
	require.True(t, seen.Load())
}

func TestWaitForReadyAtOnce(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, waitFor(ctx, time.Hour, func() bool { return true }))
}

func TestWaitForTimeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	calls := 0
	err := waitFor(ctx, time.Millisecond, func() bool {
		calls++
		return false
	})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Greater(t, calls, 1)
}

func TestWaitReadyWithoutExpression(t *testing.T) {
	require.NoError(t, waitReady(context.Background(), Flow{Name: "none"}))
}
