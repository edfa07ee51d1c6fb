package scheduler_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonesrussell/north-cloud/procrawler/internal/logger"
	"github.com/jonesrussell/north-cloud/procrawler/internal/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidSchedule(t *testing.T) {
	t.Parallel()

	for _, spec := range []string{"", "every day", "61 * * * *", "* * * * * *"} {
		_, err := scheduler.New(spec, func(context.Context) {}, logger.NewNoOp())
		require.ErrorIs(t, err, scheduler.ErrInvalidSchedule, spec)
	}
}

func TestScheduler_RunsOnTicks(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	s, err := scheduler.New("@every 1s", func(context.Context) { calls.Add(1) }, logger.NewNoOp())
	require.NoError(t, err)

	s.Start()
	assert.True(t, s.Next().After(time.Now().Add(-time.Second)))

	require.Eventually(t, func() bool { return calls.Load() >= 1 }, 5*time.Second, 50*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))
}

func TestScheduler_RunOnceAndStopCancelsJob(t *testing.T) {
	t.Parallel()

	var sawCancel atomic.Bool
	started := make(chan struct{})
	s, err := scheduler.New("0 */6 * * *", func(ctx context.Context) {
		close(started)
		<-ctx.Done()
		sawCancel.Store(true)
	}, logger.NewNoOp())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		s.RunOnce()
		close(done)
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("job did not observe cancellation")
	}
	assert.True(t, sawCancel.Load())

	// a stopped scheduler no longer runs jobs
	s.RunOnce()
}
