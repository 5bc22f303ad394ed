package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduler_RunNow(t *testing.T) {
	var runs atomic.Int32
	ran := make(chan struct{}, 1)

	s := New("sweep", "@every 1h", func(ctx context.Context) error {
		runs.Add(1)
		ran <- struct{}{}
		return nil
	}, zerolog.Nop())

	require.NoError(t, s.Start(context.Background(), true))

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run immediately")
	}
	s.Stop()
	assert.Equal(t, int32(1), runs.Load())
}

func TestScheduler_StopCancelsRunningJob(t *testing.T) {
	started := make(chan struct{})
	var cancelled atomic.Bool

	s := New("sweep", "@every 1h", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		cancelled.Store(true)
		return ctx.Err()
	}, zerolog.Nop())

	require.NoError(t, s.Start(context.Background(), true))
	<-started
	s.Stop()

	assert.True(t, cancelled.Load())
}

func TestScheduler_InvalidSpec(t *testing.T) {
	s := New("sweep", "not a schedule", func(context.Context) error { return nil }, zerolog.Nop())

	err := s.Start(context.Background(), false)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a schedule")
}

func TestScheduler_JobErrorIsLogged(t *testing.T) {
	done := make(chan struct{})
	s := New("sweep", "@every 1h", func(context.Context) error {
		defer close(done)
		return errors.New("listing store unavailable")
	}, zerolog.Nop())

	require.NoError(t, s.Start(context.Background(), true))
	<-done
	s.Stop()
}
