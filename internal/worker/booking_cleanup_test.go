package worker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicdesk/clinic-api/pkg/logger"
)

type fakeDeleter struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
	called  chan struct{}
}

func newFakeDeleter() *fakeDeleter {
	return &fakeDeleter{called: make(chan struct{}, 16)}
}

func (d *fakeDeleter) DeleteExpired(_ context.Context, cutoff time.Time) (int64, error) {
	d.mu.Lock()
	d.cutoffs = append(d.cutoffs, cutoff)
	d.mu.Unlock()
	d.called <- struct{}{}
	if d.err != nil {
		return 0, d.err
	}
	return 2, nil
}

func TestCleanupCutoff(t *testing.T) {
	deleter := newFakeDeleter()
	w := NewBookingCleanupWorker(deleter, 24*time.Hour, time.Hour, logger.Nop())

	before := time.Now().Add(-24 * time.Hour)
	require.NoError(t, w.cleanup(context.Background()))
	after := time.Now().Add(-24 * time.Hour)

	require.Len(t, deleter.cutoffs, 1)
	cutoff := deleter.cutoffs[0]
	assert.False(t, cutoff.Before(before))
	assert.False(t, cutoff.After(after))
}

func TestCleanupPropagatesError(t *testing.T) {
	deleter := newFakeDeleter()
	deleter.err = assert.AnError
	w := NewBookingCleanupWorker(deleter, 24*time.Hour, time.Hour, logger.Nop())

	assert.Error(t, w.cleanup(context.Background()))
}

func TestWorkerRunsOnTicks(t *testing.T) {
	deleter := newFakeDeleter()
	w := NewBookingCleanupWorker(deleter, 24*time.Hour, 10*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	for i := 0; i < 2; i++ {
		select {
		case <-deleter.called:
		case <-time.After(time.Second):
			t.Fatal("worker did not run on schedule")
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on context cancellation")
	}
}

func TestWorkerKeepsRunningAfterFailure(t *testing.T) {
	deleter := newFakeDeleter()
	deleter.err = assert.AnError
	w := NewBookingCleanupWorker(deleter, 24*time.Hour, 10*time.Millisecond, logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// a failing delete must not kill the loop
	for i := 0; i < 2; i++ {
		select {
		case <-deleter.called:
		case <-time.After(time.Second):
			t.Fatal("worker stopped after a failed cleanup")
		}
	}
}
