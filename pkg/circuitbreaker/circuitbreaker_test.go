package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripsAfterMaxFailures(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 3, Timeout: time.Minute})

	for i := 0; i < 3; i++ {
		err := cb.Execute(func() error { return assert.AnError })
		assert.ErrorIs(t, err, assert.AnError)
	}

	// open: calls short-circuit without running fn
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open")
	assert.False(t, called)
}

func TestRecoversAfterTimeout(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 1, Timeout: 10 * time.Millisecond})

	require.Error(t, cb.Execute(func() error { return assert.AnError }))
	require.Error(t, cb.Execute(func() error { return nil }), "still open before timeout")

	time.Sleep(20 * time.Millisecond)

	// half-open probe succeeds and closes the breaker
	assert.NoError(t, cb.Execute(func() error { return nil }))
	assert.NoError(t, cb.Execute(func() error { return nil }))
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := New(Settings{Name: "test", MaxFailures: 2, Timeout: time.Minute})

	require.Error(t, cb.Execute(func() error { return assert.AnError }))
	require.NoError(t, cb.Execute(func() error { return nil }))
	require.Error(t, cb.Execute(func() error { return assert.AnError }))

	// one failure after a success keeps the breaker closed
	assert.NoError(t, cb.Execute(func() error { return nil }))
}
