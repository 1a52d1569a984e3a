package booking

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScheduleLocksSerialize(t *testing.T) {
	locks := newScheduleLocks()
	key := lockKey(uuid.New(), time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	var mu sync.Mutex
	var inCritical, maxInCritical int

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locks.lock(key)
			defer locks.unlock(key)

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical, "at most one holder per key at a time")
}

func TestScheduleLocksIndependentKeys(t *testing.T) {
	locks := newScheduleLocks()
	doctorID := uuid.New()
	keyA := lockKey(doctorID, time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))
	keyB := lockKey(doctorID, time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC))

	locks.lock(keyA)

	done := make(chan struct{})
	go func() {
		locks.lock(keyB)
		locks.unlock(keyB)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("different keys must not block each other")
	}

	locks.unlock(keyA)
}

func TestScheduleLocksReleaseEntries(t *testing.T) {
	locks := newScheduleLocks()
	key := lockKey(uuid.New(), time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC))

	locks.lock(key)
	locks.unlock(key)

	locks.mu.Lock()
	defer locks.mu.Unlock()
	assert.Empty(t, locks.locks, "released keys must not leak entries")
}

func TestLockKeys(t *testing.T) {
	keys := lockKeys("b", "a")
	require.Equal(t, []string{"a", "b"}, keys)

	keys = lockKeys("a", "a")
	require.Equal(t, []string{"a"}, keys)
}
