package booking

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/model"
)

// scheduleLocks serializes booking mutations per (doctor, date). The conflict
// check and the subsequent persist must not interleave with another mutation
// for the same doctor's day, or two overlapping bookings could both pass the
// scan and both commit.
type scheduleLocks struct {
	mu    sync.Mutex
	locks map[string]*dayLock
}

type dayLock struct {
	mu   sync.Mutex
	refs int
}

func newScheduleLocks() *scheduleLocks {
	return &scheduleLocks{locks: make(map[string]*dayLock)}
}

func lockKey(doctorID uuid.UUID, date time.Time) string {
	return doctorID.String() + "/" + date.Format(model.DateLayout)
}

func (s *scheduleLocks) lock(key string) {
	s.mu.Lock()
	dl, ok := s.locks[key]
	if !ok {
		dl = &dayLock{}
		s.locks[key] = dl
	}
	dl.refs++
	s.mu.Unlock()

	dl.mu.Lock()
}

func (s *scheduleLocks) unlock(key string) {
	s.mu.Lock()
	dl := s.locks[key]
	dl.refs--
	if dl.refs == 0 {
		delete(s.locks, key)
	}
	s.mu.Unlock()

	dl.mu.Unlock()
}
