package booking

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/model"
	"github.com/clinicdesk/clinic-api/internal/repository"
	pkgerrors "github.com/clinicdesk/clinic-api/pkg/errors"
	"github.com/clinicdesk/clinic-api/pkg/logger"
	"github.com/clinicdesk/clinic-api/pkg/metrics"
)

const conflictMessage = "this time slot is already booked for this doctor on this date"

// EventListener consumes booking lifecycle events. The history synchronizer
// is invoked synchronously and its errors surface to the caller; the
// notification dispatcher queues internally and never fails a mutation.
type EventListener interface {
	HandleBookingEvent(ctx context.Context, event *model.BookingEvent) error
}

// Service owns the booking lifecycle: it enforces the interval and conflict
// invariants on create and update, and emits events to the history
// synchronizer and the notification dispatcher after each committed mutation.
type Service struct {
	repo     repository.BookingRepository
	history  EventListener
	notifier EventListener
	locks    *scheduleLocks
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewService(repo repository.BookingRepository, history, notifier EventListener, logger *logger.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		repo:     repo,
		history:  history,
		notifier: notifier,
		locks:    newScheduleLocks(),
		logger:   logger,
		metrics:  metrics,
	}
}

func (s *Service) CreateBooking(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	date, start, end, err := parseSchedule(req.Date, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}
	if err := validateInterval(start, end); err != nil {
		return nil, err
	}

	key := lockKey(req.DoctorID, date)
	s.locks.lock(key)
	defer s.locks.unlock(key)

	conflict, err := s.repo.HasConflict(ctx, req.DoctorID, date, start, end, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check conflicts: %w", err)
	}
	if conflict {
		s.metrics.BookingConflicts.Inc()
		return nil, pkgerrors.Conflict(conflictMessage)
	}

	now := time.Now()
	booking := &model.Booking{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		ServiceID: req.ServiceID,
		Date:      date,
		StartTime: start,
		EndTime:   end,
		Confirmed: req.Confirmed,
	}
	booking.ID = uuid.New()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to create booking: %w", err)
	}
	s.metrics.BookingsCreated.Inc()

	detail, err := s.repo.GetDetail(ctx, booking.ID)
	if err != nil {
		return nil, pkgerrors.Integration("booking created but snapshot load failed", err)
	}

	if err := s.emit(ctx, &model.BookingEvent{Type: model.BookingCreated, New: detail}); err != nil {
		return nil, err
	}
	return booking, nil
}

func (s *Service) UpdateBooking(ctx context.Context, id uuid.UUID, req *model.UpdateBookingRequest) (*model.Booking, error) {
	for {
		booking, retry, err := s.updateLocked(ctx, id, req)
		if !retry {
			return booking, err
		}
	}
}

func (s *Service) updateLocked(ctx context.Context, id uuid.UUID, req *model.UpdateBookingRequest) (*model.Booking, bool, error) {
	guess, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, false, err
	}
	guessUpdated, err := applyUpdate(&guess.Booking, req)
	if err != nil {
		return nil, false, err
	}
	if err := validateInterval(guessUpdated.StartTime, guessUpdated.EndTime); err != nil {
		return nil, false, err
	}

	keys := lockKeys(
		lockKey(guess.DoctorID, guess.Date),
		lockKey(guessUpdated.DoctorID, guessUpdated.Date),
	)
	for _, k := range keys {
		s.locks.lock(k)
	}
	defer func() {
		for _, k := range keys {
			s.locks.unlock(k)
		}
	}()

	// Reload under the locks: a concurrent update may have committed while
	// the keys were computed, and the stale snapshot would mis-describe the
	// change in the emitted event. If the booking moved to a day the held
	// keys do not cover, start over with fresh keys.
	oldDetail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, false, err
	}
	updated, err := applyUpdate(&oldDetail.Booking, req)
	if err != nil {
		return nil, false, err
	}
	if !containsKey(keys, lockKey(oldDetail.DoctorID, oldDetail.Date)) ||
		!containsKey(keys, lockKey(updated.DoctorID, updated.Date)) {
		return nil, true, nil
	}

	conflict, err := s.repo.HasConflict(ctx, updated.DoctorID, updated.Date, updated.StartTime, updated.EndTime, &id)
	if err != nil {
		return nil, false, fmt.Errorf("failed to check conflicts: %w", err)
	}
	if conflict {
		s.metrics.BookingConflicts.Inc()
		return nil, false, pkgerrors.Conflict(conflictMessage)
	}

	if !changed(&oldDetail.Booking, updated) {
		return &oldDetail.Booking, false, nil
	}

	updated.UpdatedAt = time.Now()
	if err := s.repo.Update(ctx, updated); err != nil {
		return nil, false, fmt.Errorf("failed to update booking: %w", err)
	}
	s.metrics.BookingsUpdated.Inc()

	newDetail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return nil, false, pkgerrors.Integration("booking updated but snapshot load failed", err)
	}

	if err := s.emit(ctx, &model.BookingEvent{Type: model.BookingUpdated, Old: oldDetail, New: newDetail}); err != nil {
		return nil, false, err
	}
	return updated, false, nil
}

func (s *Service) DeleteBooking(ctx context.Context, id uuid.UUID) error {
	// The snapshot must be captured before the delete: afterwards the row and
	// its joins are gone.
	detail, err := s.repo.GetDetail(ctx, id)
	if err != nil {
		return err
	}

	key := lockKey(detail.DoctorID, detail.Date)
	s.locks.lock(key)
	defer s.locks.unlock(key)

	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}
	s.metrics.BookingsDeleted.Inc()

	return s.emit(ctx, &model.BookingEvent{Type: model.BookingDeleted, Old: detail})
}

// CancelForDoctor removes every booking held by the doctor through the
// regular delete path, so each cancellation reaches the history trail and
// the notification dispatcher before the doctor row itself goes away.
func (s *Service) CancelForDoctor(ctx context.Context, doctorID uuid.UUID) error {
	ids, err := s.repo.ListIDsForDoctor(ctx, doctorID)
	if err != nil {
		return err
	}
	return s.cancelAll(ctx, ids)
}

// CancelForPatient removes every booking held by the patient, emitting the
// usual deletion events per booking.
func (s *Service) CancelForPatient(ctx context.Context, patientID uuid.UUID) error {
	ids, err := s.repo.ListIDsForPatient(ctx, patientID)
	if err != nil {
		return err
	}
	return s.cancelAll(ctx, ids)
}

// CancelForService removes every booking of the service, emitting the usual
// deletion events per booking.
func (s *Service) CancelForService(ctx context.Context, serviceID uuid.UUID) error {
	ids, err := s.repo.ListIDsForService(ctx, serviceID)
	if err != nil {
		return err
	}
	return s.cancelAll(ctx, ids)
}

func (s *Service) cancelAll(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if err := s.DeleteBooking(ctx, id); err != nil {
			// A concurrent explicit delete already handled this booking.
			if pkgerrors.IsNotFound(err) {
				continue
			}
			return err
		}
	}
	return nil
}

// DeleteExpired bulk-removes bookings dated before cutoff. This is the
// maintenance path used by the cleanup job: it bypasses the event pipeline,
// so no cancellation notifications and no history writes happen here.
func (s *Service) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	count, err := s.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if count > 0 {
		s.metrics.BookingsExpired.Add(float64(count))
		s.logger.ZL.Info().Int64("count", count).Time("cutoff", cutoff).Msg("removed expired bookings")
	}
	return count, nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) GetBookingDetail(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error) {
	return s.repo.GetDetail(ctx, id)
}

// emit fans a committed mutation out to the listeners. History is
// synchronous: a failure there means booking state and audit trail have
// diverged, which is surfaced loudly instead of swallowed. Notification
// delivery is best-effort and cannot fail the mutation.
func (s *Service) emit(ctx context.Context, event *model.BookingEvent) error {
	if err := s.history.HandleBookingEvent(ctx, event); err != nil {
		wrapped := pkgerrors.Integration("history out of sync with bookings", err)
		s.logger.ZL.Error().Err(err).
			Str("event", string(event.Type)).
			Str("booking_id", event.Snapshot().ID.String()).
			Msg("history synchronization failed")
		return wrapped
	}

	if err := s.notifier.HandleBookingEvent(ctx, event); err != nil {
		s.logger.ZL.Warn().Err(err).
			Str("event", string(event.Type)).
			Msg("notification enqueue failed")
	}
	return nil
}

func validateInterval(start, end time.Time) error {
	if !start.Before(end) {
		return pkgerrors.InvalidInterval("start time must be before end time")
	}
	return nil
}

func parseSchedule(dateStr, startStr, endStr string) (date, start, end time.Time, err error) {
	date, err = model.ParseDate(dateStr)
	if err != nil {
		return date, start, end, pkgerrors.BadRequest("invalid date format, expected YYYY-MM-DD", err)
	}
	start, err = model.ParseClock(startStr)
	if err != nil {
		return date, start, end, pkgerrors.BadRequest("invalid start_time format, expected HH:MM", err)
	}
	end, err = model.ParseClock(endStr)
	if err != nil {
		return date, start, end, pkgerrors.BadRequest("invalid end_time format, expected HH:MM", err)
	}
	return date, start, end, nil
}

func applyUpdate(old *model.Booking, req *model.UpdateBookingRequest) (*model.Booking, error) {
	updated := *old

	if req.PatientID != nil {
		updated.PatientID = *req.PatientID
	}
	if req.DoctorID != nil {
		updated.DoctorID = *req.DoctorID
	}
	if req.ServiceID != nil {
		updated.ServiceID = *req.ServiceID
	}
	if req.Confirmed != nil {
		updated.Confirmed = *req.Confirmed
	}
	if req.Date != nil {
		date, err := model.ParseDate(*req.Date)
		if err != nil {
			return nil, pkgerrors.BadRequest("invalid date format, expected YYYY-MM-DD", err)
		}
		updated.Date = date
	}
	if req.StartTime != nil {
		start, err := model.ParseClock(*req.StartTime)
		if err != nil {
			return nil, pkgerrors.BadRequest("invalid start_time format, expected HH:MM", err)
		}
		updated.StartTime = start
	}
	if req.EndTime != nil {
		end, err := model.ParseClock(*req.EndTime)
		if err != nil {
			return nil, pkgerrors.BadRequest("invalid end_time format, expected HH:MM", err)
		}
		updated.EndTime = end
	}
	return &updated, nil
}

func changed(old, updated *model.Booking) bool {
	return old.PatientID != updated.PatientID ||
		old.DoctorID != updated.DoctorID ||
		old.ServiceID != updated.ServiceID ||
		!old.Date.Equal(updated.Date) ||
		!old.StartTime.Equal(updated.StartTime) ||
		!old.EndTime.Equal(updated.EndTime) ||
		old.Confirmed != updated.Confirmed
}

// lockKeys deduplicates and orders keys so multi-key acquisition never
// deadlocks.
func lockKeys(keys ...string) []string {
	sort.Strings(keys)
	out := keys[:0]
	var prev string
	for i, k := range keys {
		if i == 0 || k != prev {
			out = append(out, k)
		}
		prev = k
	}
	return out
}

func containsKey(keys []string, key string) bool {
	for _, k := range keys {
		if k == key {
			return true
		}
	}
	return false
}
