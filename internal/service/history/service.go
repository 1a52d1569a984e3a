package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/model"
	"github.com/clinicdesk/clinic-api/internal/repository"
	pkgerrors "github.com/clinicdesk/clinic-api/pkg/errors"
	"github.com/clinicdesk/clinic-api/pkg/logger"
)

// Service keeps the service_history audit trail in lockstep with booking
// mutations. One row per booking: created with the booking, overwritten in
// place on every update, left untouched on delete so the trail outlives the
// booking.
type Service struct {
	repo   repository.HistoryRepository
	logger *logger.Logger
}

func NewService(repo repository.HistoryRepository, logger *logger.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

func (s *Service) HandleBookingEvent(ctx context.Context, event *model.BookingEvent) error {
	switch event.Type {
	case model.BookingCreated:
		return s.create(ctx, event.New)
	case model.BookingUpdated:
		return s.update(ctx, event.New)
	case model.BookingDeleted:
		// History is a permanent record of bookings that existed.
		return nil
	default:
		return nil
	}
}

func (s *Service) create(ctx context.Context, detail *model.BookingDetail) error {
	row := rowFromBooking(&detail.Booking)
	row.ID = uuid.New()
	now := time.Now()
	row.CreatedAt = now
	row.UpdatedAt = now
	return s.repo.Create(ctx, row)
}

func (s *Service) update(ctx context.Context, detail *model.BookingDetail) error {
	row := rowFromBooking(&detail.Booking)
	row.UpdatedAt = time.Now()

	err := s.repo.UpdateByBooking(ctx, row)
	if pkgerrors.IsNotFound(err) {
		// A booking without a history row means the audit trail has diverged
		// from live state. Reporting depends on history completeness, so this
		// cannot be swallowed.
		s.logger.ZL.Error().
			Str("booking_id", detail.ID.String()).
			Msg("no history row for updated booking")
		return pkgerrors.Integration("no history row for booking "+detail.ID.String(), err)
	}
	return err
}

func rowFromBooking(b *model.Booking) *model.ServiceHistory {
	patientID := b.PatientID
	doctorID := b.DoctorID
	serviceID := b.ServiceID
	return &model.ServiceHistory{
		BookingID: b.ID,
		PatientID: &patientID,
		DoctorID:  &doctorID,
		ServiceID: &serviceID,
		Date:      b.Date,
		StartTime: b.StartTime,
		EndTime:   b.EndTime,
		Confirmed: b.Confirmed,
	}
}

// Read side, used by the admin audit endpoints.

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.ServiceHistory, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*model.ServiceHistory, error) {
	return s.repo.List(ctx)
}

func (s *Service) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ServiceHistory, error) {
	return s.repo.ListForPatient(ctx, patientID)
}
