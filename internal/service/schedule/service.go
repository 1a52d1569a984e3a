package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/model"
	"github.com/clinicdesk/clinic-api/internal/repository"
)

// Service provides read-only schedule projections over committed bookings.
type Service struct {
	repo repository.BookingRepository
}

func NewService(repo repository.BookingRepository) *Service {
	return &Service{repo: repo}
}

// BookingsByDate returns all bookings for a date, across doctors.
func (s *Service) BookingsByDate(ctx context.Context, date time.Time) ([]*model.Booking, error) {
	return s.repo.ListByDate(ctx, date)
}

// DoctorSchedule returns one doctor's bookings for a date.
func (s *Service) DoctorSchedule(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Booking, error) {
	return s.repo.ListForDoctorDay(ctx, doctorID, date)
}
