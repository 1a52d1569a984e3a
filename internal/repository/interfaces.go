package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicdesk/clinic-api/internal/model"
)

// All repository interfaces in one file
type (
	// BookingRepository handles booking persistence. HasConflict is the
	// authoritative overlap scan: it considers all bookings for one doctor on
	// one date, optionally excluding a booking id, using the half-open
	// interval test.
	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		GetDetail(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error)
		Update(ctx context.Context, booking *model.Booking) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByDate(ctx context.Context, date time.Time) ([]*model.Booking, error)
		ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Booking, error)
		HasConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end time.Time, excludeID *uuid.UUID) (bool, error)
		DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
		ListIDsForDoctor(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error)
		ListIDsForPatient(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
		ListIDsForService(ctx context.Context, serviceID uuid.UUID) ([]uuid.UUID, error)
	}

	// HistoryRepository persists the audit trail of bookings. History rows are
	// keyed by booking id and are never deleted with the booking.
	HistoryRepository interface {
		Create(ctx context.Context, history *model.ServiceHistory) error
		UpdateByBooking(ctx context.Context, history *model.ServiceHistory) error
		Get(ctx context.Context, id uuid.UUID) (*model.ServiceHistory, error)
		List(ctx context.Context) ([]*model.ServiceHistory, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ServiceHistory, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Doctor, error)
		AttachService(ctx context.Context, doctorID, serviceID uuid.UUID) error
		DetachService(ctx context.Context, doctorID, serviceID uuid.UUID) error
		ListServices(ctx context.Context, doctorID uuid.UUID) ([]*model.Service, error)
		ListForService(ctx context.Context, serviceID uuid.UUID) ([]*model.Doctor, error)
	}

	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Service, error)
	}
)
