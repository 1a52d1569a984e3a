package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicdesk/clinic-api/internal/model"
	"github.com/clinicdesk/clinic-api/internal/repository"
	pkgerrors "github.com/clinicdesk/clinic-api/pkg/errors"
)

const (
	cacheTTL     = 5 * time.Minute
	cacheCleanup = 10 * time.Minute

	servicesListKey = "services"
)

const phoneFormatMessage = "phone number must look like '+999999999' or '0999999999', up to 15 digits"

// BookingCanceler removes every booking that references a catalog entity,
// emitting the usual deletion events so cancellation notifications go out
// before the entity row disappears.
type BookingCanceler interface {
	CancelForDoctor(ctx context.Context, doctorID uuid.UUID) error
	CancelForPatient(ctx context.Context, patientID uuid.UUID) error
	CancelForService(ctx context.Context, serviceID uuid.UUID) error
}

// Service manages the clinic catalog: doctors, patients and the services they
// offer. The catalog is read-mostly, so reads go through a small in-process
// cache that mutations invalidate. Bookings are never cached.
type Service struct {
	doctors  repository.DoctorRepository
	patients repository.PatientRepository
	services repository.ServiceRepository
	bookings BookingCanceler
	cache    *gocache.Cache
}

func NewService(doctors repository.DoctorRepository, patients repository.PatientRepository, services repository.ServiceRepository, bookings BookingCanceler) *Service {
	return &Service{
		doctors:  doctors,
		patients: patients,
		services: services,
		bookings: bookings,
		cache:    gocache.New(cacheTTL, cacheCleanup),
	}
}

func doctorKey(id uuid.UUID) string  { return "doctor:" + id.String() }
func serviceKey(id uuid.UUID) string { return "service:" + id.String() }

// Doctors

func (s *Service) CreateDoctor(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	if !model.ValidPhone(req.PhoneNumber) {
		return nil, pkgerrors.BadRequest(phoneFormatMessage, nil)
	}
	accountID, err := uuid.Parse(req.AccountID)
	if err != nil {
		return nil, pkgerrors.BadRequest("invalid account id", err)
	}

	now := time.Now()
	doctor := &model.Doctor{
		Name:        req.Name,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
		Profession:  req.Profession,
		Description: req.Description,
		Schedule:    req.Schedule,
	}
	// A doctor's id is the owning account's id.
	doctor.ID = accountID
	doctor.CreatedAt = now
	doctor.UpdatedAt = now

	if err := s.doctors.Create(ctx, doctor); err != nil {
		return nil, fmt.Errorf("failed to create doctor: %w", err)
	}
	return doctor, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	if cached, ok := s.cache.Get(doctorKey(id)); ok {
		return cached.(*model.Doctor), nil
	}

	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	services, err := s.doctors.ListServices(ctx, id)
	if err != nil {
		return nil, err
	}
	doctor.Services = services

	s.cache.Set(doctorKey(id), doctor, gocache.DefaultExpiration)
	return doctor, nil
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.doctors.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.LastName != nil {
		doctor.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		if !model.ValidPhone(*req.PhoneNumber) {
			return nil, pkgerrors.BadRequest(phoneFormatMessage, nil)
		}
		doctor.PhoneNumber = *req.PhoneNumber
	}
	if req.Profession != nil {
		doctor.Profession = *req.Profession
	}
	if req.Description != nil {
		doctor.Description = *req.Description
	}
	if req.Schedule != nil {
		doctor.Schedule = *req.Schedule
	}
	doctor.UpdatedAt = time.Now()

	if err := s.doctors.Update(ctx, doctor); err != nil {
		return nil, err
	}
	s.cache.Delete(doctorKey(id))
	return doctor, nil
}

func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	// Cancel the doctor's bookings first: removing the row alone would let
	// the database cascade silently, and no one would be notified.
	if err := s.bookings.CancelForDoctor(ctx, id); err != nil {
		return err
	}
	if err := s.doctors.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(doctorKey(id))
	return nil
}

func (s *Service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	return s.doctors.List(ctx)
}

func (s *Service) AttachService(ctx context.Context, doctorID, serviceID uuid.UUID) error {
	if _, err := s.services.Get(ctx, serviceID); err != nil {
		return err
	}
	if err := s.doctors.AttachService(ctx, doctorID, serviceID); err != nil {
		return err
	}
	s.cache.Delete(doctorKey(doctorID))
	return nil
}

func (s *Service) DetachService(ctx context.Context, doctorID, serviceID uuid.UUID) error {
	if err := s.doctors.DetachService(ctx, doctorID, serviceID); err != nil {
		return err
	}
	s.cache.Delete(doctorKey(doctorID))
	return nil
}

// Patients

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if !model.ValidPhone(req.PhoneNumber) {
		return nil, pkgerrors.BadRequest(phoneFormatMessage, nil)
	}

	now := time.Now()
	patient := &model.Patient{
		Name:        req.Name,
		LastName:    req.LastName,
		PhoneNumber: req.PhoneNumber,
	}
	patient.ID = uuid.New()
	patient.CreatedAt = now
	patient.UpdatedAt = now

	if err := s.patients.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.patients.Get(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.patients.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.LastName != nil {
		patient.LastName = *req.LastName
	}
	if req.PhoneNumber != nil {
		if !model.ValidPhone(*req.PhoneNumber) {
			return nil, pkgerrors.BadRequest(phoneFormatMessage, nil)
		}
		patient.PhoneNumber = *req.PhoneNumber
	}
	patient.UpdatedAt = time.Now()

	if err := s.patients.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.bookings.CancelForPatient(ctx, id); err != nil {
		return err
	}
	return s.patients.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context) ([]*model.Patient, error) {
	return s.patients.List(ctx)
}

// Services

func (s *Service) CreateService(ctx context.Context, req *model.CreateServiceRequest) (*model.Service, error) {
	if req.Price.IsNegative() {
		return nil, pkgerrors.BadRequest("price must not be negative", nil)
	}

	now := time.Now()
	service := &model.Service{
		Name:  req.Name,
		Price: req.Price,
	}
	service.ID = uuid.New()
	service.CreatedAt = now
	service.UpdatedAt = now

	if err := s.services.Create(ctx, service); err != nil {
		return nil, fmt.Errorf("failed to create service: %w", err)
	}
	s.cache.Delete(servicesListKey)
	return service, nil
}

func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	if cached, ok := s.cache.Get(serviceKey(id)); ok {
		return cached.(*model.Service), nil
	}

	service, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.Set(serviceKey(id), service, gocache.DefaultExpiration)
	return service, nil
}

func (s *Service) UpdateService(ctx context.Context, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	service, err := s.services.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, pkgerrors.BadRequest("price must not be negative", nil)
		}
		service.Price = *req.Price
	}
	service.UpdatedAt = time.Now()

	if err := s.services.Update(ctx, service); err != nil {
		return nil, err
	}
	s.cache.Delete(serviceKey(id))
	s.cache.Delete(servicesListKey)
	return service, nil
}

func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.bookings.CancelForService(ctx, id); err != nil {
		return err
	}
	if err := s.services.Delete(ctx, id); err != nil {
		return err
	}
	s.cache.Delete(serviceKey(id))
	s.cache.Delete(servicesListKey)
	return nil
}

func (s *Service) ListServices(ctx context.Context) ([]*model.Service, error) {
	if cached, ok := s.cache.Get(servicesListKey); ok {
		return cached.([]*model.Service), nil
	}

	services, err := s.services.List(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.Set(servicesListKey, services, gocache.DefaultExpiration)
	return services, nil
}

// DoctorsForService lists the doctors offering a service.
func (s *Service) DoctorsForService(ctx context.Context, serviceID uuid.UUID) ([]*model.Doctor, error) {
	return s.doctors.ListForService(ctx, serviceID)
}
