package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/clinicdesk/clinic-api/internal/model"
	"github.com/clinicdesk/clinic-api/internal/repository"
	pkgerrors "github.com/clinicdesk/clinic-api/pkg/errors"
)

type doctorRepository struct {
	BaseRepository
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *doctorRepository) Create(ctx context.Context, doctor *model.Doctor) error {
	query := `
		INSERT INTO doctors (
			id, name, last_name, phone_number,
			profession, description, schedule,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		doctor.ID,
		doctor.Name,
		doctor.LastName,
		doctor.PhoneNumber,
		doctor.Profession,
		doctor.Description,
		doctor.Schedule,
		doctor.CreatedAt,
		doctor.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create doctor: %w", err)
	}
	return nil
}

func (r *doctorRepository) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	query := `
		SELECT id, name, last_name, phone_number,
			   profession, description, schedule,
			   created_at, updated_at
		FROM doctors
		WHERE id = $1
	`
	var doctor model.Doctor
	err := r.db.GetContext(ctx, &doctor, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NotFound("doctor", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	return &doctor, nil
}

func (r *doctorRepository) Update(ctx context.Context, doctor *model.Doctor) error {
	query := `
		UPDATE doctors
		SET name = $1, last_name = $2, phone_number = $3,
			profession = $4, description = $5, schedule = $6,
			updated_at = $7
		WHERE id = $8
	`
	result, err := r.db.ExecContext(ctx, query,
		doctor.Name,
		doctor.LastName,
		doctor.PhoneNumber,
		doctor.Profession,
		doctor.Description,
		doctor.Schedule,
		doctor.UpdatedAt,
		doctor.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return pkgerrors.NotFound("doctor", nil)
	}
	return nil
}

func (r *doctorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return pkgerrors.NotFound("doctor", nil)
	}
	return nil
}

func (r *doctorRepository) List(ctx context.Context) ([]*model.Doctor, error) {
	query := `
		SELECT id, name, last_name, phone_number,
			   profession, description, schedule,
			   created_at, updated_at
		FROM doctors
		ORDER BY last_name ASC, name ASC
	`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query); err != nil {
		return nil, fmt.Errorf("failed to list doctors: %w", err)
	}
	return doctors, nil
}

func (r *doctorRepository) AttachService(ctx context.Context, doctorID, serviceID uuid.UUID) error {
	query := `
		INSERT INTO doctor_services (doctor_id, service_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, query, doctorID, serviceID); err != nil {
		return fmt.Errorf("failed to attach service: %w", err)
	}
	return nil
}

func (r *doctorRepository) DetachService(ctx context.Context, doctorID, serviceID uuid.UUID) error {
	query := `DELETE FROM doctor_services WHERE doctor_id = $1 AND service_id = $2`
	if _, err := r.db.ExecContext(ctx, query, doctorID, serviceID); err != nil {
		return fmt.Errorf("failed to detach service: %w", err)
	}
	return nil
}

func (r *doctorRepository) ListServices(ctx context.Context, doctorID uuid.UUID) ([]*model.Service, error) {
	query := `
		SELECT s.id, s.name, s.price, s.created_at, s.updated_at
		FROM services s
		JOIN doctor_services ds ON ds.service_id = s.id
		WHERE ds.doctor_id = $1
		ORDER BY s.name ASC
	`
	var services []*model.Service
	if err := r.db.SelectContext(ctx, &services, query, doctorID); err != nil {
		return nil, fmt.Errorf("failed to list doctor services: %w", err)
	}
	return services, nil
}

func (r *doctorRepository) ListForService(ctx context.Context, serviceID uuid.UUID) ([]*model.Doctor, error) {
	query := `
		SELECT d.id, d.name, d.last_name, d.phone_number,
			   d.profession, d.description, d.schedule,
			   d.created_at, d.updated_at
		FROM doctors d
		JOIN doctor_services ds ON ds.doctor_id = d.id
		WHERE ds.service_id = $1
		ORDER BY d.last_name ASC, d.name ASC
	`
	var doctors []*model.Doctor
	if err := r.db.SelectContext(ctx, &doctors, query, serviceID); err != nil {
		return nil, fmt.Errorf("failed to list doctors for service: %w", err)
	}
	return doctors, nil
}
