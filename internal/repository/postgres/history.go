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

// History rows reference patients, doctors and services with ON DELETE SET
// NULL so removing an entity nulls the snapshot reference instead of
// cascading. The booking itself is not referenced with a constraint at all:
// history must outlive its booking.
type historyRepository struct {
	BaseRepository
}

func NewHistoryRepository(db *sqlx.DB) repository.HistoryRepository {
	return &historyRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *historyRepository) Create(ctx context.Context, history *model.ServiceHistory) error {
	query := `
		INSERT INTO service_history (
			id, booking_id, patient_id, doctor_id, service_id,
			date, start_time, end_time, confirmed,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err := r.db.ExecContext(ctx, query,
		history.ID,
		history.BookingID,
		history.PatientID,
		history.DoctorID,
		history.ServiceID,
		history.Date,
		history.StartTime,
		history.EndTime,
		history.Confirmed,
		history.CreatedAt,
		history.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create history row: %w", err)
	}
	return nil
}

func (r *historyRepository) UpdateByBooking(ctx context.Context, history *model.ServiceHistory) error {
	query := `
		UPDATE service_history
		SET patient_id = $1, doctor_id = $2, service_id = $3,
			date = $4, start_time = $5, end_time = $6, confirmed = $7,
			updated_at = $8
		WHERE booking_id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		history.PatientID,
		history.DoctorID,
		history.ServiceID,
		history.Date,
		history.StartTime,
		history.EndTime,
		history.Confirmed,
		history.UpdatedAt,
		history.BookingID,
	)
	if err != nil {
		return fmt.Errorf("failed to update history row: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return pkgerrors.NotFound("history row", nil)
	}
	return nil
}

func (r *historyRepository) Get(ctx context.Context, id uuid.UUID) (*model.ServiceHistory, error) {
	query := `
		SELECT id, booking_id, patient_id, doctor_id, service_id,
			   date, start_time, end_time, confirmed,
			   created_at, updated_at
		FROM service_history
		WHERE id = $1
	`
	var history model.ServiceHistory
	err := r.db.GetContext(ctx, &history, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NotFound("history row", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get history row: %w", err)
	}
	return &history, nil
}

func (r *historyRepository) List(ctx context.Context) ([]*model.ServiceHistory, error) {
	query := `
		SELECT id, booking_id, patient_id, doctor_id, service_id,
			   date, start_time, end_time, confirmed,
			   created_at, updated_at
		FROM service_history
		ORDER BY date ASC, start_time ASC
	`
	var rows []*model.ServiceHistory
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	return rows, nil
}

func (r *historyRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ServiceHistory, error) {
	query := `
		SELECT id, booking_id, patient_id, doctor_id, service_id,
			   date, start_time, end_time, confirmed,
			   created_at, updated_at
		FROM service_history
		WHERE patient_id = $1
		ORDER BY date ASC, start_time ASC
	`
	var rows []*model.ServiceHistory
	if err := r.db.SelectContext(ctx, &rows, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list patient history: %w", err)
	}
	return rows, nil
}
