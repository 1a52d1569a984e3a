package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/clinicdesk/clinic-api/internal/model"
	"github.com/clinicdesk/clinic-api/internal/repository"
	pkgerrors "github.com/clinicdesk/clinic-api/pkg/errors"
)

type bookingRepository struct {
	BaseRepository
}

func NewBookingRepository(db *sqlx.DB) repository.BookingRepository {
	return &bookingRepository{BaseRepository: NewBaseRepository(db)}
}

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (
			id, patient_id, doctor_id, service_id,
			date, start_time, end_time, confirmed,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		booking.ID,
		booking.PatientID,
		booking.DoctorID,
		booking.ServiceID,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.Confirmed,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	query := `
		SELECT id, patient_id, doctor_id, service_id,
			   date, start_time, end_time, confirmed,
			   created_at, updated_at
		FROM bookings
		WHERE id = $1
	`
	var booking model.Booking
	err := r.db.GetContext(ctx, &booking, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NotFound("booking", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

// bookingDetailRow flattens the booking joined with its referenced entities.
type bookingDetailRow struct {
	model.Booking
	PatientName  string          `db:"patient_name"`
	PatientLast  string          `db:"patient_last_name"`
	PatientPhone string          `db:"patient_phone_number"`
	DoctorName   string          `db:"doctor_name"`
	DoctorLast   string          `db:"doctor_last_name"`
	DoctorPhone  string          `db:"doctor_phone_number"`
	Profession   string          `db:"doctor_profession"`
	ServiceName  string          `db:"service_name"`
	ServicePrice decimal.Decimal `db:"service_price"`
}

func (r *bookingRepository) GetDetail(ctx context.Context, id uuid.UUID) (*model.BookingDetail, error) {
	query := `
		SELECT b.id, b.patient_id, b.doctor_id, b.service_id,
			   b.date, b.start_time, b.end_time, b.confirmed,
			   b.created_at, b.updated_at,
			   p.name AS patient_name, p.last_name AS patient_last_name,
			   p.phone_number AS patient_phone_number,
			   d.name AS doctor_name, d.last_name AS doctor_last_name,
			   d.phone_number AS doctor_phone_number, d.profession AS doctor_profession,
			   s.name AS service_name, s.price AS service_price
		FROM bookings b
		JOIN patients p ON p.id = b.patient_id
		JOIN doctors d ON d.id = b.doctor_id
		JOIN services s ON s.id = b.service_id
		WHERE b.id = $1
	`
	var row bookingDetailRow
	err := r.db.GetContext(ctx, &row, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, pkgerrors.NotFound("booking", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get booking detail: %w", err)
	}
	return row.toDetail(), nil
}

func (row *bookingDetailRow) toDetail() *model.BookingDetail {
	detail := &model.BookingDetail{
		Booking: row.Booking,
		Patient: &model.Patient{
			Name:        row.PatientName,
			LastName:    row.PatientLast,
			PhoneNumber: row.PatientPhone,
		},
		Doctor: &model.Doctor{
			Name:        row.DoctorName,
			LastName:    row.DoctorLast,
			PhoneNumber: row.DoctorPhone,
			Profession:  row.Profession,
		},
		Service: &model.Service{
			Name:  row.ServiceName,
			Price: row.ServicePrice,
		},
	}
	detail.Patient.ID = row.Booking.PatientID
	detail.Doctor.ID = row.Booking.DoctorID
	detail.Service.ID = row.Booking.ServiceID
	return detail
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) error {
	query := `
		UPDATE bookings
		SET patient_id = $1, doctor_id = $2, service_id = $3,
			date = $4, start_time = $5, end_time = $6, confirmed = $7,
			updated_at = $8
		WHERE id = $9
	`
	result, err := r.db.ExecContext(ctx, query,
		booking.PatientID,
		booking.DoctorID,
		booking.ServiceID,
		booking.Date,
		booking.StartTime,
		booking.EndTime,
		booking.Confirmed,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return pkgerrors.NotFound("booking", nil)
	}
	return nil
}

func (r *bookingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete booking: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return pkgerrors.NotFound("booking", nil)
	}
	return nil
}

func (r *bookingRepository) ListByDate(ctx context.Context, date time.Time) ([]*model.Booking, error) {
	query := `
		SELECT id, patient_id, doctor_id, service_id,
			   date, start_time, end_time, confirmed,
			   created_at, updated_at
		FROM bookings
		WHERE date = $1
		ORDER BY start_time ASC
	`
	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, date); err != nil {
		return nil, fmt.Errorf("failed to list bookings by date: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListForDoctorDay(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]*model.Booking, error) {
	query := `
		SELECT id, patient_id, doctor_id, service_id,
			   date, start_time, end_time, confirmed,
			   created_at, updated_at
		FROM bookings
		WHERE doctor_id = $1 AND date = $2
		ORDER BY start_time ASC
	`
	var bookings []*model.Booking
	if err := r.db.SelectContext(ctx, &bookings, query, doctorID, date); err != nil {
		return nil, fmt.Errorf("failed to list doctor bookings: %w", err)
	}
	return bookings, nil
}

func (r *bookingRepository) HasConflict(ctx context.Context, doctorID uuid.UUID, date time.Time, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE doctor_id = $1
			AND date = $2
			AND start_time < $4
			AND end_time > $3
	`
	args := []interface{}{doctorID, date, start, end}

	if excludeID != nil {
		query += " AND id != $5"
		args = append(args, *excludeID)
	}

	query += ")"

	var hasConflict bool
	if err := r.db.GetContext(ctx, &hasConflict, query, args...); err != nil {
		return false, fmt.Errorf("failed to check conflicts: %w", err)
	}
	return hasConflict, nil
}

func (r *bookingRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM bookings WHERE date < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired bookings: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}

func (r *bookingRepository) ListIDsForDoctor(ctx context.Context, doctorID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDsBy(ctx, "doctor_id", doctorID)
}

func (r *bookingRepository) ListIDsForPatient(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDsBy(ctx, "patient_id", patientID)
}

func (r *bookingRepository) ListIDsForService(ctx context.Context, serviceID uuid.UUID) ([]uuid.UUID, error) {
	return r.listIDsBy(ctx, "service_id", serviceID)
}

func (r *bookingRepository) listIDsBy(ctx context.Context, column string, id uuid.UUID) ([]uuid.UUID, error) {
	query := fmt.Sprintf(`SELECT id FROM bookings WHERE %s = $1 ORDER BY date, start_time`, column)
	ids := []uuid.UUID{}
	if err := r.db.SelectContext(ctx, &ids, query, id); err != nil {
		return nil, fmt.Errorf("failed to list booking ids by %s: %w", column, err)
	}
	return ids, nil
}
