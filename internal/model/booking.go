package model

import (
	"time"

	"github.com/google/uuid"
)

// Booking links one patient, one doctor and one service to a date and a
// half-open time interval [StartTime, EndTime).
type Booking struct {
	Base
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID `db:"doctor_id" json:"doctor_id"`
	ServiceID uuid.UUID `db:"service_id" json:"service_id"`
	Date      time.Time `db:"date" json:"date"`
	StartTime time.Time `db:"start_time" json:"start_time"`
	EndTime   time.Time `db:"end_time" json:"end_time"`
	Confirmed bool      `db:"confirmed" json:"confirmed"`
}

// Overlaps reports whether the half-open intervals [s1,e1) and [s2,e2)
// intersect. Touching boundaries do not overlap.
func Overlaps(s1, e1, s2, e2 time.Time) bool {
	return s1.Before(e2) && e1.After(s2)
}

// BookingDetail is a booking joined with its referenced entities, used for
// read responses and event snapshots.
type BookingDetail struct {
	Booking
	Patient *Patient `json:"patient"`
	Doctor  *Doctor  `json:"doctor"`
	Service *Service `json:"service"`
}

type CreateBookingRequest struct {
	PatientID uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID `json:"doctor_id" binding:"required"`
	ServiceID uuid.UUID `json:"service_id" binding:"required"`
	Date      string    `json:"date" binding:"required"`
	StartTime string    `json:"start_time" binding:"required"`
	EndTime   string    `json:"end_time" binding:"required"`
	Confirmed bool      `json:"confirmed"`
}

type UpdateBookingRequest struct {
	PatientID *uuid.UUID `json:"patient_id"`
	DoctorID  *uuid.UUID `json:"doctor_id"`
	ServiceID *uuid.UUID `json:"service_id"`
	Date      *string    `json:"date"`
	StartTime *string    `json:"start_time"`
	EndTime   *string    `json:"end_time"`
	Confirmed *bool      `json:"confirmed"`
}
