package model

import (
	"time"

	"github.com/google/uuid"
)

// ServiceHistory mirrors the current state of a booking, one row per booking
// keyed by BookingID. Rows are created when the booking is created, updated in
// place when it changes, and retained permanently after it is deleted. The
// referenced entities are nullable: if a patient, doctor or service is removed
// later, the snapshot keeps the row and loses only the reference.
type ServiceHistory struct {
	Base
	BookingID uuid.UUID  `db:"booking_id" json:"booking_id"`
	PatientID *uuid.UUID `db:"patient_id" json:"patient_id"`
	DoctorID  *uuid.UUID `db:"doctor_id" json:"doctor_id"`
	ServiceID *uuid.UUID `db:"service_id" json:"service_id"`
	Date      time.Time  `db:"date" json:"date"`
	StartTime time.Time  `db:"start_time" json:"start_time"`
	EndTime   time.Time  `db:"end_time" json:"end_time"`
	Confirmed bool       `db:"confirmed" json:"confirmed"`
}
