package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Wire layouts for date and time-of-day fields. Dates and clock times are
// carried separately, matching the booking storage model.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// ParseDate parses a YYYY-MM-DD date string into a midnight-UTC time.Time.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseClock parses an HH:MM clock string. All clock values share the zero
// date, so Before/After comparisons are time-of-day comparisons.
func ParseClock(s string) (time.Time, error) {
	return time.Parse(TimeLayout, s)
}
