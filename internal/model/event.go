package model

type BookingEventType string

const (
	BookingCreated BookingEventType = "booking.created"
	BookingUpdated BookingEventType = "booking.updated"
	BookingDeleted BookingEventType = "booking.deleted"
)

// BookingEvent is emitted by the booking lifecycle after a mutation commits.
// Created events carry New, deleted events carry the pre-delete snapshot in
// Old, updated events carry both.
type BookingEvent struct {
	Type BookingEventType `json:"type"`
	New  *BookingDetail   `json:"new,omitempty"`
	Old  *BookingDetail   `json:"old,omitempty"`
}

// Snapshot returns the detail describing the booking's current state: New
// for creates and updates, Old for deletes.
func (e *BookingEvent) Snapshot() *BookingDetail {
	if e.New != nil {
		return e.New
	}
	return e.Old
}
