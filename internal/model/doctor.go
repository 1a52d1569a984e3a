package model

import (
	"regexp"
)

// phoneRegex accepts an optional country code or a leading zero followed by
// 10-15 digits, e.g. "+79991234567" or "0991234567".
var phoneRegex = regexp.MustCompile(`^(\+\d{1,3}|0)\d{10,15}$`)

// ValidPhone reports whether s is an acceptable phone number.
func ValidPhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// Doctor shares its identity with the owning user account: Doctor.ID is the
// account id, and it is also the notification topic for this doctor.
type Doctor struct {
	Base
	Name        string `db:"name" json:"name"`
	LastName    string `db:"last_name" json:"last_name"`
	PhoneNumber string `db:"phone_number" json:"phone_number"`
	Profession  string `db:"profession" json:"profession"`
	Description string `db:"description" json:"description"`
	Schedule    string `db:"schedule" json:"schedule"`

	// Services offered by this doctor, populated on detail reads.
	Services []*Service `db:"-" json:"services,omitempty"`
}

func (d *Doctor) FullName() string {
	return d.Name + " " + d.LastName
}

type CreateDoctorRequest struct {
	AccountID   string `json:"account_id" binding:"required,uuid"`
	Name        string `json:"name" binding:"required,max=30"`
	LastName    string `json:"last_name" binding:"required,max=30"`
	PhoneNumber string `json:"phone_number" binding:"required,phone"`
	Profession  string `json:"profession" binding:"required,max=255"`
	Description string `json:"description"`
	Schedule    string `json:"schedule"`
}

type UpdateDoctorRequest struct {
	Name        *string `json:"name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
	Profession  *string `json:"profession"`
	Description *string `json:"description"`
	Schedule    *string `json:"schedule"`
}
