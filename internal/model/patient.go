package model

type Patient struct {
	Base
	Name        string `db:"name" json:"name"`
	LastName    string `db:"last_name" json:"last_name"`
	PhoneNumber string `db:"phone_number" json:"phone_number"`
}

func (p *Patient) FullName() string {
	return p.Name + " " + p.LastName
}

type CreatePatientRequest struct {
	Name        string `json:"name" binding:"required,max=30"`
	LastName    string `json:"last_name" binding:"required,max=30"`
	PhoneNumber string `json:"phone_number" binding:"required,phone"`
}

type UpdatePatientRequest struct {
	Name        *string `json:"name"`
	LastName    *string `json:"last_name"`
	PhoneNumber *string `json:"phone_number"`
}
