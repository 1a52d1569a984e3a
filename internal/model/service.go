package model

import (
	"github.com/shopspring/decimal"
)

// Service is a catalog entry offered by doctors and referenced by bookings.
type Service struct {
	Base
	Name  string          `db:"name" json:"name"`
	Price decimal.Decimal `db:"price" json:"price"`
}

type CreateServiceRequest struct {
	Name  string          `json:"name" binding:"required,max=100"`
	Price decimal.Decimal `json:"price" binding:"required"`
}

type UpdateServiceRequest struct {
	Name  *string          `json:"name"`
	Price *decimal.Decimal `json:"price"`
}
