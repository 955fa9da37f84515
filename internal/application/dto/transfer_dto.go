package dto

import "github.com/shopspring/decimal"

// TransferRequest entrada para crear un traslado entre fincas.
type TransferRequest struct {
	Product  string          `json:"product" validate:"required,max=120"`
	Quantity decimal.Decimal `json:"quantity" validate:"gt=0"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
	Date     string          `json:"date" validate:"required,isodate"`
	FromFarm string          `json:"fromFarm" validate:"required,farm"`
	ToFarm   string          `json:"toFarm" validate:"required,farm"`
	Notes    string          `json:"notes" validate:"max=500"`
}

// UpdateTransferRequest campos editables de un traslado; nil = sin cambio.
type UpdateTransferRequest struct {
	Product  *string          `json:"product" validate:"omitempty,min=1,max=120"`
	Quantity *decimal.Decimal `json:"quantity" validate:"omitempty,gt=0"`
	Price    *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Date     *string          `json:"date" validate:"omitempty,isodate"`
	FromFarm *string          `json:"fromFarm" validate:"omitempty,farm"`
	ToFarm   *string          `json:"toFarm" validate:"omitempty,farm"`
	Notes    *string          `json:"notes" validate:"omitempty,max=500"`
}
