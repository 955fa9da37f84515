package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

// MovementTypeTransfer tipo de solicitud que genera las dos patas de un traslado.
const MovementTypeTransfer = "transfer"

// MovementRequest entrada para registrar un movimiento. Con type=transfer se exigen
// fromFarm y toFarm y se crean las dos patas.
type MovementRequest struct {
	Type        string          `json:"type" validate:"required,oneof=entry exit consumption transfer"`
	Product     string          `json:"product" validate:"required,max=120"`
	Quantity    decimal.Decimal `json:"quantity" validate:"gt=0"`
	Price       decimal.Decimal `json:"price" validate:"gte=0"`
	Date        string          `json:"date" validate:"required,isodate"`
	Farm        string          `json:"farm" validate:"omitempty,farm"`
	Supplier    string          `json:"supplier" validate:"max=120"`
	Culture     string          `json:"culture"`
	Destination string          `json:"destination"`
	Category    string          `json:"category"`
	FromFarm    string          `json:"fromFarm" validate:"omitempty,farm"`
	ToFarm      string          `json:"toFarm" validate:"omitempty,farm"`
	Notes       string          `json:"notes" validate:"max=500"`
}

// UpdateMovementRequest campos editables; nil = sin cambio. En un traslado se aplican
// a las dos patas.
type UpdateMovementRequest struct {
	Product     *string          `json:"product" validate:"omitempty,min=1,max=120"`
	Quantity    *decimal.Decimal `json:"quantity" validate:"omitempty,gt=0"`
	Price       *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
	Date        *string          `json:"date" validate:"omitempty,isodate"`
	Farm        *string          `json:"farm" validate:"omitempty,farm"`
	Supplier    *string          `json:"supplier" validate:"omitempty,max=120"`
	Culture     *string          `json:"culture"`
	Destination *string          `json:"destination"`
	Notes       *string          `json:"notes" validate:"omitempty,max=500"`
}

// MovementFilter filtros del listado.
type MovementFilter struct {
	Type    string `query:"type" validate:"omitempty,oneof=entry exit consumption transfer-in transfer-out"`
	Farm    string `query:"farm" validate:"omitempty,location"`
	Product string `query:"product"`
	From    string `query:"from" validate:"omitempty,isodate"`
	To      string `query:"to" validate:"omitempty,isodate"`
	Culture string `query:"culture"`
	Melange string `query:"melangeId"`
	PageRequest
}

// MovementListResponse página de movimientos, fecha descendente.
type MovementListResponse struct {
	Items []entity.Movement `json:"items"`
	Page  PageResponse      `json:"page"`
}

// DeleteMovementResponse resultado de un borrado. PairFound=false cuando era una pata de
// traslado sin su complementaria.
type DeleteMovementResponse struct {
	Deleted   []string `json:"deleted"`
	PairFound bool     `json:"pairFound"`
}
