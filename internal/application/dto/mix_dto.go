package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

// MixIngredientRequest ingrediente y dosis.
type MixIngredientRequest struct {
	Name     string          `json:"nom" validate:"required,max=120"`
	Quantity decimal.Decimal `json:"qte" validate:"gte=0"`
	Unit     string          `json:"unite"`
}

// SaveMixRequest entrada para guardar una mezcla propia.
type SaveMixRequest struct {
	Name        string                 `json:"nom" validate:"required,max=120"`
	Culture     string                 `json:"culture" validate:"required"`
	Type        string                 `json:"type" validate:"required,oneof=Sol Hydro"`
	Ingredients []MixIngredientRequest `json:"produits" validate:"required,min=1,dive"`
}

// ApplyMixRequest aplica una mezcla (predefinida o guardada, por nombre o id) en una finca.
// Ingredients reemplaza la receta si se envía (dosis editadas); los de cantidad cero se omiten.
type ApplyMixRequest struct {
	Mix         string                 `json:"melange" validate:"required"`
	Farm        string                 `json:"farm" validate:"required,farm"`
	Culture     string                 `json:"culture"`
	Date        string                 `json:"date" validate:"required,isodate"`
	Ingredients []MixIngredientRequest `json:"produits" validate:"omitempty,dive"`
	Notes       string                 `json:"notes" validate:"max=500"`
}

// ApplyMixResponse consumos generados, con su lote.
type ApplyMixResponse struct {
	MelangeID string            `json:"melangeId"`
	Movements []entity.Movement `json:"movements"`
	TotalCost decimal.Decimal   `json:"totalCost"`
}

// MixListResponse mezclas predefinidas y guardadas.
type MixListResponse struct {
	Predefined []entity.Mix `json:"predefined"`
	Saved      []entity.Mix `json:"saved"`
}
