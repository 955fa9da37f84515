package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

// CreateProductRequest entrada para crear un producto.
type CreateProductRequest struct {
	Name      string           `json:"name" validate:"required,max=120"`
	Unit      string           `json:"unit" validate:"required,unit"`
	Category  string           `json:"category" validate:"required,category"`
	Threshold *decimal.Decimal `json:"threshold" validate:"omitempty,gte=0"`
	Price     decimal.Decimal  `json:"price" validate:"gte=0"`
}

// UpdateProductRequest entrada para actualizar un producto; los campos nil no cambian.
type UpdateProductRequest struct {
	Name      *string          `json:"name" validate:"omitempty,min=1,max=120"`
	Unit      *string          `json:"unit" validate:"omitempty,unit"`
	Category  *string          `json:"category" validate:"omitempty,category"`
	Threshold *decimal.Decimal `json:"threshold" validate:"omitempty,gte=0"`
	Price     *decimal.Decimal `json:"price" validate:"omitempty,gte=0"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Unit      string           `json:"unit"`
	Category  string           `json:"category"`
	Threshold *decimal.Decimal `json:"threshold,omitempty"`
	Price     decimal.Decimal  `json:"price"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ProductListResponse listado de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Total int               `json:"total"`
}

// ToProductResponse mapea la entidad.
func ToProductResponse(p *entity.Product) *ProductResponse {
	if p == nil {
		return nil
	}
	return &ProductResponse{
		ID:        p.ID,
		Name:      p.Name,
		Unit:      p.Unit,
		Category:  p.Category,
		Threshold: p.Threshold,
		Price:     p.Price,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}
