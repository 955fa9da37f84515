package dto

import "github.com/shopspring/decimal"

// UpdateSettingsRequest preferencias globales.
type UpdateSettingsRequest struct {
	DefaultThreshold decimal.Decimal `json:"defaultThreshold" validate:"gt=0"`
}

// AddSupplierRequest alta de proveedor.
type AddSupplierRequest struct {
	Name string `json:"name" validate:"required,max=120"`
}
