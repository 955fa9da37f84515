package entity

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Las exportaciones históricas guardan cantidades y precios como números JSON.
	decimal.MarshalJSONWithoutQuotes = true
}

// Categorías de producto (valores persistidos).
const (
	CategoryFertilizer = "ENGRAIS"
	CategoryPesticide  = "PHYTOSANITAIRES"
	CategoryAcid       = "ACIDES"
	CategoryOther      = "AUTRES"
	CategoryInvestment = "INVESTISSEMENT"
	CategoryBumblebees = "BOURDONS" // legado: abejorros polinizadores
)

// Unidades de medida.
const (
	UnitKG   = "KG"
	UnitL    = "L"
	UnitUnit = "UNITÉ"
	UnitBox  = "BOITE"
	UnitSack = "SAC"
)

var (
	ProductCategories = []string{CategoryFertilizer, CategoryPesticide, CategoryAcid, CategoryOther, CategoryInvestment, CategoryBumblebees}
	Units             = []string{UnitKG, UnitL, UnitUnit, UnitBox, UnitSack}
)

// Product insumo agrícola del catálogo. El nombre es la clave con la que los movimientos lo referencian.
type Product struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Unit      string           `json:"unit"`
	Category  string           `json:"category"`
	Threshold *decimal.Decimal `json:"threshold,omitempty"` // umbral de alerta propio; nil = umbral global
	Price     decimal.Decimal  `json:"price"`               // precio de catálogo, último recurso para costos
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// ThresholdOr devuelve el umbral del producto o el valor por defecto.
func (p Product) ThresholdOr(def decimal.Decimal) decimal.Decimal {
	if p.Threshold != nil {
		return *p.Threshold
	}
	return def
}

// IsValidCategory valida una categoría de producto.
func IsValidCategory(c string) bool { return slices.Contains(ProductCategories, c) }

// IsValidUnit valida una unidad de medida.
func IsValidUnit(u string) bool { return slices.Contains(Units, u) }
