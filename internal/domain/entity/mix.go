package entity

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Tipos de mezcla.
const (
	MixTypeSoil  = "Sol"
	MixTypeHydro = "Hydro"
)

// MixIngredient producto y dosis de una mezcla.
type MixIngredient struct {
	Name     string          `json:"nom"`
	Quantity decimal.Decimal `json:"qte"`
	Unit     string          `json:"unite"`
}

// Mix receta de fertirrigación (mélange). Al aplicarse genera un consumo por ingrediente.
type Mix struct {
	ID          string          `json:"id,omitempty"`
	Name        string          `json:"nom"`
	Culture     string          `json:"culture"`
	Type        string          `json:"type"`
	Ingredients []MixIngredient `json:"produits"`
	Predefined  bool            `json:"predefined,omitempty"`
}

// Destination destino de consumo de los movimientos que genera la mezcla.
func (m Mix) Destination() string {
	if m.Type == MixTypeHydro {
		return DestinationHydro
	}
	return DestinationSoil
}

func ing(name, qty, unit string) MixIngredient {
	return MixIngredient{Name: name, Quantity: decimal.RequireFromString(qty), Unit: unit}
}

// PredefinedMixes mezclas estándar por cultivo (copia).
func PredefinedMixes() []Mix { return slices.Clone(predefinedMixes) }

var predefinedMixes = []Mix{
	{
		Name: "Myrtille Sol", Culture: CultureBlueberry, Type: MixTypeSoil, Predefined: true,
		Ingredients: []MixIngredient{
			ing("ACIDE PHOSPHORIQUE", "35", "L"),
			ing("ACIDE SULFIRIQUE", "35", "L"),
			ing("ENTEC 21% (NOVATEC SOLUB 21%)", "40", "kg"),
			ing("MAP", "40", "kg"),
			ing("SULFATE MAGNESUIM", "30", "kg"),
			ing("SULFATE DE POTASSE", "15", "kg"),
			ing("FEROXIM", "5", "kg"),
			ing("MANVERT BIOMIX", "2.5", "kg"),
			ing("PERFECTOSE", "3", "L"),
			ing("ALGOBAZ", "0.4", "kg"),
			ing("SULFATE DE ZINC", "0.5", "kg"),
			ing("VITAL CU", "1", "L"),
			ing("BORTRAC", "0.05", "L"),
		},
	},
	{
		Name: "Myrtille Hydro", Culture: CultureBlueberry, Type: MixTypeHydro, Predefined: true,
		Ingredients: []MixIngredient{
			ing("ACIDE PHOSPHORIQUE", "25", "L"),
			ing("ACIDE NITRIQUE", "20", "L"),
			ing("MAP", "30", "kg"),
			ing("NITRATE DE POTASSE", "30", "kg"),
			ing("SULFATE MAGNESUIM", "25", "kg"),
			ing("NITRATE DE CALCIUM", "20", "kg"),
			ing("FEROXIM", "3", "kg"),
			ing("MANVERT BIOMIX", "2", "kg"),
		},
	},
	{
		Name: "Fraise Sol", Culture: CultureStrawberry, Type: MixTypeSoil, Predefined: true,
		Ingredients: []MixIngredient{
			ing("AMMONITRATE", "30", "kg"),
			ing("NITRATE DE POTASSE", "50", "kg"),
			ing("NITRATE DE MAGNESIUM", "20", "kg"),
			ing("NITRATE DE CALCIUM", "40", "kg"),
			ing("MAP", "25", "kg"),
			ing("SULFATE DE POTASSE", "15", "kg"),
			ing("FEROXIM", "3", "kg"),
			ing("MICROMIX", "5", "kg"),
			ing("ACIDE PHOSPHORIQUE", "20", "L"),
		},
	},
}
