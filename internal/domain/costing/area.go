package costing

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

// AreaFor superficie a usar como divisor del costo por hectárea.
// Polvo de suelo usa la superficie de suelo, hidroponía la hidropónica y el resto
// la foliar, luego la de pesticidas y luego la de suelo. Farm o Culture vacíos suman todas.
func AreaFor(farm, culture, category string) decimal.Decimal {
	total := decimal.Zero
	for _, f := range entity.FarmIDs() {
		if farm != "" && f != farm {
			continue
		}
		for _, c := range entity.FarmCultures[f] {
			if culture != "" && c != culture {
				continue
			}
			total = total.Add(areaOne(f, c, category))
		}
	}
	return total
}

func areaOne(farm, culture, category string) decimal.Decimal {
	switch category {
	case CostSoilPowder:
		return entity.Area(farm, culture, entity.AreaSoil)
	case CostHydroPowder:
		return entity.Area(farm, culture, entity.AreaHydro)
	}
	for _, t := range []string{entity.AreaFoliar, entity.AreaPesticides, entity.AreaSoil} {
		if a := entity.Area(farm, culture, t); a.GreaterThan(decimal.Zero) {
			return a
		}
	}
	return decimal.Zero
}

// PerHectare costo por hectárea; false si la superficie es cero (no aplica).
func PerHectare(totalCost, area decimal.Decimal) (decimal.Decimal, bool) {
	if !area.GreaterThan(decimal.Zero) {
		return decimal.Zero, false
	}
	return totalCost.Div(area), true
}

// CategoriesFor categorías de costo aplicables a una finca y cultivo:
// AB3 no tiene suelo y la fresa no tiene hidroponía.
func CategoriesFor(farm, culture string) []string {
	out := make([]string, 0, len(Categories))
	for _, c := range Categories {
		if c == CostSoilPowder && farm == entity.FarmAB3 {
			continue
		}
		if c == CostHydroPowder && culture == entity.CultureStrawberry {
			continue
		}
		out = append(out, c)
	}
	return out
}
