package stock

import (
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// WeightedAverage costo promedio ponderado: valorTotal / cantidadTotal; cero si la cantidad no es positiva.
func WeightedAverage(valorTotal, cantTotal decimal.Decimal) decimal.Decimal {
	if cantTotal.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return valorTotal.Div(cantTotal)
}

// Prices índice de precio medio por nombre de producto.
type Prices map[string]decimal.Decimal

// Of precio medio del producto; cero si no hay entradas valorizadas ni inventario con precio.
func (p Prices) Of(product string) decimal.Decimal {
	return p[product]
}

// AveragePrices calcula el precio medio global de todos los productos en una sola pasada:
// Σ(cant·precio) / Σ(cant) sobre las entradas con precio > 0. Los productos sin entradas
// valorizadas toman el precio del inventario físico más reciente que lo tenga.
func AveragePrices(movements []entity.Movement, lines ...entity.StockLine) Prices {
	type acc struct{ qty, value decimal.Decimal }
	accs := map[string]*acc{}
	for _, m := range movements {
		if m.Type != entity.MovementEntry || m.Product == "" || !m.HasPrice() {
			continue
		}
		a, ok := accs[m.Product]
		if !ok {
			a = &acc{}
			accs[m.Product] = a
		}
		a.qty = a.qty.Add(m.Quantity)
		a.value = a.value.Add(m.Value())
	}

	out := make(Prices, len(accs))
	for name, a := range accs {
		if a.qty.GreaterThan(decimal.Zero) {
			out[name] = WeightedAverage(a.value, a.qty)
		}
	}

	latest := map[string]entity.StockLine{}
	for _, l := range lines {
		if !l.Price.GreaterThan(decimal.Zero) {
			continue
		}
		if cur, ok := latest[l.Product]; !ok || l.Date.After(cur.Date) {
			latest[l.Product] = l
		}
	}
	for name, l := range latest {
		if _, ok := out[name]; !ok {
			out[name] = l.Price
		}
	}
	return out
}

// AveragePrice precio medio global de un producto (no depende de la ubicación).
func AveragePrice(movements []entity.Movement, product string, lines ...entity.StockLine) decimal.Decimal {
	return AveragePrices(movements, lines...).Of(product)
}
