package stock

import (
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Balance saldo derivado de un producto en una ubicación. Nunca se persiste.
type Balance struct {
	Quantity     decimal.Decimal `json:"quantity"`
	AvgPrice     decimal.Decimal `json:"avgPrice"`
	Value        decimal.Decimal `json:"value"`
	EnteredValue decimal.Decimal `json:"enteredValue"` // solo almacén: Σ cant·precio de las entradas
}

// Balances saldo por nombre de producto.
type Balances map[string]Balance

// Quantity cantidad de un producto; cero si no aparece.
func (b Balances) Quantity(product string) decimal.Decimal {
	return b[product].Quantity
}

// TotalValue valorización total de la ubicación.
func (b Balances) TotalValue() decimal.Decimal {
	total := decimal.Zero
	for _, bal := range b {
		total = total.Add(bal.Value)
	}
	return total
}

// Query acota el cálculo de saldos.
type Query struct {
	// AsOf limita a movimientos con fecha <= AsOf. Cero = sin límite.
	AsOf entity.Date
	// Snapshot inventario físico de partida (solo fincas). Si existe, se suman únicamente
	// los movimientos posteriores a su fecha.
	Snapshot *entity.Snapshot
	// Prices índice de precios medios. Nil = se calcula desde los movimientos.
	Prices Prices
}

// Delta efecto con signo de un movimiento sobre la cantidad de una ubicación.
// Almacén: entry suma, exit resta. Finca: exit y transfer-in hacia ella suman,
// transfer-out y consumption en ella restan.
func Delta(m entity.Movement, location string) decimal.Decimal {
	q := m.Quantity
	if location == entity.LocationWarehouse {
		switch m.Type {
		case entity.MovementEntry:
			return q
		case entity.MovementExit:
			return q.Neg()
		}
		return decimal.Zero
	}
	switch m.Type {
	case entity.MovementExit:
		if m.Farm == location {
			return q
		}
	case entity.MovementTransferIn:
		if m.TargetFarm() == location {
			return q
		}
	case entity.MovementTransferOut:
		if m.SourceFarm() == location {
			return q.Neg()
		}
	case entity.MovementConsumption:
		if m.Farm == location {
			return q.Neg()
		}
	}
	return decimal.Zero
}

// ComputeBalance pliega la lista de movimientos en el saldo de una ubicación.
// Función pura: no depende del orden de los movimientos ni limita los negativos.
func ComputeBalance(movements []entity.Movement, location string, q Query) Balances {
	prices := q.Prices
	if prices == nil {
		var lines []entity.StockLine
		if q.Snapshot != nil {
			lines = q.Snapshot.Lines
		}
		prices = AveragePrices(movements, lines...)
	}

	qty := map[string]decimal.Decimal{}
	entered := map[string]decimal.Decimal{}

	var since entity.Date
	if q.Snapshot != nil && location != entity.LocationWarehouse {
		since = q.Snapshot.Date
		for product, n := range q.Snapshot.Quantities() {
			qty[product] = n
		}
	}

	for _, m := range movements {
		if m.Product == "" {
			continue
		}
		if !q.AsOf.IsZero() && m.Date.After(q.AsOf) {
			continue
		}
		if !since.IsZero() && !m.Date.After(since) {
			continue
		}
		if !touches(m, location) {
			continue
		}
		qty[m.Product] = qty[m.Product].Add(Delta(m, location))
		if location == entity.LocationWarehouse && m.Type == entity.MovementEntry {
			entered[m.Product] = entered[m.Product].Add(m.Value())
		}
	}

	out := make(Balances, len(qty))
	for product, n := range qty {
		avg := prices.Of(product)
		out[product] = Balance{
			Quantity:     n,
			AvgPrice:     avg,
			Value:        n.Mul(avg),
			EnteredValue: entered[product],
		}
	}
	return out
}

// touches indica si el movimiento pertenece a la ubicación aunque su cantidad sea cero.
func touches(m entity.Movement, location string) bool {
	if location == entity.LocationWarehouse {
		return m.Type == entity.MovementEntry || m.Type == entity.MovementExit
	}
	switch m.Type {
	case entity.MovementExit, entity.MovementConsumption:
		return m.Farm == location
	case entity.MovementTransferIn:
		return m.TargetFarm() == location
	case entity.MovementTransferOut:
		return m.SourceFarm() == location
	}
	return false
}

// ConsumptionValue valor consumido por una finca en [from, to] a precio de movimiento o medio.
func ConsumptionValue(movements []entity.Movement, farm string, from, to entity.Date, prices Prices) decimal.Decimal {
	total := decimal.Zero
	for _, m := range movements {
		if m.Type != entity.MovementConsumption || m.Farm != farm || !m.Date.Between(from, to) {
			continue
		}
		price := m.Price
		if !m.HasPrice() {
			price = prices.Of(m.Product)
		}
		total = total.Add(m.Quantity.Mul(price))
	}
	return total
}
