package stock

import (
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Period rango de fechas inclusivo de una conciliación.
type Period struct {
	Key   string      `json:"key"`
	Label string      `json:"label"`
	Start entity.Date `json:"start"`
	End   entity.Date `json:"end"`
}

// PrevClose fecha de cierre del período anterior (día previo al inicio).
func (p Period) PrevClose() entity.Date { return p.Start.AddDays(-1) }

var calendarMonths = []struct {
	key   string
	label string
	month time.Month
}{
	{"JANVIER", "Janvier", time.January},
	{"FEVRIER", "Février", time.February},
	{"MARS", "Mars", time.March},
	{"AVRIL", "Avril", time.April},
	{"MAI", "Mai", time.May},
	{"JUIN", "Juin", time.June},
	{"JUILLET", "Juillet", time.July},
	{"AOUT", "Août", time.August},
}

// SeasonPeriods calendario de conciliación de la campaña que empieza en septiembre de startYear:
// meses de campaña del 26 al 25 (septiembre a diciembre), el cierre 26→31 de diciembre y luego
// meses calendario de enero a agosto.
func SeasonPeriods(startYear int) []Period {
	campaign := []struct {
		key   string
		label string
		month time.Month
	}{
		{"SEPTEMBRE", "Septembre", time.September},
		{"OCTOBRE", "Octobre", time.October},
		{"NOVEMBRE", "Novembre", time.November},
		{"DECEMBRE", "Décembre (campagne)", time.December},
	}
	out := make([]Period, 0, len(campaign)+1+len(calendarMonths))
	for _, c := range campaign {
		end := entity.NewDate(startYear, c.month, 25)
		out = append(out, Period{
			Key:   c.key,
			Label: fmt.Sprintf("%s %d", c.label, startYear),
			Start: entity.NewDate(startYear, c.month-1, 26),
			End:   end,
		})
	}
	out = append(out, Period{
		Key:   fmt.Sprintf("DECEMBRE_%d", startYear),
		Label: fmt.Sprintf("Décembre %d (26→31)", startYear),
		Start: entity.NewDate(startYear, time.December, 26),
		End:   entity.NewDate(startYear, time.December, 31),
	})
	year := startYear + 1
	for _, c := range calendarMonths {
		start := entity.NewDate(year, c.month, 1)
		out = append(out, Period{
			Key:   c.key,
			Label: fmt.Sprintf("%s %d", c.label, year),
			Start: start,
			End:   start.AddMonths(1).AddDays(-1),
		})
	}
	return out
}

// FindPeriod busca un período por clave.
func FindPeriod(periods []Period, key string) (Period, bool) {
	for _, p := range periods {
		if p.Key == key {
			return p, true
		}
	}
	return Period{}, false
}

// Row fila de conciliación de un producto en una finca.
// Final = Initial + Entries − Exits − Consumption, siempre calculado.
type Row struct {
	Product     string          `json:"product"`
	Initial     decimal.Decimal `json:"initial"`
	Entries     decimal.Decimal `json:"entries"`     // salidas del almacén hacia la finca + transfer-in
	TransfersIn decimal.Decimal `json:"transfersIn"` // parte de Entries que llega por traslado
	Exits       decimal.Decimal `json:"exits"`       // transfer-out
	Consumption decimal.Decimal `json:"consumption"`
	Final       decimal.Decimal `json:"final"`
}

// IsEmpty indica una fila sin ningún valor.
func (r Row) IsEmpty() bool {
	return r.Initial.IsZero() && r.Entries.IsZero() && r.Exits.IsZero() && r.Consumption.IsZero() && r.Final.IsZero()
}

// ReconcilePeriod arma la tabla inicial/entradas/salidas/consumo/final de una finca en un período.
// opening son las cantidades al cierre del día previo al inicio.
func ReconcilePeriod(movements []entity.Movement, farm string, p Period, opening map[string]decimal.Decimal) []Row {
	rows := map[string]*Row{}
	get := func(product string) *Row {
		r, ok := rows[product]
		if !ok {
			r = &Row{Product: product}
			rows[product] = r
		}
		return r
	}
	for product, q := range opening {
		get(product).Initial = q
	}
	for _, m := range movements {
		if m.Product == "" || !m.Date.Between(p.Start, p.End) || !touches(m, farm) {
			continue
		}
		r := get(m.Product)
		switch m.Type {
		case entity.MovementExit:
			r.Entries = r.Entries.Add(m.Quantity)
		case entity.MovementTransferIn:
			r.Entries = r.Entries.Add(m.Quantity)
			r.TransfersIn = r.TransfersIn.Add(m.Quantity)
		case entity.MovementTransferOut:
			r.Exits = r.Exits.Add(m.Quantity)
		case entity.MovementConsumption:
			r.Consumption = r.Consumption.Add(m.Quantity)
		}
	}

	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		r.Final = r.Initial.Add(r.Entries).Sub(r.Exits).Sub(r.Consumption)
		if r.IsEmpty() {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Product < out[j].Product })
	return out
}

// OpeningFor cantidades de una finca al cierre del día anterior a start.
// Usa el inventario físico del cierre anterior si existe; si no, el último inventario previo
// (apertura de campaña) avanzado con los movimientos intermedios; si no hay ninguno, pliega
// todos los movimientos previos desde cero.
func OpeningFor(movements []entity.Movement, farm string, start entity.Date, snapshots []entity.Snapshot) map[string]decimal.Decimal {
	prevClose := start.AddDays(-1)
	var base *entity.Snapshot
	for i := range snapshots {
		s := snapshots[i]
		if s.Farm != "" && s.Farm != farm {
			continue
		}
		if s.Date.After(prevClose) {
			continue
		}
		if base == nil || s.Date.After(base.Date) {
			base = &snapshots[i]
		}
	}

	bal := ComputeBalance(movements, farm, Query{AsOf: prevClose, Snapshot: base, Prices: Prices{}})
	out := make(map[string]decimal.Decimal, len(bal))
	for product, b := range bal {
		out[product] = b.Quantity
	}
	return out
}
