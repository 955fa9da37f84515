package entity

import (
	"slices"

	"github.com/shopspring/decimal"
)

// StockLine línea de inventario físico de una finca en una fecha.
type StockLine struct {
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Date     Date            `json:"date"`
}

// Snapshot inventario físico de una finca a una fecha; punto de partida de los cálculos de stock.
type Snapshot struct {
	Farm  string      `json:"farm"`
	Date  Date        `json:"date"`
	Lines []StockLine `json:"lines"`
}

// Quantities cantidades por producto.
func (s Snapshot) Quantities() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(s.Lines))
	for _, l := range s.Lines {
		out[l.Product] = out[l.Product].Add(l.Quantity)
	}
	return out
}

// SnapshotsFromLines agrupa las líneas persistidas de una finca por fecha, en orden cronológico.
func SnapshotsFromLines(farm string, lines []StockLine) []Snapshot {
	byDate := map[string]*Snapshot{}
	var out []*Snapshot
	for _, l := range lines {
		key := l.Date.String()
		s, ok := byDate[key]
		if !ok {
			s = &Snapshot{Farm: farm, Date: l.Date}
			byDate[key] = s
			out = append(out, s)
		}
		s.Lines = append(s.Lines, l)
	}
	slices.SortStableFunc(out, func(a, b *Snapshot) int { return a.Date.Compare(b.Date) })
	res := make([]Snapshot, 0, len(out))
	for _, s := range out {
		res = append(res, *s)
	}
	return res
}
