package stock_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/stock"
)

func TestSeasonPeriods(t *testing.T) {
	periods := stock.SeasonPeriods(2025)
	require.Len(t, periods, 13)

	sept, ok := stock.FindPeriod(periods, "SEPTEMBRE")
	require.True(t, ok)
	assert.Equal(t, "2025-08-26", sept.Start.String())
	assert.Equal(t, "2025-09-25", sept.End.String())

	dec, ok := stock.FindPeriod(periods, "DECEMBRE_2025")
	require.True(t, ok)
	assert.Equal(t, "2025-12-26", dec.Start.String())
	assert.Equal(t, "2025-12-31", dec.End.String())

	feb, ok := stock.FindPeriod(periods, "FEVRIER")
	require.True(t, ok)
	assert.Equal(t, "2026-02-01", feb.Start.String())
	assert.Equal(t, "2026-02-28", feb.End.String())
	assert.Equal(t, "2026-01-31", feb.PrevClose().String())

	// Los períodos son contiguos.
	for i := 1; i < len(periods); i++ {
		assert.Equal(t, periods[i-1].End.AddDays(1).String(), periods[i].Start.String(), periods[i].Key)
	}

	_, ok = stock.FindPeriod(periods, "INEXISTANT")
	assert.False(t, ok)
}

func TestReconcilePeriod_Identidad(t *testing.T) {
	jan, _ := stock.FindPeriod(stock.SeasonPeriods(2025), "JANVIER")
	out, in := transfer("MAP", "2.5", "2026-01-15", entity.FarmAB2, entity.FarmAB1)
	back, _ := transfer("MAP", "1.25", "2026-01-16", entity.FarmAB1, entity.FarmAB3)
	movs := []entity.Movement{
		at(mv(entity.MovementExit, "MAP", "20", "0", "2026-01-03"), entity.FarmAB1),
		at(mv(entity.MovementConsumption, "MAP", "7.3", "0", "2026-01-20"), entity.FarmAB1),
		at(mv(entity.MovementConsumption, "MAP", "100", "0", "2026-02-01"), entity.FarmAB1), // fuera del período
		out, in, back,
	}
	opening := map[string]decimal.Decimal{"MAP": d("4.1"), "UREE": d("3")}

	rows := stock.ReconcilePeriod(movs, entity.FarmAB1, jan, opening)
	require.Len(t, rows, 2)

	mapRow := rows[0]
	assert.Equal(t, "MAP", mapRow.Product)
	assertDec(t, "4.1", mapRow.Initial)
	assertDec(t, "22.5", mapRow.Entries)
	assertDec(t, "2.5", mapRow.TransfersIn)
	assertDec(t, "1.25", mapRow.Exits)
	assertDec(t, "7.3", mapRow.Consumption)
	assertDec(t, "18.05", mapRow.Final)

	for _, r := range rows {
		want := r.Initial.Add(r.Entries).Sub(r.Exits).Sub(r.Consumption)
		assert.True(t, want.Equal(r.Final), r.Product)
	}
	assert.Equal(t, "UREE", rows[1].Product)
	assertDec(t, "3", rows[1].Final)
}

func TestOpeningFor(t *testing.T) {
	movs := []entity.Movement{
		at(mv(entity.MovementExit, "MAP", "10", "0", "2025-12-10"), entity.FarmAB1),
		at(mv(entity.MovementExit, "MAP", "6", "0", "2025-12-28"), entity.FarmAB1),
		at(mv(entity.MovementConsumption, "MAP", "1", "0", "2026-01-02"), entity.FarmAB1),
	}
	opening := entity.Snapshot{Farm: entity.FarmAB1, Date: entity.MustDate("2025-12-25"), Lines: []entity.StockLine{
		{Product: "MAP", Quantity: d("30"), Date: entity.MustDate("2025-12-25")},
	}}

	t.Run("cierre anterior exacto", func(t *testing.T) {
		closing := entity.Snapshot{Farm: entity.FarmAB1, Date: entity.MustDate("2025-12-31"), Lines: []entity.StockLine{
			{Product: "MAP", Quantity: d("33"), Date: entity.MustDate("2025-12-31")},
		}}
		got := stock.OpeningFor(movs, entity.FarmAB1, entity.MustDate("2026-01-01"), []entity.Snapshot{opening, closing})
		assertDec(t, "33", got["MAP"])
	})

	t.Run("apertura de campaña avanzada", func(t *testing.T) {
		got := stock.OpeningFor(movs, entity.FarmAB1, entity.MustDate("2026-01-01"), []entity.Snapshot{opening})
		assertDec(t, "36", got["MAP"]) // 30 + 6
	})

	t.Run("sin inventarios", func(t *testing.T) {
		got := stock.OpeningFor(movs, entity.FarmAB1, entity.MustDate("2026-01-01"), nil)
		assertDec(t, "16", got["MAP"])
	})

	t.Run("ignora inventarios de otra finca", func(t *testing.T) {
		other := opening
		other.Farm = entity.FarmAB2
		got := stock.OpeningFor(movs, entity.FarmAB1, entity.MustDate("2026-01-01"), []entity.Snapshot{other})
		assertDec(t, "16", got["MAP"])
	})
}
