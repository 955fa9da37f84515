package costing_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/domain/costing"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/stock"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func conso(product, qty, price, date, farm, culture, dest string) entity.Movement {
	return entity.Movement{
		Type: entity.MovementConsumption, Product: product, Quantity: d(qty), Price: d(price),
		Date: entity.MustDate(date), Farm: farm, Culture: culture, Destination: dest,
	}
}

func TestSeason_Index(t *testing.T) {
	s := costing.FullSeason(2025)
	idx, ok := s.Index(entity.MustDate("2025-09-01"))
	require.True(t, ok)
	assert.Equal(t, 0, idx)

	idx, ok = s.Index(entity.MustDate("2026-08-31"))
	require.True(t, ok)
	assert.Equal(t, 11, idx)

	_, ok = s.Index(entity.MustDate("2025-08-31"))
	assert.False(t, ok, "agosto anterior pertenece a la campaña previa")

	_, ok = costing.ReportSeason(2025).Index(entity.MustDate("2026-02-01"))
	assert.False(t, ok, "febrero queda fuera del informe de cinco meses")

	assert.Equal(t, 4, costing.MonthIndex(time.January))
	assert.Equal(t, 2025, costing.SeasonStartYear(entity.MustDate("2026-03-10")))
	assert.Equal(t, []string{"Sept", "Oct", "Nov", "Déc", "Jan"}, costing.ReportSeason(2025).Labels())
}

func TestAggregate(t *testing.T) {
	catalog := entity.NewCatalog([]entity.Product{
		{Name: "MAP", Category: entity.CategoryFertilizer, Price: d("99")},
		{Name: "SOUFRE", Category: entity.CategoryPesticide, Price: d("7")},
	})
	movs := []entity.Movement{
		{Type: entity.MovementEntry, Product: "MAP", Quantity: d("100"), Price: d("10"), Date: entity.MustDate("2025-09-01")},
		conso("MAP", "10", "0", "2025-09-15", entity.FarmAB1, entity.CultureBlueberry, entity.DestinationSoil),
		conso("MAP", "5", "12", "2026-01-03", entity.FarmAB1, entity.CultureBlueberry, entity.DestinationSoil),
		conso("MAP", "2", "0", "2025-10-01", entity.FarmAB1, entity.CultureBlueberry, entity.DestinationHydro),
		conso("SOUFRE", "3", "0", "2025-10-02", entity.FarmAB1, entity.CultureBlueberry, ""),
		conso("MAP", "50", "0", "2025-09-15", entity.FarmAB2, entity.CultureBlueberry, entity.DestinationSoil),  // otra finca
		conso("MAP", "50", "0", "2025-09-15", entity.FarmAB1, entity.CultureStrawberry, entity.DestinationSoil), // otro cultivo
		conso("MAP", "50", "0", "2025-08-31", entity.FarmAB1, entity.CultureBlueberry, entity.DestinationSoil),  // fuera de campaña
	}
	prices := stock.AveragePrices(movs)
	manual := entity.CostData{}
	manual.Append(entity.FarmAB1, entity.CultureBlueberry, costing.CostFoliar, entity.CostLine{
		Name: "KELPAK", UnitPrice: d("4"), MonthlyQty: []decimal.Decimal{d("1"), d("0"), d("2")},
	})

	r := costing.NewAggregator(nil).Aggregate(movs, catalog, prices,
		costing.Filter{Farm: entity.FarmAB1, Culture: entity.CultureBlueberry, Season: costing.FullSeason(2025)}, manual)

	require.Len(t, r.Categories, len(costing.Categories))
	assert.Len(t, r.Months, 12)

	sol, ok := r.Category(costing.CostSoilPowder)
	require.True(t, ok)
	assert.True(t, d("15").Equal(sol.TotalQty))
	assert.True(t, d("160").Equal(sol.TotalCost), sol.TotalCost.String()) // 10·10 (medio) + 5·12
	assert.True(t, d("100").Equal(sol.MonthlyCost[0]))
	assert.True(t, d("60").Equal(sol.MonthlyCost[4]))
	require.NotNil(t, sol.PerHectare)
	assert.True(t, d("12.02").Equal(sol.Area))

	hydro, _ := r.Category(costing.CostHydroPowder)
	assert.True(t, d("20").Equal(hydro.TotalCost))

	pest, _ := r.Category(costing.CostPesticides)
	assert.True(t, d("21").Equal(pest.TotalCost), "sin entradas valorizadas se usa el precio de catálogo")
	require.Len(t, pest.Products, 1)
	assert.Equal(t, entity.CategoryPesticide, pest.Products[0].Nature)

	fol, _ := r.Category(costing.CostFoliar)
	assert.True(t, d("12").Equal(fol.TotalCost))
	require.Len(t, fol.Products, 1)
	assert.True(t, fol.Products[0].Manual)

	bees, _ := r.Category(costing.CostBumblebees)
	assert.True(t, bees.TotalCost.IsZero())

	assert.True(t, d("213").Equal(r.TotalCost), r.TotalCost.String())
}

func TestAggregate_TodasLasFincas(t *testing.T) {
	movs := []entity.Movement{
		conso("MAP", "1", "10", "2025-09-15", entity.FarmAB1, entity.CultureBlueberry, entity.DestinationHydro),
		conso("MAP", "2", "10", "2025-09-15", entity.FarmAB3, entity.CultureBlueberry, entity.DestinationHydro),
	}
	r := costing.NewAggregator(nil).Aggregate(movs, entity.NewCatalog(nil), stock.Prices{},
		costing.Filter{Culture: entity.CultureBlueberry, Season: costing.ReportSeason(2025)}, nil)

	hydro, _ := r.Category(costing.CostHydroPowder)
	assert.True(t, d("30").Equal(hydro.TotalCost))
	assert.True(t, d("50.61").Equal(hydro.Area), hydro.Area.String()) // 9.13 + 11.78 + 29.7
	assert.Len(t, hydro.MonthlyQty, 5)
}

func TestPerHectare_SuperficieCero(t *testing.T) {
	_, ok := costing.PerHectare(d("100"), decimal.Zero)
	assert.False(t, ok)

	v, ok := costing.PerHectare(d("100"), d("4"))
	require.True(t, ok)
	assert.True(t, d("25").Equal(v))

	assert.True(t, costing.AreaFor(entity.FarmAB3, entity.CultureBlueberry, costing.CostSoilPowder).IsZero())
	assert.True(t, d("21.15").Equal(costing.AreaFor(entity.FarmAB1, entity.CultureBlueberry, costing.CostBumblebees)))
}

func TestCategoriesFor(t *testing.T) {
	assert.NotContains(t, costing.CategoriesFor(entity.FarmAB3, entity.CultureBlueberry), costing.CostSoilPowder)
	assert.NotContains(t, costing.CategoriesFor(entity.FarmAB1, entity.CultureStrawberry), costing.CostHydroPowder)
	assert.Len(t, costing.CategoriesFor(entity.FarmAB1, entity.CultureBlueberry), 5)
}
