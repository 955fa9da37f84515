package exchange_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/application/exchange"
	"github.com/jhoicas/agro-inventario/internal/domain/costing"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/localstore"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/sqlite"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newService(t *testing.T) (*exchange.Service, *localstore.Store) {
	t.Helper()
	kv, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	s := localstore.New(kv)
	t.Cleanup(func() { _ = s.Close() })
	return exchange.NewService(exchange.Repos{
		Products:  s.Products(),
		Movements: s.Movements(),
		Snapshots: s.Snapshots(),
		Suppliers: s.Suppliers(),
		Settings:  s.Settings(),
		Mixes:     s.Mixes(),
		CostData:  s.CostData(),
		Schema:    s.Schema(),
	}, s, nil), s
}

func seedData(t *testing.T, s *localstore.Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", Name: "MAP", Unit: entity.UnitKG, Category: entity.CategoryFertilizer, Price: d("12.5")}))
	require.NoError(t, s.Movements().Create(ctx,
		entity.Movement{ID: "m1", Type: entity.MovementEntry, Product: "MAP", Quantity: d("100"), Price: d("10"), Date: entity.MustDate("2026-01-05"), Supplier: "Fertima"},
		entity.Movement{ID: "m2", Type: entity.MovementExit, Product: "MAP", Quantity: d("30"), Date: entity.MustDate("2026-01-06"), Farm: entity.FarmAB1},
	))
	require.NoError(t, s.Snapshots().Save(ctx, entity.Snapshot{
		Farm: entity.FarmAB2, Date: entity.MustDate("2025-12-25"),
		Lines: []entity.StockLine{{Product: "MAP", Quantity: d("7"), Price: d("10")}},
	}))
	_, err := s.Suppliers().Add(ctx, "Fertima")
	require.NoError(t, err)
}

// ─────────────────────────────────────────────────────────────────────────────
// Exportar / importar
// ─────────────────────────────────────────────────────────────────────────────

func TestExportClearImport_IdaYVuelta(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	seedData(t, s)

	raw, err := svc.ExportJSON(ctx)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"products", "movements", "stockAB1", "stockAB2", "stockAB3", "suppliers", "settings", "melanges", "costData", "exportDate", "version"} {
		assert.Contains(t, doc, key)
	}

	before, err := svc.Export(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx))
	empty, err := s.Movements().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	res, err := svc.Import(ctx, raw)
	require.NoError(t, err)
	assert.Equal(t, exchange.FormatBackup, res.Format)
	assert.Equal(t, 2, res.Movements)

	after, err := svc.Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.Products, after.Products)
	assert.Equal(t, before.Movements, after.Movements)
	assert.Equal(t, before.StockLines(entity.FarmAB2), after.StockLines(entity.FarmAB2))
	assert.Equal(t, before.Suppliers, after.Suppliers)
}

func TestImport_FormatoNoReconocido(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	seedData(t, s)

	for _, raw := range []string{`{"foo": 1}`, `[1,2,3]`, `no es json`, `{"movements": "x"}`} {
		_, err := svc.Import(ctx, []byte(raw))
		assert.ErrorIs(t, err, exchange.ErrUnrecognizedFormat, raw)
	}
	list, err := s.Movements().List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2, "un documento rechazado no escribe nada")
}

func TestImport_AppDeCostos(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)

	raw := `{"cultures": {
		"AGB2": {"Myrtille": {"Engrais Foliaire": [{"nom": "KELPAK", "qte": [1, 0, 2], "prix": 4}]}},
		"Ferme principale": {"Fraise": {"Pesticides": [{"nom": "SWITCH", "qte": [0.5], "prix": 980}]}}
	}}`
	res, err := svc.Import(ctx, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, exchange.FormatCostApp, res.Format)
	assert.Equal(t, 2, res.CostLines)

	data, err := s.CostData().Get(ctx)
	require.NoError(t, err)
	lines := data.Lines(entity.FarmAB2, entity.CultureBlueberry, costing.CostFoliar)
	require.Len(t, lines, 1)
	assert.Equal(t, "KELPAK", lines[0].Name)
	assert.True(t, d("4").Equal(lines[0].UnitPrice))
	assert.Len(t, data.Lines(entity.FarmAB1, entity.CultureStrawberry, costing.CostPesticides), 1, "sin dígito la finca es AB1")

	_, err = svc.Import(ctx, []byte(raw))
	require.NoError(t, err)
	data, err = s.CostData().Get(ctx)
	require.NoError(t, err)
	assert.Len(t, data.Lines(entity.FarmAB2, entity.CultureBlueberry, costing.CostFoliar), 2, "las líneas se agregan")
}

func TestImport_AppDeStockFusiona(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	seedData(t, s)

	raw := `{
		"products": [{"name": "map", "unit": "KG", "category": "ENGRAIS"}, {"name": "UREE", "unit": "KG", "category": "ENGRAIS"}],
		"stockMovements": [
			{"id": "m1", "type": "entry", "product": "MAP", "quantity": 999, "date": "2026-01-05"},
			{"id": "m9", "type": "consumption", "product": "MAP", "quantity": 2, "date": "2026-01-07T08:00:00Z",
			 "farm": "AGRO BERRY 1", "culture": "Myrtille", "destination": "Hydroponic"}
		],
		"suppliers": ["FERTIMA", "Agri Souss"],
		"stockAB3": [{"product": "UREE", "quantity": 4, "price": 5, "date": "2025-12-25"}]
	}`
	res, err := svc.Import(ctx, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, exchange.FormatStockApp, res.Format)
	assert.Equal(t, 1, res.Products)
	assert.Equal(t, 1, res.Movements)
	assert.Equal(t, 1, res.Suppliers)

	movs, err := s.Movements().List(ctx)
	require.NoError(t, err)
	require.Len(t, movs, 3)
	m1, err := s.Movements().GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, d("100").Equal(m1.Quantity), "un id existente no se pisa")
	m9, err := s.Movements().GetByID(ctx, "m9")
	require.NoError(t, err)
	assert.Equal(t, entity.DestinationHydro, m9.Destination)
	assert.Equal(t, "2026-01-07", m9.Date.String())

	lines, err := s.Snapshots().Lines(ctx, entity.FarmAB3)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	kept, err := s.Snapshots().Lines(ctx, entity.FarmAB2)
	require.NoError(t, err)
	assert.Len(t, kept, 1, "el stock de una finca ausente no se toca")
}

func TestImport_InventarioLegado(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)

	raw := `{
		"movements": [],
		"inventory": [
			{"key": "DECEMBRE_MAP", "month": "DECEMBRE", "product": "MAP", "agb1": 12, "agb2": 0, "agb3": 3},
			{"key": "BRUMAIRE_MAP", "month": "BRUMAIRE", "product": "MAP", "agb1": 1}
		],
		"exportDate": "2026-02-01T10:00:00Z"
	}`
	res, err := svc.Import(ctx, []byte(raw))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Snapshots)

	snaps, err := s.Snapshots().List(ctx, entity.FarmAB1)
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, "2025-12-25", snaps[0].Date.String())
	assert.True(t, d("12").Equal(snaps[0].Lines[0].Quantity))

	ab2, err := s.Snapshots().List(ctx, entity.FarmAB2)
	require.NoError(t, err)
	assert.Empty(t, ab2)
}

// ─────────────────────────────────────────────────────────────────────────────
// Semilla
// ─────────────────────────────────────────────────────────────────────────────

func TestMigrate_FusionaSinPisarDatosDelUsuario(t *testing.T) {
	ctx := context.Background()
	svc, s := newService(t)
	now := time.Now()
	require.NoError(t, s.Products().ReplaceAll(ctx, []entity.Product{
		{ID: "7", Name: "VIEJO V1", CreatedAt: now},
		{ID: "seed-12", Name: "VIEJO V2", CreatedAt: now},
		{ID: "agro-001", Name: "SEMILLA EDITADA", CreatedAt: now},
		{ID: "user-1", Name: "MI PRODUCTO", CreatedAt: now},
		{ID: "user-2", Name: "Map", CreatedAt: now},
	}))

	seed := &exchange.Seed{
		Version: 3,
		Products: []entity.Product{
			{ID: "agro-001", Name: "ACIDE PHOSPHORIQUE"},
			{ID: "agro-002", Name: "MAP"},
		},
		Suppliers: []string{"FERTIMA"},
	}
	res, err := svc.MigrateWith(ctx, seed)
	require.NoError(t, err)
	assert.True(t, res.Applied)
	assert.Equal(t, 2, res.Kept)
	assert.Equal(t, 3, res.Removed)
	assert.Equal(t, 1, res.Seeded)

	products, err := s.Products().List(ctx)
	require.NoError(t, err)
	var ids []string
	for _, p := range products {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []string{"user-1", "user-2", "agro-001"}, ids)

	v, err := s.Schema().Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	again, err := svc.MigrateWith(ctx, seed)
	require.NoError(t, err)
	assert.False(t, again.Applied, "con la versión al día no se vuelve a aplicar")
}

func TestLoadSeed(t *testing.T) {
	seed, err := exchange.LoadSeed()
	require.NoError(t, err)
	assert.Positive(t, seed.Version)
	require.NotEmpty(t, seed.Products)
	for _, p := range seed.Products {
		assert.NotEmpty(t, p.ID)
		assert.True(t, entity.IsValidCategory(p.Category), p.Name)
		assert.True(t, entity.IsValidUnit(p.Unit), p.Name)
	}
}
