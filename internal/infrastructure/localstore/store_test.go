package localstore_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/localstore"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/sqlite"
)

func newStore(t *testing.T) *localstore.Store {
	t.Helper()
	kv, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	s := localstore.New(kv)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// failingKV falla en toda operación.
type failingKV struct{}

func (failingKV) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("disco lleno")
}
func (failingKV) Set(context.Context, string, []byte) error { return errors.New("disco lleno") }
func (failingKV) Delete(context.Context, ...string) error   { return errors.New("disco lleno") }
func (failingKV) Keys(context.Context) ([]string, error)    { return nil, errors.New("disco lleno") }
func (failingKV) Close() error                              { return nil }

// ─────────────────────────────────────────────────────────────────────────────
// Movimientos
// ─────────────────────────────────────────────────────────────────────────────

func TestMovements_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Movements()

	list, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "sin datos la colección está vacía")

	a := entity.Movement{ID: "a", Type: entity.MovementEntry, Product: "MAP", Quantity: decimal.NewFromInt(10), Date: entity.MustDate("2026-01-05")}
	b := entity.Movement{ID: "b", Type: entity.MovementExit, Product: "MAP", Quantity: decimal.NewFromInt(3), Date: entity.MustDate("2026-01-06"), Farm: entity.FarmAB1}
	require.NoError(t, repo.Create(ctx, a, b))
	assert.ErrorIs(t, repo.Create(ctx, a), domain.ErrDuplicate)

	b.Quantity = decimal.NewFromInt(4)
	require.NoError(t, repo.Update(ctx, b))
	got, err := repo.GetByID(ctx, "b")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Quantity.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, "2026-01-06", got.Date.String())

	assert.ErrorIs(t, repo.Update(ctx, entity.Movement{ID: "zz"}), domain.ErrNotFound)

	n, err := repo.Delete(ctx, "a", "zz")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	missing, err := repo.GetByID(ctx, "a")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_WriteHook(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	var keys []string
	s.OnWrite(func(key string) { keys = append(keys, key) })

	require.NoError(t, s.Movements().Create(ctx, entity.Movement{ID: "a"}))
	_, err := s.Movements().List(ctx)
	require.NoError(t, err)
	require.NoError(t, s.Settings().Save(ctx, entity.DefaultSettings()))

	assert.Equal(t, []string{localstore.KeyMovements, localstore.KeySettings}, keys, "solo las escrituras disparan el hook")
}

func TestStore_FallaDeAlmacenamiento(t *testing.T) {
	ctx := context.Background()
	s := localstore.New(failingKV{})
	called := false
	s.OnWrite(func(string) { called = true })

	_, err := s.Movements().List(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)

	err = s.Settings().Save(ctx, entity.DefaultSettings())
	assert.ErrorIs(t, err, domain.ErrStorage)
	assert.False(t, called, "una escritura fallida no notifica")
}

func TestStore_JSONCorrupto(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.SetRaw(ctx, localstore.KeyProducts, []byte(`{no es json`)))

	_, err := s.Products().List(ctx)
	assert.ErrorIs(t, err, domain.ErrStorage)
}

// ─────────────────────────────────────────────────────────────────────────────
// Inventarios físicos y referencias
// ─────────────────────────────────────────────────────────────────────────────

func TestSnapshots_SaveReemplazaLaFecha(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Snapshots()
	day := entity.MustDate("2025-12-25")

	require.NoError(t, repo.Save(ctx, entity.Snapshot{Farm: entity.FarmAB1, Date: day, Lines: []entity.StockLine{
		{Product: "MAP", Quantity: decimal.NewFromInt(5)},
		{Product: "UREE", Quantity: decimal.NewFromInt(2)},
	}}))
	require.NoError(t, repo.Save(ctx, entity.Snapshot{Farm: entity.FarmAB1, Date: entity.MustDate("2026-01-25"), Lines: []entity.StockLine{
		{Product: "MAP", Quantity: decimal.NewFromInt(1)},
	}}))
	require.NoError(t, repo.Save(ctx, entity.Snapshot{Farm: entity.FarmAB1, Date: day, Lines: []entity.StockLine{
		{Product: "MAP", Quantity: decimal.NewFromInt(7)},
	}}))

	snaps, err := repo.List(ctx, entity.FarmAB1)
	require.NoError(t, err)
	require.Len(t, snaps, 2)
	assert.Equal(t, "2025-12-25", snaps[0].Date.String())
	require.Len(t, snaps[0].Lines, 1)
	assert.True(t, snaps[0].Lines[0].Quantity.Equal(decimal.NewFromInt(7)))

	other, err := repo.List(ctx, entity.FarmAB2)
	require.NoError(t, err)
	assert.Empty(t, other)

	_, err = repo.Lines(ctx, "AGRO BERRY 9")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSuppliers_Add(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Suppliers()

	list, err := repo.Add(ctx, "Fertinagro", " ", "TIMAC")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fertinagro", "TIMAC"}, list)

	list, err = repo.Add(ctx, "timac", "Yara")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fertinagro", "TIMAC", "Yara"}, list)
}

func TestSettings_PorDefecto(t *testing.T) {
	ctx := context.Background()
	repo := newStore(t).Settings()

	s, err := repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, s.DefaultThreshold.Equal(entity.DefaultThreshold))

	require.NoError(t, repo.Save(ctx, entity.Settings{DefaultThreshold: decimal.NewFromInt(25)}))
	s, err = repo.Get(ctx)
	require.NoError(t, err)
	assert.True(t, s.DefaultThreshold.Equal(decimal.NewFromInt(25)))
}

func TestSchema_Version(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	v, err := s.Schema().Version(ctx)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, s.Schema().SetVersion(ctx, 3))
	v, err = s.Schema().Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, v)
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	require.NoError(t, s.Products().Create(ctx, &entity.Product{ID: "p1", Name: "MAP"}))
	require.NoError(t, s.Schema().SetVersion(ctx, 2))

	require.NoError(t, s.Clear(ctx))

	list, err := s.Products().List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
	v, err := s.Schema().Version(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, v, "la versión de esquema sobrevive al borrado")
}
