package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/application/usecase"
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

// ─────────────────────────────────────────────────────────────────────────────
// Productos
// ─────────────────────────────────────────────────────────────────────────────

func TestProduct_CreateYNombreUnico(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(newStore(t).Products())

	p, err := uc.Create(ctx, dto.CreateProductRequest{
		Name: "  MAP ", Unit: entity.UnitKG, Category: entity.CategoryFertilizer, Price: decimal.NewFromInt(12),
	})
	require.NoError(t, err)
	assert.Equal(t, "MAP", p.Name)
	assert.NotEmpty(t, p.ID)

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "map", Unit: entity.UnitKG, Category: entity.CategoryFertilizer})
	assert.ErrorIs(t, err, domain.ErrDuplicate, "el nombre es único sin distinguir mayúsculas")

	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "UREE", Unit: "TONELADA", Category: entity.CategoryFertilizer})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProduct_UpdateYDelete(t *testing.T) {
	ctx := context.Background()
	uc := usecase.NewProductUseCase(newStore(t).Products())

	a, err := uc.Create(ctx, dto.CreateProductRequest{Name: "MAP", Unit: entity.UnitKG, Category: entity.CategoryFertilizer})
	require.NoError(t, err)
	_, err = uc.Create(ctx, dto.CreateProductRequest{Name: "SOUFRE", Unit: entity.UnitKG, Category: entity.CategoryPesticide})
	require.NoError(t, err)

	taken := "soufre"
	_, err = uc.Update(ctx, a.ID, dto.UpdateProductRequest{Name: &taken})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	threshold := decimal.NewFromInt(25)
	updated, err := uc.Update(ctx, a.ID, dto.UpdateProductRequest{Threshold: &threshold})
	require.NoError(t, err)
	require.NotNil(t, updated.Threshold)
	assert.True(t, threshold.Equal(*updated.Threshold))

	missing, err := uc.Update(ctx, "no-existe", dto.UpdateProductRequest{Threshold: &threshold})
	require.NoError(t, err)
	assert.Nil(t, missing)

	list, err := uc.List(ctx, entity.CategoryPesticide)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, "SOUFRE", list.Items[0].Name)

	require.NoError(t, uc.Delete(ctx, a.ID))
	got, err := uc.GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, uc.Delete(ctx, a.ID), domain.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// Preferencias y proveedores
// ─────────────────────────────────────────────────────────────────────────────

func TestSettings_UmbralYProveedores(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)
	uc := usecase.NewSettingsUseCase(s.Settings(), s.Suppliers())

	got, err := uc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, entity.DefaultThreshold.Equal(got.DefaultThreshold))

	_, err = uc.Update(ctx, dto.UpdateSettingsRequest{DefaultThreshold: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err = uc.Update(ctx, dto.UpdateSettingsRequest{DefaultThreshold: decimal.NewFromInt(15)})
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(15).Equal(got.DefaultThreshold))

	list, err := uc.Suppliers(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = uc.AddSupplier(ctx, dto.AddSupplierRequest{Name: "Fertima"})
	require.NoError(t, err)
	list, err = uc.AddSupplier(ctx, dto.AddSupplierRequest{Name: " FERTIMA "})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fertima"}, list)
}
