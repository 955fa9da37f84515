package repository

import (
	"context"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

// SupplierRepository lista de proveedores.
type SupplierRepository interface {
	List(ctx context.Context) ([]string, error)
	// Add agrega los nombres que no estén; devuelve la lista resultante.
	Add(ctx context.Context, names ...string) ([]string, error)
	ReplaceAll(ctx context.Context, names []string) error
}

// SettingsRepository preferencias globales.
type SettingsRepository interface {
	Get(ctx context.Context) (entity.Settings, error)
	Save(ctx context.Context, settings entity.Settings) error
}

// MixRepository mezclas guardadas por el usuario.
type MixRepository interface {
	List(ctx context.Context) ([]entity.Mix, error)
	Save(ctx context.Context, mix *entity.Mix) error
	Delete(ctx context.Context, id string) error
	ReplaceAll(ctx context.Context, mixes []entity.Mix) error
}

// CostDataRepository datos de costo cargados manualmente.
type CostDataRepository interface {
	Get(ctx context.Context) (entity.CostData, error)
	Save(ctx context.Context, data entity.CostData) error
}

// SchemaRepository versión del esquema de datos sembrados.
type SchemaRepository interface {
	Version(ctx context.Context) (int, error)
	SetVersion(ctx context.Context, version int) error
}
