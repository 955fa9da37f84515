package localstore

import (
	"context"
	"strconv"
	"strings"

	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/repository"
)

var (
	_ repository.SupplierRepository = (*SupplierRepo)(nil)
	_ repository.SettingsRepository = (*SettingsRepo)(nil)
	_ repository.MixRepository      = (*MixRepo)(nil)
	_ repository.CostDataRepository = (*CostDataRepo)(nil)
	_ repository.SchemaRepository   = (*SchemaRepo)(nil)
)

// SupplierRepo nombres de proveedores en agro_suppliers.
type SupplierRepo struct {
	s *Store
}

func (r *SupplierRepo) List(ctx context.Context) ([]string, error) {
	var out []string
	if _, err := r.s.load(ctx, KeySuppliers, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Add agrega los nombres nuevos (sin distinguir mayúsculas); no escribe si no hay cambios.
func (r *SupplierRepo) Add(ctx context.Context, names ...string) ([]string, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(list))
	for _, n := range list {
		seen[strings.ToUpper(n)] = struct{}{}
	}
	changed := false
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[strings.ToUpper(n)]; ok {
			continue
		}
		seen[strings.ToUpper(n)] = struct{}{}
		list = append(list, n)
		changed = true
	}
	if !changed {
		return list, nil
	}
	return list, r.s.save(ctx, KeySuppliers, list)
}

func (r *SupplierRepo) ReplaceAll(ctx context.Context, names []string) error {
	if names == nil {
		names = []string{}
	}
	return r.s.save(ctx, KeySuppliers, names)
}

// SettingsRepo preferencias en agro_settings.
type SettingsRepo struct {
	s *Store
}

// Get devuelve las preferencias; sin valor guardado o umbral no positivo se usa el por defecto.
func (r *SettingsRepo) Get(ctx context.Context) (entity.Settings, error) {
	out := entity.DefaultSettings()
	if _, err := r.s.load(ctx, KeySettings, &out); err != nil {
		return entity.Settings{}, err
	}
	if !out.DefaultThreshold.IsPositive() {
		out.DefaultThreshold = entity.DefaultThreshold
	}
	return out, nil
}

func (r *SettingsRepo) Save(ctx context.Context, settings entity.Settings) error {
	return r.s.save(ctx, KeySettings, settings)
}

// MixRepo mezclas guardadas en agro_melanges.
type MixRepo struct {
	s *Store
}

func (r *MixRepo) List(ctx context.Context) ([]entity.Mix, error) {
	var out []entity.Mix
	if _, err := r.s.load(ctx, KeyMixes, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Save inserta o reemplaza por ID.
func (r *MixRepo) Save(ctx context.Context, mix *entity.Mix) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == mix.ID {
			list[i] = *mix
			return r.s.save(ctx, KeyMixes, list)
		}
	}
	return r.s.save(ctx, KeyMixes, append(list, *mix))
}

func (r *MixRepo) Delete(ctx context.Context, id string) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			return r.s.save(ctx, KeyMixes, append(list[:i], list[i+1:]...))
		}
	}
	return domain.ErrNotFound
}

func (r *MixRepo) ReplaceAll(ctx context.Context, mixes []entity.Mix) error {
	if mixes == nil {
		mixes = []entity.Mix{}
	}
	return r.s.save(ctx, KeyMixes, mixes)
}

// CostDataRepo datos de costo en agro_cost_data.
type CostDataRepo struct {
	s *Store
}

func (r *CostDataRepo) Get(ctx context.Context) (entity.CostData, error) {
	out := entity.CostData{}
	if _, err := r.s.load(ctx, KeyCostData, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CostDataRepo) Save(ctx context.Context, data entity.CostData) error {
	if data == nil {
		data = entity.CostData{}
	}
	return r.s.save(ctx, KeyCostData, data)
}

// SchemaRepo entero en agro_schema_version; 0 si no existe.
type SchemaRepo struct {
	s *Store
}

func (r *SchemaRepo) Version(ctx context.Context) (int, error) {
	b, ok, err := r.s.Raw(ctx, KeySchemaVersion)
	if err != nil || !ok {
		return 0, err
	}
	v, err := strconv.Atoi(strings.Trim(strings.TrimSpace(string(b)), `"`))
	if err != nil {
		return 0, nil
	}
	return v, nil
}

func (r *SchemaRepo) SetVersion(ctx context.Context, version int) error {
	return r.s.save(ctx, KeySchemaVersion, version)
}
