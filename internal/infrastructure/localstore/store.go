// Package localstore guarda cada colección como un documento JSON bajo una clave fija del
// almacén clave-valor. Cada escritura es un leer-modificar-escribir completo.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/repository"
)

// Claves de las colecciones.
const (
	KeyProducts      = "agro_products"
	KeyMovements     = "agro_movements"
	KeyStockAB1      = "agro_stock_ab1"
	KeyStockAB2      = "agro_stock_ab2"
	KeyStockAB3      = "agro_stock_ab3"
	KeySuppliers     = "agro_suppliers"
	KeyCostData      = "agro_cost_data"
	KeyMixes         = "agro_melanges"
	KeySettings      = "agro_settings"
	KeySchemaVersion = "agro_schema_version"
)

var stockKeys = map[string]string{
	entity.FarmAB1: KeyStockAB1,
	entity.FarmAB2: KeyStockAB2,
	entity.FarmAB3: KeyStockAB3,
}

// StockKey clave de las líneas de inventario de una finca.
func StockKey(farm string) (string, bool) {
	k, ok := stockKeys[farm]
	return k, ok
}

// DataKeys claves de datos (sin la versión de esquema).
func DataKeys() []string {
	return []string{KeyProducts, KeyMovements, KeyStockAB1, KeyStockAB2, KeyStockAB3,
		KeySuppliers, KeyCostData, KeyMixes, KeySettings}
}

// WriteHook se invoca después de cada escritura exitosa.
type WriteHook func(key string)

// Store adaptador de las colecciones sobre un KVStore.
type Store struct {
	kv repository.KVStore

	mu    sync.RWMutex
	hooks []WriteHook
}

// New construye el adaptador.
func New(kv repository.KVStore) *Store {
	return &Store{kv: kv}
}

// OnWrite registra un hook de escritura (el programador de respaldos).
func (s *Store) OnWrite(h WriteHook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks = append(s.hooks, h)
}

// Close cierra el almacén subyacente.
func (s *Store) Close() error { return s.kv.Close() }

// Products repositorio de productos.
func (s *Store) Products() *ProductRepo { return &ProductRepo{s: s} }

// Movements repositorio de movimientos.
func (s *Store) Movements() *MovementRepo { return &MovementRepo{s: s} }

// Snapshots repositorio de inventarios físicos.
func (s *Store) Snapshots() *SnapshotRepo { return &SnapshotRepo{s: s} }

// Suppliers repositorio de proveedores.
func (s *Store) Suppliers() *SupplierRepo { return &SupplierRepo{s: s} }

// Settings repositorio de preferencias.
func (s *Store) Settings() *SettingsRepo { return &SettingsRepo{s: s} }

// Mixes repositorio de mezclas guardadas.
func (s *Store) Mixes() *MixRepo { return &MixRepo{s: s} }

// CostData repositorio de datos de costo manuales.
func (s *Store) CostData() *CostDataRepo { return &CostDataRepo{s: s} }

// Schema repositorio de la versión de esquema.
func (s *Store) Schema() *SchemaRepo { return &SchemaRepo{s: s} }

// Clear borra todas las colecciones de datos.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, DataKeys()...); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	for _, k := range DataKeys() {
		s.notify(k)
	}
	return nil
}

// Raw devuelve el JSON crudo de una clave.
func (s *Store) Raw(ctx context.Context, key string) (json.RawMessage, bool, error) {
	b, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	return b, ok, nil
}

// SetRaw reemplaza el valor de una clave sin validarlo.
func (s *Store) SetRaw(ctx context.Context, key string, value json.RawMessage) error {
	if err := s.kv.Set(ctx, key, value); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStorage, err)
	}
	s.notify(key)
	return nil
}

// load decodifica la clave en dst; false si no existe.
func (s *Store) load(ctx context.Context, key string, dst any) (bool, error) {
	b, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return false, fmt.Errorf("%w: leer %s: %w", domain.ErrStorage, key, err)
	}
	if !ok || len(b) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return false, fmt.Errorf("%w: decodificar %s: %w", domain.ErrStorage, key, err)
	}
	return true, nil
}

func (s *Store) save(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: codificar %s: %w", domain.ErrStorage, key, err)
	}
	if err := s.kv.Set(ctx, key, b); err != nil {
		return fmt.Errorf("%w: escribir %s: %w", domain.ErrStorage, key, err)
	}
	s.notify(key)
	return nil
}

func (s *Store) notify(key string) {
	s.mu.RLock()
	hooks := s.hooks
	s.mu.RUnlock()
	for _, h := range hooks {
		h(key)
	}
}
