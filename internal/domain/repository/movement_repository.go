package repository

import (
	"context"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

// MovementRepository puerto del registro de movimientos. Las operaciones con varios
// movimientos (patas de traslado, aplicación de mezcla) se escriben en una sola operación.
type MovementRepository interface {
	List(ctx context.Context) ([]entity.Movement, error)
	// GetByID devuelve nil, nil si no existe.
	GetByID(ctx context.Context, id string) (*entity.Movement, error)
	Create(ctx context.Context, movements ...entity.Movement) error
	// Update reemplaza por ID; ErrNotFound si alguno no existe.
	Update(ctx context.Context, movements ...entity.Movement) error
	// Delete elimina por ID y devuelve cuántos se borraron.
	Delete(ctx context.Context, ids ...string) (int, error)
	ReplaceAll(ctx context.Context, movements []entity.Movement) error
}
