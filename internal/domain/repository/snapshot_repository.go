package repository

import (
	"context"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

// SnapshotRepository inventarios físicos por finca, guardados como listas de líneas.
type SnapshotRepository interface {
	Lines(ctx context.Context, farm string) ([]entity.StockLine, error)
	SetLines(ctx context.Context, farm string, lines []entity.StockLine) error
	// Save reemplaza las líneas de la misma finca y fecha.
	Save(ctx context.Context, snapshot entity.Snapshot) error
	List(ctx context.Context, farm string) ([]entity.Snapshot, error)
}
