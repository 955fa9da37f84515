package localstore

import (
	"context"
	"fmt"

	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/repository"
)

var _ repository.SnapshotRepository = (*SnapshotRepo)(nil)

// SnapshotRepo líneas de inventario por finca en agro_stock_ab1..3.
type SnapshotRepo struct {
	s *Store
}

func (r *SnapshotRepo) key(farm string) (string, error) {
	k, ok := StockKey(farm)
	if !ok {
		return "", domain.Invalid("farm", fmt.Sprintf("finca desconocida: %q", farm))
	}
	return k, nil
}

func (r *SnapshotRepo) Lines(ctx context.Context, farm string) ([]entity.StockLine, error) {
	k, err := r.key(farm)
	if err != nil {
		return nil, err
	}
	var out []entity.StockLine
	if _, err := r.s.load(ctx, k, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *SnapshotRepo) SetLines(ctx context.Context, farm string, lines []entity.StockLine) error {
	k, err := r.key(farm)
	if err != nil {
		return err
	}
	if lines == nil {
		lines = []entity.StockLine{}
	}
	return r.s.save(ctx, k, lines)
}

// Save reemplaza las líneas de la misma fecha y conserva las demás.
func (r *SnapshotRepo) Save(ctx context.Context, snapshot entity.Snapshot) error {
	lines, err := r.Lines(ctx, snapshot.Farm)
	if err != nil {
		return err
	}
	kept := make([]entity.StockLine, 0, len(lines)+len(snapshot.Lines))
	for _, l := range lines {
		if !l.Date.Equal(snapshot.Date) {
			kept = append(kept, l)
		}
	}
	for _, l := range snapshot.Lines {
		l.Date = snapshot.Date
		kept = append(kept, l)
	}
	return r.SetLines(ctx, snapshot.Farm, kept)
}

func (r *SnapshotRepo) List(ctx context.Context, farm string) ([]entity.Snapshot, error) {
	lines, err := r.Lines(ctx, farm)
	if err != nil {
		return nil, err
	}
	return entity.SnapshotsFromLines(farm, lines), nil
}
