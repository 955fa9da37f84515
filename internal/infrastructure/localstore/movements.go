package localstore

import (
	"context"

	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/repository"
)

var _ repository.MovementRepository = (*MovementRepo)(nil)

// MovementRepo movimientos en agro_movements, en orden de registro.
type MovementRepo struct {
	s *Store
}

func (r *MovementRepo) List(ctx context.Context) ([]entity.Movement, error) {
	var out []entity.Movement
	if _, err := r.s.load(ctx, KeyMovements, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *MovementRepo) GetByID(ctx context.Context, id string) (*entity.Movement, error) {
	list, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, nil
}

// Create agrega todos los movimientos en una sola escritura.
func (r *MovementRepo) Create(ctx context.Context, movements ...entity.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	ids := make(map[string]struct{}, len(list)+len(movements))
	for _, m := range list {
		ids[m.ID] = struct{}{}
	}
	for _, m := range movements {
		if _, dup := ids[m.ID]; dup {
			return domain.ErrDuplicate
		}
		ids[m.ID] = struct{}{}
	}
	return r.s.save(ctx, KeyMovements, append(list, movements...))
}

func (r *MovementRepo) Update(ctx context.Context, movements ...entity.Movement) error {
	if len(movements) == 0 {
		return nil
	}
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	pos := make(map[string]int, len(list))
	for i, m := range list {
		pos[m.ID] = i
	}
	for _, m := range movements {
		i, ok := pos[m.ID]
		if !ok {
			return domain.ErrNotFound
		}
		list[i] = m
	}
	return r.s.save(ctx, KeyMovements, list)
}

func (r *MovementRepo) Delete(ctx context.Context, ids ...string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	list, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := list[:0]
	for _, m := range list {
		if _, ok := drop[m.ID]; !ok {
			kept = append(kept, m)
		}
	}
	removed := len(list) - len(kept)
	if removed == 0 {
		return 0, nil
	}
	return removed, r.s.save(ctx, KeyMovements, kept)
}

func (r *MovementRepo) ReplaceAll(ctx context.Context, movements []entity.Movement) error {
	if movements == nil {
		movements = []entity.Movement{}
	}
	return r.s.save(ctx, KeyMovements, movements)
}
