package localstore

import (
	"context"

	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo productos en agro_products.
type ProductRepo struct {
	s *Store
}

func (r *ProductRepo) List(ctx context.Context) ([]entity.Product, error) {
	var out []entity.Product
	if _, err := r.s.load(ctx, KeyProducts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepo) GetByID(ctx context.Context, id string) (*entity.Product, error) {
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

// Create agrega al final; ErrDuplicate si el ID ya existe.
func (r *ProductRepo) Create(ctx context.Context, product *entity.Product) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	for _, p := range list {
		if p.ID == product.ID {
			return domain.ErrDuplicate
		}
	}
	return r.s.save(ctx, KeyProducts, append(list, *product))
}

func (r *ProductRepo) Update(ctx context.Context, product *entity.Product) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == product.ID {
			list[i] = *product
			return r.s.save(ctx, KeyProducts, list)
		}
	}
	return domain.ErrNotFound
}

// Delete borra sin cascada: los movimientos que lo nombran quedan.
func (r *ProductRepo) Delete(ctx context.Context, id string) error {
	list, err := r.List(ctx)
	if err != nil {
		return err
	}
	for i := range list {
		if list[i].ID == id {
			return r.s.save(ctx, KeyProducts, append(list[:i], list[i+1:]...))
		}
	}
	return domain.ErrNotFound
}

func (r *ProductRepo) ReplaceAll(ctx context.Context, products []entity.Product) error {
	if products == nil {
		products = []entity.Product{}
	}
	return r.s.save(ctx, KeyProducts, products)
}
