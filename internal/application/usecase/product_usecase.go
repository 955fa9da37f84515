package usecase

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD del catálogo. El nombre es la clave con la que los
// movimientos se unen al producto, por eso debe ser único.
type ProductUseCase struct {
	repo repository.ProductRepository
	now  func() time.Time
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(repo repository.ProductRepository) *ProductUseCase {
	return &ProductUseCase{repo: repo, now: time.Now}
}

// Create crea un producto; ErrDuplicate si ya existe uno con el mismo nombre.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	if nameTaken(list, in.Name, "") {
		return nil, domain.ErrDuplicate
	}
	now := uc.now()
	product := &entity.Product{
		ID:        uuid.New().String(),
		Name:      in.Name,
		Unit:      in.Unit,
		Category:  in.Category,
		Threshold: in.Threshold,
		Price:     in.Price,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product), nil
}

// GetByID obtiene un producto; nil, nil si no existe.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product), nil
}

// List lista el catálogo ordenado por nombre. category filtra si no está vacío.
func (uc *ProductUseCase) List(ctx context.Context, category string) (*dto.ProductListResponse, error) {
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for i := range list {
		if category != "" && list[i].Category != category {
			continue
		}
		items = append(items, *dto.ToProductResponse(&list[i]))
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return &dto.ProductListResponse{Items: items, Total: len(items)}, nil
}

// Update actualiza un producto; nil, nil si no existe. Renombrar no reescribe los
// movimientos que usan el nombre anterior.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	var product *entity.Product
	for i := range list {
		if list[i].ID == id {
			product = &list[i]
			break
		}
	}
	if product == nil {
		return nil, nil
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.Invalid("name", "es obligatorio")
		}
		if nameTaken(list, name, id) {
			return nil, domain.ErrDuplicate
		}
		product.Name = name
	}
	if in.Unit != nil {
		product.Unit = *in.Unit
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Threshold != nil {
		t := *in.Threshold
		product.Threshold = &t
	}
	if in.Price != nil {
		product.Price = *in.Price
	}
	product.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, product); err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product), nil
}

// Delete elimina un producto; los movimientos que lo nombran se conservan.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	return uc.repo.Delete(ctx, id)
}

// nameTaken compara sin distinguir mayúsculas, ignorando el producto exceptID.
func nameTaken(list []entity.Product, name, exceptID string) bool {
	for _, p := range list {
		if p.ID != exceptID && strings.EqualFold(strings.TrimSpace(p.Name), name) {
			return true
		}
	}
	return false
}
