package usecase

import (
	"context"
	"strings"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/repository"
)

// SettingsUseCase preferencias globales y proveedores.
type SettingsUseCase struct {
	settings  repository.SettingsRepository
	suppliers repository.SupplierRepository
}

// NewSettingsUseCase construye el caso de uso.
func NewSettingsUseCase(settings repository.SettingsRepository, suppliers repository.SupplierRepository) *SettingsUseCase {
	return &SettingsUseCase{settings: settings, suppliers: suppliers}
}

func (uc *SettingsUseCase) Get(ctx context.Context) (entity.Settings, error) {
	return uc.settings.Get(ctx)
}

func (uc *SettingsUseCase) Update(ctx context.Context, in dto.UpdateSettingsRequest) (entity.Settings, error) {
	if err := dto.Validate(in); err != nil {
		return entity.Settings{}, err
	}
	s, err := uc.settings.Get(ctx)
	if err != nil {
		return entity.Settings{}, err
	}
	s.DefaultThreshold = in.DefaultThreshold
	if err := uc.settings.Save(ctx, s); err != nil {
		return entity.Settings{}, err
	}
	return s, nil
}

func (uc *SettingsUseCase) Suppliers(ctx context.Context) ([]string, error) {
	list, err := uc.suppliers.List(ctx)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []string{}
	}
	return list, nil
}

func (uc *SettingsUseCase) AddSupplier(ctx context.Context, in dto.AddSupplierRequest) ([]string, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	return uc.suppliers.Add(ctx, in.Name)
}
