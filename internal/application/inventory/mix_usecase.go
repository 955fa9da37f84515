package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/costing"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

// MixUseCase mezclas: listado, guardado y aplicación como lote de consumos.
type MixUseCase struct {
	*ledger
}

// NewMixUseCase construye el caso de uso.
func NewMixUseCase(repos Repos, log *logger.Logger) *MixUseCase {
	return &MixUseCase{ledger: newLedger(repos, log)}
}

// List mezclas predefinidas y guardadas.
func (uc *MixUseCase) List(ctx context.Context) (*dto.MixListResponse, error) {
	saved, err := uc.repos.Mixes.List(ctx)
	if err != nil {
		return nil, err
	}
	if saved == nil {
		saved = []entity.Mix{}
	}
	return &dto.MixListResponse{Predefined: entity.PredefinedMixes(), Saved: saved}, nil
}

// Save guarda una mezcla propia; si ya hay una guardada con el mismo nombre se reemplaza.
func (uc *MixUseCase) Save(ctx context.Context, in dto.SaveMixRequest) (*entity.Mix, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	for _, p := range entity.PredefinedMixes() {
		if strings.EqualFold(p.Name, in.Name) {
			return nil, domain.ErrDuplicate
		}
	}
	saved, err := uc.repos.Mixes.List(ctx)
	if err != nil {
		return nil, err
	}
	mix := &entity.Mix{ID: uuid.New().String(), Name: in.Name, Culture: in.Culture, Type: in.Type}
	for _, s := range saved {
		if strings.EqualFold(s.Name, in.Name) {
			mix.ID = s.ID
		}
	}
	for _, ing := range in.Ingredients {
		mix.Ingredients = append(mix.Ingredients, entity.MixIngredient{
			Name: strings.TrimSpace(ing.Name), Quantity: ing.Quantity, Unit: ing.Unit,
		})
	}
	if err := uc.repos.Mixes.Save(ctx, mix); err != nil {
		return nil, err
	}
	return mix, nil
}

// Delete borra una mezcla guardada.
func (uc *MixUseCase) Delete(ctx context.Context, id string) error {
	return uc.repos.Mixes.Delete(ctx, id)
}

// find busca por id o nombre, primero entre las guardadas.
func (uc *MixUseCase) find(ctx context.Context, key string) (*entity.Mix, error) {
	saved, err := uc.repos.Mixes.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, list := range [][]entity.Mix{saved, entity.PredefinedMixes()} {
		for i := range list {
			if list[i].ID == key || strings.EqualFold(list[i].Name, key) {
				return &list[i], nil
			}
		}
	}
	return nil, domain.ErrNotFound
}

// Apply genera un consumo por ingrediente con un melangeId común, al precio medio de cada
// producto. El saldo de la finca se controla para todos los ingredientes antes de escribir:
// o se registran todos o ninguno.
func (uc *MixUseCase) Apply(ctx context.Context, in dto.ApplyMixRequest) (*dto.ApplyMixResponse, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	mix, err := uc.find(ctx, in.Mix)
	if err != nil {
		return nil, err
	}
	culture := in.Culture
	if culture == "" {
		culture = mix.Culture
	}
	destination := mix.Destination()
	if err := validateConsumption(in.Farm, culture, destination); err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}

	ingredients := mix.Ingredients
	if len(in.Ingredients) > 0 {
		ingredients = make([]entity.MixIngredient, 0, len(in.Ingredients))
		for _, ing := range in.Ingredients {
			ingredients = append(ingredients, entity.MixIngredient{Name: ing.Name, Quantity: ing.Quantity, Unit: ing.Unit})
		}
	}

	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := uc.prices(ctx, movs)
	if err != nil {
		return nil, err
	}
	category := costing.CostSoilPowder
	if destination == entity.DestinationHydro {
		category = costing.CostHydroPowder
	}

	batchID := uuid.Must(uuid.NewV7()).String()
	now := uc.now()
	debits := map[string]decimal.Decimal{}
	total := decimal.Zero
	var batch []entity.Movement
	for _, ing := range ingredients {
		if !ing.Quantity.IsPositive() {
			continue
		}
		product := strings.ToUpper(strings.TrimSpace(ing.Name))
		price := prices.Of(product)
		batch = append(batch, entity.Movement{
			ID:          newMovementID(),
			Type:        entity.MovementConsumption,
			Product:     product,
			Quantity:    ing.Quantity,
			Price:       price,
			Date:        date,
			Farm:        in.Farm,
			Culture:     culture,
			Destination: destination,
			Category:    category,
			MelangeID:   batchID,
			Melange:     mix.Name,
			Notes:       in.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
		debits[product] = debits[product].Add(ing.Quantity)
		total = total.Add(ing.Quantity.Mul(price))
	}
	if len(batch) == 0 {
		return nil, domain.Invalid("produits", "ningún producto con cantidad")
	}
	if err := uc.checkDebits(ctx, movs, in.Farm, debits); err != nil {
		return nil, err
	}
	if err := uc.repos.Movements.Create(ctx, batch...); err != nil {
		return nil, err
	}
	return &dto.ApplyMixResponse{MelangeID: batchID, Movements: batch, TotalCost: total}, nil
}

// Cancel anula una aplicación borrando todos los consumos del lote.
func (uc *MixUseCase) Cancel(ctx context.Context, melangeID string) (int, error) {
	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return 0, err
	}
	var ids []string
	for _, m := range movs {
		if m.MelangeID == melangeID {
			ids = append(ids, m.ID)
		}
	}
	if len(ids) == 0 {
		return 0, domain.ErrNotFound
	}
	return uc.repos.Movements.Delete(ctx, ids...)
}
