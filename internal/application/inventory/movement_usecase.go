package inventory

import (
	"context"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/transfer"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

// MovementUseCase alta, edición, borrado y listado de movimientos.
type MovementUseCase struct {
	*ledger
	transfers *TransferUseCase
}

// NewMovementUseCase construye el caso de uso.
func NewMovementUseCase(repos Repos, log *logger.Logger) *MovementUseCase {
	l := newLedger(repos, log)
	return &MovementUseCase{ledger: l, transfers: &TransferUseCase{ledger: l}}
}

// Register valida y registra un movimiento. Las salidas, consumos y traslados se controlan
// contra el saldo calculado en ese momento; si no alcanza no se escribe nada.
// Con type=transfer devuelve las dos patas.
func (uc *MovementUseCase) Register(ctx context.Context, in dto.MovementRequest) ([]entity.Movement, error) {
	in.Product = strings.TrimSpace(in.Product)
	in.Supplier = strings.TrimSpace(in.Supplier)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}

	if in.Type == dto.MovementTypeTransfer {
		if in.FromFarm == "" {
			return nil, domain.Invalid("fromFarm", "es obligatorio")
		}
		if in.ToFarm == "" {
			return nil, domain.Invalid("toFarm", "es obligatorio")
		}
		pair, err := uc.transfers.Create(ctx, dto.TransferRequest{
			Product: in.Product, Quantity: in.Quantity, Price: in.Price, Date: in.Date,
			FromFarm: in.FromFarm, ToFarm: in.ToFarm, Notes: in.Notes,
		})
		if err != nil {
			return nil, err
		}
		return []entity.Movement{*pair.Out, *pair.In}, nil
	}

	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	now := uc.now()
	m := entity.Movement{
		ID:        newMovementID(),
		Type:      in.Type,
		Product:   in.Product,
		Quantity:  in.Quantity,
		Price:     in.Price,
		Date:      date,
		Notes:     in.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}

	switch in.Type {
	case entity.MovementEntry:
		m.Supplier = in.Supplier
	case entity.MovementExit:
		if in.Farm == "" {
			return nil, domain.Invalid("farm", "es obligatorio")
		}
		m.Farm = in.Farm
		if err := uc.checkDebits(ctx, movs, entity.LocationWarehouse, map[string]decimal.Decimal{m.Product: m.Quantity}); err != nil {
			return nil, err
		}
	case entity.MovementConsumption:
		if err := validateConsumption(in.Farm, in.Culture, in.Destination); err != nil {
			return nil, err
		}
		m.Farm = in.Farm
		m.Culture = in.Culture
		m.Destination = entity.NormalizeDestination(in.Destination)
		m.Category = in.Category
		if err := uc.checkDebits(ctx, movs, m.Farm, map[string]decimal.Decimal{m.Product: m.Quantity}); err != nil {
			return nil, err
		}
	}

	if err := uc.repos.Movements.Create(ctx, m); err != nil {
		return nil, err
	}
	if m.Type == entity.MovementEntry && m.Supplier != "" {
		if _, err := uc.repos.Suppliers.Add(ctx, m.Supplier); err != nil {
			uc.log.Warn().Err(err).Str("supplier", m.Supplier).Msg("no se pudo registrar el proveedor")
		}
	}
	return []entity.Movement{m}, nil
}

func validateConsumption(farm, culture, destination string) error {
	if farm == "" {
		return domain.Invalid("farm", "es obligatorio")
	}
	if culture == "" {
		return domain.Invalid("culture", "es obligatorio")
	}
	if !entity.HasCulture(farm, culture) {
		return domain.Invalid("culture", "la finca no produce "+culture)
	}
	if destination == "" {
		return nil
	}
	if !entity.IsValidDestination(destination) {
		return domain.Invalid("destination", "destino desconocido")
	}
	if !entity.DestinationAllowed(farm, culture, destination) {
		return domain.Invalid("destination", "destino no disponible para la finca y el cultivo")
	}
	return nil
}

// Get obtiene un movimiento; nil, nil si no existe.
func (uc *MovementUseCase) Get(ctx context.Context, id string) (*entity.Movement, error) {
	return uc.repos.Movements.GetByID(ctx, id)
}

// List filtra y pagina, fecha descendente (a igual fecha, el más reciente primero).
func (uc *MovementUseCase) List(ctx context.Context, f dto.MovementFilter) (*dto.MovementListResponse, error) {
	if err := dto.Validate(f); err != nil {
		return nil, err
	}
	f.DefaultPage()
	var from, to entity.Date
	if f.From != "" {
		from, _ = entity.ParseDate(f.From)
	}
	if f.To != "" {
		to, _ = entity.ParseDate(f.To)
	}

	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]entity.Movement, 0, len(movs))
	for _, m := range movs {
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.Farm != "" && !involves(m, f.Farm) {
			continue
		}
		if f.Product != "" && !strings.EqualFold(m.Product, f.Product) {
			continue
		}
		if f.Culture != "" && m.Culture != f.Culture {
			continue
		}
		if f.Melange != "" && m.MelangeID != f.Melange {
			continue
		}
		if !from.IsZero() && m.Date.Before(from) {
			continue
		}
		if !to.IsZero() && m.Date.After(to) {
			continue
		}
		items = append(items, m)
	}
	sort.SliceStable(items, func(i, j int) bool {
		if c := items[i].Date.Compare(items[j].Date); c != 0 {
			return c > 0
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})

	total := len(items)
	start := min(f.Offset, total)
	end := min(start+f.Limit, total)
	return &dto.MovementListResponse{
		Items: items[start:end],
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

// involves indica si el movimiento afecta a la ubicación.
func involves(m entity.Movement, location string) bool {
	if location == entity.LocationWarehouse {
		return m.Type == entity.MovementEntry || m.Type == entity.MovementExit
	}
	return m.Farm == location || m.FromFarm == location || m.ToFarm == location
}

// Update edita un movimiento. Si es pata de traslado los cambios se aplican también a la
// complementaria. No se vuelve a controlar el saldo.
func (uc *MovementUseCase) Update(ctx context.Context, id string, in dto.UpdateMovementRequest) ([]entity.Movement, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	m, ok := findMovement(movs, id)
	if !ok {
		return nil, domain.ErrNotFound
	}

	var date entity.Date
	if in.Date != nil {
		if date, err = parseDate("date", *in.Date); err != nil {
			return nil, err
		}
	}
	now := uc.now()
	apply := func(x *entity.Movement) {
		if in.Product != nil {
			x.Product = strings.TrimSpace(*in.Product)
		}
		if in.Quantity != nil {
			x.Quantity = *in.Quantity
		}
		if in.Price != nil {
			x.Price = *in.Price
		}
		if in.Date != nil {
			x.Date = date
		}
		if in.Notes != nil {
			x.Notes = *in.Notes
		}
		x.UpdatedAt = now
	}

	if m.IsTransfer() {
		if in.Farm != nil {
			return nil, domain.Invalid("farm", "las fincas de un traslado se editan en el traslado")
		}
		updated := []entity.Movement{m}
		if match, found := transfer.FindPair(movs, m); found {
			updated = append(updated, match.Pair)
		}
		for i := range updated {
			apply(&updated[i])
		}
		if err := uc.repos.Movements.Update(ctx, updated...); err != nil {
			return nil, err
		}
		return updated, nil
	}

	apply(&m)
	if in.Farm != nil {
		m.Farm = *in.Farm
	}
	if in.Supplier != nil {
		m.Supplier = strings.TrimSpace(*in.Supplier)
	}
	if in.Culture != nil {
		m.Culture = *in.Culture
	}
	if in.Destination != nil {
		m.Destination = entity.NormalizeDestination(*in.Destination)
	}
	switch m.Type {
	case entity.MovementExit:
		if !entity.IsFarm(m.Farm) {
			return nil, domain.Invalid("farm", "es obligatorio")
		}
	case entity.MovementConsumption:
		if err := validateConsumption(m.Farm, m.Culture, m.Destination); err != nil {
			return nil, err
		}
	}
	if err := uc.repos.Movements.Update(ctx, m); err != nil {
		return nil, err
	}
	return []entity.Movement{m}, nil
}

// Delete borra un movimiento; en traslados arrastra la pata complementaria.
func (uc *MovementUseCase) Delete(ctx context.Context, id string) (*dto.DeleteMovementResponse, error) {
	ids, pairFound, err := uc.deleteWithPair(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.DeleteMovementResponse{Deleted: ids, PairFound: pairFound}, nil
}
