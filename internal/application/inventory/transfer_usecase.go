package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/transfer"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

// TransferUseCase traslados entre fincas. Un traslado se guarda como dos movimientos
// (transfer-out, transfer-in) con el mismo transferId.
type TransferUseCase struct {
	*ledger
}

// NewTransferUseCase construye el caso de uso.
func NewTransferUseCase(repos Repos, log *logger.Logger) *TransferUseCase {
	return &TransferUseCase{ledger: newLedger(repos, log)}
}

// Create valida, controla el saldo de la finca de origen y escribe las dos patas juntas.
func (uc *TransferUseCase) Create(ctx context.Context, in dto.TransferRequest) (*transfer.Pair, error) {
	in.Product = strings.TrimSpace(in.Product)
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	if in.FromFarm == in.ToFarm {
		return nil, domain.ErrSameFarm
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}

	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	if err := uc.checkDebits(ctx, movs, in.FromFarm, map[string]decimal.Decimal{in.Product: in.Quantity}); err != nil {
		return nil, err
	}

	t := entity.Transfer{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Product:  in.Product,
		Quantity: in.Quantity,
		Price:    in.Price,
		Date:     date,
		FromFarm: in.FromFarm,
		ToFarm:   in.ToFarm,
		Notes:    in.Notes,
	}
	out, inLeg := t.Legs(newMovementID(), newMovementID(), uc.now())
	if err := uc.repos.Movements.Create(ctx, out, inLeg); err != nil {
		return nil, err
	}
	return &transfer.Pair{Transfer: t, Out: &out, In: &inLeg, Rule: transfer.MatchLinkID}, nil
}

// List traslados reconstruidos, fecha descendente. Incluye pares legados sin vínculo.
func (uc *TransferUseCase) List(ctx context.Context) ([]transfer.Pair, error) {
	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	pairs := transfer.Pairs(movs)
	if pairs == nil {
		pairs = []transfer.Pair{}
	}
	return pairs, nil
}

// Get busca por transferId o por el ID de cualquiera de las patas.
func (uc *TransferUseCase) Get(ctx context.Context, id string) (*transfer.Pair, error) {
	pairs, err := uc.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range pairs {
		p := &pairs[i]
		if p.Transfer.ID == id || (p.Out != nil && p.Out.ID == id) || (p.In != nil && p.In.ID == id) {
			return p, nil
		}
	}
	return nil, domain.ErrNotFound
}

// Update edita las dos patas a la vez, sin volver a controlar el saldo.
func (uc *TransferUseCase) Update(ctx context.Context, id string, in dto.UpdateTransferRequest) (*transfer.Pair, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	p, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	t := p.Transfer
	if in.Product != nil {
		t.Product = strings.TrimSpace(*in.Product)
	}
	if in.Quantity != nil {
		t.Quantity = *in.Quantity
	}
	if in.Price != nil {
		t.Price = *in.Price
	}
	if in.Date != nil {
		if t.Date, err = parseDate("date", *in.Date); err != nil {
			return nil, err
		}
	}
	if in.FromFarm != nil {
		t.FromFarm = *in.FromFarm
	}
	if in.ToFarm != nil {
		t.ToFarm = *in.ToFarm
	}
	if in.Notes != nil {
		t.Notes = *in.Notes
	}
	if t.FromFarm == t.ToFarm {
		return nil, domain.ErrSameFarm
	}

	now := uc.now()
	var updated []entity.Movement
	if p.Out != nil {
		leg := *p.Out
		project(&leg, t, now)
		leg.Farm = t.FromFarm
		p.Out = &leg
		updated = append(updated, leg)
	}
	if p.In != nil {
		leg := *p.In
		project(&leg, t, now)
		leg.Farm = t.ToFarm
		p.In = &leg
		updated = append(updated, leg)
	}
	if err := uc.repos.Movements.Update(ctx, updated...); err != nil {
		return nil, err
	}
	p.Transfer = t
	return p, nil
}

// project copia los datos del traslado en una pata existente. El transferId de un par legado
// se completa para que el vínculo pase a ser estructural.
func project(leg *entity.Movement, t entity.Transfer, now time.Time) {
	leg.Product = t.Product
	leg.Quantity = t.Quantity
	leg.Price = t.Price
	leg.Date = t.Date
	leg.FromFarm = t.FromFarm
	leg.ToFarm = t.ToFarm
	leg.Notes = t.Notes
	if leg.TransferID == "" {
		leg.TransferID = t.ID
	}
	leg.UpdatedAt = now
}

// Delete borra el traslado (las dos patas). id puede ser el transferId o el de una pata.
func (uc *TransferUseCase) Delete(ctx context.Context, id string) (*dto.DeleteMovementResponse, error) {
	p, err := uc.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	var ids []string
	if p.Out != nil {
		ids = append(ids, p.Out.ID)
	}
	if p.In != nil {
		ids = append(ids, p.In.ID)
	}
	if !p.Complete() {
		uc.log.Warn().Str("transfer_id", p.Transfer.ID).Msg("traslado incompleto; se borra la pata existente")
	}
	if _, err := uc.repos.Movements.Delete(ctx, ids...); err != nil {
		return nil, err
	}
	return &dto.DeleteMovementResponse{Deleted: ids, PairFound: p.Complete()}, nil
}
