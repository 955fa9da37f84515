package inventory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

// SnapshotUseCase inventarios físicos por finca.
type SnapshotUseCase struct {
	*ledger
}

// NewSnapshotUseCase construye el caso de uso.
func NewSnapshotUseCase(repos Repos, log *logger.Logger) *SnapshotUseCase {
	return &SnapshotUseCase{ledger: newLedger(repos, log)}
}

// Save guarda el inventario; reemplaza el de la misma finca y fecha.
func (uc *SnapshotUseCase) Save(ctx context.Context, in dto.SnapshotRequest) (*entity.Snapshot, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	snap := entity.Snapshot{Farm: in.Farm, Date: date}
	seen := map[string]bool{}
	for _, l := range in.Lines {
		name := strings.TrimSpace(l.Product)
		if seen[strings.ToUpper(name)] {
			return nil, domain.Invalid("lines", "producto repetido: "+name)
		}
		seen[strings.ToUpper(name)] = true
		snap.Lines = append(snap.Lines, entity.StockLine{Product: name, Quantity: l.Quantity, Price: l.Price, Date: date})
	}
	if err := uc.repos.Snapshots.Save(ctx, snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// List inventarios de una finca en orden cronológico.
func (uc *SnapshotUseCase) List(ctx context.Context, farm string) (*dto.SnapshotListResponse, error) {
	if !entity.IsFarm(farm) {
		return nil, domain.Invalid("farm", "finca desconocida")
	}
	snaps, err := uc.repos.Snapshots.List(ctx, farm)
	if err != nil {
		return nil, err
	}
	if snaps == nil {
		snaps = []entity.Snapshot{}
	}
	return &dto.SnapshotListResponse{Farm: farm, Snapshots: snaps}, nil
}

// Capture guarda como inventario físico el saldo calculado de la finca a esa fecha
// (cierre de período). Se omiten los productos con saldo cero.
func (uc *SnapshotUseCase) Capture(ctx context.Context, in dto.CaptureSnapshotRequest) (*entity.Snapshot, error) {
	if err := dto.Validate(in); err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := uc.prices(ctx, movs)
	if err != nil {
		return nil, err
	}
	bal, _, err := uc.balance(ctx, movs, in.Farm, date, prices)
	if err != nil {
		return nil, err
	}
	products := make([]string, 0, len(bal))
	for p, b := range bal {
		if !b.Quantity.IsZero() {
			products = append(products, p)
		}
	}
	sort.Strings(products)

	snap := entity.Snapshot{Farm: in.Farm, Date: date, Lines: make([]entity.StockLine, 0, len(products))}
	for _, p := range products {
		snap.Lines = append(snap.Lines, entity.StockLine{
			Product: p, Quantity: bal[p].Quantity, Price: bal[p].AvgPrice, Date: date,
		})
	}
	if err := uc.repos.Snapshots.Save(ctx, snap); err != nil {
		return nil, err
	}
	return &snap, nil
}
