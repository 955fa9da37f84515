// Package inventory casos de uso sobre el registro de movimientos: alta con control de saldo,
// traslados, mezclas, inventarios físicos y consultas de saldos, costos y alertas.
package inventory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/repository"
	"github.com/jhoicas/agro-inventario/internal/domain/stock"
	"github.com/jhoicas/agro-inventario/internal/domain/transfer"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

// Repos puertos de persistencia que usan los casos de uso de inventario.
type Repos struct {
	Products  repository.ProductRepository
	Movements repository.MovementRepository
	Snapshots repository.SnapshotRepository
	Suppliers repository.SupplierRepository
	Settings  repository.SettingsRepository
	Mixes     repository.MixRepository
	CostData  repository.CostDataRepository
}

// ledger lógica compartida: saldos actuales, control de débitos y borrado de patas.
type ledger struct {
	repos Repos
	log   *logger.Logger
	now   func() time.Time
}

func newLedger(repos Repos, log *logger.Logger) *ledger {
	if log == nil {
		log = logger.Nop()
	}
	return &ledger{repos: repos, log: log, now: time.Now}
}

func newMovementID() string { return uuid.Must(uuid.NewV7()).String() }

// latestSnapshot último inventario físico de la finca con fecha <= asOf (cero = sin límite).
func (l *ledger) latestSnapshot(ctx context.Context, farm string, asOf entity.Date) (*entity.Snapshot, error) {
	if !entity.IsFarm(farm) {
		return nil, nil
	}
	snaps, err := l.repos.Snapshots.List(ctx, farm)
	if err != nil {
		return nil, err
	}
	var best *entity.Snapshot
	for i := range snaps {
		if !asOf.IsZero() && snaps[i].Date.After(asOf) {
			continue
		}
		if best == nil || snaps[i].Date.After(best.Date) {
			best = &snaps[i]
		}
	}
	return best, nil
}

// prices índice global de precios medios: entradas valorizadas y, como respaldo, las líneas
// con precio de los inventarios físicos de todas las fincas.
func (l *ledger) prices(ctx context.Context, movements []entity.Movement) (stock.Prices, error) {
	var lines []entity.StockLine
	for _, farm := range entity.FarmIDs() {
		fl, err := l.repos.Snapshots.Lines(ctx, farm)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fl...)
	}
	return stock.AveragePrices(movements, lines...), nil
}

// balance saldo de una ubicación valorizado con prices; en fincas parte del último inventario físico.
func (l *ledger) balance(ctx context.Context, movements []entity.Movement, location string, asOf entity.Date, prices stock.Prices) (stock.Balances, *entity.Snapshot, error) {
	snap, err := l.latestSnapshot(ctx, location, asOf)
	if err != nil {
		return nil, nil, err
	}
	if prices == nil {
		prices = stock.Prices{}
	}
	return stock.ComputeBalance(movements, location, stock.Query{AsOf: asOf, Snapshot: snap, Prices: prices}), snap, nil
}

// checkDebits verifica que cada débito (producto → cantidad) quepa en el saldo actual.
// Devuelve *domain.InsufficientStockError con el primer producto, en orden alfabético, que no alcanza.
func (l *ledger) checkDebits(ctx context.Context, movements []entity.Movement, location string, debits map[string]decimal.Decimal) error {
	bal, _, err := l.balance(ctx, movements, location, entity.Date{}, nil)
	if err != nil {
		return err
	}
	products := make([]string, 0, len(debits))
	for p := range debits {
		products = append(products, p)
	}
	sort.Strings(products)
	for _, p := range products {
		avail := bal.Quantity(p)
		if debits[p].GreaterThan(avail) {
			return &domain.InsufficientStockError{Product: p, Location: location, Requested: debits[p], Available: avail}
		}
	}
	return nil
}

// deleteWithPair borra un movimiento; si es pata de traslado borra también la complementaria.
// Sin complementaria borra solo la pedida y lo informa con PairFound=false.
func (l *ledger) deleteWithPair(ctx context.Context, id string) ([]string, bool, error) {
	movs, err := l.repos.Movements.List(ctx)
	if err != nil {
		return nil, false, err
	}
	target, ok := findMovement(movs, id)
	if !ok {
		return nil, false, domain.ErrNotFound
	}
	ids := []string{target.ID}
	pairFound := false
	if target.IsTransfer() {
		if match, found := transfer.FindPair(movs, target); found {
			ids = append(ids, match.Pair.ID)
			pairFound = true
		} else {
			l.log.Warn().Str("movement_id", id).Str("product", target.Product).
				Msg("pata de traslado sin complementaria; se borra sola")
		}
	}
	if _, err := l.repos.Movements.Delete(ctx, ids...); err != nil {
		return nil, false, err
	}
	return ids, pairFound, nil
}

func findMovement(movs []entity.Movement, id string) (entity.Movement, bool) {
	for _, m := range movs {
		if m.ID == id {
			return m, true
		}
	}
	return entity.Movement{}, false
}

func (l *ledger) catalog(ctx context.Context) (entity.Catalog, error) {
	products, err := l.repos.Products.List(ctx)
	if err != nil {
		return entity.Catalog{}, err
	}
	return entity.NewCatalog(products), nil
}

func parseDate(field, s string) (entity.Date, error) {
	d, err := entity.ParseDate(s)
	if err != nil || d.IsZero() {
		return entity.Date{}, domain.Invalid(field, "fecha inválida (AAAA-MM-DD)")
	}
	return d, nil
}
