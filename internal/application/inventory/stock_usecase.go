package inventory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/alert"
	"github.com/jhoicas/agro-inventario/internal/domain/costing"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/stock"
	"github.com/jhoicas/agro-inventario/pkg/logger"
)

// StockOptions parámetros de cálculo tomados de la configuración.
type StockOptions struct {
	// SeasonStartYear campaña por defecto; 0 = la de la fecha actual.
	SeasonStartYear int
	// DefaultThreshold reemplaza el umbral de settings si es positivo.
	DefaultThreshold decimal.Decimal
	// HighConsumptionFactor múltiplo del promedio para la alerta de consumo; 0 = 2.
	HighConsumptionFactor decimal.Decimal
	Classifier            *costing.Classifier
}

// StockUseCase consultas derivadas: saldos, precio medio, conciliación, costos y alertas.
// Todo se recalcula desde la lista de movimientos en cada llamada.
type StockUseCase struct {
	*ledger
	opts       StockOptions
	aggregator *costing.Aggregator
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(repos Repos, log *logger.Logger, opts StockOptions) *StockUseCase {
	return &StockUseCase{ledger: newLedger(repos, log), opts: opts, aggregator: costing.NewAggregator(opts.Classifier)}
}

func (uc *StockUseCase) seasonYear(requested int) int {
	switch {
	case requested > 0:
		return requested
	case uc.opts.SeasonStartYear > 0:
		return uc.opts.SeasonStartYear
	}
	return costing.SeasonStartYear(entity.DateOf(uc.now()))
}

// Balance saldo de una ubicación a una fecha.
func (uc *StockUseCase) Balance(ctx context.Context, q dto.BalanceQuery) (*dto.BalanceResponse, error) {
	if err := dto.Validate(q); err != nil {
		return nil, err
	}
	var asOf entity.Date
	if q.AsOf != "" {
		asOf, _ = entity.ParseDate(q.AsOf)
	}
	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := uc.catalog(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := uc.prices(ctx, movs)
	if err != nil {
		return nil, err
	}
	bal, snap, err := uc.balance(ctx, movs, q.Location, asOf, prices)
	if err != nil {
		return nil, err
	}

	resp := &dto.BalanceResponse{Location: q.Location, AsOf: q.AsOf, Lines: make([]dto.BalanceLine, 0, len(bal))}
	if snap != nil {
		resp.SnapshotDate = snap.Date.String()
	}
	for product, b := range bal {
		line := dto.BalanceLine{Product: product, Quantity: b.Quantity, AvgPrice: b.AvgPrice, Value: b.Value}
		if p, ok := catalog.Lookup(product); ok {
			line.Unit, line.Category = p.Unit, p.Category
		}
		resp.Lines = append(resp.Lines, line)
	}
	sort.Slice(resp.Lines, func(i, j int) bool { return resp.Lines[i].Product < resp.Lines[j].Product })
	resp.TotalValue = bal.TotalValue()
	return resp, nil
}

// AveragePrice precio medio ponderado de un producto.
func (uc *StockUseCase) AveragePrice(ctx context.Context, product string) (*dto.AveragePriceResponse, error) {
	if product == "" {
		return nil, domain.Invalid("product", "es obligatorio")
	}
	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := uc.prices(ctx, movs)
	if err != nil {
		return nil, err
	}
	return &dto.AveragePriceResponse{Product: product, AvgPrice: prices.Of(product)}, nil
}

// Periods períodos de conciliación de una campaña.
func (uc *StockUseCase) Periods(startYear int) []stock.Period {
	return stock.SeasonPeriods(uc.seasonYear(startYear))
}

// Reconciliation tabla inicial + entradas − salidas − consumo = final de las tres fincas.
func (uc *StockUseCase) Reconciliation(ctx context.Context, q dto.ReconciliationQuery) (*dto.ReconciliationResponse, error) {
	if err := dto.Validate(q); err != nil {
		return nil, err
	}
	period, ok := stock.FindPeriod(uc.Periods(q.StartYear), q.Period)
	if !ok {
		return nil, domain.Invalid("period", "período desconocido: "+q.Period)
	}
	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	resp := &dto.ReconciliationResponse{Period: period}
	for _, farm := range entity.FarmIDs() {
		snaps, err := uc.repos.Snapshots.List(ctx, farm)
		if err != nil {
			return nil, err
		}
		opening := stock.OpeningFor(movs, farm, period.Start, snaps)
		rows := stock.ReconcilePeriod(movs, farm, period, opening)
		if rows == nil {
			rows = []stock.Row{}
		}
		resp.Farms = append(resp.Farms, dto.FarmReconciliation{Farm: farm, Rows: rows})
	}
	return resp, nil
}

// CostReport costos por categoría y mes de campaña para una finca (o todas) y un cultivo.
func (uc *StockUseCase) CostReport(ctx context.Context, q dto.CostReportQuery) (*costing.Report, error) {
	if err := dto.Validate(q); err != nil {
		return nil, err
	}
	year := uc.seasonYear(q.StartYear)
	season := costing.FullSeason(year)
	if q.Months == 5 {
		season = costing.ReportSeason(year)
	}
	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := uc.catalog(ctx)
	if err != nil {
		return nil, err
	}
	manual, err := uc.repos.CostData.Get(ctx)
	if err != nil {
		return nil, err
	}
	prices, err := uc.prices(ctx, movs)
	if err != nil {
		return nil, err
	}
	report := uc.aggregator.Aggregate(movs, catalog, prices, costing.Filter{
		Farm: q.Farm, Culture: q.Culture, Season: season,
	}, manual)
	return &report, nil
}

// Alerts evalúa alertas de stock y de consumo del mes en curso.
func (uc *StockUseCase) Alerts(ctx context.Context) (*dto.AlertsResponse, error) {
	movs, err := uc.repos.Movements.List(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := uc.catalog(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := uc.repos.Settings.Get(ctx)
	if err != nil {
		return nil, err
	}
	threshold := settings.DefaultThreshold
	if uc.opts.DefaultThreshold.IsPositive() {
		threshold = uc.opts.DefaultThreshold
	}

	prices, err := uc.prices(ctx, movs)
	if err != nil {
		return nil, err
	}
	today := entity.DateOf(uc.now())
	monthStart := entity.NewDate(today.Year(), today.Month(), 1)

	in := alert.Input{
		Warehouse:        stock.ComputeBalance(movs, entity.LocationWarehouse, stock.Query{Prices: prices}),
		Farms:            map[string]stock.Balances{},
		Catalog:          catalog,
		DefaultThreshold: threshold,
		MonthConsumption: map[string]decimal.Decimal{},
		Multiplier:       uc.opts.HighConsumptionFactor,
	}
	for _, farm := range entity.FarmIDs() {
		bal, _, err := uc.balance(ctx, movs, farm, entity.Date{}, prices)
		if err != nil {
			return nil, err
		}
		in.Farms[farm] = bal
		in.MonthConsumption[farm] = stock.ConsumptionValue(movs, farm, monthStart, today, prices)
	}

	items := alert.Evaluate(in)
	if items == nil {
		items = []alert.Alert{}
	}
	resp := &dto.AlertsResponse{Items: items}
	for _, a := range items {
		switch a.Severity {
		case alert.SeverityCritical:
			resp.Critical++
		case alert.SeverityWarning:
			resp.Warning++
		case alert.SeverityInfo:
			resp.Info++
		}
	}
	return resp, nil
}
