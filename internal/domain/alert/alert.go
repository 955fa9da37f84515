package alert

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/stock"
)

// Severidades, en orden de prioridad.
const (
	SeverityCritical = "CRITICAL"
	SeverityWarning  = "WARNING"
	SeverityInfo     = "INFO"
)

// Tipos de alerta.
const (
	KindDepleted        = "stock-depleted"
	KindLow             = "stock-low"
	KindHighConsumption = "high-consumption"
)

var rank = map[string]int{SeverityCritical: 0, SeverityWarning: 1, SeverityInfo: 2}

// Alert alerta de stock o de consumo.
type Alert struct {
	Severity  string          `json:"severity"`
	Kind      string          `json:"kind"`
	Location  string          `json:"location"`
	Product   string          `json:"product,omitempty"`
	Quantity  decimal.Decimal `json:"quantity"`
	Threshold decimal.Decimal `json:"threshold"`
	Message   string          `json:"message"`
}

// Input saldos y consumos sobre los que se evalúan las alertas.
type Input struct {
	Warehouse        stock.Balances
	Farms            map[string]stock.Balances
	Catalog          entity.Catalog
	DefaultThreshold decimal.Decimal
	// MonthConsumption valor consumido por finca en el mes en curso.
	MonthConsumption map[string]decimal.Decimal
	// Multiplier factor sobre el promedio de las fincas; cero = 2.
	Multiplier decimal.Decimal
}

// Evaluate recorre los saldos y devuelve las alertas ordenadas CRITICAL, WARNING, INFO.
// No modifica nada.
func Evaluate(in Input) []Alert {
	var out []Alert

	for _, product := range sortedProducts(in.Warehouse) {
		qty := in.Warehouse[product].Quantity
		threshold := in.threshold(product)
		switch {
		case !qty.GreaterThan(decimal.Zero):
			out = append(out, Alert{
				Severity: SeverityCritical, Kind: KindDepleted, Location: entity.LocationWarehouse,
				Product: product, Quantity: qty, Threshold: threshold,
				Message: fmt.Sprintf("%s agotado en el almacén", product),
			})
		case qty.LessThanOrEqual(threshold):
			out = append(out, Alert{
				Severity: SeverityWarning, Kind: KindLow, Location: entity.LocationWarehouse,
				Product: product, Quantity: qty, Threshold: threshold,
				Message: fmt.Sprintf("%s bajo en el almacén: %s (umbral %s)", product, qty.String(), threshold.String()),
			})
		}
	}

	for _, farm := range entity.FarmIDs() {
		bal := in.Farms[farm]
		for _, product := range sortedProducts(bal) {
			qty := bal[product].Quantity
			half := in.threshold(product).Div(decimal.NewFromInt(2))
			switch {
			case qty.LessThan(decimal.Zero):
				out = append(out, Alert{
					Severity: SeverityCritical, Kind: KindDepleted, Location: farm,
					Product: product, Quantity: qty, Threshold: half,
					Message: fmt.Sprintf("%s en negativo en %s: %s", product, farm, qty.String()),
				})
			case qty.LessThanOrEqual(half):
				out = append(out, Alert{
					Severity: SeverityWarning, Kind: KindLow, Location: farm,
					Product: product, Quantity: qty, Threshold: half,
					Message: fmt.Sprintf("%s bajo en %s: %s (umbral %s)", product, farm, qty.String(), half.String()),
				})
			}
		}
	}

	out = append(out, consumptionAlerts(in)...)

	sort.SliceStable(out, func(i, j int) bool {
		return rank[out[i].Severity] < rank[out[j].Severity]
	})
	return out
}

func consumptionAlerts(in Input) []Alert {
	if len(in.MonthConsumption) == 0 {
		return nil
	}
	farms := entity.FarmIDs()
	total := decimal.Zero
	for _, f := range farms {
		total = total.Add(in.MonthConsumption[f])
	}
	avg := total.Div(decimal.NewFromInt(int64(len(farms))))
	if !avg.GreaterThan(decimal.Zero) {
		return nil
	}
	mult := in.Multiplier
	if !mult.GreaterThan(decimal.Zero) {
		mult = entity.DefaultHighConsumptionMultiplier
	}
	limit := avg.Mul(mult)

	var out []Alert
	for _, f := range farms {
		v := in.MonthConsumption[f]
		if v.GreaterThan(limit) {
			out = append(out, Alert{
				Severity: SeverityInfo, Kind: KindHighConsumption, Location: f,
				Quantity: v, Threshold: limit,
				Message: fmt.Sprintf("consumo alto en %s este mes: %s (promedio %s)", f, v.StringFixed(2), avg.StringFixed(2)),
			})
		}
	}
	return out
}

func (in Input) threshold(product string) decimal.Decimal {
	def := in.DefaultThreshold
	if def.IsZero() {
		def = entity.DefaultThreshold
	}
	if p, ok := in.Catalog.Lookup(product); ok {
		return p.ThresholdOr(def)
	}
	return def
}

func sortedProducts(b stock.Balances) []string {
	out := make([]string, 0, len(b))
	for p := range b {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
