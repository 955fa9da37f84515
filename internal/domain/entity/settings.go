package entity

import "github.com/shopspring/decimal"

// Valores por defecto de alertas.
var (
	DefaultThreshold                 = decimal.NewFromInt(10)
	DefaultHighConsumptionMultiplier = decimal.NewFromInt(2)
)

// Settings preferencias globales.
type Settings struct {
	DefaultThreshold decimal.Decimal `json:"defaultThreshold"`
}

// DefaultSettings configuración inicial.
func DefaultSettings() Settings {
	return Settings{DefaultThreshold: DefaultThreshold}
}

// CostLine línea de costo cargada manualmente: precio unitario y cantidades por mes de campaña
// (septiembre = 0).
type CostLine struct {
	Name       string            `json:"name"`
	UnitPrice  decimal.Decimal   `json:"unitPrice"`
	MonthlyQty []decimal.Decimal `json:"monthlyQty"`
}

// CostData finca → cultivo → categoría de costo → líneas.
type CostData map[string]map[string]map[string][]CostLine

// Lines devuelve las líneas de una finca, cultivo y categoría.
func (c CostData) Lines(farm, culture, category string) []CostLine {
	return c[farm][culture][category]
}

// Append agrega líneas creando los niveles intermedios.
func (c CostData) Append(farm, culture, category string, lines ...CostLine) {
	if c[farm] == nil {
		c[farm] = map[string]map[string][]CostLine{}
	}
	if c[farm][culture] == nil {
		c[farm][culture] = map[string][]CostLine{}
	}
	c[farm][culture][category] = append(c[farm][culture][category], lines...)
}
