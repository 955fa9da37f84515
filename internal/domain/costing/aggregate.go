package costing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/stock"
)

// Filter ámbito del informe de costos. Farm o Culture vacíos = todas.
type Filter struct {
	Farm    string
	Culture string
	Season  Season
}

// ProductCost detalle por producto dentro de una categoría.
type ProductCost struct {
	Name       string            `json:"name"`
	Nature     string            `json:"nature"`
	UnitPrice  decimal.Decimal   `json:"unitPrice"`
	MonthlyQty []decimal.Decimal `json:"monthlyQty"`
	TotalQty   decimal.Decimal   `json:"totalQty"`
	TotalCost  decimal.Decimal   `json:"totalCost"`
	Manual     bool              `json:"manual,omitempty"`
}

// CategoryCost agregado mensual de una categoría de costo.
type CategoryCost struct {
	Category    string            `json:"category"`
	MonthlyQty  []decimal.Decimal `json:"monthlyQty"`
	MonthlyCost []decimal.Decimal `json:"monthlyCost"`
	TotalQty    decimal.Decimal   `json:"totalQty"`
	TotalCost   decimal.Decimal   `json:"totalCost"`
	Area        decimal.Decimal   `json:"area"`
	PerHectare  *decimal.Decimal  `json:"perHectare"` // nil = no aplica (superficie cero)
	Products    []ProductCost     `json:"products"`
}

// Report informe de costos de producción.
type Report struct {
	Farm       string          `json:"farm"`
	Culture    string          `json:"culture"`
	Season     Season          `json:"season"`
	Months     []string        `json:"months"`
	Categories []CategoryCost  `json:"categories"`
	TotalCost  decimal.Decimal `json:"totalCost"`
}

// Category devuelve el agregado de una categoría.
func (r Report) Category(name string) (CategoryCost, bool) {
	for _, c := range r.Categories {
		if c.Category == name {
			return c, true
		}
	}
	return CategoryCost{}, false
}

// Aggregator agrega consumos por categoría de costo y mes de campaña.
type Aggregator struct {
	classifier *Classifier
}

// NewAggregator usa el clasificador dado o el de por defecto si es nil.
func NewAggregator(c *Classifier) *Aggregator {
	if c == nil {
		c = DefaultClassifier()
	}
	return &Aggregator{classifier: c}
}

// UnitCost precio del movimiento si existe, si no el precio medio, si no el de catálogo.
func UnitCost(m entity.Movement, prices stock.Prices, product *entity.Product) decimal.Decimal {
	if m.HasPrice() {
		return m.Price
	}
	if avg := prices.Of(m.Product); avg.GreaterThan(decimal.Zero) {
		return avg
	}
	if product != nil {
		return product.Price
	}
	return decimal.Zero
}

type productAcc struct {
	name   string
	nature string
	manual bool
	qty    []decimal.Decimal
	cost   decimal.Decimal
	price  decimal.Decimal
	fixed  bool
}

// Aggregate recorre los consumos del ámbito y devuelve el costo por categoría.
// Los movimientos fuera de la campaña se descartan.
func (a *Aggregator) Aggregate(movements []entity.Movement, catalog entity.Catalog, prices stock.Prices, f Filter, manual entity.CostData) Report {
	n := f.Season.months()
	byCat := map[string]*CategoryCost{}
	products := map[string]map[string]*productAcc{}
	for _, c := range Categories {
		byCat[c] = newCategory(c, n)
		products[c] = map[string]*productAcc{}
	}

	for _, m := range movements {
		if m.Type != entity.MovementConsumption || m.Product == "" {
			continue
		}
		if f.Farm != "" && m.Farm != f.Farm {
			continue
		}
		if f.Culture != "" && m.Culture != f.Culture {
			continue
		}
		idx, ok := f.Season.Index(m.Date)
		if !ok {
			continue
		}
		var prod *entity.Product
		if p, found := catalog.Lookup(m.Product); found {
			prod = &p
		}
		cat, _ := a.classifier.Classify(Subject{Movement: m, Product: prod})
		cc, ok := byCat[cat]
		if !ok {
			continue
		}
		unit := UnitCost(m, prices, prod)
		cost := m.Quantity.Mul(unit)
		cc.MonthlyQty[idx] = cc.MonthlyQty[idx].Add(m.Quantity)
		cc.MonthlyCost[idx] = cc.MonthlyCost[idx].Add(cost)

		acc := accFor(products[cat], m.Product, m.Product, n)
		if prod != nil {
			acc.nature = prod.Category
		}
		acc.qty[idx] = acc.qty[idx].Add(m.Quantity)
		acc.cost = acc.cost.Add(cost)
	}

	for farm, cultures := range manual {
		if f.Farm != "" && farm != f.Farm {
			continue
		}
		for culture, cats := range cultures {
			if f.Culture != "" && culture != f.Culture {
				continue
			}
			for cat, lines := range cats {
				cc, ok := byCat[cat]
				if !ok {
					continue
				}
				for _, l := range lines {
					acc := accFor(products[cat], "manual:"+l.Name, l.Name, n)
					acc.manual = true
					acc.price, acc.fixed = l.UnitPrice, true
					for i, q := range l.MonthlyQty {
						if i >= n {
							break
						}
						cost := q.Mul(l.UnitPrice)
						cc.MonthlyQty[i] = cc.MonthlyQty[i].Add(q)
						cc.MonthlyCost[i] = cc.MonthlyCost[i].Add(cost)
						acc.qty[i] = acc.qty[i].Add(q)
						acc.cost = acc.cost.Add(cost)
					}
				}
			}
		}
	}

	r := Report{Farm: f.Farm, Culture: f.Culture, Season: f.Season, Months: f.Season.Labels(), TotalCost: decimal.Zero}
	for _, c := range Categories {
		cc := byCat[c]
		for i := range cc.MonthlyQty {
			cc.TotalQty = cc.TotalQty.Add(cc.MonthlyQty[i])
			cc.TotalCost = cc.TotalCost.Add(cc.MonthlyCost[i])
		}
		cc.Products = productRows(products[c])
		cc.Area = AreaFor(f.Farm, f.Culture, c)
		if ph, ok := PerHectare(cc.TotalCost, cc.Area); ok {
			cc.PerHectare = &ph
		}
		r.TotalCost = r.TotalCost.Add(cc.TotalCost)
		r.Categories = append(r.Categories, *cc)
	}
	return r
}

func newCategory(name string, n int) *CategoryCost {
	return &CategoryCost{
		Category:    name,
		MonthlyQty:  zeros(n),
		MonthlyCost: zeros(n),
		TotalQty:    decimal.Zero,
		TotalCost:   decimal.Zero,
	}
}

func accFor(m map[string]*productAcc, key, name string, n int) *productAcc {
	acc, ok := m[key]
	if !ok {
		acc = &productAcc{name: name, nature: entity.CategoryFertilizer, qty: zeros(n)}
		m[key] = acc
	}
	return acc
}

func productRows(m map[string]*productAcc) []ProductCost {
	out := make([]ProductCost, 0, len(m))
	for _, acc := range m {
		total := decimal.Zero
		for _, q := range acc.qty {
			total = total.Add(q)
		}
		if total.IsZero() {
			continue
		}
		unit := acc.price
		if !acc.fixed {
			unit = stock.WeightedAverage(acc.cost, total)
		}
		out = append(out, ProductCost{
			Name:       acc.name,
			Nature:     acc.nature,
			UnitPrice:  unit,
			MonthlyQty: acc.qty,
			TotalQty:   total,
			TotalCost:  acc.cost,
			Manual:     acc.manual,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].TotalCost.Equal(out[j].TotalCost) {
			return out[i].TotalCost.GreaterThan(out[j].TotalCost)
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return !out[i].Manual
	})
	return out
}

func zeros(n int) []decimal.Decimal {
	out := make([]decimal.Decimal, n)
	for i := range out {
		out[i] = decimal.Zero
	}
	return out
}
