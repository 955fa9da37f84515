// Package pdf genera los informes imprimibles con Maroto v2.
//
// Informe de costos (A4 apaisado):
//
//	┌──────────────────────────────────────────────────────────────────┐
//	│  HEADER: Finca + Cultivo          │  Campaña + Fecha de emisión  │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  TABLA: Categoría | Sept … Août | Total | /ha                   │
//	│         └ detalle por producto                                   │
//	│  ──────────────────────────────────────────────────────────────  │
//	│  TOTAL CAMPAÑA                                                   │
//	└──────────────────────────────────────────────────────────────────┘
//
// Conciliación: una tabla por finca con Inicial | Entradas | Traslados | Salidas | Consumo | Final.
package pdf

import (
	"context"
	"fmt"
	"time"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/orientation"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/domain/costing"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 46, Green: 94, Blue: 62}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorLight   = &props.Color{Red: 236, Green: 242, Blue: 236}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

const (
	nameCols  = 4
	totalCols = 2
	haCols    = 2
)

// ── Generator ─────────────────────────────────────────────────────────────────

// ReportGenerator genera los PDF de costos y de conciliación.
type ReportGenerator struct {
	printer *message.Printer
	now     func() time.Time
}

// NewReportGenerator construye el generador. Los importes se formatean en francés.
func NewReportGenerator() *ReportGenerator {
	return &ReportGenerator{printer: message.NewPrinter(language.French), now: time.Now}
}

func (g *ReportGenerator) builder(title string, grid int) config.Builder {
	return config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithOrientation(orientation.Horizontal).
		WithMaxGridSize(grid).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 8}).
		WithTitle(title, true).
		WithAuthor("Agro Berry", true)
}

// CostReportPDF informe de costos por categoría y mes.
func (g *ReportGenerator) CostReportPDF(_ context.Context, r *costing.Report) ([]byte, error) {
	months := len(r.Months)
	grid := nameCols + months + totalCols + haCols
	m := maroto.New(g.builder("Coûts de production", grid).Build())

	farm := r.Farm
	if farm == "" {
		farm = "Toutes les fermes"
	}
	m.AddRows(g.header(grid, "COÛTS DE PRODUCTION", fmt.Sprintf("%s · %s", farm, r.Culture),
		fmt.Sprintf("Campagne %d/%d", r.Season.StartYear, r.Season.StartYear+1)))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))

	headers := append([]string{"Catégorie"}, r.Months...)
	headers = append(headers, "Total", "DH/ha")
	sizes := make([]int, 0, len(headers))
	sizes = append(sizes, nameCols)
	for range r.Months {
		sizes = append(sizes, 1)
	}
	sizes = append(sizes, totalCols, haCols)
	m.AddRows(tableHeaderRow(headers, sizes))

	for _, c := range r.Categories {
		cells := []string{c.Category}
		for _, v := range c.MonthlyCost {
			cells = append(cells, g.amount(v, 0))
		}
		perHa := "—"
		if c.PerHectare != nil {
			perHa = g.amount(*c.PerHectare, 0)
		}
		cells = append(cells, g.amount(c.TotalCost, 2), perHa)
		m.AddRows(tableRow(cells, sizes, true))

		for _, p := range c.Products {
			cells := []string{"   " + p.Name}
			for _, q := range p.MonthlyQty {
				cells = append(cells, g.amount(q, 2))
			}
			cells = append(cells, g.amount(p.TotalCost, 2), "")
			m.AddRows(tableRow(cells, sizes, false))
		}
	}

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(g.totalRow(grid, "TOTAL CAMPAGNE", r.TotalCost))

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar informe de costos: %w", err)
	}
	return doc.GetBytes(), nil
}

// ReconciliationPDF tabla de conciliación de las fincas en un período.
func (g *ReportGenerator) ReconciliationPDF(_ context.Context, rec *dto.ReconciliationResponse) ([]byte, error) {
	sizes := []int{nameCols, 2, 2, 2, 2, 2, 2}
	grid := 0
	for _, s := range sizes {
		grid += s
	}
	m := maroto.New(g.builder("Réconciliation de stock", grid).Build())

	p := rec.Period
	m.AddRows(g.header(grid, "RÉCONCILIATION DE STOCK", p.Label,
		fmt.Sprintf("%s → %s", p.Start.String(), p.End.String())))

	headers := []string{"Produit", "Initial", "Entrées", "dont transferts", "Sorties", "Consommation", "Final"}
	for _, farm := range rec.Farms {
		m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
		m.AddRows(row.New(8).Add(col.New(grid).Add(
			text.New(farmTitle(farm.Farm), props.Text{Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 2}),
		)))
		m.AddRows(tableHeaderRow(headers, sizes))
		if len(farm.Rows) == 0 {
			m.AddRows(row.New(6).Add(col.New(grid).Add(
				text.New("Aucun mouvement sur la période", props.Text{Size: 8, Color: colorGray, Top: 1, Left: 1}),
			)))
			continue
		}
		for _, r := range farm.Rows {
			m.AddRows(tableRow([]string{
				r.Product,
				g.amount(r.Initial, 2), g.amount(r.Entries, 2), g.amount(r.TransfersIn, 2),
				g.amount(r.Exits, 2), g.amount(r.Consumption, 2), g.amount(r.Final, 2),
			}, sizes, false))
		}
	}

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar conciliación: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// header: título y sujeto (izq), referencia y fecha de emisión (der).
func (g *ReportGenerator) header(grid int, title, subject, ref string) core.Row {
	right := grid / 3
	return row.New(18).Add(
		col.New(grid-right).Add(
			text.New(title, props.Text{Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1}),
			text.New(subject, props.Text{Size: 9, Top: 9, Color: colorGray}),
		),
		col.New(right).Add(
			text.New(ref, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Top: 2}),
			text.New("Émis le "+g.now().Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 10, Color: colorGray,
			}),
		),
	)
}

func tableHeaderRow(labels []string, sizes []int) core.Row {
	cols := make([]core.Col, 0, len(labels))
	for i, l := range labels {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols = append(cols, col.New(sizes[i]).Add(text.New(l, props.Text{
			Style: fontstyle.Bold, Size: 7, Align: a, Color: colorWhite, Top: 2, Left: 1, Right: 1,
		})))
	}
	return row.New(8).Add(cols...).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

func tableRow(cells []string, sizes []int, strong bool) core.Row {
	style := fontstyle.Normal
	if strong {
		style = fontstyle.Bold
	}
	cols := make([]core.Col, 0, len(cells))
	for i, c := range cells {
		a := align.Right
		if i == 0 {
			a = align.Left
		}
		cols = append(cols, col.New(sizes[i]).Add(text.New(c, props.Text{
			Style: style, Size: 7, Align: a, Top: 1, Left: 1, Right: 1,
		})))
	}
	r := row.New(6).Add(cols...)
	if strong {
		r = r.WithStyle(&props.Cell{BackgroundColor: colorLight})
	}
	return r
}

func (g *ReportGenerator) totalRow(grid int, label string, v decimal.Decimal) core.Row {
	half := grid / 2
	return row.New(10).Add(
		col.New(half).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 10, Color: colorPrimary, Top: 2,
		})),
		col.New(grid-half).Add(text.New(g.amount(v, 2)+" DH", props.Text{
			Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Top: 2, Right: 1,
		})),
	)
}

// ── helpers ───────────────────────────────────────────────────────────────────

// amount importe con separador de miles; cero se muestra como guion.
func (g *ReportGenerator) amount(v decimal.Decimal, places int32) string {
	if v.IsZero() {
		return "-"
	}
	f, _ := v.Round(places).Float64()
	return g.printer.Sprintf("%.*f", int(places), f)
}

func farmTitle(farm string) string {
	for _, f := range entity.Farms {
		if f.ID == farm {
			return f.Name + " (" + f.Short + ")"
		}
	}
	return farm
}
