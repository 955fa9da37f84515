package http

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/application/inventory"
	"github.com/jhoicas/agro-inventario/internal/domain"
	"github.com/jhoicas/agro-inventario/internal/domain/costing"
)

// ReportPDFGenerator genera los PDF de los informes.
type ReportPDFGenerator interface {
	CostReportPDF(ctx context.Context, r *costing.Report) ([]byte, error)
	ReconciliationPDF(ctx context.Context, rec *dto.ReconciliationResponse) ([]byte, error)
}

// ReportHandler conciliación por período e informe de costos.
type ReportHandler struct {
	stock *inventory.StockUseCase
	pdf   ReportPDFGenerator
}

// NewReportHandler construye el handler. pdf puede ser nil (sin descarga en PDF).
func NewReportHandler(stock *inventory.StockUseCase, pdf ReportPDFGenerator) *ReportHandler {
	return &ReportHandler{stock: stock, pdf: pdf}
}

// Periods godoc
// @Summary      Períodos de conciliación de una campaña
// @Tags         reports
// @Produce      json
// @Param        season  query  int  false  "Año de inicio de campaña"
// @Success      200     {array}  stock.Period
// @Router       /api/reports/periods [get]
func (h *ReportHandler) Periods(c *fiber.Ctx) error {
	return c.JSON(h.stock.Periods(c.QueryInt("season", 0)))
}

// Reconciliation godoc
// @Summary      Conciliación de las tres fincas
// @Tags         reports
// @Produce      json
// @Param        period  query  string  true   "Clave del período (SEPTEMBRE, ..., AOUT)"
// @Param        season  query  int     false  "Año de inicio de campaña"
// @Success      200     {object}  dto.ReconciliationResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/reports/reconciliation [get]
func (h *ReportHandler) Reconciliation(c *fiber.Ctx) error {
	out, err := h.reconciliation(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ReconciliationPDF godoc
// @Summary      Conciliación en PDF
// @Tags         reports
// @Produce      application/pdf
// @Param        period  query  string  true   "Clave del período"
// @Param        season  query  int     false  "Año de inicio de campaña"
// @Success      200
// @Router       /api/reports/reconciliation/pdf [get]
func (h *ReportHandler) ReconciliationPDF(c *fiber.Ctx) error {
	out, err := h.reconciliation(c)
	if err != nil {
		return writeError(c, err)
	}
	if h.pdf == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "PDF_UNAVAILABLE", Message: "generador PDF no configurado"})
	}
	doc, err := h.pdf.ReconciliationPDF(c.UserContext(), out)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, fmt.Sprintf("reconciliation-%s-%s.pdf", out.Period.Key, out.Period.Start.String()), doc)
}

func (h *ReportHandler) reconciliation(c *fiber.Ctx) (*dto.ReconciliationResponse, error) {
	var q dto.ReconciliationQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, domain.Invalid("query", "parámetros inválidos")
	}
	return h.stock.Reconciliation(c.UserContext(), q)
}

// Costs godoc
// @Summary      Costos de producción por categoría y mes
// @Tags         reports
// @Produce      json
// @Param        culture  query  string  true   "Myrtille | Fraise"
// @Param        farm     query  string  false  "Finca (vacío = todas)"
// @Param        season   query  int     false  "Año de inicio de campaña"
// @Param        months   query  int     false  "5 (sept-ene) o 12"  default(12)
// @Success      200      {object}  costing.Report
// @Router       /api/reports/costs [get]
func (h *ReportHandler) Costs(c *fiber.Ctx) error {
	out, err := h.costs(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// CostsPDF godoc
// @Summary      Costos de producción en PDF
// @Tags         reports
// @Produce      application/pdf
// @Param        culture  query  string  true   "Myrtille | Fraise"
// @Param        farm     query  string  false  "Finca (vacío = todas)"
// @Success      200
// @Router       /api/reports/costs/pdf [get]
func (h *ReportHandler) CostsPDF(c *fiber.Ctx) error {
	out, err := h.costs(c)
	if err != nil {
		return writeError(c, err)
	}
	if h.pdf == nil {
		return c.Status(fiber.StatusNotImplemented).JSON(dto.ErrorResponse{Code: "PDF_UNAVAILABLE", Message: "generador PDF no configurado"})
	}
	doc, err := h.pdf.CostReportPDF(c.UserContext(), out)
	if err != nil {
		return writeError(c, err)
	}
	return sendPDF(c, fmt.Sprintf("costs-%s-%d.pdf", out.Culture, out.Season.StartYear), doc)
}

func (h *ReportHandler) costs(c *fiber.Ctx) (*costing.Report, error) {
	var q dto.CostReportQuery
	if err := c.QueryParser(&q); err != nil {
		return nil, domain.Invalid("query", "parámetros inválidos")
	}
	return h.stock.CostReport(c.UserContext(), q)
}

func sendPDF(c *fiber.Ctx, filename string, doc []byte) error {
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, filename))
	return c.Send(doc)
}
