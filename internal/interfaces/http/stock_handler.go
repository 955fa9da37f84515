package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/application/inventory"
)

// StockHandler saldos, precio medio, alertas e inventarios físicos.
type StockHandler struct {
	stock     *inventory.StockUseCase
	snapshots *inventory.SnapshotUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(stock *inventory.StockUseCase, snapshots *inventory.SnapshotUseCase) *StockHandler {
	return &StockHandler{stock: stock, snapshots: snapshots}
}

// Balance godoc
// @Summary      Saldo de una ubicación
// @Description  Cantidad, precio medio y valor por producto. Sin asOf se toman todos los movimientos.
// @Tags         stock
// @Produce      json
// @Param        location  query  string  true   "WAREHOUSE o finca"
// @Param        asOf      query  string  false  "Fecha de corte (YYYY-MM-DD)"
// @Success      200       {object}  dto.BalanceResponse
// @Failure      400       {object}  dto.ErrorResponse
// @Router       /api/stock [get]
func (h *StockHandler) Balance(c *fiber.Ctx) error {
	var q dto.BalanceQuery
	if err := c.QueryParser(&q); err != nil {
		return badQuery(c)
	}
	out, err := h.stock.Balance(c.UserContext(), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// AveragePrice godoc
// @Summary      Precio medio ponderado de un producto
// @Tags         stock
// @Produce      json
// @Param        product  query  string  true  "Producto"
// @Success      200      {object}  dto.AveragePriceResponse
// @Router       /api/stock/average-price [get]
func (h *StockHandler) AveragePrice(c *fiber.Ctx) error {
	out, err := h.stock.AveragePrice(c.UserContext(), c.Query("product"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Alerts godoc
// @Summary      Alertas de stock y de consumo
// @Tags         stock
// @Produce      json
// @Success      200  {object}  dto.AlertsResponse
// @Router       /api/alerts [get]
func (h *StockHandler) Alerts(c *fiber.Ctx) error {
	out, err := h.stock.Alerts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SaveSnapshot godoc
// @Summary      Guardar inventario físico de una finca
// @Tags         snapshots
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SnapshotRequest  true  "Inventario"
// @Success      201   {object}  entity.Snapshot
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/snapshots [post]
func (h *StockHandler) SaveSnapshot(c *fiber.Ctx) error {
	var in dto.SnapshotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.snapshots.Save(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CaptureSnapshot godoc
// @Summary      Guardar el saldo calculado como inventario físico
// @Tags         snapshots
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CaptureSnapshotRequest  true  "Finca y fecha"
// @Success      201   {object}  entity.Snapshot
// @Router       /api/snapshots/capture [post]
func (h *StockHandler) CaptureSnapshot(c *fiber.Ctx) error {
	var in dto.CaptureSnapshotRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.snapshots.Capture(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListSnapshots godoc
// @Summary      Inventarios físicos de una finca
// @Tags         snapshots
// @Produce      json
// @Param        farm  path  string  true  "Finca"
// @Success      200   {object}  dto.SnapshotListResponse
// @Router       /api/snapshots/{farm} [get]
func (h *StockHandler) ListSnapshots(c *fiber.Ctx) error {
	out, err := h.snapshots.List(c.UserContext(), c.Params("farm"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
