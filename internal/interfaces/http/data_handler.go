package http

import (
	"fmt"
	"io"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/application/exchange"
)

// maxImportSize límite del archivo importado.
const maxImportSize = 20 << 20

// DataHandler exportación, importación, borrado y migración de datos.
type DataHandler struct {
	svc *exchange.Service
}

// NewDataHandler construye el handler.
func NewDataHandler(svc *exchange.Service) *DataHandler {
	return &DataHandler{svc: svc}
}

// Export godoc
// @Summary      Exportar todos los datos (respaldo JSON)
// @Tags         data
// @Produce      json
// @Success      200  {object}  exchange.Document
// @Router       /api/data/export [get]
func (h *DataHandler) Export(c *fiber.Ctx) error {
	raw, err := h.svc.ExportJSON(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSONCharsetUTF8)
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="agro-berry-backup-%s.json"`, time.Now().Format("2006-01-02")))
	return c.Send(raw)
}

// Import godoc
// @Summary      Importar un respaldo, una exportación de la app de costos o de la app de stock
// @Description  Acepta el JSON en el cuerpo o como archivo multipart en el campo "file".
// @Tags         data
// @Accept       json
// @Produce      json
// @Success      200  {object}  exchange.Result
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse  "UNRECOGNIZED_FORMAT"
// @Router       /api/data/import [post]
func (h *DataHandler) Import(c *fiber.Ctx) error {
	raw := c.Body()
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return badBody(c)
		}
		defer f.Close()
		raw, err = io.ReadAll(io.LimitReader(f, maxImportSize))
		if err != nil {
			return badBody(c)
		}
	}
	if len(raw) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "archivo vacío"})
	}
	out, err := h.svc.Import(c.UserContext(), raw)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Clear godoc
// @Summary      Borrar todos los datos
// @Description  Requiere confirm=true. La versión de esquema se conserva.
// @Tags         data
// @Param        confirm  query  bool  true  "Confirmación"
// @Success      204
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/data [delete]
func (h *DataHandler) Clear(c *fiber.Ctx) error {
	if !c.QueryBool("confirm") {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "CONFIRMATION_REQUIRED", Message: "confirm=true es obligatorio", Field: "confirm"})
	}
	if err := h.svc.Clear(c.UserContext()); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Migrate godoc
// @Summary      Aplicar la migración del catálogo semilla
// @Tags         data
// @Produce      json
// @Success      200  {object}  exchange.MigrationResult
// @Router       /api/data/migrate [post]
func (h *DataHandler) Migrate(c *fiber.Ctx) error {
	out, err := h.svc.Migrate(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
