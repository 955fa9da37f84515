package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/application/inventory"
)

// MixHandler mezclas de fertilización.
type MixHandler struct {
	uc *inventory.MixUseCase
}

// NewMixHandler construye el handler.
func NewMixHandler(uc *inventory.MixUseCase) *MixHandler {
	return &MixHandler{uc: uc}
}

// List godoc
// @Summary      Listar mezclas predefinidas y guardadas
// @Tags         mixes
// @Produce      json
// @Success      200  {object}  dto.MixListResponse
// @Router       /api/mixes [get]
func (h *MixHandler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Save godoc
// @Summary      Guardar mezcla propia
// @Tags         mixes
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SaveMixRequest  true  "Mezcla"
// @Success      201   {object}  entity.Mix
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/mixes [post]
func (h *MixHandler) Save(c *fiber.Ctx) error {
	var in dto.SaveMixRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Save(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Delete godoc
// @Summary      Eliminar mezcla guardada
// @Tags         mixes
// @Param        id   path  string  true  "ID de la mezcla"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/mixes/{id} [delete]
func (h *MixHandler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Apply godoc
// @Summary      Aplicar mezcla en una finca
// @Description  Genera un consumo por ingrediente con el mismo melangeId; todo o nada.
// @Tags         mixes
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ApplyMixRequest  true  "Aplicación"
// @Success      201   {object}  dto.ApplyMixResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK"
// @Router       /api/mixes/apply [post]
func (h *MixHandler) Apply(c *fiber.Ctx) error {
	var in dto.ApplyMixRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	out, err := h.uc.Apply(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Cancel godoc
// @Summary      Anular una aplicación de mezcla
// @Tags         mixes
// @Produce      json
// @Param        melangeId  path  string  true  "Lote de la aplicación"
// @Success      200        {object}  map[string]int
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/mixes/applications/{melangeId} [delete]
func (h *MixHandler) Cancel(c *fiber.Ctx) error {
	n, err := h.uc.Cancel(c.UserContext(), c.Params("melangeId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": n})
}
