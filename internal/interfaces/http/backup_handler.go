package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-inventario/internal/application/backup"
)

// BackupHandler respaldo remoto.
type BackupHandler struct {
	uc *backup.UseCase
}

// NewBackupHandler construye el handler.
func NewBackupHandler(uc *backup.UseCase) *BackupHandler {
	return &BackupHandler{uc: uc}
}

// Status godoc
// @Summary      Estado del respaldo automático
// @Tags         backup
// @Produce      json
// @Success      200  {object}  backup.Status
// @Router       /api/backup/status [get]
func (h *BackupHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.uc.Status(c.UserContext()))
}

// Now godoc
// @Summary      Respaldo manual inmediato
// @Tags         backup
// @Produce      json
// @Success      200  {object}  remote.Receipt
// @Failure      424  {object}  dto.ErrorResponse  "BACKUP_NOT_CONFIGURED"
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/backup/now [post]
func (h *BackupHandler) Now(c *fiber.Ctx) error {
	out, err := h.uc.Now(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Restore godoc
// @Summary      Restaurar el último respaldo remoto
// @Tags         backup
// @Produce      json
// @Success      200  {object}  exchange.Result
// @Failure      424  {object}  dto.ErrorResponse
// @Failure      502  {object}  dto.ErrorResponse
// @Router       /api/backup/restore [post]
func (h *BackupHandler) Restore(c *fiber.Ctx) error {
	out, err := h.uc.Restore(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Check godoc
// @Summary      Verificar credenciales y destino del respaldo
// @Tags         backup
// @Produce      json
// @Success      200  {object}  backup.CheckResult
// @Failure      424  {object}  dto.ErrorResponse
// @Router       /api/backup/check [get]
func (h *BackupHandler) Check(c *fiber.Ctx) error {
	out, err := h.uc.Check(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
