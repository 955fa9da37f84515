package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agro-inventario/internal/application/backup"
	"github.com/jhoicas/agro-inventario/internal/application/exchange"
	"github.com/jhoicas/agro-inventario/internal/application/inventory"
	"github.com/jhoicas/agro-inventario/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	ProductUC  *usecase.ProductUseCase
	SettingsUC *usecase.SettingsUseCase
	MovementUC *inventory.MovementUseCase
	TransferUC *inventory.TransferUseCase
	MixUC      *inventory.MixUseCase
	StockUC    *inventory.StockUseCase
	SnapshotUC *inventory.SnapshotUseCase
	Exchange   *exchange.Service
	BackupUC   *backup.UseCase
	PDF        ReportPDFGenerator
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Catálogo
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Post("/", productHandler.Create)
	products.Get("/", productHandler.List)
	products.Get("/:id", productHandler.GetByID)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Movimientos
	movements := api.Group("/movements")
	movementHandler := NewMovementHandler(deps.MovementUC)
	movements.Post("/", movementHandler.Register)
	movements.Get("/", movementHandler.List)
	movements.Get("/:id", movementHandler.GetByID)
	movements.Put("/:id", movementHandler.Update)
	movements.Delete("/:id", movementHandler.Delete)

	// Traslados
	transfers := api.Group("/transfers")
	transferHandler := NewTransferHandler(deps.TransferUC)
	transfers.Post("/", transferHandler.Create)
	transfers.Get("/", transferHandler.List)
	transfers.Get("/:id", transferHandler.GetByID)
	transfers.Put("/:id", transferHandler.Update)
	transfers.Delete("/:id", transferHandler.Delete)

	// Mezclas
	mixes := api.Group("/mixes")
	mixHandler := NewMixHandler(deps.MixUC)
	mixes.Get("/", mixHandler.List)
	mixes.Post("/", mixHandler.Save)
	mixes.Post("/apply", mixHandler.Apply)
	mixes.Delete("/applications/:melangeId", mixHandler.Cancel)
	mixes.Delete("/:id", mixHandler.Delete)

	// Saldos, alertas e inventarios físicos
	stockHandler := NewStockHandler(deps.StockUC, deps.SnapshotUC)
	api.Get("/stock", stockHandler.Balance)
	api.Get("/stock/average-price", stockHandler.AveragePrice)
	api.Get("/alerts", stockHandler.Alerts)
	snapshots := api.Group("/snapshots")
	snapshots.Post("/", stockHandler.SaveSnapshot)
	snapshots.Post("/capture", stockHandler.CaptureSnapshot)
	snapshots.Get("/:farm", stockHandler.ListSnapshots)

	// Informes
	reports := api.Group("/reports")
	reportHandler := NewReportHandler(deps.StockUC, deps.PDF)
	reports.Get("/periods", reportHandler.Periods)
	reports.Get("/reconciliation", reportHandler.Reconciliation)
	reports.Get("/reconciliation/pdf", reportHandler.ReconciliationPDF)
	reports.Get("/costs", reportHandler.Costs)
	reports.Get("/costs/pdf", reportHandler.CostsPDF)

	// Preferencias y proveedores
	settingsHandler := NewSettingsHandler(deps.SettingsUC)
	api.Get("/settings", settingsHandler.Get)
	api.Put("/settings", settingsHandler.Update)
	api.Get("/suppliers", settingsHandler.Suppliers)
	api.Post("/suppliers", settingsHandler.AddSupplier)

	// Datos
	data := api.Group("/data")
	dataHandler := NewDataHandler(deps.Exchange)
	data.Get("/export", dataHandler.Export)
	data.Post("/import", dataHandler.Import)
	data.Post("/migrate", dataHandler.Migrate)
	data.Delete("/", dataHandler.Clear)

	// Respaldo remoto
	if deps.BackupUC != nil {
		bk := api.Group("/backup")
		backupHandler := NewBackupHandler(deps.BackupUC)
		bk.Get("/status", backupHandler.Status)
		bk.Get("/check", backupHandler.Check)
		bk.Post("/now", backupHandler.Now)
		bk.Post("/restore", backupHandler.Restore)
	}
}
