package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/application/backup"
	"github.com/jhoicas/agro-inventario/internal/application/dto"
	"github.com/jhoicas/agro-inventario/internal/application/exchange"
	"github.com/jhoicas/agro-inventario/internal/application/inventory"
	"github.com/jhoicas/agro-inventario/internal/application/usecase"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/localstore"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/pdf"
	"github.com/jhoicas/agro-inventario/internal/infrastructure/sqlite"
	httphandler "github.com/jhoicas/agro-inventario/internal/interfaces/http"
)

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	kv, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	s := localstore.New(kv)
	t.Cleanup(func() { _ = s.Close() })

	repos := inventory.Repos{
		Products: s.Products(), Movements: s.Movements(), Snapshots: s.Snapshots(),
		Suppliers: s.Suppliers(), Settings: s.Settings(), Mixes: s.Mixes(), CostData: s.CostData(),
	}
	ex := exchange.NewService(exchange.Repos{
		Products: s.Products(), Movements: s.Movements(), Snapshots: s.Snapshots(),
		Suppliers: s.Suppliers(), Settings: s.Settings(), Mixes: s.Mixes(), CostData: s.CostData(),
		Schema: s.Schema(),
	}, s, nil)
	sched := backup.NewScheduler(nil, ex, backup.SchedulerOptions{})
	t.Cleanup(sched.Close)

	app := fiber.New()
	httphandler.Router(app, httphandler.RouterDeps{
		ProductUC:  usecase.NewProductUseCase(s.Products()),
		SettingsUC: usecase.NewSettingsUseCase(s.Settings(), s.Suppliers()),
		MovementUC: inventory.NewMovementUseCase(repos, nil),
		TransferUC: inventory.NewTransferUseCase(repos, nil),
		MixUC:      inventory.NewMixUseCase(repos, nil),
		StockUC:    inventory.NewStockUseCase(repos, nil, inventory.StockOptions{}),
		SnapshotUC: inventory.NewSnapshotUseCase(repos, nil),
		Exchange:   ex,
		BackupUC:   backup.NewUseCase(nil, sched, ex, nil),
		PDF:        pdf.NewReportGenerator(),
	})
	return app
}

func call(t *testing.T, app *fiber.App, method, path string, body any) (int, []byte) {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decodeError(t *testing.T, raw []byte) dto.ErrorResponse {
	t.Helper()
	var e dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &e), string(raw))
	return e
}

// ─────────────────────────────────────────────────────────────────────────────
// Productos
// ─────────────────────────────────────────────────────────────────────────────

func TestProducts_CrearYDuplicado(t *testing.T) {
	app := newApp(t)

	status, _ := call(t, app, "POST", "/api/products", map[string]any{
		"name": "MAP", "unit": "KG", "category": "ENGRAIS", "price": 12,
	})
	assert.Equal(t, fiber.StatusCreated, status)

	status, raw := call(t, app, "POST", "/api/products", map[string]any{
		"name": "map", "unit": "KG", "category": "ENGRAIS",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", decodeError(t, raw).Code)

	status, raw = call(t, app, "POST", "/api/products", map[string]any{
		"name": "UREE", "unit": "TONNE", "category": "ENGRAIS",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	e := decodeError(t, raw)
	assert.Equal(t, "VALIDATION", e.Code)
	assert.Equal(t, "unit", e.Field)

	status, _ = call(t, app, "POST", "/api/products", "{no es json")
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, raw = call(t, app, "GET", "/api/products", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list dto.ProductListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Equal(t, 1, list.Total)

	status, _ = call(t, app, "GET", "/api/products/no-existe", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

// ─────────────────────────────────────────────────────────────────────────────
// Movimientos y saldos
// ─────────────────────────────────────────────────────────────────────────────

func TestMovements_SaldoInsuficienteYSaldo(t *testing.T) {
	app := newApp(t)

	status, raw := call(t, app, "POST", "/api/movements", map[string]any{
		"type": "entry", "product": "MAP", "quantity": 10, "price": 2, "date": "2026-01-05", "supplier": "FERTIMA",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	status, raw = call(t, app, "POST", "/api/movements", map[string]any{
		"type": "exit", "product": "MAP", "quantity": 4, "date": "2026-01-06", "farm": "AGRO BERRY 1",
	})
	require.Equal(t, fiber.StatusCreated, status, string(raw))

	status, raw = call(t, app, "POST", "/api/movements", map[string]any{
		"type": "consumption", "product": "MAP", "quantity": 50, "date": "2026-01-07",
		"farm": "AGRO BERRY 1", "culture": "Myrtille", "destination": "Sol",
	})
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeError(t, raw).Code)

	status, raw = call(t, app, "GET", "/api/stock?location=WAREHOUSE", nil)
	require.Equal(t, fiber.StatusOK, status)
	var bal dto.BalanceResponse
	require.NoError(t, json.Unmarshal(raw, &bal))
	require.Len(t, bal.Lines, 1)
	assert.Equal(t, "MAP", bal.Lines[0].Product)
	assert.Equal(t, "6", bal.Lines[0].Quantity.String())

	status, _ = call(t, app, "GET", "/api/stock?location=NINGUNA", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, raw = call(t, app, "GET", "/api/movements?farm=AGRO%20BERRY%201", nil)
	require.Equal(t, fiber.StatusOK, status)
	var list dto.MovementListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Equal(t, 1, list.Page.Total)

	status, raw = call(t, app, "GET", "/api/suppliers", nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.Contains(t, string(raw), "FERTIMA")
}

func TestTransfers_MismaFinca(t *testing.T) {
	app := newApp(t)
	status, raw := call(t, app, "POST", "/api/transfers", map[string]any{
		"product": "MAP", "quantity": 1, "date": "2026-01-07", "fromFarm": "AGRO BERRY 1", "toFarm": "AGRO BERRY 1",
	})
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "SAME_FARM", decodeError(t, raw).Code)

	status, _ = call(t, app, "GET", "/api/transfers/no-existe", nil)
	assert.Equal(t, fiber.StatusNotFound, status)
}

// ─────────────────────────────────────────────────────────────────────────────
// Informes
// ─────────────────────────────────────────────────────────────────────────────

func TestReports(t *testing.T) {
	app := newApp(t)

	status, raw := call(t, app, "GET", "/api/reports/periods?season=2025", nil)
	require.Equal(t, fiber.StatusOK, status)
	var periods []map[string]any
	require.NoError(t, json.Unmarshal(raw, &periods))
	require.NotEmpty(t, periods)
	assert.Equal(t, "SEPTEMBRE", periods[0]["key"])

	status, raw = call(t, app, "GET", "/api/reports/reconciliation?period=JANVIER&season=2025", nil)
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var rec dto.ReconciliationResponse
	require.NoError(t, json.Unmarshal(raw, &rec))
	assert.Len(t, rec.Farms, 3)

	status, raw = call(t, app, "GET", "/api/reports/reconciliation?period=NOPE", nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
	assert.Equal(t, "period", decodeError(t, raw).Field)

	req := httptest.NewRequest("GET", "/api/reports/costs/pdf?culture=Myrtille&season=2025", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	status, _ = call(t, app, "GET", "/api/alerts", nil)
	assert.Equal(t, fiber.StatusOK, status)
}

// ─────────────────────────────────────────────────────────────────────────────
// Datos y respaldo
// ─────────────────────────────────────────────────────────────────────────────

func TestData_ExportarImportarYBorrar(t *testing.T) {
	app := newApp(t)
	call(t, app, "POST", "/api/products", map[string]any{"name": "MAP", "unit": "KG", "category": "ENGRAIS"})

	req := httptest.NewRequest("GET", "/api/data/export", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "agro-berry-backup-")
	exported, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	status, raw := call(t, app, "POST", "/api/data/import", `{"foo":1}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, status)
	assert.Equal(t, "UNRECOGNIZED_FORMAT", decodeError(t, raw).Code)

	status, _ = call(t, app, "DELETE", "/api/data", nil)
	assert.Equal(t, fiber.StatusBadRequest, status, "sin confirmación no se borra")

	status, _ = call(t, app, "DELETE", "/api/data?confirm=true", nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	_, raw = call(t, app, "GET", "/api/products", nil)
	var list dto.ProductListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.Zero(t, list.Total)

	status, raw = call(t, app, "POST", "/api/data/import", string(exported))
	require.Equal(t, fiber.StatusOK, status, string(raw))
	var res exchange.Result
	require.NoError(t, json.Unmarshal(raw, &res))
	assert.Equal(t, exchange.FormatBackup, res.Format)
	assert.Equal(t, 1, res.Products)
}

func TestBackup_SinConfigurar(t *testing.T) {
	app := newApp(t)

	status, raw := call(t, app, "POST", "/api/backup/now", nil)
	assert.Equal(t, fiber.StatusFailedDependency, status)
	assert.Equal(t, "BACKUP_NOT_CONFIGURED", decodeError(t, raw).Code)

	status, raw = call(t, app, "GET", "/api/backup/status", nil)
	require.Equal(t, fiber.StatusOK, status)
	var st backup.Status
	require.NoError(t, json.Unmarshal(raw, &st))
	assert.False(t, st.Enabled)
	assert.Equal(t, backup.StateDisabled, st.State)
}
