package dto

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain/alert"
	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/stock"
)

// BalanceQuery saldo de una ubicación a una fecha (vacía = todo).
type BalanceQuery struct {
	Location string `query:"location" validate:"required,location"`
	AsOf     string `query:"asOf" validate:"omitempty,isodate"`
}

// BalanceLine saldo de un producto.
type BalanceLine struct {
	Product  string          `json:"product"`
	Unit     string          `json:"unit,omitempty"`
	Category string          `json:"category,omitempty"`
	Quantity decimal.Decimal `json:"quantity"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
	Value    decimal.Decimal `json:"value"`
}

// BalanceResponse saldo de una ubicación, por nombre de producto.
type BalanceResponse struct {
	Location     string          `json:"location"`
	AsOf         string          `json:"asOf,omitempty"`
	SnapshotDate string          `json:"snapshotDate,omitempty"`
	Lines        []BalanceLine   `json:"lines"`
	TotalValue   decimal.Decimal `json:"totalValue"`
}

// AveragePriceResponse precio medio ponderado de un producto.
type AveragePriceResponse struct {
	Product  string          `json:"product"`
	AvgPrice decimal.Decimal `json:"avgPrice"`
}

// ReconciliationQuery período de conciliación. StartYear 0 = campaña en curso.
type ReconciliationQuery struct {
	Period    string `query:"period" validate:"required"`
	StartYear int    `query:"season" validate:"gte=0"`
}

// FarmReconciliation tabla de una finca.
type FarmReconciliation struct {
	Farm string      `json:"farm"`
	Rows []stock.Row `json:"rows"`
}

// ReconciliationResponse conciliación de las tres fincas en un período.
type ReconciliationResponse struct {
	Period stock.Period         `json:"period"`
	Farms  []FarmReconciliation `json:"farms"`
}

// CostReportQuery filtro del informe de costos. Farm vacío = todas las fincas.
type CostReportQuery struct {
	Farm      string `query:"farm" validate:"omitempty,farm"`
	Culture   string `query:"culture" validate:"required"`
	StartYear int    `query:"season" validate:"gte=0"`
	Months    int    `query:"months" validate:"omitempty,oneof=5 12"`
}

// AlertsResponse alertas vigentes.
type AlertsResponse struct {
	Items    []alert.Alert `json:"items"`
	Critical int           `json:"critical"`
	Warning  int           `json:"warning"`
	Info     int           `json:"info"`
}

// SnapshotRequest inventario físico de una finca.
type SnapshotRequest struct {
	Farm  string                `json:"farm" validate:"required,farm"`
	Date  string                `json:"date" validate:"required,isodate"`
	Lines []SnapshotLineRequest `json:"lines" validate:"dive"`
}

// SnapshotLineRequest línea del inventario físico.
type SnapshotLineRequest struct {
	Product  string          `json:"product" validate:"required"`
	Quantity decimal.Decimal `json:"quantity" validate:"gte=0"`
	Price    decimal.Decimal `json:"price" validate:"gte=0"`
}

// CaptureSnapshotRequest guarda como inventario físico el saldo calculado a una fecha.
type CaptureSnapshotRequest struct {
	Farm string `json:"farm" validate:"required,farm"`
	Date string `json:"date" validate:"required,isodate"`
}

// SnapshotListResponse inventarios de una finca.
type SnapshotListResponse struct {
	Farm      string            `json:"farm"`
	Snapshots []entity.Snapshot `json:"snapshots"`
}
