package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento (valores persistidos).
const (
	MovementEntry       = "entry"        // proveedor → almacén
	MovementExit        = "exit"         // almacén → finca
	MovementConsumption = "consumption"  // consumo en finca
	MovementTransferIn  = "transfer-in"  // llegada a la finca destino
	MovementTransferOut = "transfer-out" // salida de la finca origen
)

var MovementTypes = []string{MovementEntry, MovementExit, MovementConsumption, MovementTransferIn, MovementTransferOut}

// Movement registro inmutable de cantidad de un producto entre ubicaciones.
// Product es el nombre del producto (clave de unión con el catálogo).
type Movement struct {
	ID          string          `json:"id"`
	Type        string          `json:"type"`
	Product     string          `json:"product"`
	Quantity    decimal.Decimal `json:"quantity"`
	Price       decimal.Decimal `json:"price"` // 0 = desconocido, se infiere del precio medio
	Date        Date            `json:"date"`
	Farm        string          `json:"farm,omitempty"`
	Supplier    string          `json:"supplier,omitempty"`
	Culture     string          `json:"culture,omitempty"`
	Destination string          `json:"destination,omitempty"`
	Category    string          `json:"category,omitempty"` // categoría de costo explícita (mezclas)
	FromFarm    string          `json:"fromFarm,omitempty"`
	ToFarm      string          `json:"toFarm,omitempty"`
	TransferID  string          `json:"transferId,omitempty"`
	MelangeID   string          `json:"melangeId,omitempty"`
	Melange     string          `json:"melange,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt,omitempty"`
}

// IsTransfer indica si es una de las dos patas de un traslado.
func (m Movement) IsTransfer() bool {
	return m.Type == MovementTransferIn || m.Type == MovementTransferOut
}

// SourceFarm finca que entrega en un transfer-out: fromFarm si existe, si no farm.
func (m Movement) SourceFarm() string {
	if m.FromFarm != "" {
		return m.FromFarm
	}
	return m.Farm
}

// TargetFarm finca que recibe en un transfer-in: toFarm si existe, si no farm.
func (m Movement) TargetFarm() string {
	if m.ToFarm != "" {
		return m.ToFarm
	}
	return m.Farm
}

// OppositeType tipo de la pata complementaria de un traslado.
func OppositeType(t string) string {
	switch t {
	case MovementTransferIn:
		return MovementTransferOut
	case MovementTransferOut:
		return MovementTransferIn
	}
	return ""
}

// HasPrice indica si el movimiento trae un precio utilizable.
func (m Movement) HasPrice() bool { return m.Price.GreaterThan(decimal.Zero) }

// Value cantidad por precio.
func (m Movement) Value() decimal.Decimal { return m.Quantity.Mul(m.Price) }
