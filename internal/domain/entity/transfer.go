package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transfer traslado entre fincas como entidad única. Se persiste como dos movimientos
// (transfer-out en origen, transfer-in en destino) que comparten TransferID.
type Transfer struct {
	ID       string          `json:"id"`
	Product  string          `json:"product"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Date     Date            `json:"date"`
	FromFarm string          `json:"fromFarm"`
	ToFarm   string          `json:"toFarm"`
	Notes    string          `json:"notes,omitempty"`
}

// Legs proyecta el traslado en sus dos movimientos. outID e inID son los IDs de cada pata.
func (t Transfer) Legs(outID, inID string, now time.Time) (out, in Movement) {
	base := Movement{
		Product:    t.Product,
		Quantity:   t.Quantity,
		Price:      t.Price,
		Date:       t.Date,
		FromFarm:   t.FromFarm,
		ToFarm:     t.ToFarm,
		TransferID: t.ID,
		Notes:      t.Notes,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	out, in = base, base
	out.ID, out.Type, out.Farm = outID, MovementTransferOut, t.FromFarm
	in.ID, in.Type, in.Farm = inID, MovementTransferIn, t.ToFarm
	return out, in
}

// TransferFromLegs reconstruye el traslado a partir de sus patas.
func TransferFromLegs(out, in Movement) Transfer {
	id := out.TransferID
	if id == "" {
		id = in.TransferID
	}
	if id == "" {
		id = out.ID
	}
	return Transfer{
		ID:       id,
		Product:  out.Product,
		Quantity: out.Quantity,
		Price:    out.Price,
		Date:     out.Date,
		FromFarm: out.SourceFarm(),
		ToFarm:   in.TargetFarm(),
		Notes:    out.Notes,
	}
}
