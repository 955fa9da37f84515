package transfer_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
	"github.com/jhoicas/agro-inventario/internal/domain/transfer"
)

var t0 = time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC)

func leg(id, typ, product, qty, date string, created time.Time) entity.Movement {
	return entity.Movement{
		ID: id, Type: typ, Product: product, Quantity: decimal.RequireFromString(qty),
		Date: entity.MustDate(date), CreatedAt: created,
	}
}

func TestFindPair_PorVinculo(t *testing.T) {
	tr := entity.Transfer{ID: "tr-9", Product: "MAP", Quantity: decimal.NewFromInt(5), Date: entity.MustDate("2026-01-07"),
		FromFarm: entity.FarmAB1, ToFarm: entity.FarmAB2}
	out, in := tr.Legs("o", "i", t0)
	decoy := leg("x", entity.MovementTransferIn, "MAP", "5", "2026-01-07", t0)

	m, ok := transfer.FindPair([]entity.Movement{decoy, out, in}, in)
	require.True(t, ok)
	assert.Equal(t, "o", m.Pair.ID)
	assert.Equal(t, transfer.MatchLinkID, m.Rule)

	m, ok = transfer.FindPair([]entity.Movement{decoy, out, in}, out)
	require.True(t, ok)
	assert.Equal(t, "i", m.Pair.ID)
}

func TestFindPair_PorCampos(t *testing.T) {
	out := leg("o", entity.MovementTransferOut, "MAP", "5", "2026-01-07", time.Time{})
	out.FromFarm, out.ToFarm = entity.FarmAB1, entity.FarmAB2
	wrongDest := leg("w", entity.MovementTransferIn, "MAP", "5", "2026-01-07", time.Time{})
	wrongDest.Farm = entity.FarmAB3
	in := leg("i", entity.MovementTransferIn, "MAP", "5.001", "2026-01-07", time.Time{})
	in.Farm = entity.FarmAB2
	otherDay := leg("d", entity.MovementTransferIn, "MAP", "5", "2026-01-08", time.Time{})
	otherDay.Farm = entity.FarmAB2

	m, ok := transfer.FindPair([]entity.Movement{wrongDest, otherDay, in, out}, out)
	require.True(t, ok)
	assert.Equal(t, "i", m.Pair.ID)
	assert.Equal(t, transfer.MatchFields, m.Rule)
}

func TestFindPair_PorCercania(t *testing.T) {
	out := leg("o", entity.MovementTransferOut, "MAP", "5", "2026-01-07", t0)
	in := leg("i", entity.MovementTransferIn, "MAP", "4", "2026-01-08", t0.Add(400*time.Millisecond))
	late := leg("l", entity.MovementTransferIn, "MAP", "4", "2026-01-08", t0.Add(3*time.Second))

	m, ok := transfer.FindPair([]entity.Movement{late, in}, out)
	require.True(t, ok)
	assert.Equal(t, "i", m.Pair.ID)
	assert.Equal(t, transfer.MatchTimeProximity, m.Rule)

	_, ok = transfer.FindPair([]entity.Movement{late}, out)
	assert.False(t, ok, "fuera de la ventana no hay pareja")
}

func TestFindPair_IgnoraPatasDeOtroTraslado(t *testing.T) {
	out := leg("o", entity.MovementTransferOut, "MAP", "5", "2026-01-07", t0)
	linked := leg("i", entity.MovementTransferIn, "MAP", "5", "2026-01-07", t0)
	linked.TransferID = "otro"

	_, ok := transfer.FindPair([]entity.Movement{linked}, out)
	assert.False(t, ok)

	_, ok = transfer.FindPair([]entity.Movement{out}, leg("c", entity.MovementConsumption, "MAP", "1", "2026-01-07", t0))
	assert.False(t, ok, "solo se emparejan patas de traslado")
}

func TestPairs(t *testing.T) {
	tr := entity.Transfer{ID: "tr-1", Product: "MAP", Quantity: decimal.NewFromInt(5), Date: entity.MustDate("2026-01-07"),
		FromFarm: entity.FarmAB1, ToFarm: entity.FarmAB2}
	out, in := tr.Legs("o1", "i1", t0)

	legacyOut := leg("o2", entity.MovementTransferOut, "UREE", "2", "2026-01-09", t0)
	legacyOut.Farm = entity.FarmAB2
	legacyIn := leg("i2", entity.MovementTransferIn, "UREE", "2", "2026-01-09", t0)
	legacyIn.Farm = entity.FarmAB3

	orphan := leg("o3", entity.MovementTransferOut, "SOUFRE", "1", "2026-01-01", time.Time{})
	orphan.FromFarm, orphan.ToFarm = entity.FarmAB3, entity.FarmAB1

	pairs := transfer.Pairs([]entity.Movement{in, legacyIn, orphan, out, legacyOut,
		leg("c", entity.MovementConsumption, "MAP", "1", "2026-01-07", t0)})
	require.Len(t, pairs, 3)

	assert.Equal(t, "UREE", pairs[0].Transfer.Product)
	assert.True(t, pairs[0].Complete())
	assert.Equal(t, entity.FarmAB2, pairs[0].Transfer.FromFarm)
	assert.Equal(t, entity.FarmAB3, pairs[0].Transfer.ToFarm)

	assert.Equal(t, "tr-1", pairs[1].Transfer.ID)
	assert.Equal(t, transfer.MatchLinkID, pairs[1].Rule)
	assert.Equal(t, "o1", pairs[1].Out.ID)
	assert.Equal(t, "i1", pairs[1].In.ID)

	assert.False(t, pairs[2].Complete())
	assert.Equal(t, entity.FarmAB3, pairs[2].Transfer.FromFarm)
	assert.Equal(t, entity.FarmAB1, pairs[2].Transfer.ToFarm)
}
