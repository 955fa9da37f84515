package transfer

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

// Reglas de emparejamiento, en orden de prioridad.
const (
	MatchLinkID        = "link-id"
	MatchFields        = "fields"
	MatchTimeProximity = "time-proximity"
)

var (
	// ProximityWindow ventana de creación para emparejar patas sin vínculo.
	ProximityWindow   = time.Second
	quantityTolerance = decimal.RequireFromString("0.01")
)

// Match resultado de buscar la pata complementaria.
type Match struct {
	Pair entity.Movement
	Rule string
}

// FindPair busca la pata complementaria de un traslado: primero por transferId, luego por
// coincidencia de campos (producto, tipo opuesto, fincas compatibles, fecha y cantidad) y por
// último por cercanía en la hora de creación.
func FindPair(movements []entity.Movement, leg entity.Movement) (Match, bool) {
	if !leg.IsTransfer() {
		return Match{}, false
	}
	want := entity.OppositeType(leg.Type)

	if leg.TransferID != "" {
		for _, m := range movements {
			if m.ID != leg.ID && m.Type == want && m.TransferID == leg.TransferID {
				return Match{Pair: m, Rule: MatchLinkID}, true
			}
		}
	}

	candidates := make([]entity.Movement, 0)
	for _, m := range movements {
		if m.ID == leg.ID || m.Type != want || m.Product != leg.Product {
			continue
		}
		if m.TransferID != "" && m.TransferID != leg.TransferID {
			continue
		}
		candidates = append(candidates, m)
	}

	best, bestScore := -1, -1
	for i, m := range candidates {
		if !m.Date.Equal(leg.Date) || m.Quantity.Sub(leg.Quantity).Abs().GreaterThanOrEqual(quantityTolerance) {
			continue
		}
		score, ok := endpointScore(leg, m)
		if !ok {
			continue
		}
		if score > bestScore {
			best, bestScore = i, score
		}
	}
	if best >= 0 {
		return Match{Pair: candidates[best], Rule: MatchFields}, true
	}

	if leg.CreatedAt.IsZero() {
		return Match{}, false
	}
	best = -1
	var bestGap time.Duration
	for i, m := range candidates {
		if m.CreatedAt.IsZero() {
			continue
		}
		gap := m.CreatedAt.Sub(leg.CreatedAt)
		if gap < 0 {
			gap = -gap
		}
		if gap > ProximityWindow {
			continue
		}
		if best < 0 || gap < bestGap {
			best, bestGap = i, gap
		}
	}
	if best >= 0 {
		return Match{Pair: candidates[best], Rule: MatchTimeProximity}, true
	}
	return Match{}, false
}

// endpoints origen y destino conocidos de una pata.
func endpoints(m entity.Movement) (from, to string) {
	from, to = m.FromFarm, m.ToFarm
	switch m.Type {
	case entity.MovementTransferOut:
		from = m.SourceFarm()
	case entity.MovementTransferIn:
		to = m.TargetFarm()
	}
	return from, to
}

// endpointScore cuenta los extremos que coinciden; false si alguno conocido en ambas patas difiere.
func endpointScore(a, b entity.Movement) (int, bool) {
	af, at := endpoints(a)
	bf, bt := endpoints(b)
	score := 0
	for _, pair := range [][2]string{{af, bf}, {at, bt}} {
		if pair[0] == "" || pair[1] == "" {
			continue
		}
		if pair[0] != pair[1] {
			return 0, false
		}
		score++
	}
	return score, true
}

// Pair traslado reconstruido; In u Out vacíos si la pata complementaria no aparece.
type Pair struct {
	Transfer entity.Transfer  `json:"transfer"`
	Out      *entity.Movement `json:"out,omitempty"`
	In       *entity.Movement `json:"in,omitempty"`
	Rule     string           `json:"rule,omitempty"`
}

// Complete indica si están las dos patas.
func (p Pair) Complete() bool { return p.Out != nil && p.In != nil }

// Pairs agrupa todas las patas de traslado en traslados, usando la misma cadena de búsqueda.
// Cada pata se usa una sola vez. Orden: fecha descendente.
func Pairs(movements []entity.Movement) []Pair {
	var legs []entity.Movement
	for _, m := range movements {
		if m.IsTransfer() {
			legs = append(legs, m)
		}
	}
	used := map[string]bool{}
	var out []Pair
	for _, leg := range legs {
		if used[leg.ID] {
			continue
		}
		used[leg.ID] = true
		remaining := make([]entity.Movement, 0, len(legs))
		for _, m := range legs {
			if !used[m.ID] {
				remaining = append(remaining, m)
			}
		}
		p := Pair{}
		if match, ok := FindPair(remaining, leg); ok {
			used[match.Pair.ID] = true
			p.Rule = match.Rule
			a, b := leg, match.Pair
			if a.Type == entity.MovementTransferIn {
				a, b = b, a
			}
			p.Out, p.In = &a, &b
		} else if leg.Type == entity.MovementTransferOut {
			l := leg
			p.Out = &l
		} else {
			l := leg
			p.In = &l
		}
		p.Transfer = transferOf(p)
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Transfer.Date.After(out[j].Transfer.Date)
	})
	return out
}

func transferOf(p Pair) entity.Transfer {
	switch {
	case p.Complete():
		return entity.TransferFromLegs(*p.Out, *p.In)
	case p.Out != nil:
		return entity.TransferFromLegs(*p.Out, entity.Movement{ToFarm: p.Out.ToFarm})
	default:
		t := entity.TransferFromLegs(*p.In, *p.In)
		t.FromFarm = p.In.FromFarm
		return t
	}
}
