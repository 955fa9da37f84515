package exchange

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

//go:embed seed/seed.json
var seedJSON []byte

// Seed catálogo inicial versionado.
type Seed struct {
	Version   int              `json:"version"`
	Products  []entity.Product `json:"products"`
	Suppliers []string         `json:"suppliers"`
}

// LoadSeed decodifica la semilla embebida.
func LoadSeed() (*Seed, error) {
	var s Seed
	if err := json.Unmarshal(seedJSON, &s); err != nil {
		return nil, fmt.Errorf("semilla embebida: %w", err)
	}
	return &s, nil
}

// idRange ids numéricos (con prefijo) de generaciones anteriores de la semilla.
type idRange struct {
	prefix   string
	from, to int
}

func (r idRange) contains(id string) bool {
	rest, ok := strings.CutPrefix(id, r.prefix)
	if !ok {
		return false
	}
	n, err := strconv.Atoi(rest)
	return err == nil && n >= r.from && n <= r.to
}

// obsoleteRanges ids de las semillas v1 ("1".."120") y v2 ("seed-1".."seed-99").
var obsoleteRanges = []idRange{
	{prefix: "", from: 1, to: 120},
	{prefix: "seed-", from: 1, to: 99},
}

func obsolete(id string) bool {
	for _, r := range obsoleteRanges {
		if r.contains(id) {
			return true
		}
	}
	return false
}

// MigrationResult resultado de aplicar la semilla.
type MigrationResult struct {
	From    int  `json:"from"`
	To      int  `json:"to"`
	Applied bool `json:"applied"`
	Kept    int  `json:"kept"`
	Removed int  `json:"removed"`
	Seeded  int  `json:"seeded"`
}

// Migrate aplica la semilla embebida.
func (s *Service) Migrate(ctx context.Context) (*MigrationResult, error) {
	seed, err := LoadSeed()
	if err != nil {
		return nil, err
	}
	return s.MigrateWith(ctx, seed)
}

// MigrateWith fusiona la semilla si la versión guardada es menor: se conserva todo producto
// cuyo id no esté en la semilla ni en un rango obsoleto, y luego se escriben los de la semilla.
// Un producto de la semilla cuyo nombre ya usa un producto conservado no se agrega.
func (s *Service) MigrateWith(ctx context.Context, seed *Seed) (*MigrationResult, error) {
	current, err := s.repos.Schema.Version(ctx)
	if err != nil {
		return nil, err
	}
	res := &MigrationResult{From: current, To: current}
	if current >= seed.Version {
		return res, nil
	}

	existing, err := s.repos.Products.List(ctx)
	if err != nil {
		return nil, err
	}
	seedIDs := make(map[string]bool, len(seed.Products))
	for _, p := range seed.Products {
		seedIDs[p.ID] = true
	}
	merged := make([]entity.Product, 0, len(existing)+len(seed.Products))
	names := map[string]bool{}
	for _, p := range existing {
		if seedIDs[p.ID] || obsolete(p.ID) {
			res.Removed++
			continue
		}
		merged = append(merged, p)
		names[strings.ToUpper(strings.TrimSpace(p.Name))] = true
		res.Kept++
	}
	now := s.now()
	for _, p := range seed.Products {
		if names[strings.ToUpper(strings.TrimSpace(p.Name))] {
			continue
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = now
		}
		merged = append(merged, p)
		res.Seeded++
	}
	if err := s.repos.Products.ReplaceAll(ctx, merged); err != nil {
		return nil, err
	}
	if len(seed.Suppliers) > 0 {
		if _, err := s.repos.Suppliers.Add(ctx, seed.Suppliers...); err != nil {
			return nil, err
		}
	}
	if err := s.repos.Schema.SetVersion(ctx, seed.Version); err != nil {
		return nil, err
	}
	res.To, res.Applied = seed.Version, true
	s.log.Info().Int("from", res.From).Int("to", res.To).Int("kept", res.Kept).
		Int("removed", res.Removed).Int("seeded", res.Seeded).Msg("semilla aplicada")
	return res, nil
}
