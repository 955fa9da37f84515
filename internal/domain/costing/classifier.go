package costing

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

// Categorías de costo de producción.
const (
	CostBumblebees  = "Bourdons"
	CostSoilPowder  = "Engrais Poudre Sol"
	CostHydroPowder = "Engrais Poudre Hydroponic"
	CostFoliar      = "Engrais Foliaire"
	CostPesticides  = "Pesticides"
)

// Categories orden de presentación.
var Categories = []string{CostBumblebees, CostSoilPowder, CostHydroPowder, CostFoliar, CostPesticides}

// KnownPesticides fragmentos de nombre comercial que siempre se clasifican como pesticida,
// aunque el catálogo diga otra cosa.
var KnownPesticides = []string{
	"OIKOS", "SWITCH", "TIOSOL", "ACRAMITE", "ACTARA", "AFRAW", "ALFABET",
	"ALIETTE FLASH", "BENEVIA", "CIDELY TOP", "DICARZOL", "EXIREL", "JOKER", "KAISER", "KOBUS",
	"KRISANT", "LIMOCIDE", "LUNA SENSATION", "MAVRIK", "MILBEKNOCK", "MOLATHION", "MOVENTO",
	"ORTIVA", "PIRIMOR", "PIXEL", "PROBLAD", "PROCLAIM", "RADIANT", "SAPHYR", "SCELTA",
	"SIGNUM", "SIVANTO PRIME", "STROBY", "TALENDO", "TELDOR", "TIMOREX GOLD", "VERIMARK",
}

// FoliarFragments fragmentos de nombre de abonos foliares.
var FoliarFragments = []string{
	"EFFICIENT", "GREENSTIM", "GREEN STEM", "KELPAK", "KELP BIO",
	"CITOCALCUIM", "PROSILICON", "BIOMEX", "RAIZANTE", "BIOFORGE",
	"FOLIASTIM", "ISABION", "FOLICIST", "VITACROP", "NOVA",
}

// Subject lo que se clasifica: el movimiento y, si existe, su producto de catálogo.
type Subject struct {
	Movement entity.Movement
	Product  *entity.Product
}

// Rule regla de clasificación. Match devuelve la categoría y true si la regla decide.
type Rule struct {
	Name  string
	Match func(Subject) (string, bool)
}

// Classifier lista ordenada de reglas; decide la primera que coincide.
type Classifier struct {
	rules []Rule
}

// NewClassifier construye un clasificador con las reglas en el orden dado.
func NewClassifier(rules ...Rule) *Classifier {
	return &Classifier{rules: rules}
}

// DefaultClassifier reglas en orden de precedencia:
// pesticidas conocidos, categoría de catálogo, categoría explícita del movimiento,
// destino, nombre foliar y por último polvo de suelo.
func DefaultClassifier() *Classifier {
	return NewClassifier(
		KnownPesticideRule(KnownPesticides),
		CatalogCategoryRule(),
		ExplicitCategoryRule(),
		DestinationRule(),
		FoliarNameRule(FoliarFragments),
		FallbackRule(CostSoilPowder),
	)
}

// Rules nombres de las reglas en orden.
func (c *Classifier) Rules() []string {
	out := make([]string, len(c.rules))
	for i, r := range c.rules {
		out[i] = r.Name
	}
	return out
}

// Classify devuelve la categoría de costo y el nombre de la regla que decidió.
func (c *Classifier) Classify(s Subject) (category, rule string) {
	for _, r := range c.rules {
		if cat, ok := r.Match(s); ok {
			return cat, r.Name
		}
	}
	return CostSoilPowder, ""
}

// KnownPesticideRule nombre del producto contiene un pesticida conocido.
func KnownPesticideRule(names []string) Rule {
	normalized := normalizeAll(names)
	return Rule{Name: "known-pesticide", Match: func(s Subject) (string, bool) {
		if containsAny(Normalize(s.Movement.Product), normalized) {
			return CostPesticides, true
		}
		return "", false
	}}
}

// CatalogCategoryRule categoría del producto en el catálogo.
func CatalogCategoryRule() Rule {
	return Rule{Name: "catalog-category", Match: func(s Subject) (string, bool) {
		if s.Product == nil {
			return "", false
		}
		switch s.Product.Category {
		case entity.CategoryPesticide:
			return CostPesticides, true
		case entity.CategoryBumblebees:
			return CostBumblebees, true
		case entity.CategoryInvestment:
			if strings.Contains(Normalize(s.Product.Name), "BOURDON") {
				return CostBumblebees, true
			}
		}
		return "", false
	}}
}

// ExplicitCategoryRule categoría de costo guardada en el movimiento (aplicaciones de mezcla).
func ExplicitCategoryRule() Rule {
	return Rule{Name: "explicit-category", Match: func(s Subject) (string, bool) {
		for _, c := range Categories {
			if s.Movement.Category == c {
				return c, true
			}
		}
		return "", false
	}}
}

// DestinationRule destino del consumo.
func DestinationRule() Rule {
	return Rule{Name: "destination", Match: func(s Subject) (string, bool) {
		switch entity.NormalizeDestination(s.Movement.Destination) {
		case entity.DestinationSoil:
			return CostSoilPowder, true
		case entity.DestinationHydro:
			return CostHydroPowder, true
		case entity.DestinationFoliar:
			return CostFoliar, true
		case entity.DestinationPesticide:
			return CostPesticides, true
		}
		return "", false
	}}
}

// FoliarNameRule nombre del producto contiene un fragmento foliar.
func FoliarNameRule(fragments []string) Rule {
	normalized := normalizeAll(fragments)
	return Rule{Name: "foliar-name", Match: func(s Subject) (string, bool) {
		if containsAny(Normalize(s.Movement.Product), normalized) {
			return CostFoliar, true
		}
		return "", false
	}}
}

// FallbackRule siempre decide la categoría dada.
func FallbackRule(category string) Rule {
	return Rule{Name: "default", Match: func(Subject) (string, bool) { return category, true }}
}

// Normalize mayúsculas sin acentos, para comparar nombres comerciales.
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToUpper(strings.TrimSpace(out))
}

func normalizeAll(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = Normalize(s)
	}
	return out
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if strings.Contains(s, f) {
			return true
		}
	}
	return false
}
