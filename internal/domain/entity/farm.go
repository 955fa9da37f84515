package entity

import (
	"slices"

	"github.com/shopspring/decimal"
)

// LocationWarehouse es el almacén central (Magasin). Las fincas se identifican por su ID.
const LocationWarehouse = "WAREHOUSE"

// Fincas.
const (
	FarmAB1 = "AGRO BERRY 1"
	FarmAB2 = "AGRO BERRY 2"
	FarmAB3 = "AGRO BERRY 3"
)

// Cultivos.
const (
	CultureBlueberry  = "Myrtille"
	CultureStrawberry = "Fraise"
)

// Destinos de consumo.
const (
	DestinationSoil        = "Sol"
	DestinationHydro       = "Hydro"
	DestinationFoliar      = "Foliaire"
	DestinationPesticide   = "Pesticide"
	destinationHydroLegacy = "Hydroponic"
)

// Tipos de superficie de la tabla de áreas.
const (
	AreaSoil       = "Sol"
	AreaHydro      = "Hydro"
	AreaFoliar     = "Foliaire"
	AreaPesticides = "Pesticides"
	AreaBumblebees = "Bourdons"
)

// Farm finca con su superficie total en hectáreas.
type Farm struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Short    string          `json:"short"`
	Hectares decimal.Decimal `json:"hectares"`
}

var Farms = []Farm{
	{ID: FarmAB1, Name: "Agro Berry 1", Short: "AGB1", Hectares: decimal.NewFromInt(24)},
	{ID: FarmAB2, Name: "Agro Berry 2", Short: "AGB2", Hectares: decimal.NewFromInt(24)},
	{ID: FarmAB3, Name: "Agro Berry 3", Short: "AGB3", Hectares: decimal.RequireFromString("29.7")},
}

// FarmIDs lista los IDs de finca en orden.
func FarmIDs() []string {
	ids := make([]string, 0, len(Farms))
	for _, f := range Farms {
		ids = append(ids, f.ID)
	}
	return ids
}

// IsFarm indica si id corresponde a una finca conocida.
func IsFarm(id string) bool { return slices.Contains(FarmIDs(), id) }

// IsLocation acepta el almacén o una finca.
func IsLocation(id string) bool { return id == LocationWarehouse || IsFarm(id) }

// FarmCultures cultivos por finca.
var FarmCultures = map[string][]string{
	FarmAB1: {CultureBlueberry, CultureStrawberry},
	FarmAB2: {CultureBlueberry},
	FarmAB3: {CultureBlueberry},
}

// HasCulture indica si la finca produce ese cultivo.
func HasCulture(farm, culture string) bool {
	return slices.Contains(FarmCultures[farm], culture)
}

var Destinations = []string{DestinationSoil, DestinationHydro, DestinationFoliar, DestinationPesticide}

// NormalizeDestination traduce el valor legado "Hydroponic" a Hydro.
func NormalizeDestination(d string) string {
	if d == destinationHydroLegacy {
		return DestinationHydro
	}
	return d
}

// IsValidDestination valida un destino (acepta el valor legado).
func IsValidDestination(d string) bool {
	return slices.Contains(Destinations, NormalizeDestination(d))
}

// DestinationAllowed aplica las exclusiones por finca y cultivo:
// AB3 no tiene suelo y la fresa no tiene hidroponía.
func DestinationAllowed(farm, culture, destination string) bool {
	switch NormalizeDestination(destination) {
	case DestinationSoil:
		return farm != FarmAB3
	case DestinationHydro:
		return culture != CultureStrawberry
	}
	return true
}

func ha(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// AreaTable superficies (ha) por finca, cultivo y tipo de superficie.
var AreaTable = map[string]map[string]map[string]decimal.Decimal{
	FarmAB1: {
		CultureBlueberry: {
			AreaSoil: ha("12.02"), AreaHydro: ha("9.13"),
			AreaFoliar: ha("21.15"), AreaPesticides: ha("21.15"), AreaBumblebees: ha("21.15"),
		},
		CultureStrawberry: {
			AreaSoil: ha("15.5"), AreaFoliar: ha("15.5"), AreaPesticides: ha("15.5"), AreaBumblebees: ha("15.5"),
		},
	},
	FarmAB2: {
		CultureBlueberry: {
			AreaSoil: ha("12.22"), AreaHydro: ha("11.78"),
			AreaFoliar: ha("24"), AreaPesticides: ha("24"), AreaBumblebees: ha("24"),
		},
	},
	FarmAB3: {
		CultureBlueberry: {
			AreaHydro: ha("29.7"), AreaFoliar: ha("29.7"), AreaPesticides: ha("29.7"), AreaBumblebees: ha("29.7"),
		},
	},
}

// Area devuelve la superficie; cero si la combinación no existe.
func Area(farm, culture, areaType string) decimal.Decimal {
	return AreaTable[farm][culture][areaType]
}
