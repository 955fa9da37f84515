package costing

import (
	"time"

	"github.com/jhoicas/agro-inventario/internal/domain/entity"
)

var monthLabels = []string{"Sept", "Oct", "Nov", "Déc", "Jan", "Fév", "Mar", "Avr", "Mai", "Juin", "Juil", "Août"}

// Season campaña agrícola de septiembre de StartYear a agosto siguiente, con Months columnas.
type Season struct {
	StartYear int `json:"startYear"`
	Months    int `json:"months"`
}

// FullSeason doce columnas, septiembre a agosto.
func FullSeason(startYear int) Season { return Season{StartYear: startYear, Months: 12} }

// ReportSeason cinco columnas, septiembre a enero.
func ReportSeason(startYear int) Season { return Season{StartYear: startYear, Months: 5} }

// SeasonStartYear año de inicio de la campaña que contiene la fecha.
func SeasonStartYear(d entity.Date) int {
	if d.Month() >= time.September {
		return d.Year()
	}
	return d.Year() - 1
}

// MonthIndex posición del mes en la campaña: septiembre = 0 … agosto = 11.
func MonthIndex(m time.Month) int {
	return (int(m) - int(time.September) + 12) % 12
}

// Index columna de la fecha en esta campaña; false si cae fuera.
func (s Season) Index(d entity.Date) (int, bool) {
	if d.IsZero() || SeasonStartYear(d) != s.StartYear {
		return 0, false
	}
	idx := MonthIndex(d.Month())
	if idx >= s.months() {
		return 0, false
	}
	return idx, true
}

// Labels etiquetas de las columnas.
func (s Season) Labels() []string {
	return monthLabels[:s.months()]
}

func (s Season) months() int {
	if s.Months <= 0 || s.Months > 12 {
		return 12
	}
	return s.Months
}
