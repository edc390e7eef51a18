package inventory

import (
	"fmt"
	"time"
)

// Period trimestre calendario usado para agrupar consumo y reposición.
type Period struct {
	Year    int
	Quarter int // 1..4
}

// PeriodFor trimestre que contiene t. Función pura: el llamador inyecta el instante.
func PeriodFor(t time.Time) Period {
	return Period{Year: t.Year(), Quarter: (int(t.Month())-1)/3 + 1}
}

// Label "Q{n} {year}".
func (p Period) Label() string { return fmt.Sprintf("Q%d %d", p.Quarter, p.Year) }

// Next trimestre siguiente.
func (p Period) Next() Period {
	if p.Quarter == 4 {
		return Period{Year: p.Year + 1, Quarter: 1}
	}
	return Period{Year: p.Year, Quarter: p.Quarter + 1}
}

// Before p es anterior a o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Quarter < o.Quarter
}

// Index posición absoluta del trimestre (para regresión).
func (p Period) Index() int { return p.Year*4 + p.Quarter - 1 }

// ParsePeriod interpreta "Q{n} {year}".
func ParsePeriod(label string) (Period, error) {
	var p Period
	if _, err := fmt.Sscanf(label, "Q%d %d", &p.Quarter, &p.Year); err != nil {
		return Period{}, fmt.Errorf("periodo inválido %q: %w", label, err)
	}
	if p.Quarter < 1 || p.Quarter > 4 {
		return Period{}, fmt.Errorf("periodo inválido %q", label)
	}
	return p, nil
}
