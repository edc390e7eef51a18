package inventory

import (
	"math"
	"sort"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// Forecast proyección de consumo para el siguiente trimestre.
type Forecast struct {
	ItemID         string  `json:"item_id"`
	Period         string  `json:"period"`
	ExpectedUsage  int     `json:"expected_usage"`
	Slope          float64 `json:"slope"`
	Samples        int     `json:"samples"`
	SuggestRestock int     `json:"suggested_restock"`
}

// ForecastNext ajusta una recta por mínimos cuadrados sobre el consumo histórico
// y la evalúa en el trimestre siguiente al último registrado. Con una sola muestra
// repite ese valor; sin muestras devuelve cero.
func ForecastNext(itemID string, history []entity.UsagePeriodRecord, currentQty int) Forecast {
	f := Forecast{ItemID: itemID, Samples: len(history)}
	if len(history) == 0 {
		return f
	}
	recs := make([]entity.UsagePeriodRecord, len(history))
	copy(recs, history)
	sort.Slice(recs, func(i, j int) bool {
		return Period{recs[i].Year, recs[i].Quarter}.Before(Period{recs[j].Year, recs[j].Quarter})
	})
	last := Period{recs[len(recs)-1].Year, recs[len(recs)-1].Quarter}
	next := last.Next()
	f.Period = next.Label()

	var expected float64
	if len(recs) == 1 {
		expected = float64(recs[0].Usage)
	} else {
		var sx, sy, sxx, sxy float64
		n := float64(len(recs))
		for _, r := range recs {
			x := float64(Period{r.Year, r.Quarter}.Index())
			y := float64(r.Usage)
			sx += x
			sy += y
			sxx += x * x
			sxy += x * y
		}
		den := n*sxx - sx*sx
		if den == 0 {
			expected = sy / n
		} else {
			slope := (n*sxy - sx*sy) / den
			intercept := (sy - slope*sx) / n
			f.Slope = slope
			expected = slope*float64(next.Index()) + intercept
		}
	}
	f.ExpectedUsage = int(math.Max(0, math.Round(expected)))
	if gap := f.ExpectedUsage - currentQty; gap > 0 {
		f.SuggestRestock = gap
	}
	return f
}
