package inventory

import (
	"time"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// ApplyDelta acumula una mutación de cantidad en el registro del periodo.
// rec nil crea el registro: stock_start queda fijado con la cantidad previa a la
// primera mutación observada del periodo. Las disminuciones suman a Usage y los
// aumentos a Restock; StockEnd refleja siempre la última cantidad.
func ApplyDelta(rec *entity.UsagePeriodRecord, itemID string, p Period, before, after int, now time.Time) *entity.UsagePeriodRecord {
	if rec == nil {
		rec = &entity.UsagePeriodRecord{
			ItemID:     itemID,
			Period:     p.Label(),
			Year:       p.Year,
			Quarter:    p.Quarter,
			StockStart: before,
			CreatedAt:  now,
		}
	}
	switch delta := after - before; {
	case delta < 0:
		rec.Usage += -delta
	case delta > 0:
		rec.Restock += delta
		rec.Restocked = true
	}
	rec.StockEnd = after
	rec.UpdatedAt = now
	return rec
}
