package repository

import (
	"context"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// UsageRepository acumulados trimestrales por ítem.
type UsageRepository interface {
	// GetForUpdate devuelve (nil, nil) si aún no hay registro para (ítem, periodo).
	GetForUpdate(ctx context.Context, itemID, period string) (*entity.UsagePeriodRecord, error)
	Upsert(ctx context.Context, rec *entity.UsagePeriodRecord) error
	ListByItem(ctx context.Context, itemID string) ([]entity.UsagePeriodRecord, error)
	ListByPeriod(ctx context.Context, period string) ([]entity.UsagePeriodRecord, error)
}
