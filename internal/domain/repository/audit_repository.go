package repository

import (
	"context"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// AuditRepository bitácora de actividad.
type AuditRepository interface {
	Create(ctx context.Context, rec *entity.AuditRecord) error
	ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditRecord, error)
}
