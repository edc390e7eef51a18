package postgres

import (
	"context"
	"fmt"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

// AuditRepo bitácora de actividad sobre PostgreSQL.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

func (r *AuditRepo) Create(ctx context.Context, rec *entity.AuditRecord) error {
	var detail any
	if len(rec.Detail) > 0 {
		detail = []byte(rec.Detail)
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO audit_records (id, entity_type, entity_id, action, actor_id, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.EntityType, rec.EntityID, rec.Action, rec.ActorID, detail, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit record: %w", err)
	}
	return nil
}

// ListByEntity asientos de una entidad en orden cronológico.
func (r *AuditRepo) ListByEntity(ctx context.Context, entityType, entityID string) ([]*entity.AuditRecord, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, entity_type, entity_id, action, actor_id, detail, created_at
		FROM audit_records WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at, id`, entityType, entityID)
	if err != nil {
		return nil, fmt.Errorf("list audit records: %w", err)
	}
	defer rows.Close()
	var out []*entity.AuditRecord
	for rows.Next() {
		var a entity.AuditRecord
		var detail []byte
		if err := rows.Scan(&a.ID, &a.EntityType, &a.EntityID, &a.Action, &a.ActorID, &detail, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit record: %w", err)
		}
		a.Detail = detail
		out = append(out, &a)
	}
	return out, rows.Err()
}
