package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var _ repository.InventoryMovementRepository = (*InventoryMovementRepo)(nil)

const movementColumns = `id, transaction_id, item_id, type, quantity, quantity_before, quantity_after, reason, period, created_at, created_by`

// InventoryMovementRepo implementación sobre PostgreSQL (usable con pool o tx).
type InventoryMovementRepo struct {
	q Querier
}

// NewInventoryMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInventoryMovementRepository(q Querier) *InventoryMovementRepo {
	return &InventoryMovementRepo{q: q}
}

// Create persiste un movimiento de inventario.
func (r *InventoryMovementRepo) Create(ctx context.Context, m *entity.InventoryMovement) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `INSERT INTO inventory_movements (`+movementColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.ID, m.TransactionID, m.ItemID, m.Type, m.Quantity, m.QuantityBefore, m.QuantityAfter,
		m.Reason, m.Period, m.CreatedAt, nullString(m.CreatedBy),
	)
	if err != nil {
		return fmt.Errorf("create inventory movement: %w", err)
	}
	return nil
}

// ListByItem movimientos de un ítem, más recientes primero.
func (r *InventoryMovementRepo) ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM inventory_movements WHERE item_id = $1
		ORDER BY created_at DESC LIMIT NULLIF($2::int, 0) OFFSET $3`, itemID, limit, offset)
}

// ListByTransaction movimientos generados por una misma operación (p. ej. un despacho).
func (r *InventoryMovementRepo) ListByTransaction(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	return r.list(ctx, `SELECT `+movementColumns+` FROM inventory_movements WHERE transaction_id = $1
		ORDER BY created_at`, transactionID)
}

func (r *InventoryMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.InventoryMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventoryMovement
	for rows.Next() {
		var m entity.InventoryMovement
		var createdBy *string
		if err := rows.Scan(&m.ID, &m.TransactionID, &m.ItemID, &m.Type, &m.Quantity, &m.QuantityBefore,
			&m.QuantityAfter, &m.Reason, &m.Period, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.CreatedBy = derefString(createdBy)
		list = append(list, &m)
	}
	return list, rows.Err()
}
