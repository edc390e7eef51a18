package repository

import (
	"context"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// InventoryMovementRepository define el puerto para persistir movimientos de inventario.
type InventoryMovementRepository interface {
	Create(ctx context.Context, m *entity.InventoryMovement) error
	ListByItem(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, error)
	ListByTransaction(ctx context.Context, transactionID string) ([]*entity.InventoryMovement, error)
}
