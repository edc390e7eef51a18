package repository

import (
	"context"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// ReceiptRepository persiste recibos de custodia (cadena sólo-anexar).
type ReceiptRepository interface {
	Create(ctx context.Context, r *entity.CustodyReceipt) error
	GetByID(ctx context.Context, id string) (*entity.CustodyReceipt, error)
	GetForUpdate(ctx context.Context, id string) (*entity.CustodyReceipt, error)
	// Update aplica el cambio sólo si Version coincide con la almacenada y la
	// incrementa; si no coincide devuelve domain.ErrAlreadyProcessed.
	Update(ctx context.Context, r *entity.CustodyReceipt) error
	ListByItem(ctx context.Context, itemID string) ([]entity.CustodyReceipt, error)
	ListByItems(ctx context.Context, itemIDs []string) ([]entity.CustodyReceipt, error)
	ListByCustodian(ctx context.Context, c entity.Custodian) ([]entity.CustodyReceipt, error)
	ListByStatus(ctx context.Context, status string) ([]entity.CustodyReceipt, error)
}
