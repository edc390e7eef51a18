package repository

import (
	"context"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// RequisitionFilter criterios de listado.
type RequisitionFilter struct {
	RequesterID string
	Status      string
	ApproverID  string
	OfficeID    string
	Limit       int
	Offset      int
}

// RequisitionRepository persiste requisiciones junto con sus líneas.
type RequisitionRepository interface {
	Create(ctx context.Context, r *entity.Requisition) error
	GetByID(ctx context.Context, id string) (*entity.Requisition, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Requisition, error)
	// Update guarda cabecera y estado de las líneas.
	Update(ctx context.Context, r *entity.Requisition) error
	List(ctx context.Context, f RequisitionFilter) ([]*entity.Requisition, error)
}
