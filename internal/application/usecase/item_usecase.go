package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/dto"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/policy"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

// ItemUseCase ciclo de vida de ítems. Cantidad y custodia se manejan vía ledger y recibos.
type ItemUseCase struct {
	txRunner ports.TxRunner
	items    repository.ItemRepository
	labels   ports.LabelGenerator
	clock    ports.Clock
}

// NewItemUseCase construye el caso de uso.
func NewItemUseCase(txRunner ports.TxRunner, items repository.ItemRepository, labels ports.LabelGenerator, clock ports.Clock) *ItemUseCase {
	if clock == nil {
		clock = ports.SystemClock
	}
	return &ItemUseCase{txRunner: txRunner, items: items, labels: labels, clock: clock}
}

// Create da de alta un ítem activo sin custodio, con token público nuevo.
func (uc *ItemUseCase) Create(ctx context.Context, actor entity.Actor, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if err := policy.Authorize(policy.ItemManage, actor.Role); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" || in.Quantity < 0 || in.UnitValue.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var out *entity.Item
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		now := uc.clock.Now()
		item := &entity.Item{
			ID:           uuid.New().String(),
			UUID:         uuid.New().String(),
			Name:         strings.TrimSpace(in.Name),
			Description:  in.Description,
			Category:     in.Category,
			Condition:    in.Condition,
			SerialNumber: in.SerialNumber,
			Quantity:     in.Quantity,
			UnitValue:    in.UnitValue,
			Status:       entity.ItemStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := repos.Items.Create(ctx, item); err != nil {
			return err
		}
		out = item
		return auditItem(ctx, repos, item.ID, "item.created", actor.ID, now, map[string]any{
			"quantity": item.Quantity, "unit_value": item.UnitValue.String(),
		})
	})
	if err != nil {
		return nil, err
	}
	return ToItemResponse(out), nil
}

// GetByID obtiene un ítem por ID.
func (uc *ItemUseCase) GetByID(ctx context.Context, id string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return ToItemResponse(item), nil
}

// GetByUUID resuelve el token público (lectura de QR).
func (uc *ItemUseCase) GetByUUID(ctx context.Context, token string) (*dto.ItemResponse, error) {
	item, err := uc.items.GetByUUID(ctx, token)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	return ToItemResponse(item), nil
}

// List lista ítems con filtros y paginación.
func (uc *ItemUseCase) List(ctx context.Context, f repository.ItemFilter) (*dto.ItemListResponse, error) {
	if f.Limit <= 0 {
		f.Limit = 20
	}
	list, err := uc.items.List(ctx, f)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ItemResponse, 0, len(list))
	for _, it := range list {
		items = append(items, *ToItemResponse(it))
	}
	return &dto.ItemListResponse{Items: items, Page: dto.PageResponse{Limit: f.Limit, Offset: f.Offset}}, nil
}

// Update cambia datos descriptivos de un ítem activo.
func (uc *ItemUseCase) Update(ctx context.Context, actor entity.Actor, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	if err := policy.Authorize(policy.ItemManage, actor.Role); err != nil {
		return nil, err
	}
	var out *entity.Item
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		item, err := repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if !item.IsActive() {
			return domain.Conflict("item", item.ID, item.Status, "update", "ítem eliminado")
		}
		if in.Name != nil {
			if strings.TrimSpace(*in.Name) == "" {
				return domain.ErrInvalidInput
			}
			item.Name = strings.TrimSpace(*in.Name)
		}
		if in.Description != nil {
			item.Description = *in.Description
		}
		if in.Category != nil {
			item.Category = *in.Category
		}
		if in.Condition != nil {
			item.Condition = *in.Condition
		}
		if in.SerialNumber != nil {
			item.SerialNumber = *in.SerialNumber
		}
		item.UpdatedAt = uc.clock.Now()
		out = item
		return repos.Items.Update(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	return ToItemResponse(out), nil
}

// SoftDelete elimina lógicamente un ítem. Se rechaza mientras tenga custodia vigente.
func (uc *ItemUseCase) SoftDelete(ctx context.Context, actor entity.Actor, id, reason string) (*dto.ItemResponse, error) {
	if err := policy.Authorize(policy.ItemManage, actor.Role); err != nil {
		return nil, err
	}
	if strings.TrimSpace(reason) == "" {
		return nil, domain.Invalid("item", id, "delete", "motivo requerido")
	}
	return uc.lifecycle(ctx, actor, id, "delete", func(repos repository.TxRepos, item *entity.Item) error {
		if item.Status == entity.ItemStatusDeleted {
			return domain.AlreadyProcessed("item", item.ID, item.Status, "delete")
		}
		if err := noLiveCustody(ctx, repos, item, "delete"); err != nil {
			return err
		}
		now := uc.clock.Now()
		item.Status = entity.ItemStatusDeleted
		item.DeletionReason = reason
		item.DeletedAt = &now
		return nil
	})
}

// Restore devuelve a activo un ítem eliminado lógicamente.
func (uc *ItemUseCase) Restore(ctx context.Context, actor entity.Actor, id string) (*dto.ItemResponse, error) {
	if err := policy.Authorize(policy.ItemManage, actor.Role); err != nil {
		return nil, err
	}
	return uc.lifecycle(ctx, actor, id, "restore", func(_ repository.TxRepos, item *entity.Item) error {
		if item.Status == entity.ItemStatusActive {
			return domain.AlreadyProcessed("item", item.ID, item.Status, "restore")
		}
		item.Status = entity.ItemStatusActive
		item.DeletionReason = ""
		item.DeletedAt = nil
		return nil
	})
}

// Purge borra definitivamente un ítem eliminado, sin custodio ni recibos vigentes.
// Recibos cerrados, acumulados y movimientos del ítem se eliminan con él; la
// bitácora conserva el asiento de la purga.
func (uc *ItemUseCase) Purge(ctx context.Context, actor entity.Actor, id string) error {
	if actor.Role != entity.RoleAdmin {
		return domain.Forbidden("item", id, "", "purge", "sólo un administrador puede purgar")
	}
	return uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		item, err := repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		if item.Status != entity.ItemStatusDeleted {
			return domain.Conflict("item", item.ID, item.Status, "purge", "sólo se purgan ítems eliminados")
		}
		if err := noLiveCustody(ctx, repos, item, "purge"); err != nil {
			return err
		}
		if err := repos.Items.Delete(ctx, item.ID); err != nil {
			return err
		}
		return auditItem(ctx, repos, item.ID, "item.purged", actor.ID, uc.clock.Now(), map[string]any{
			"name": item.Name, "uuid": item.UUID, "to": entity.ItemStatusPurged,
		})
	})
}

// Label PDF con el QR del token público del ítem.
func (uc *ItemUseCase) Label(ctx context.Context, id string) ([]byte, error) {
	item, err := uc.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if uc.labels == nil {
		return nil, &domain.DependencyError{Dependency: "labels", Err: fmt.Errorf("generador no configurado")}
	}
	pdf, err := uc.labels.GenerateItemLabel(ctx, *item)
	if err != nil {
		return nil, &domain.DependencyError{Dependency: "labels", Err: err}
	}
	return pdf, nil
}

func (uc *ItemUseCase) lifecycle(ctx context.Context, actor entity.Actor, id, op string, mutate func(repos repository.TxRepos, item *entity.Item) error) (*dto.ItemResponse, error) {
	var out *entity.Item
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		item, err := repos.Items.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		from := item.Status
		if err := mutate(repos, item); err != nil {
			return err
		}
		now := uc.clock.Now()
		item.UpdatedAt = now
		if err := repos.Items.Update(ctx, item); err != nil {
			return err
		}
		out = item
		return auditItem(ctx, repos, item.ID, "item."+op, actor.ID, now, map[string]any{
			"from": from, "to": item.Status, "reason": item.DeletionReason,
		})
	})
	if err != nil {
		return nil, err
	}
	return ToItemResponse(out), nil
}

// noLiveCustody el ítem no tiene puntero ni recibos vigentes.
func noLiveCustody(ctx context.Context, repos repository.TxRepos, item *entity.Item, op string) error {
	if !item.Custody.IsEmpty() {
		return domain.Conflict("item", item.ID, item.Status, op, "el ítem tiene custodio asignado")
	}
	recs, err := repos.Receipts.ListByItem(ctx, item.ID)
	if err != nil {
		return err
	}
	for _, r := range recs {
		if r.IsLive() {
			return domain.Conflict("item", item.ID, item.Status, op, "el ítem tiene un recibo vigente")
		}
	}
	return nil
}

func auditItem(ctx context.Context, repos repository.TxRepos, itemID, action, actorID string, now time.Time, detail map[string]any) error {
	raw, err := json.Marshal(detail)
	if err != nil {
		return err
	}
	return repos.Audit.Create(ctx, &entity.AuditRecord{
		ID:         uuid.New().String(),
		EntityType: "item",
		EntityID:   itemID,
		Action:     action,
		ActorID:    actorID,
		Detail:     raw,
		CreatedAt:  now,
	})
}

// ToItemResponse proyección de salida del ítem.
func ToItemResponse(it *entity.Item) *dto.ItemResponse {
	if it == nil {
		return nil
	}
	return &dto.ItemResponse{
		ID:             it.ID,
		UUID:           it.UUID,
		Name:           it.Name,
		Description:    it.Description,
		Category:       it.Category,
		Condition:      it.Condition,
		SerialNumber:   it.SerialNumber,
		Quantity:       it.Quantity,
		UnitValue:      it.UnitValue,
		TotalValue:     it.TotalValue(),
		Custody:        it.Custody,
		Status:         it.Status,
		DeletionReason: it.DeletionReason,
		DeletedAt:      it.DeletedAt,
		CreatedAt:      it.CreatedAt,
		UpdatedAt:      it.UpdatedAt,
	}
}
