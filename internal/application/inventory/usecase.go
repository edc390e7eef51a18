package inventory

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/notify"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/inventory"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/policy"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

// LedgerUseCase dueño de la cantidad de cada ítem. Toda mutación bloquea la fila
// del ítem (SELECT FOR UPDATE), registra el movimiento y alimenta el acumulado
// trimestral dentro de la misma transacción.
type LedgerUseCase struct {
	txRunner ports.TxRunner
	clock    ports.Clock
	events   *notify.Dispatcher
}

// NewLedgerUseCase construye el caso de uso.
func NewLedgerUseCase(txRunner ports.TxRunner, clock ports.Clock, events *notify.Dispatcher) *LedgerUseCase {
	if clock == nil {
		clock = ports.SystemClock
	}
	return &LedgerUseCase{txRunner: txRunner, clock: clock, events: events}
}

// DeductCommand salida manual de stock (préstamo, consumo directo).
type DeductCommand struct {
	Actor     entity.Actor
	ItemID    string
	Amount    int
	Reason    string
	Reference string
}

// IncreaseCommand reposición o devolución de stock consumido.
// UnitValue opcional recalcula el valor unitario promedio ponderado.
type IncreaseCommand struct {
	Actor     entity.Actor
	ItemID    string
	Amount    int
	UnitValue *decimal.Decimal
	Reason    string
	Reference string
}

// Deduct descuenta Amount del ítem; falla con InsufficientStockError sin escribir nada.
func (uc *LedgerUseCase) Deduct(ctx context.Context, cmd DeductCommand) (*entity.Item, error) {
	if err := policy.Authorize(policy.StockAdjust, cmd.Actor.Role); err != nil {
		return nil, err
	}
	if cmd.ItemID == "" || cmd.Amount <= 0 {
		return nil, domain.Invalid("item", cmd.ItemID, "deduct", "cantidad debe ser positiva")
	}
	ref := cmd.Reference
	if ref == "" {
		ref = uuid.New().String()
	}
	var out *entity.Item
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		item, err := uc.DeductInTx(ctx, repos, cmd.ItemID, cmd.Amount, cmd.Actor.ID, ref, cmd.Reason, uc.clock.Now())
		out = item
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.events.Dispatch(ctx, notify.Event(entity.EventStockDeducted, out.ID, cmd.Actor.ID, uc.clock.Now(),
		map[string]string{"amount": strconv.Itoa(cmd.Amount), "quantity": strconv.Itoa(out.Quantity), "reference": ref}))
	return out, nil
}

// Increase suma Amount al ítem.
func (uc *LedgerUseCase) Increase(ctx context.Context, cmd IncreaseCommand) (*entity.Item, error) {
	if err := policy.Authorize(policy.StockAdjust, cmd.Actor.Role); err != nil {
		return nil, err
	}
	if cmd.ItemID == "" || cmd.Amount <= 0 {
		return nil, domain.Invalid("item", cmd.ItemID, "increase", "cantidad debe ser positiva")
	}
	if cmd.UnitValue != nil && cmd.UnitValue.IsNegative() {
		return nil, domain.Invalid("item", cmd.ItemID, "increase", "valor unitario negativo")
	}
	ref := cmd.Reference
	if ref == "" {
		ref = uuid.New().String()
	}
	var out *entity.Item
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		item, err := uc.IncreaseInTx(ctx, repos, cmd.ItemID, cmd.Amount, cmd.UnitValue, cmd.Actor.ID, ref, cmd.Reason, uc.clock.Now())
		out = item
		return err
	})
	if err != nil {
		return nil, err
	}
	uc.events.Dispatch(ctx, notify.Event(entity.EventStockIncreased, out.ID, cmd.Actor.ID, uc.clock.Now(),
		map[string]string{"amount": strconv.Itoa(cmd.Amount), "quantity": strconv.Itoa(out.Quantity), "reference": ref}))
	return out, nil
}

// DeductInTx ejecuta una salida usando los repositorios de la transacción del llamador
// (despacho de requisiciones). La verificación de suficiencia se hace sobre la fila bloqueada.
func (uc *LedgerUseCase) DeductInTx(
	ctx context.Context,
	repos repository.TxRepos,
	itemID string, amount int,
	actorID, reference, reason string,
	now time.Time,
) (*entity.Item, error) {
	item, err := lockActiveItem(ctx, repos, itemID, "deduct")
	if err != nil {
		return nil, err
	}
	if item.Quantity < amount {
		return nil, &domain.InsufficientStockError{ItemID: itemID, Needed: amount, Available: item.Quantity}
	}
	return item, uc.apply(ctx, repos, item, item.Quantity-amount, entity.MovementTypeOUT, amount, actorID, reference, reason, now)
}

// IncreaseInTx ejecuta una entrada dentro de la transacción del llamador.
func (uc *LedgerUseCase) IncreaseInTx(
	ctx context.Context,
	repos repository.TxRepos,
	itemID string, amount int, unitValue *decimal.Decimal,
	actorID, reference, reason string,
	now time.Time,
) (*entity.Item, error) {
	item, err := lockActiveItem(ctx, repos, itemID, "increase")
	if err != nil {
		return nil, err
	}
	if unitValue != nil {
		item.UnitValue = inventory.WeightedUnitValue(item.Quantity, item.UnitValue, amount, *unitValue)
	}
	return item, uc.apply(ctx, repos, item, item.Quantity+amount, entity.MovementTypeIN, amount, actorID, reference, reason, now)
}

func lockActiveItem(ctx context.Context, repos repository.TxRepos, itemID, op string) (*entity.Item, error) {
	// Bloquea la fila del ítem (SELECT FOR UPDATE) para serializar mutaciones concurrentes
	item, err := repos.Items.GetForUpdate(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	if !item.IsActive() {
		return nil, domain.Conflict("item", itemID, item.Status, op, "ítem eliminado")
	}
	return item, nil
}

// apply persiste la nueva cantidad, el movimiento y el acumulado del periodo de now.
func (uc *LedgerUseCase) apply(
	ctx context.Context,
	repos repository.TxRepos,
	item *entity.Item,
	newQty int, movType string, amount int,
	actorID, reference, reason string,
	now time.Time,
) error {
	before := item.Quantity
	item.Quantity = newQty
	item.UpdatedAt = now
	if err := repos.Items.Update(ctx, item); err != nil {
		return err
	}

	period := inventory.PeriodFor(now)
	rec, err := repos.Usage.GetForUpdate(ctx, item.ID, period.Label())
	if err != nil {
		return err
	}
	rec = inventory.ApplyDelta(rec, item.ID, period, before, newQty, now)
	if err := repos.Usage.Upsert(ctx, rec); err != nil {
		return err
	}

	mov := &entity.InventoryMovement{
		ID:             uuid.New().String(),
		TransactionID:  reference,
		ItemID:         item.ID,
		Type:           movType,
		Quantity:       amount,
		QuantityBefore: before,
		QuantityAfter:  newQty,
		Reason:         reason,
		Period:         period.Label(),
		CreatedAt:      now,
		CreatedBy:      actorID,
	}
	if err := repos.Movements.Create(ctx, mov); err != nil {
		return err
	}
	detail, _ := json.Marshal(map[string]any{
		"type": movType, "amount": amount, "before": before, "after": newQty, "reference": reference, "reason": reason,
	})
	return repos.Audit.Create(ctx, &entity.AuditRecord{
		ID:         uuid.New().String(),
		EntityType: "item",
		EntityID:   item.ID,
		Action:     "stock." + movType,
		ActorID:    actorID,
		Detail:     detail,
		CreatedAt:  now,
	})
}
