package inventory

import (
	"context"
	"sort"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/inventory"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

// ReplenishmentUseCase consultas de consumo trimestral y lista de reposición.
// Es un consumidor de sólo lectura del acumulado.
type ReplenishmentUseCase struct {
	items     repository.ItemRepository
	usage     repository.UsageRepository
	movements repository.InventoryMovementRepository
	clock     ports.Clock
	threshold int
}

// NewReplenishmentUseCase construye el caso de uso. threshold es la cantidad a
// partir de la cual un ítem se considera bajo stock.
func NewReplenishmentUseCase(
	items repository.ItemRepository,
	usage repository.UsageRepository,
	movements repository.InventoryMovementRepository,
	clock ports.Clock,
	threshold int,
) *ReplenishmentUseCase {
	if clock == nil {
		clock = ports.SystemClock
	}
	return &ReplenishmentUseCase{items: items, usage: usage, movements: movements, clock: clock, threshold: threshold}
}

// Suggestion ítem bajo stock con su proyección de consumo.
type Suggestion struct {
	Item     entity.Item        `json:"item"`
	Forecast inventory.Forecast `json:"forecast"`
	Priority int                `json:"priority"`
}

// GenerateReplenishmentList ítems con cantidad <= umbral, ordenados por la
// reposición sugerida (mayor primero) y luego por cantidad disponible.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]Suggestion, error) {
	maxQty := uc.threshold
	low, err := uc.items.List(ctx, repository.ItemFilter{MaxQty: &maxQty})
	if err != nil {
		return nil, err
	}
	out := make([]Suggestion, 0, len(low))
	for _, it := range low {
		hist, err := uc.usage.ListByItem(ctx, it.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, Suggestion{Item: *it, Forecast: inventory.ForecastNext(it.ID, hist, it.Quantity)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Forecast.SuggestRestock != b.Forecast.SuggestRestock {
			return a.Forecast.SuggestRestock > b.Forecast.SuggestRestock
		}
		return a.Item.Quantity < b.Item.Quantity
	})
	for i := range out {
		out[i].Priority = i + 1
	}
	return out, nil
}

// UsageForPeriod acumulados del periodo indicado ("Q1 2025"); vacío = trimestre actual.
func (uc *ReplenishmentUseCase) UsageForPeriod(ctx context.Context, label string) (string, []entity.UsagePeriodRecord, error) {
	if label == "" {
		label = inventory.PeriodFor(uc.clock.Now()).Label()
	} else if _, err := inventory.ParsePeriod(label); err != nil {
		return "", nil, domain.ErrInvalidInput
	}
	recs, err := uc.usage.ListByPeriod(ctx, label)
	return label, recs, err
}

// UsageHistory acumulados del ítem en orden cronológico.
func (uc *ReplenishmentUseCase) UsageHistory(ctx context.Context, itemID string) ([]entity.UsagePeriodRecord, error) {
	return uc.usage.ListByItem(ctx, itemID)
}

// Forecast proyección del siguiente trimestre para un ítem.
func (uc *ReplenishmentUseCase) Forecast(ctx context.Context, itemID string) (*inventory.Forecast, error) {
	item, err := uc.items.GetByID(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, domain.ErrNotFound
	}
	hist, err := uc.usage.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	f := inventory.ForecastNext(itemID, hist, item.Quantity)
	if f.Period == "" {
		f.Period = inventory.PeriodFor(uc.clock.Now()).Next().Label()
	}
	return &f, nil
}

// Movements movimientos recientes de un ítem.
func (uc *ReplenishmentUseCase) Movements(ctx context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	if limit <= 0 {
		limit = 50
	}
	return uc.movements.ListByItem(ctx, itemID, limit, offset)
}
