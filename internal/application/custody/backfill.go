package custody

import (
	"context"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	domcustody "github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/custody"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

// BackfillReport resultado de una pasada de saneamiento.
type BackfillReport struct {
	Scanned  int                  `json:"scanned"`
	Applied  bool                 `json:"applied"`
	Repaired int                  `json:"repaired"`
	Findings []domcustody.Finding `json:"findings"`
}

// BackfillUseCase detecta punteros de custodia que no concuerdan con la cadena
// de recibos (datos heredados) y repara los que la cadena determina.
type BackfillUseCase struct {
	txRunner ports.TxRunner
	items    repository.ItemRepository
	receipts repository.ReceiptRepository
	clock    ports.Clock
	log      *logger.Logger
}

// NewBackfillUseCase construye el caso de uso.
func NewBackfillUseCase(txRunner ports.TxRunner, items repository.ItemRepository, receipts repository.ReceiptRepository, clock ports.Clock, log *logger.Logger) *BackfillUseCase {
	if clock == nil {
		clock = ports.SystemClock
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("backfill")
	return &BackfillUseCase{txRunner: txRunner, items: items, receipts: receipts, clock: clock, log: log}
}

// Run recorre ítems activos y eliminados. Con apply=false sólo reporta.
func (uc *BackfillUseCase) Run(ctx context.Context, apply bool) (*BackfillReport, error) {
	report := &BackfillReport{Applied: apply}
	for _, status := range []string{entity.ItemStatusActive, entity.ItemStatusDeleted} {
		items, err := uc.items.List(ctx, repository.ItemFilter{Status: status})
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			report.Scanned++
			recs, err := uc.receipts.ListByItem(ctx, it.ID)
			if err != nil {
				return nil, err
			}
			f, bad := domcustody.Diagnose(*it, recs)
			if !bad {
				continue
			}
			report.Findings = append(report.Findings, f)
			if !apply || f.Action == domcustody.RepairNone {
				continue
			}
			repaired, err := uc.repair(ctx, it.ID)
			if err != nil {
				uc.log.Error().Err(err).Str("item_id", it.ID).Msg("backfill: reparación fallida")
				continue
			}
			if repaired {
				report.Repaired++
			}
		}
	}
	return report, nil
}

// repair vuelve a diagnosticar con la fila bloqueada y aplica la reparación.
func (uc *BackfillUseCase) repair(ctx context.Context, itemID string) (bool, error) {
	repaired := false
	err := uc.txRunner.Run(ctx, func(repos repository.TxRepos) error {
		now := uc.clock.Now()
		item, err := repos.Items.GetForUpdate(ctx, itemID)
		if err != nil || item == nil {
			return err
		}
		recs, err := repos.Receipts.ListByItem(ctx, itemID)
		if err != nil {
			return err
		}
		f, bad := domcustody.Diagnose(*item, recs)
		if !bad || f.Action == domcustody.RepairNone {
			return nil
		}
		item.Custody = f.After
		item.UpdatedAt = now
		if err := repos.Items.Update(ctx, item); err != nil {
			return err
		}
		repaired = true
		return auditItem(ctx, repos, item.ID, "custody.backfill", now, map[string]any{
			"reason": f.Reason, "action": f.Action, "before": f.Before, "after": f.After,
		})
	})
	return repaired, err
}
