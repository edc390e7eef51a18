package memory

import (
	"context"
	"sort"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var (
	_ repository.UsageRepository             = (*UsageRepo)(nil)
	_ repository.InventoryMovementRepository = (*MovementRepo)(nil)
	_ repository.AuditRepository             = (*AuditRepo)(nil)
)

// UsageRepo acumulados trimestrales en memoria.
type UsageRepo struct{ db db }

func usageKey(itemID, period string) string { return itemID + "|" + period }

func (r *UsageRepo) GetForUpdate(_ context.Context, itemID, period string) (*entity.UsagePeriodRecord, error) {
	st, release := r.db.acquire()
	defer release()
	rec, ok := st.usage[usageKey(itemID, period)]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *UsageRepo) Upsert(_ context.Context, rec *entity.UsagePeriodRecord) error {
	st, release := r.db.acquire()
	defer release()
	st.usage[usageKey(rec.ItemID, rec.Period)] = *rec
	return nil
}

func (r *UsageRepo) list(keep func(entity.UsagePeriodRecord) bool) []entity.UsagePeriodRecord {
	st, release := r.db.acquire()
	defer release()
	var out []entity.UsagePeriodRecord
	for _, rec := range st.usage {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		if out[i].Quarter != out[j].Quarter {
			return out[i].Quarter < out[j].Quarter
		}
		return out[i].ItemID < out[j].ItemID
	})
	return out
}

func (r *UsageRepo) ListByItem(_ context.Context, itemID string) ([]entity.UsagePeriodRecord, error) {
	return r.list(func(rec entity.UsagePeriodRecord) bool { return rec.ItemID == itemID }), nil
}

func (r *UsageRepo) ListByPeriod(_ context.Context, period string) ([]entity.UsagePeriodRecord, error) {
	return r.list(func(rec entity.UsagePeriodRecord) bool { return rec.Period == period }), nil
}

// MovementRepo movimientos de inventario en memoria.
type MovementRepo struct{ db db }

func (r *MovementRepo) Create(_ context.Context, m *entity.InventoryMovement) error {
	st, release := r.db.acquire()
	defer release()
	st.movements = append(st.movements, *m)
	return nil
}

func (r *MovementRepo) ListByItem(_ context.Context, itemID string, limit, offset int) ([]*entity.InventoryMovement, error) {
	st, release := r.db.acquire()
	defer release()
	var out []*entity.InventoryMovement
	for i := len(st.movements) - 1; i >= 0; i-- {
		if st.movements[i].ItemID == itemID {
			m := st.movements[i]
			out = append(out, &m)
		}
	}
	return page(out, limit, offset), nil
}

func (r *MovementRepo) ListByTransaction(_ context.Context, transactionID string) ([]*entity.InventoryMovement, error) {
	st, release := r.db.acquire()
	defer release()
	var out []*entity.InventoryMovement
	for _, m := range st.movements {
		if m.TransactionID == transactionID {
			cp := m
			out = append(out, &cp)
		}
	}
	return out, nil
}

// AuditRepo bitácora en memoria.
type AuditRepo struct{ db db }

func (r *AuditRepo) Create(_ context.Context, rec *entity.AuditRecord) error {
	st, release := r.db.acquire()
	defer release()
	st.audit = append(st.audit, *rec)
	return nil
}

func (r *AuditRepo) ListByEntity(_ context.Context, entityType, entityID string) ([]*entity.AuditRecord, error) {
	st, release := r.db.acquire()
	defer release()
	var out []*entity.AuditRecord
	for _, a := range st.audit {
		if a.EntityType == entityType && a.EntityID == entityID {
			cp := a
			out = append(out, &cp)
		}
	}
	return out, nil
}
