package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

// ReceiptRepo recibos de custodia en memoria.
type ReceiptRepo struct{ db db }

func (r *ReceiptRepo) Create(_ context.Context, rec *entity.CustodyReceipt) error {
	st, release := r.db.acquire()
	defer release()
	if _, ok := st.receipts[rec.ID]; ok {
		return fmt.Errorf("receipt %s: %w", rec.ID, domain.ErrDuplicate)
	}
	st.receipts[rec.ID] = *rec
	return nil
}

func (r *ReceiptRepo) GetByID(_ context.Context, id string) (*entity.CustodyReceipt, error) {
	st, release := r.db.acquire()
	defer release()
	rec, ok := st.receipts[id]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (r *ReceiptRepo) GetForUpdate(ctx context.Context, id string) (*entity.CustodyReceipt, error) {
	return r.GetByID(ctx, id)
}

func (r *ReceiptRepo) Update(_ context.Context, rec *entity.CustodyReceipt) error {
	st, release := r.db.acquire()
	defer release()
	cur, ok := st.receipts[rec.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if cur.Version != rec.Version {
		return domain.AlreadyProcessed("receipt", rec.ID, cur.Status, rec.Status)
	}
	rec.Version++
	st.receipts[rec.ID] = *rec
	return nil
}

func (r *ReceiptRepo) filter(keep func(entity.CustodyReceipt) bool) []entity.CustodyReceipt {
	st, release := r.db.acquire()
	defer release()
	var out []entity.CustodyReceipt
	for _, rec := range st.receipts {
		if keep(rec) {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IssuedAt.Equal(out[j].IssuedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].IssuedAt.Before(out[j].IssuedAt)
	})
	return out
}

func (r *ReceiptRepo) ListByItem(_ context.Context, itemID string) ([]entity.CustodyReceipt, error) {
	return r.filter(func(rec entity.CustodyReceipt) bool { return rec.ItemID == itemID }), nil
}

func (r *ReceiptRepo) ListByItems(_ context.Context, itemIDs []string) ([]entity.CustodyReceipt, error) {
	set := make(map[string]struct{}, len(itemIDs))
	for _, id := range itemIDs {
		set[id] = struct{}{}
	}
	return r.filter(func(rec entity.CustodyReceipt) bool {
		_, ok := set[rec.ItemID]
		return ok
	}), nil
}

func (r *ReceiptRepo) ListByCustodian(_ context.Context, c entity.Custodian) ([]entity.CustodyReceipt, error) {
	return r.filter(func(rec entity.CustodyReceipt) bool { return rec.Custodian == c }), nil
}

func (r *ReceiptRepo) ListByStatus(_ context.Context, status string) ([]entity.CustodyReceipt, error) {
	return r.filter(func(rec entity.CustodyReceipt) bool { return rec.Status == status }), nil
}
