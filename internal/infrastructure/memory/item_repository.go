package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var _ repository.ItemRepository = (*ItemRepo)(nil)

// ItemRepo ítems en memoria.
type ItemRepo struct{ db db }

func (r *ItemRepo) Create(_ context.Context, item *entity.Item) error {
	st, release := r.db.acquire()
	defer release()
	if _, ok := st.items[item.ID]; ok {
		return fmt.Errorf("item %s: %w", item.ID, domain.ErrDuplicate)
	}
	st.items[item.ID] = *item
	return nil
}

func (r *ItemRepo) GetByID(_ context.Context, id string) (*entity.Item, error) {
	st, release := r.db.acquire()
	defer release()
	it, ok := st.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *ItemRepo) GetByUUID(_ context.Context, uuid string) (*entity.Item, error) {
	st, release := r.db.acquire()
	defer release()
	for _, it := range st.items {
		if it.UUID == uuid {
			found := it
			return &found, nil
		}
	}
	return nil, nil
}

// GetForUpdate en memoria la unidad de trabajo ya está serializada.
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.GetByID(ctx, id)
}

func (r *ItemRepo) Update(_ context.Context, item *entity.Item) error {
	st, release := r.db.acquire()
	defer release()
	if _, ok := st.items[item.ID]; !ok {
		return domain.ErrNotFound
	}
	st.items[item.ID] = *item
	return nil
}

func (r *ItemRepo) List(_ context.Context, f repository.ItemFilter) ([]*entity.Item, error) {
	st, release := r.db.acquire()
	defer release()
	status := f.Status
	if status == "" {
		status = entity.ItemStatusActive
	}
	var out []*entity.Item
	for _, it := range st.items {
		if it.Status != status {
			continue
		}
		if f.UserID != "" && it.Custody.UserID != f.UserID {
			continue
		}
		if f.LocationID != "" && it.Custody.LocationID != f.LocationID {
			continue
		}
		if f.MaxQty != nil && it.Quantity > *f.MaxQty {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Search)) {
			continue
		}
		cp := it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, f.Limit, f.Offset), nil
}

// Delete borra el ítem junto con sus recibos, acumulados y movimientos
// (equivalente al ON DELETE CASCADE del esquema). Un ítem citado en alguna
// requisición no se borra.
func (r *ItemRepo) Delete(_ context.Context, id string) error {
	st, release := r.db.acquire()
	defer release()
	for _, req := range st.requisitions {
		for _, l := range req.Lines {
			if l.ItemID == id {
				return domain.Conflict("item", id, entity.ItemStatusDeleted, "purge", "el ítem figura en requisiciones")
			}
		}
	}
	delete(st.items, id)
	for k, rec := range st.receipts {
		if rec.ItemID == id {
			delete(st.receipts, k)
		}
	}
	for k, u := range st.usage {
		if u.ItemID == id {
			delete(st.usage, k)
		}
	}
	kept := st.movements[:0]
	for _, m := range st.movements {
		if m.ItemID != id {
			kept = append(kept, m)
		}
	}
	st.movements = kept
	return nil
}
