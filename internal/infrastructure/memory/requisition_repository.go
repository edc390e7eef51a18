package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var _ repository.RequisitionRepository = (*RequisitionRepo)(nil)

// RequisitionRepo requisiciones en memoria.
type RequisitionRepo struct{ db db }

func (r *RequisitionRepo) Create(_ context.Context, req *entity.Requisition) error {
	st, release := r.db.acquire()
	defer release()
	if _, ok := st.requisitions[req.ID]; ok {
		return fmt.Errorf("requisition %s: %w", req.ID, domain.ErrDuplicate)
	}
	st.requisitions[req.ID] = copyRequisition(*req)
	return nil
}

func (r *RequisitionRepo) GetByID(_ context.Context, id string) (*entity.Requisition, error) {
	st, release := r.db.acquire()
	defer release()
	req, ok := st.requisitions[id]
	if !ok {
		return nil, nil
	}
	cp := copyRequisition(req)
	return &cp, nil
}

func (r *RequisitionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Requisition, error) {
	return r.GetByID(ctx, id)
}

func (r *RequisitionRepo) Update(_ context.Context, req *entity.Requisition) error {
	st, release := r.db.acquire()
	defer release()
	if _, ok := st.requisitions[req.ID]; !ok {
		return domain.ErrNotFound
	}
	st.requisitions[req.ID] = copyRequisition(*req)
	return nil
}

func (r *RequisitionRepo) List(_ context.Context, f repository.RequisitionFilter) ([]*entity.Requisition, error) {
	st, release := r.db.acquire()
	defer release()
	var out []*entity.Requisition
	for _, req := range st.requisitions {
		if f.RequesterID != "" && req.RequesterID != f.RequesterID {
			continue
		}
		if f.Status != "" && req.Status != f.Status {
			continue
		}
		if f.ApproverID != "" && req.AssignedApproverID != f.ApproverID {
			continue
		}
		if f.OfficeID != "" && req.TargetOfficeID != "" && req.TargetOfficeID != f.OfficeID {
			continue
		}
		cp := copyRequisition(req)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return page(out, f.Limit, f.Offset), nil
}
