package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var _ repository.RequisitionRepository = (*RequisitionRepo)(nil)

const requisitionColumns = `id, number, requester_id, target_office_id, assigned_approver_id, status, urgency, notes,
	office_approved_by, assigned_by, approved_by, readied_by, fulfilled_by, rejected_by, cancelled_by,
	rejection_reason, fulfillment_notes, receipt_ref, pickup_at, created_at, updated_at,
	office_approved_at, assigned_at, approved_at, ready_at, fulfilled_at, rejected_at, cancelled_at`

const lineColumns = `id, requisition_id, item_id, quantity, status, rejection_reason, rejected_by, rejected_at`

// RequisitionRepo requisiciones y sus líneas sobre PostgreSQL.
type RequisitionRepo struct {
	q Querier
}

// NewRequisitionRepository construye el adaptador. Pasar pool o tx (Querier).
func NewRequisitionRepository(q Querier) *RequisitionRepo {
	return &RequisitionRepo{q: q}
}

// Create inserta la cabecera y las líneas en el orden recibido.
func (r *RequisitionRepo) Create(ctx context.Context, req *entity.Requisition) error {
	query := `INSERT INTO requisitions (` + requisitionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
			$21, $22, $23, $24, $25, $26, $27, $28)`
	if _, err := r.q.Exec(ctx, query, headerArgs(req)...); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert requisition: %w", err)
	}
	for i, l := range req.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO requisition_lines (id, requisition_id, item_id, position, quantity, status, rejection_reason, rejected_by, rejected_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, req.ID, l.ItemID, i, l.Quantity, l.Status, l.RejectionReason, nullString(l.RejectedBy), l.RejectedAt,
		)
		if err != nil {
			if isUniqueViolation(err) {
				return domain.ErrDuplicate
			}
			return fmt.Errorf("insert requisition line: %w", err)
		}
	}
	return nil
}

// GetByID obtiene la requisición con sus líneas.
func (r *RequisitionRepo) GetByID(ctx context.Context, id string) (*entity.Requisition, error) {
	return r.get(ctx, `SELECT `+requisitionColumns+` FROM requisitions WHERE id = $1`, id)
}

// GetForUpdate bloquea la cabecera; las líneas sólo cambian bajo ese bloqueo.
func (r *RequisitionRepo) GetForUpdate(ctx context.Context, id string) (*entity.Requisition, error) {
	return r.get(ctx, `SELECT `+requisitionColumns+` FROM requisitions WHERE id = $1 FOR UPDATE`, id)
}

func (r *RequisitionRepo) get(ctx context.Context, query, id string) (*entity.Requisition, error) {
	req, err := scanRequisition(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get requisition: %w", err)
	}
	if err := r.loadLines(ctx, []*entity.Requisition{req}); err != nil {
		return nil, err
	}
	return req, nil
}

// Update guarda la cabecera y el estado de cada línea.
func (r *RequisitionRepo) Update(ctx context.Context, req *entity.Requisition) error {
	query := `
		UPDATE requisitions SET number = $2, requester_id = $3, target_office_id = $4, assigned_approver_id = $5,
			status = $6, urgency = $7, notes = $8, office_approved_by = $9, assigned_by = $10, approved_by = $11,
			readied_by = $12, fulfilled_by = $13, rejected_by = $14, cancelled_by = $15, rejection_reason = $16,
			fulfillment_notes = $17, receipt_ref = $18, pickup_at = $19, created_at = $20, updated_at = $21,
			office_approved_at = $22, assigned_at = $23, approved_at = $24, ready_at = $25, fulfilled_at = $26,
			rejected_at = $27, cancelled_at = $28
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, headerArgs(req)...)
	if err != nil {
		return fmt.Errorf("update requisition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	for _, l := range req.Lines {
		_, err := r.q.Exec(ctx, `
			UPDATE requisition_lines SET status = $3, rejection_reason = $4, rejected_by = $5, rejected_at = $6
			WHERE id = $1 AND requisition_id = $2`,
			l.ID, req.ID, l.Status, l.RejectionReason, nullString(l.RejectedBy), l.RejectedAt,
		)
		if err != nil {
			return fmt.Errorf("update requisition line: %w", err)
		}
	}
	return nil
}

// List lista requisiciones, más recientes primero.
func (r *RequisitionRepo) List(ctx context.Context, f repository.RequisitionFilter) ([]*entity.Requisition, error) {
	query := `SELECT ` + requisitionColumns + ` FROM requisitions WHERE TRUE`
	var args []any
	pos := 1
	if f.RequesterID != "" {
		query += fmt.Sprintf(" AND requester_id = $%d", pos)
		args = append(args, f.RequesterID)
		pos++
	}
	if f.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", pos)
		args = append(args, f.Status)
		pos++
	}
	if f.ApproverID != "" {
		query += fmt.Sprintf(" AND assigned_approver_id = $%d", pos)
		args = append(args, f.ApproverID)
		pos++
	}
	if f.OfficeID != "" {
		query += fmt.Sprintf(" AND (target_office_id IS NULL OR target_office_id = $%d)", pos)
		args = append(args, f.OfficeID)
		pos++
	}
	query += " ORDER BY created_at DESC"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list requisitions: %w", err)
	}
	var list []*entity.Requisition
	for rows.Next() {
		req, err := scanRequisition(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan requisition: %w", err)
		}
		list = append(list, req)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadLines(ctx, list); err != nil {
		return nil, err
	}
	return list, nil
}

// loadLines carga las líneas de todas las requisiciones con una sola consulta.
func (r *RequisitionRepo) loadLines(ctx context.Context, reqs []*entity.Requisition) error {
	if len(reqs) == 0 {
		return nil
	}
	ids := make([]string, len(reqs))
	byID := make(map[string]*entity.Requisition, len(reqs))
	for i, req := range reqs {
		ids[i] = req.ID
		byID[req.ID] = req
		req.Lines = nil
	}
	rows, err := r.q.Query(ctx, `SELECT `+lineColumns+` FROM requisition_lines
		WHERE requisition_id = ANY($1) ORDER BY requisition_id, position`, ids)
	if err != nil {
		return fmt.Errorf("list requisition lines: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.RequisitionLine
		var rejectedBy *string
		if err := rows.Scan(&l.ID, &l.RequisitionID, &l.ItemID, &l.Quantity, &l.Status,
			&l.RejectionReason, &rejectedBy, &l.RejectedAt); err != nil {
			return fmt.Errorf("scan requisition line: %w", err)
		}
		l.RejectedBy = derefString(rejectedBy)
		req := byID[l.RequisitionID]
		req.Lines = append(req.Lines, l)
	}
	return rows.Err()
}

func headerArgs(req *entity.Requisition) []any {
	return []any{
		req.ID, req.Number, req.RequesterID, nullString(req.TargetOfficeID), nullString(req.AssignedApproverID),
		req.Status, req.Urgency, req.Notes,
		nullString(req.OfficeApprovedBy), nullString(req.AssignedBy), nullString(req.ApprovedBy),
		nullString(req.ReadiedBy), nullString(req.FulfilledBy), nullString(req.RejectedBy), nullString(req.CancelledBy),
		req.RejectionReason, req.FulfillmentNotes, req.ReceiptRef, req.PickupAt, req.CreatedAt, req.UpdatedAt,
		req.OfficeApprovedAt, req.AssignedAt, req.ApprovedAt, req.ReadyAt, req.FulfilledAt, req.RejectedAt, req.CancelledAt,
	}
}

func scanRequisition(row pgx.Row) (*entity.Requisition, error) {
	var req entity.Requisition
	var target, approver *string
	var officeBy, assignedBy, approvedBy, readiedBy, fulfilledBy, rejectedBy, cancelledBy *string
	err := row.Scan(
		&req.ID, &req.Number, &req.RequesterID, &target, &approver, &req.Status, &req.Urgency, &req.Notes,
		&officeBy, &assignedBy, &approvedBy, &readiedBy, &fulfilledBy, &rejectedBy, &cancelledBy,
		&req.RejectionReason, &req.FulfillmentNotes, &req.ReceiptRef, &req.PickupAt, &req.CreatedAt, &req.UpdatedAt,
		&req.OfficeApprovedAt, &req.AssignedAt, &req.ApprovedAt, &req.ReadyAt, &req.FulfilledAt, &req.RejectedAt, &req.CancelledAt,
	)
	if err != nil {
		return nil, err
	}
	req.TargetOfficeID = derefString(target)
	req.AssignedApproverID = derefString(approver)
	req.OfficeApprovedBy = derefString(officeBy)
	req.AssignedBy = derefString(assignedBy)
	req.ApprovedBy = derefString(approvedBy)
	req.ReadiedBy = derefString(readiedBy)
	req.FulfilledBy = derefString(fulfilledBy)
	req.RejectedBy = derefString(rejectedBy)
	req.CancelledBy = derefString(cancelledBy)
	return &req, nil
}
