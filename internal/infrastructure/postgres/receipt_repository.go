package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var _ repository.ReceiptRepository = (*ReceiptRepo)(nil)

const receiptColumns = `id, item_id, custodian_kind, custodian_id, issued_by, issued_at, status, returned_at,
	processed_by, remarks, reassigned_to_kind, reassigned_to_id, superseded_by, previous_receipt_id,
	formalized, version, created_at, updated_at`

// ReceiptRepo recibos de custodia sobre PostgreSQL. Remarks se guarda como JSONB.
type ReceiptRepo struct {
	q Querier
}

// NewReceiptRepository construye el adaptador. Pasar pool o tx (Querier).
func NewReceiptRepository(q Querier) *ReceiptRepo {
	return &ReceiptRepo{q: q}
}

// Create anexa un recibo a la cadena del ítem.
func (r *ReceiptRepo) Create(ctx context.Context, rec *entity.CustodyReceipt) error {
	remarks, err := json.Marshal(rec.Remarks)
	if err != nil {
		return fmt.Errorf("marshal remarks: %w", err)
	}
	toKind, toID := reassignedColumns(rec.ReassignedTo)
	_, err = r.q.Exec(ctx, `INSERT INTO custody_receipts (`+receiptColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		rec.ID, rec.ItemID, rec.Custodian.Kind, rec.Custodian.ID, rec.IssuedBy, rec.IssuedAt, rec.Status, rec.ReturnedAt,
		nullString(rec.ProcessedBy), remarks, toKind, toID, nullString(rec.SupersededBy), nullString(rec.PreviousReceiptID),
		rec.Formalized, rec.Version, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert receipt: %w", err)
	}
	return nil
}

func (r *ReceiptRepo) GetByID(ctx context.Context, id string) (*entity.CustodyReceipt, error) {
	return r.getOne(ctx, `SELECT `+receiptColumns+` FROM custody_receipts WHERE id = $1`, id)
}

// GetForUpdate bloquea el recibo (SELECT FOR UPDATE).
func (r *ReceiptRepo) GetForUpdate(ctx context.Context, id string) (*entity.CustodyReceipt, error) {
	return r.getOne(ctx, `SELECT `+receiptColumns+` FROM custody_receipts WHERE id = $1 FOR UPDATE`, id)
}

func (r *ReceiptRepo) getOne(ctx context.Context, query, id string) (*entity.CustodyReceipt, error) {
	rec, err := scanReceipt(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get receipt: %w", err)
	}
	return rec, nil
}

// Update aplica el cambio con control optimista por versión.
func (r *ReceiptRepo) Update(ctx context.Context, rec *entity.CustodyReceipt) error {
	remarks, err := json.Marshal(rec.Remarks)
	if err != nil {
		return fmt.Errorf("marshal remarks: %w", err)
	}
	toKind, toID := reassignedColumns(rec.ReassignedTo)
	tag, err := r.q.Exec(ctx, `
		UPDATE custody_receipts SET custodian_kind = $3, custodian_id = $4, status = $5, returned_at = $6,
			processed_by = $7, remarks = $8, reassigned_to_kind = $9, reassigned_to_id = $10, superseded_by = $11,
			previous_receipt_id = $12, formalized = $13, updated_at = $14, version = version + 1
		WHERE id = $1 AND version = $2`,
		rec.ID, rec.Version, rec.Custodian.Kind, rec.Custodian.ID, rec.Status, rec.ReturnedAt,
		nullString(rec.ProcessedBy), remarks, toKind, toID, nullString(rec.SupersededBy),
		nullString(rec.PreviousReceiptID), rec.Formalized, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update receipt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var status string
		err := r.q.QueryRow(ctx, `SELECT status FROM custody_receipts WHERE id = $1`, rec.ID).Scan(&status)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check receipt version: %w", err)
		}
		return domain.AlreadyProcessed("receipt", rec.ID, status, rec.Status)
	}
	rec.Version++
	return nil
}

func (r *ReceiptRepo) ListByItem(ctx context.Context, itemID string) ([]entity.CustodyReceipt, error) {
	return r.list(ctx, `item_id = $1`, itemID)
}

func (r *ReceiptRepo) ListByItems(ctx context.Context, itemIDs []string) ([]entity.CustodyReceipt, error) {
	if len(itemIDs) == 0 {
		return nil, nil
	}
	return r.list(ctx, `item_id = ANY($1)`, itemIDs)
}

func (r *ReceiptRepo) ListByCustodian(ctx context.Context, c entity.Custodian) ([]entity.CustodyReceipt, error) {
	return r.list(ctx, `custodian_kind = $1 AND custodian_id = $2`, c.Kind, c.ID)
}

func (r *ReceiptRepo) ListByStatus(ctx context.Context, status string) ([]entity.CustodyReceipt, error) {
	return r.list(ctx, `status = $1`, status)
}

// list devuelve los recibos en orden de emisión.
func (r *ReceiptRepo) list(ctx context.Context, where string, args ...any) ([]entity.CustodyReceipt, error) {
	rows, err := r.q.Query(ctx, `SELECT `+receiptColumns+` FROM custody_receipts WHERE `+where+`
		ORDER BY issued_at, created_at`, args...)
	if err != nil {
		return nil, fmt.Errorf("list receipts: %w", err)
	}
	defer rows.Close()
	var out []entity.CustodyReceipt
	for rows.Next() {
		rec, err := scanReceipt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan receipt: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func reassignedColumns(c *entity.Custodian) (kind, id *string) {
	if c == nil {
		return nil, nil
	}
	return nullString(c.Kind), nullString(c.ID)
}

func scanReceipt(row pgx.Row) (*entity.CustodyReceipt, error) {
	var rec entity.CustodyReceipt
	var processedBy, toKind, toID, supersededBy, previous *string
	var remarks []byte
	err := row.Scan(
		&rec.ID, &rec.ItemID, &rec.Custodian.Kind, &rec.Custodian.ID, &rec.IssuedBy, &rec.IssuedAt, &rec.Status,
		&rec.ReturnedAt, &processedBy, &remarks, &toKind, &toID, &supersededBy, &previous,
		&rec.Formalized, &rec.Version, &rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(remarks) > 0 {
		if err := json.Unmarshal(remarks, &rec.Remarks); err != nil {
			return nil, fmt.Errorf("unmarshal remarks: %w", err)
		}
	}
	rec.ProcessedBy = derefString(processedBy)
	rec.SupersededBy = derefString(supersededBy)
	rec.PreviousReceiptID = derefString(previous)
	if toKind != nil && toID != nil {
		rec.ReassignedTo = &entity.Custodian{Kind: *toKind, ID: *toID}
	}
	return &rec, nil
}
