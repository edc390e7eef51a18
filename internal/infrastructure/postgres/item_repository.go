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

var _ repository.ItemRepository = (*ItemRepo)(nil)

const itemColumns = `id, uuid, name, description, category, condition, serial_number, quantity, unit_value,
	custody_user_id, custody_location_id, status, deletion_reason, deleted_at, created_at, updated_at`

// ItemRepo implementación de ItemRepository sobre PostgreSQL (usable con pool o tx).
type ItemRepo struct {
	q Querier
}

// NewItemRepository construye el adaptador. Pasar pool o tx (Querier).
func NewItemRepository(q Querier) *ItemRepo {
	return &ItemRepo{q: q}
}

// Create persiste un ítem nuevo.
func (r *ItemRepo) Create(ctx context.Context, it *entity.Item) error {
	query := `INSERT INTO items (` + itemColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`
	_, err := r.q.Exec(ctx, query,
		it.ID, it.UUID, it.Name, it.Description, it.Category, it.Condition, it.SerialNumber,
		it.Quantity, it.UnitValue,
		nullString(it.Custody.UserID), nullString(it.Custody.LocationID),
		it.Status, it.DeletionReason, it.DeletedAt, it.CreatedAt, it.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// GetByID obtiene un ítem por ID.
func (r *ItemRepo) GetByID(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
}

// GetByUUID obtiene un ítem por su token público.
func (r *ItemRepo) GetByUUID(ctx context.Context, uuid string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE uuid = $1`, uuid)
}

// GetForUpdate obtiene el ítem y bloquea la fila (SELECT FOR UPDATE).
func (r *ItemRepo) GetForUpdate(ctx context.Context, id string) (*entity.Item, error) {
	return r.getOne(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1 FOR UPDATE`, id)
}

func (r *ItemRepo) getOne(ctx context.Context, query, arg string) (*entity.Item, error) {
	it, err := scanItem(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get item: %w", err)
	}
	return it, nil
}

// Update guarda todos los campos mutables del ítem.
func (r *ItemRepo) Update(ctx context.Context, it *entity.Item) error {
	query := `
		UPDATE items SET name = $2, description = $3, category = $4, condition = $5, serial_number = $6,
			quantity = $7, unit_value = $8, custody_user_id = $9, custody_location_id = $10,
			status = $11, deletion_reason = $12, deleted_at = $13, updated_at = $14
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query,
		it.ID, it.Name, it.Description, it.Category, it.Condition, it.SerialNumber,
		it.Quantity, it.UnitValue, nullString(it.Custody.UserID), nullString(it.Custody.LocationID),
		it.Status, it.DeletionReason, it.DeletedAt, it.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List lista ítems por estado (activos por defecto) con filtros opcionales.
func (r *ItemRepo) List(ctx context.Context, f repository.ItemFilter) ([]*entity.Item, error) {
	status := f.Status
	if status == "" {
		status = entity.ItemStatusActive
	}
	query := `SELECT ` + itemColumns + ` FROM items WHERE status = $1`
	args := []any{status}
	pos := 2
	if f.UserID != "" {
		query += fmt.Sprintf(" AND custody_user_id = $%d", pos)
		args = append(args, f.UserID)
		pos++
	}
	if f.LocationID != "" {
		query += fmt.Sprintf(" AND custody_location_id = $%d", pos)
		args = append(args, f.LocationID)
		pos++
	}
	if f.MaxQty != nil {
		query += fmt.Sprintf(" AND quantity <= $%d", pos)
		args = append(args, *f.MaxQty)
		pos++
	}
	if f.Search != "" {
		query += fmt.Sprintf(" AND name ILIKE '%%' || $%d || '%%'", pos)
		args = append(args, f.Search)
		pos++
	}
	query += " ORDER BY name"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", pos, pos+1)
		args = append(args, f.Limit, f.Offset)
	}

	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()
	var list []*entity.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		list = append(list, it)
	}
	return list, rows.Err()
}

// Delete borra el ítem; recibos, acumulados y movimientos caen por ON DELETE CASCADE.
func (r *ItemRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.Conflict("item", id, entity.ItemStatusDeleted, "purge", "el ítem figura en requisiciones")
		}
		return fmt.Errorf("delete item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanItem(row pgx.Row) (*entity.Item, error) {
	var it entity.Item
	var userID, locationID *string
	err := row.Scan(
		&it.ID, &it.UUID, &it.Name, &it.Description, &it.Category, &it.Condition, &it.SerialNumber,
		&it.Quantity, &it.UnitValue, &userID, &locationID,
		&it.Status, &it.DeletionReason, &it.DeletedAt, &it.CreatedAt, &it.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	it.Custody = entity.CustodyPointer{UserID: derefString(userID), LocationID: derefString(locationID)}
	return &it, nil
}
