package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var _ repository.UsageRepository = (*UsageRepo)(nil)

const usageColumns = `item_id, period, year, quarter, stock_start, usage, restock, restocked, stock_end, created_at, updated_at`

// UsageRepo acumulados trimestrales sobre PostgreSQL.
type UsageRepo struct {
	q Querier
}

// NewUsageRepository construye el adaptador. Pasar pool o tx (Querier).
func NewUsageRepository(q Querier) *UsageRepo {
	return &UsageRepo{q: q}
}

// GetForUpdate bloquea el registro del periodo si existe.
func (r *UsageRepo) GetForUpdate(ctx context.Context, itemID, period string) (*entity.UsagePeriodRecord, error) {
	row := r.q.QueryRow(ctx, `SELECT `+usageColumns+` FROM usage_periods
		WHERE item_id = $1 AND period = $2 FOR UPDATE`, itemID, period)
	rec, err := scanUsage(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get usage period: %w", err)
	}
	return rec, nil
}

// Upsert inserta o reemplaza el acumulado de (ítem, periodo). stock_start no se pisa.
func (r *UsageRepo) Upsert(ctx context.Context, rec *entity.UsagePeriodRecord) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO usage_periods (`+usageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (item_id, period) DO UPDATE SET
			usage = EXCLUDED.usage, restock = EXCLUDED.restock, restocked = EXCLUDED.restocked,
			stock_end = EXCLUDED.stock_end, updated_at = EXCLUDED.updated_at`,
		rec.ItemID, rec.Period, rec.Year, rec.Quarter, rec.StockStart, rec.Usage, rec.Restock,
		rec.Restocked, rec.StockEnd, rec.CreatedAt, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert usage period: %w", err)
	}
	return nil
}

func (r *UsageRepo) ListByItem(ctx context.Context, itemID string) ([]entity.UsagePeriodRecord, error) {
	return r.list(ctx, `item_id = $1`, itemID)
}

func (r *UsageRepo) ListByPeriod(ctx context.Context, period string) ([]entity.UsagePeriodRecord, error) {
	return r.list(ctx, `period = $1`, period)
}

func (r *UsageRepo) list(ctx context.Context, where, arg string) ([]entity.UsagePeriodRecord, error) {
	rows, err := r.q.Query(ctx, `SELECT `+usageColumns+` FROM usage_periods WHERE `+where+`
		ORDER BY year, quarter, item_id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list usage periods: %w", err)
	}
	defer rows.Close()
	var out []entity.UsagePeriodRecord
	for rows.Next() {
		rec, err := scanUsage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan usage period: %w", err)
		}
		out = append(out, *rec)
	}
	return out, rows.Err()
}

func scanUsage(row pgx.Row) (*entity.UsagePeriodRecord, error) {
	var rec entity.UsagePeriodRecord
	err := row.Scan(&rec.ItemID, &rec.Period, &rec.Year, &rec.Quarter, &rec.StockStart, &rec.Usage,
		&rec.Restock, &rec.Restocked, &rec.StockEnd, &rec.CreatedAt, &rec.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
