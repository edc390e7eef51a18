package repository

import (
	"context"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// ItemFilter criterios de listado de ítems.
type ItemFilter struct {
	Status     string // vacío = activos
	UserID     string
	LocationID string
	Search     string
	MaxQty     *int // ítems con cantidad <= MaxQty (bajo stock)
	Limit      int
	Offset     int
}

// ItemRepository define el puerto de persistencia para Item (DIP).
// Los Get devuelven (nil, nil) si el ítem no existe.
type ItemRepository interface {
	Create(ctx context.Context, item *entity.Item) error
	GetByID(ctx context.Context, id string) (*entity.Item, error)
	GetByUUID(ctx context.Context, uuid string) (*entity.Item, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) dentro de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.Item, error)
	Update(ctx context.Context, item *entity.Item) error
	List(ctx context.Context, f ItemFilter) ([]*entity.Item, error)
	Delete(ctx context.Context, id string) error
}
