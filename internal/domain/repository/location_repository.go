package repository

import (
	"context"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
)

// LocationRepository define el puerto de persistencia para Location.
type LocationRepository interface {
	Create(ctx context.Context, loc *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
	Update(ctx context.Context, loc *entity.Location) error
	List(ctx context.Context, limit, offset int) ([]*entity.Location, error)
	// CountPersonnelCodes cuántos códigos de personal existen con el prefijo dado.
	CountPersonnelCodes(ctx context.Context, prefix string) (int, error)
}
