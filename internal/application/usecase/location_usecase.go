package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/dto"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

// LocationUseCase casos de uso CRUD para ubicaciones.
type LocationUseCase struct {
	repo        repository.LocationRepository
	users       repository.UserRepository
	invalidator ports.DirectoryInvalidator
}

// NewLocationUseCase construye el caso de uso.
func NewLocationUseCase(repo repository.LocationRepository, users repository.UserRepository) *LocationUseCase {
	return &LocationUseCase{repo: repo, users: users}
}

// SetInvalidator registra la caché del directorio a invalidar en cada Update.
func (uc *LocationUseCase) SetInvalidator(inv ports.DirectoryInvalidator) { uc.invalidator = inv }

// Create crea una ubicación. Si trae responsable se le asigna código de personal.
func (uc *LocationUseCase) Create(ctx context.Context, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if in.Name == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.checkPersonnel(ctx, in.PersonnelID); err != nil {
		return nil, err
	}
	now := time.Now()
	loc := &entity.Location{
		ID:          uuid.New().String(),
		Name:        in.Name,
		Personnel:   in.Personnel,
		PersonnelID: in.PersonnelID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.assignCode(ctx, loc); err != nil {
		return nil, err
	}
	if err := uc.repo.Create(ctx, loc); err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// GetByID obtiene una ubicación por ID.
func (uc *LocationUseCase) GetByID(ctx context.Context, id string) (*dto.LocationResponse, error) {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}
	return toLocationResponse(loc), nil
}

// Update actualiza una ubicación.
func (uc *LocationUseCase) Update(ctx context.Context, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	loc, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, nil
	}
	if in.Name != nil {
		loc.Name = *in.Name
	}
	if in.Personnel != nil {
		loc.Personnel = *in.Personnel
	}
	if in.PersonnelID != nil {
		if err := uc.checkPersonnel(ctx, *in.PersonnelID); err != nil {
			return nil, err
		}
		loc.PersonnelID = *in.PersonnelID
	}
	if err := uc.assignCode(ctx, loc); err != nil {
		return nil, err
	}
	loc.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, loc); err != nil {
		return nil, err
	}
	if uc.invalidator != nil {
		uc.invalidator.Forget(ctx, entity.CustodianLocation, loc.ID)
	}
	return toLocationResponse(loc), nil
}

// List lista ubicaciones con paginación.
func (uc *LocationUseCase) List(ctx context.Context, limit, offset int) (*dto.LocationListResponse, error) {
	list, err := uc.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// assignCode genera el código de personal cuando hay responsable y aún no tiene código.
func (uc *LocationUseCase) assignCode(ctx context.Context, loc *entity.Location) error {
	if !loc.HasPersonnel() || loc.PersonnelCode != "" {
		return nil
	}
	prefix := entity.PersonnelCodePrefix(loc.Name)
	n, err := uc.repo.CountPersonnelCodes(ctx, prefix)
	if err != nil {
		return err
	}
	loc.PersonnelCode = entity.PersonnelCode(prefix, n+1)
	return nil
}

func (uc *LocationUseCase) checkPersonnel(ctx context.Context, userID string) error {
	if userID == "" {
		return nil
	}
	u, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return domain.ErrUserNotFound
	}
	return nil
}

func toLocationResponse(l *entity.Location) *dto.LocationResponse {
	if l == nil {
		return nil
	}
	return &dto.LocationResponse{
		ID:            l.ID,
		Name:          l.Name,
		Personnel:     l.Personnel,
		PersonnelID:   l.PersonnelID,
		PersonnelCode: l.PersonnelCode,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}
