package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var (
	_ repository.UserRepository     = (*UserRepo)(nil)
	_ repository.LocationRepository = (*LocationRepo)(nil)
	_ ports.CustodianDirectory      = (*Directory)(nil)
)

// UserRepo usuarios en memoria.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.dirMu.Lock()
	defer r.s.dirMu.Unlock()
	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return domain.ErrEmailAlreadyExists
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	r.s.dirMu.RLock()
	defer r.s.dirMu.RUnlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	r.s.dirMu.RLock()
	defer r.s.dirMu.RUnlock()
	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			found := u
			return &found, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) Update(_ context.Context, u *entity.User) error {
	r.s.dirMu.Lock()
	defer r.s.dirMu.Unlock()
	if _, ok := r.s.users[u.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	r.s.dirMu.RLock()
	defer r.s.dirMu.RUnlock()
	out := make([]*entity.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		cp := u
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return page(out, limit, offset), nil
}

// LocationRepo ubicaciones en memoria.
type LocationRepo struct{ s *Store }

func (r *LocationRepo) Create(_ context.Context, l *entity.Location) error {
	r.s.dirMu.Lock()
	defer r.s.dirMu.Unlock()
	if _, ok := r.s.locations[l.ID]; ok {
		return fmt.Errorf("location %s: %w", l.ID, domain.ErrDuplicate)
	}
	r.s.locations[l.ID] = *l
	return nil
}

func (r *LocationRepo) GetByID(_ context.Context, id string) (*entity.Location, error) {
	r.s.dirMu.RLock()
	defer r.s.dirMu.RUnlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

func (r *LocationRepo) Update(_ context.Context, l *entity.Location) error {
	r.s.dirMu.Lock()
	defer r.s.dirMu.Unlock()
	if _, ok := r.s.locations[l.ID]; !ok {
		return domain.ErrNotFound
	}
	r.s.locations[l.ID] = *l
	return nil
}

func (r *LocationRepo) List(_ context.Context, limit, offset int) ([]*entity.Location, error) {
	r.s.dirMu.RLock()
	defer r.s.dirMu.RUnlock()
	out := make([]*entity.Location, 0, len(r.s.locations))
	for _, l := range r.s.locations {
		cp := l
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return page(out, limit, offset), nil
}

func (r *LocationRepo) CountPersonnelCodes(_ context.Context, prefix string) (int, error) {
	r.s.dirMu.RLock()
	defer r.s.dirMu.RUnlock()
	n := 0
	for _, l := range r.s.locations {
		if l.PersonnelCode != "" && strings.HasPrefix(l.PersonnelCode, prefix) {
			n++
		}
	}
	return n, nil
}

// Directory directorio de custodios sobre los repositorios en memoria.
type Directory struct {
	users     *UserRepo
	locations *LocationRepo
}

func (d *Directory) User(ctx context.Context, id string) (*entity.User, error) {
	return d.users.GetByID(ctx, id)
}

func (d *Directory) Location(ctx context.Context, id string) (*entity.Location, error) {
	return d.locations.GetByID(ctx, id)
}
