package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

var (
	_ ports.CustodianDirectory   = (*DirectoryCache)(nil)
	_ ports.DirectoryInvalidator = (*DirectoryCache)(nil)
)

const keyPrefix = "directory:"

// DirectoryCache lectura a través de caché sobre el directorio de custodios.
// Los usuarios se guardan sin hash de contraseña (User.PasswordHash no se serializa).
// Un fallo de la caché degrada a lectura directa; nunca falla la consulta.
type DirectoryCache struct {
	next  ports.CustodianDirectory
	cache Cache
	ttl   time.Duration
	log   *logger.Logger
}

// NewDirectoryCache decora next.
func NewDirectoryCache(next ports.CustodianDirectory, c Cache, ttl time.Duration, log *logger.Logger) *DirectoryCache {
	if log == nil {
		log = logger.Nop()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &DirectoryCache{next: next, cache: c, ttl: ttl, log: log.Named("directory-cache")}
}

func (d *DirectoryCache) User(ctx context.Context, id string) (*entity.User, error) {
	return lookup(ctx, d, entity.CustodianUser, id, d.next.User)
}

func (d *DirectoryCache) Location(ctx context.Context, id string) (*entity.Location, error) {
	return lookup(ctx, d, entity.CustodianLocation, id, d.next.Location)
}

// Forget invalida la entrada de un usuario o ubicación tras modificarla.
func (d *DirectoryCache) Forget(ctx context.Context, kind, id string) {
	if err := d.cache.Delete(ctx, key(kind, id)); err != nil {
		d.log.Warn().Err(err).Str("kind", kind).Str("id", id).Msg("invalidar caché de directorio")
	}
}

func key(kind, id string) string { return keyPrefix + kind + ":" + id }

func lookup[T any](ctx context.Context, d *DirectoryCache, kind, id string, load func(context.Context, string) (*T, error)) (*T, error) {
	k := key(kind, id)
	raw, err := d.cache.Get(ctx, k)
	switch {
	case err == nil:
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v, nil
		}
		d.log.Warn().Str("key", k).Msg("entrada de caché corrupta")
	case !errors.Is(err, ErrCacheMiss):
		d.log.Warn().Err(err).Str("key", k).Msg("lectura de caché de directorio")
	}

	v, err := load(ctx, id)
	if err != nil || v == nil {
		return v, err
	}
	if raw, err := json.Marshal(v); err == nil {
		if err := d.cache.Set(ctx, k, raw, d.ttl); err != nil {
			d.log.Warn().Err(err).Str("key", k).Msg("escritura de caché de directorio")
		}
	}
	return v, nil
}
