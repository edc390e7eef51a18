// Package memory implementa todos los repositorios y el TxRunner en memoria.
// Cada unidad de trabajo se ejecuta con el store bloqueado sobre una copia del
// estado que sólo reemplaza al original si fn termina sin error.
package memory

import (
	"context"
	"sync"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/repository"
)

var _ ports.TxRunner = (*Store)(nil)

type state struct {
	items        map[string]entity.Item
	requisitions map[string]entity.Requisition
	receipts     map[string]entity.CustodyReceipt
	usage        map[string]entity.UsagePeriodRecord
	movements    []entity.InventoryMovement
	audit        []entity.AuditRecord
}

func newState() *state {
	return &state{
		items:        map[string]entity.Item{},
		requisitions: map[string]entity.Requisition{},
		receipts:     map[string]entity.CustodyReceipt{},
		usage:        map[string]entity.UsagePeriodRecord{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.items {
		c.items[k] = v
	}
	for k, v := range s.requisitions {
		c.requisitions[k] = copyRequisition(v)
	}
	for k, v := range s.receipts {
		c.receipts[k] = v
	}
	for k, v := range s.usage {
		c.usage[k] = v
	}
	c.movements = append([]entity.InventoryMovement(nil), s.movements...)
	c.audit = append([]entity.AuditRecord(nil), s.audit...)
	return c
}

func copyRequisition(r entity.Requisition) entity.Requisition {
	r.Lines = append([]entity.RequisitionLine(nil), r.Lines...)
	return r
}

// Store almacén en memoria; útil para tests y para levantar la API sin PostgreSQL.
// Usuarios y ubicaciones son datos de referencia externos a las transacciones
// y tienen su propio candado.
type Store struct {
	mu sync.Mutex
	st *state

	dirMu     sync.RWMutex
	users     map[string]entity.User
	locations map[string]entity.Location
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{
		st:        newState(),
		users:     map[string]entity.User{},
		locations: map[string]entity.Location{},
	}
}

// db resuelve el estado sobre el que opera un repositorio: el de la transacción
// en curso o el del store (bloqueando por operación).
type db struct {
	store *Store
	tx    *state
}

func (d db) acquire() (*state, func()) {
	if d.tx != nil {
		return d.tx, func() {}
	}
	d.store.mu.Lock()
	return d.store.st, d.store.mu.Unlock
}

// Run ejecuta fn de forma serializada; los cambios se confirman sólo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(repos repository.TxRepos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	work := s.st.clone()
	if err := fn(reposFor(db{store: s, tx: work})); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Repos repositorios fuera de transacción (cada llamada es atómica por sí misma).
func (s *Store) Repos() repository.TxRepos { return reposFor(db{store: s}) }

// Users repositorio de usuarios.
func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

// Locations repositorio de ubicaciones.
func (s *Store) Locations() *LocationRepo { return &LocationRepo{s: s} }

// Directory directorio de custodios respaldado por el store.
func (s *Store) Directory() *Directory {
	return &Directory{users: s.Users(), locations: s.Locations()}
}

func reposFor(d db) repository.TxRepos {
	return repository.TxRepos{
		Items:        &ItemRepo{db: d},
		Requisitions: &RequisitionRepo{db: d},
		Receipts:     &ReceiptRepo{db: d},
		Usage:        &UsageRepo{db: d},
		Movements:    &MovementRepo{db: d},
		Audit:        &AuditRepo{db: d},
	}
}

func page[T any](list []T, limit, offset int) []T {
	if offset > len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
