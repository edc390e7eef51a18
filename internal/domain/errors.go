package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrConflict           = errors.New("conflicto con el estado actual")
	ErrAlreadyProcessed   = errors.New("la operación ya fue procesada")
	ErrInsufficientStock  = errors.New("stock insuficiente")
	ErrDependency         = errors.New("fallo de una dependencia externa")
)

// TransitionError describe un fallo al aplicar una transición sobre una entidad.
// Kind es uno de los errores centinela (ErrConflict, ErrForbidden, ...), de modo
// que errors.Is(err, domain.ErrConflict) sigue funcionando.
type TransitionError struct {
	Kind      error
	Entity    string // requisition, receipt, item
	EntityID  string
	Current   string // estado actual
	Requested string // transición pedida
	Detail    string
}

func (e *TransitionError) Error() string {
	msg := fmt.Sprintf("%s %s: %s (estado=%s, transición=%s)", e.Entity, e.EntityID, e.Kind, e.Current, e.Requested)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *TransitionError) Unwrap() error { return e.Kind }

// Conflict construye un TransitionError de estado inválido.
func Conflict(entity, id, current, requested, detail string) error {
	return &TransitionError{Kind: ErrConflict, Entity: entity, EntityID: id, Current: current, Requested: requested, Detail: detail}
}

// Forbidden construye un TransitionError de autorización.
func Forbidden(entity, id, current, requested, detail string) error {
	return &TransitionError{Kind: ErrForbidden, Entity: entity, EntityID: id, Current: current, Requested: requested, Detail: detail}
}

// Invalid construye un TransitionError de validación.
func Invalid(entity, id, requested, detail string) error {
	return &TransitionError{Kind: ErrInvalidInput, Entity: entity, EntityID: id, Requested: requested, Detail: detail}
}

// AlreadyProcessed se devuelve a quien pierde la carrera sobre un recibo.
func AlreadyProcessed(entity, id, current, requested string) error {
	return &TransitionError{Kind: ErrAlreadyProcessed, Entity: entity, EntityID: id, Current: current, Requested: requested}
}

// InsufficientStockError reporta el faltante de una deducción rechazada.
type InsufficientStockError struct {
	ItemID    string
	Needed    int
	Available int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("stock insuficiente para el ítem %s: requerido=%d, disponible=%d", e.ItemID, e.Needed, e.Available)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// Shortfall cantidad que falta para cubrir lo requerido.
func (e *InsufficientStockError) Shortfall() int { return e.Needed - e.Available }

// DependencyError fallo de un colaborador externo antes del commit.
type DependencyError struct {
	Dependency string
	Err        error
}

func (e *DependencyError) Error() string {
	return fmt.Sprintf("dependencia %s: %v", e.Dependency, e.Err)
}

func (e *DependencyError) Is(target error) bool { return target == ErrDependency }

func (e *DependencyError) Unwrap() error { return e.Err }
