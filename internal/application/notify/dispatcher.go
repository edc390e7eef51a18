// Package notify entrega los eventos de dominio al EventSink después del commit.
// Un fallo aquí nunca revierte la transición ya confirmada: sólo se registra.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

// Dispatcher publica eventos post-commit.
type Dispatcher struct {
	sink ports.EventSink
	log  *logger.Logger
}

// NewDispatcher construye el despachador. sink nil descarta los eventos.
func NewDispatcher(sink ports.EventSink, log *logger.Logger) *Dispatcher {
	if log == nil {
		log = logger.Nop()
	}
	log = log.Named("notify")
	return &Dispatcher{sink: sink, log: log}
}

// Dispatch publica cada evento; los errores se registran y se descartan.
func (d *Dispatcher) Dispatch(ctx context.Context, events ...entity.DomainEvent) {
	if d == nil || d.sink == nil {
		return
	}
	for _, ev := range events {
		if ev.ID == "" {
			ev.ID = uuid.New().String()
		}
		if ev.OccurredAt.IsZero() {
			ev.OccurredAt = time.Now().UTC()
		}
		if err := d.sink.Publish(ctx, ev); err != nil {
			d.log.Error().Err(err).
				Str("event", ev.Type).
				Str("entity_id", ev.EntityID).
				Msg("publicar evento post-commit")
		}
	}
}

// Event atajo para construir un evento.
func Event(kind, entityID, actorID string, at time.Time, data map[string]string, recipients ...string) entity.DomainEvent {
	return entity.DomainEvent{
		Type:       kind,
		EntityID:   entityID,
		ActorID:    actorID,
		Recipients: recipients,
		Data:       data,
		OccurredAt: at,
	}
}
