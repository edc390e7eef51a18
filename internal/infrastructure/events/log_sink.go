package events

import (
	"context"
	"strings"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

var _ ports.EventSink = (*LogSink)(nil)

// LogSink registra los eventos con zerolog. Se usa cuando no hay brokers configurados.
type LogSink struct {
	log *logger.Logger
}

// NewLogSink construye el sink.
func NewLogSink(log *logger.Logger) *LogSink {
	if log == nil {
		log = logger.Nop()
	}
	return &LogSink{log: log}
}

func (s *LogSink) Publish(_ context.Context, ev entity.DomainEvent) error {
	e := s.log.Info().
		Str("event_id", ev.ID).
		Str("event", ev.Type).
		Str("entity_id", ev.EntityID).
		Str("actor_id", ev.ActorID).
		Str("recipients", strings.Join(ev.Recipients, ","))
	for k, v := range ev.Data {
		e = e.Str("data."+k, v)
	}
	e.Time("occurred_at", ev.OccurredAt).Msg("evento de dominio")
	return nil
}
