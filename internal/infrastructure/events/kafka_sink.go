// Package events adaptadores de ports.EventSink: Kafka para entrega a otros
// servicios (notificaciones) y un sink de log para entornos sin broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/application/ports"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/config"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

var _ ports.EventSink = (*KafkaSink)(nil)

// KafkaSink publica cada evento como JSON en un topic. La clave de partición es
// el id de la entidad, de modo que los eventos de un mismo ítem o requisición
// conservan su orden.
type KafkaSink struct {
	producer    sarama.SyncProducer
	topic       string
	maxAttempts int
	baseDelay   time.Duration
	log         *logger.Logger
}

// NewKafkaSink crea un productor síncrono idempotente contra cfg.Brokers.
func NewKafkaSink(cfg config.KafkaConfig, log *logger.Logger) (*KafkaSink, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.ClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = cfg.Retries
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1
	switch cfg.Acks {
	case "0":
		sc.Producer.RequiredAcks = sarama.NoResponse
	case "1":
		sc.Producer.RequiredAcks = sarama.WaitForLocal
	default:
		sc.Producer.RequiredAcks = sarama.WaitForAll
	}
	// el productor idempotente exige WaitForAll
	if sc.Producer.RequiredAcks != sarama.WaitForAll {
		sc.Producer.Idempotent = false
		sc.Net.MaxOpenRequests = 5
	}

	producer, err := sarama.NewSyncProducer(cfg.Brokers, sc)
	if err != nil {
		return nil, fmt.Errorf("kafka: crear productor: %w", err)
	}
	return NewKafkaSinkWithProducer(producer, cfg.Topic, log), nil
}

// NewKafkaSinkWithProducer usa un productor ya construido.
func NewKafkaSinkWithProducer(producer sarama.SyncProducer, topic string, log *logger.Logger) *KafkaSink {
	if log == nil {
		log = logger.Nop()
	}
	return &KafkaSink{producer: producer, topic: topic, maxAttempts: 3, baseDelay: 100 * time.Millisecond, log: log.Named("kafka")}
}

// Publish envía el evento con reintentos y backoff exponencial (100ms, 200ms, ...).
func (s *KafkaSink) Publish(ctx context.Context, ev entity.DomainEvent) error {
	msg, err := s.message(ev)
	if err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("kafka: contexto cancelado: %w", err)
		}
		partition, offset, err := s.producer.SendMessage(msg)
		if err == nil {
			s.log.Debug().
				Str("topic", s.topic).
				Int32("partition", partition).
				Int64("offset", offset).
				Str("event", ev.Type).
				Msg("evento publicado")
			return nil
		}
		lastErr = err
		s.log.Warn().Err(err).
			Str("event", ev.Type).
			Int("attempt", attempt+1).
			Msg("kafka: fallo al publicar, reintentando")

		if attempt < s.maxAttempts-1 {
			select {
			case <-ctx.Done():
				return fmt.Errorf("kafka: contexto cancelado en backoff: %w", ctx.Err())
			case <-time.After(s.baseDelay * time.Duration(1<<uint(attempt))):
			}
		}
	}
	return fmt.Errorf("kafka: evento %s no publicado tras %d intentos: %w", ev.ID, s.maxAttempts, lastErr)
}

func (s *KafkaSink) message(ev entity.DomainEvent) (*sarama.ProducerMessage, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("kafka: serializar evento: %w", err)
	}
	return &sarama.ProducerMessage{
		Topic: s.topic,
		Key:   sarama.StringEncoder(ev.EntityID),
		Value: sarama.ByteEncoder(body),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(ev.Type)},
			{Key: []byte("event-id"), Value: []byte(ev.ID)},
			{Key: []byte("timestamp"), Value: []byte(ev.OccurredAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}

// Close cierra el productor.
func (s *KafkaSink) Close() error {
	if s.producer != nil {
		return s.producer.Close()
	}
	return nil
}
