package events

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/internal/domain/entity"
	"github.com/villacenciodavidroy-glitch/IRIGTRACK-sub000/pkg/logger"
)

func sampleEvent() entity.DomainEvent {
	return entity.DomainEvent{
		ID:         "ev-1",
		Type:       entity.EventRequisitionApproved,
		EntityID:   "req-1",
		ActorID:    "apr-1",
		Recipients: []string{"req-user"},
		Data:       map[string]string{"number": "SR-1"},
		OccurredAt: time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestKafkaSink_Message(t *testing.T) {
	sink := NewKafkaSinkWithProducer(nil, "inventory.events", nil)
	msg, err := sink.message(sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, "inventory.events", msg.Topic)
	key, _ := msg.Key.Encode()
	assert.Equal(t, "req-1", string(key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[string(h.Key)] = string(h.Value)
	}
	assert.Equal(t, entity.EventRequisitionApproved, headers["event-type"])
	assert.Equal(t, "ev-1", headers["event-id"])
	assert.Equal(t, "2025-08-01T12:00:00Z", headers["timestamp"])

	raw, _ := msg.Value.Encode()
	var back entity.DomainEvent
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, "SR-1", back.Data["number"])
}

func producerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return cfg
}

func TestKafkaSink_PublishReintenta(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	producer.ExpectSendMessageAndFail(errors.New("broker caído"))
	producer.ExpectSendMessageAndSucceed()

	sink := NewKafkaSinkWithProducer(producer, "inventory.events", logger.Nop())
	sink.baseDelay = time.Millisecond
	require.NoError(t, sink.Publish(context.Background(), sampleEvent()))
	require.NoError(t, sink.Close())
}

func TestKafkaSink_PublishAgotaIntentos(t *testing.T) {
	producer := mocks.NewSyncProducer(t, producerConfig())
	for i := 0; i < 3; i++ {
		producer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)
	}

	sink := NewKafkaSinkWithProducer(producer, "inventory.events", nil)
	sink.baseDelay = time.Millisecond
	err := sink.Publish(context.Background(), sampleEvent())
	assert.ErrorIs(t, err, sarama.ErrOutOfBrokers)
	require.NoError(t, sink.Close())
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	sink := NewLogSink(logger.WithWriter(&buf, "info"))
	require.NoError(t, sink.Publish(context.Background(), sampleEvent()))
	assert.Contains(t, buf.String(), `"event":"requisition.approved"`)
	assert.Contains(t, buf.String(), `"data.number":"SR-1"`)
}
