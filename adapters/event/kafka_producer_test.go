package event

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khoahotran/devprofiles/internal/application/service"
	"github.com/khoahotran/devprofiles/internal/config"
	"github.com/khoahotran/devprofiles/pkg/logger"
)

type recordingWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *recordingWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *recordingWriter) Close() error { return nil }

func TestPublishProfileEvent(t *testing.T) {
	w := &recordingWriter{}
	client := &KafkaProducerClient{ProfileEventsWriter: w, logger: logger.NewNopLogger()}

	owner := uuid.New()
	err := client.PublishProfileEvent(context.Background(), service.ProfileEventPayload{
		EventType:  service.ProfileEventAccountDeleted,
		OwnerID:    owner,
		OccurredAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	})
	require.NoError(t, err)
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, owner.String(), string(msg.Key))
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, string(service.ProfileEventAccountDeleted), string(msg.Headers[0].Value))

	var got service.ProfileEventPayload
	require.NoError(t, json.Unmarshal(msg.Value, &got))
	assert.Equal(t, owner, got.OwnerID)
	assert.Equal(t, service.ProfileEventAccountDeleted, got.EventType)
}

func TestPublishProfileEvent_WriterError(t *testing.T) {
	client := &KafkaProducerClient{ProfileEventsWriter: &recordingWriter{err: errors.New("broker down")}, logger: logger.NewNopLogger()}

	err := client.PublishProfileEvent(context.Background(), service.ProfileEventPayload{OwnerID: uuid.New()})
	assert.ErrorContains(t, err, "broker down")
}

func TestNewKafkaProducerClient_RequiresBrokers(t *testing.T) {
	_, err := NewKafkaProducerClient(config.Config{}, logger.NewNopLogger())
	assert.Error(t, err)
}
