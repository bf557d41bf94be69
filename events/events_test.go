package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	skafka "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"logitrack-api/models"
)

// fakeWriter records messages written
type fakeWriter struct {
	msgs []skafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...skafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaProducer_PublishShipmentEvent(t *testing.T) {
	fw := &fakeWriter{}
	p := NewKafkaProducerWithWriter(fw, zap.NewNop())

	at := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	ev := ShipmentEvent{
		Type:           TypeStatusChanged,
		LRNo:           "10001",
		Status:         models.StatusDelivered,
		PreviousStatus: models.StatusOutForDelivery,
		ChangedBy:      2,
		At:             at,
	}
	require.NoError(t, p.PublishShipmentEvent(context.Background(), ev))
	require.Len(t, fw.msgs, 1)
	assert.Equal(t, "10001", string(fw.msgs[0].Key))

	var got ShipmentEvent
	require.NoError(t, json.Unmarshal(fw.msgs[0].Value, &got))
	assert.Equal(t, ev, got)
}

func TestKafkaProducer_WriteError(t *testing.T) {
	p := NewKafkaProducerWithWriter(&fakeWriter{err: errors.New("broker down")}, zap.NewNop())
	assert.Error(t, p.Publish(context.Background(), "k", map[string]string{"a": "b"}))
}

type recordingPublisher struct {
	got []ShipmentEvent
	err error
}

func (r *recordingPublisher) PublishShipmentEvent(_ context.Context, ev ShipmentEvent) error {
	r.got = append(r.got, ev)
	return r.err
}

func TestMulti(t *testing.T) {
	a := &recordingPublisher{}
	b := &recordingPublisher{err: errors.New("b failed")}
	m := Multi{a, b, Noop{}}

	err := m.PublishShipmentEvent(context.Background(), ShipmentEvent{LRNo: "1"})
	assert.EqualError(t, err, "b failed")
	assert.Len(t, a.got, 1, "a failing publisher does not stop the others")
	assert.Len(t, b.got, 1)
}

type fakeChannel struct {
	declared  []string
	published []amqp.Publishing
	keys      []string
}

func (f *fakeChannel) QueueDeclare(name string, _, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) PublishWithContext(_ context.Context, _, key string, _, _ bool, msg amqp.Publishing) error {
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error { return nil }

func TestRabbitNotifier(t *testing.T) {
	ch := &fakeChannel{}
	n, err := newRabbitNotifier(ch, "contact-notifications")
	require.NoError(t, err)
	assert.Equal(t, []string{"contact-notifications"}, ch.declared)

	require.NoError(t, n.Notify(context.Background(), Notification{To: "a@b.io", Subject: "Hi", Body: "Thanks"}))
	require.Len(t, ch.published, 1)
	assert.Equal(t, "contact-notifications", ch.keys[0])
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.JSONEq(t, `{"to":"a@b.io","subject":"Hi","body":"Thanks"}`, string(ch.published[0].Body))
	require.NoError(t, n.Close())
}
