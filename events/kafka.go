package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"logitrack-api/models"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	TypeShipmentCreated = "shipment.created"
	TypeStatusChanged   = "shipment.status_changed"
)

// ShipmentEvent is published for every new booking and status change
type ShipmentEvent struct {
	Type           string                `json:"type"`
	LRNo           string                `json:"lr_no"`
	Status         models.ShipmentStatus `json:"status"`
	PreviousStatus models.ShipmentStatus `json:"previous_status,omitempty"`
	ChangedBy      uint                  `json:"changed_by,omitempty"`
	Location       string                `json:"location,omitempty"`
	At             time.Time             `json:"at"`
}

// Publisher fans shipment events out to interested parties
type Publisher interface {
	PublishShipmentEvent(ctx context.Context, ev ShipmentEvent) error
}

// Writer is the part of *kafka.Writer the producer needs
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducer struct {
	writer Writer
	log    *zap.Logger
}

// NewKafkaProducer writes to topic on broker; messages with the same key
// land on the same partition.
func NewKafkaProducer(broker, topic string, log *zap.Logger) *KafkaProducer {
	return &KafkaProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(broker),
			Topic:                  topic,
			Balancer:               &kafka.Hash{},
			AllowAutoTopicCreation: true,
		},
		log: log,
	}
}

func NewKafkaProducerWithWriter(w Writer, log *zap.Logger) *KafkaProducer {
	return &KafkaProducer{writer: w, log: log}
}

// Publish JSON-encodes value and writes it under key
func (p *KafkaProducer) Publish(ctx context.Context, key string, value any) error {
	bytes, err := json.Marshal(value)
	if err != nil {
		return err
	}
	msg := kafka.Message{
		Key:   []byte(key),
		Value: bytes,
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.log.Error("kafka write failed", zap.String("key", key), zap.Error(err))
		return err
	}
	p.log.Debug("kafka published", zap.String("key", key), zap.ByteString("value", bytes))
	return nil
}

func (p *KafkaProducer) PublishShipmentEvent(ctx context.Context, ev ShipmentEvent) error {
	return p.Publish(ctx, ev.LRNo, ev)
}

func (p *KafkaProducer) Close() error {
	return p.writer.Close()
}

// Multi publishes to every publisher and joins their errors
type Multi []Publisher

func (m Multi) PublishShipmentEvent(ctx context.Context, ev ShipmentEvent) error {
	var errs []error
	for _, p := range m {
		if err := p.PublishShipmentEvent(ctx, ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Noop drops every event
type Noop struct{}

func (Noop) PublishShipmentEvent(context.Context, ShipmentEvent) error { return nil }
