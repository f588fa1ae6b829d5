package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	kafkaGo "github.com/segmentio/kafka-go"
)

// Publisher publica eventos en un broker de mensajes.
type Publisher interface {
	PublishEvent(ctx context.Context, topic string, key string, event any) error
}

// KafkaPublisher publica en Kafka con un único Writer compartido; el topic va en cada mensaje.
type KafkaPublisher struct {
	w *kafkaGo.Writer
}

// NewKafkaPublisher crea el publicador para los brokers dados.
func NewKafkaPublisher(brokers []string) *KafkaPublisher {
	return &KafkaPublisher{w: &kafkaGo.Writer{
		Addr:         kafkaGo.TCP(brokers...),
		Balancer:     &kafkaGo.LeastBytes{},
		RequiredAcks: kafkaGo.RequireOne,
		WriteTimeout: 5 * time.Second,
	}}
}

// PublishEvent serializa el evento en JSON; la clave ordena los eventos de una misma venta.
func (k *KafkaPublisher) PublishEvent(ctx context.Context, topic string, key string, event any) error {
	msg, err := encodeMessage(topic, key, event)
	if err != nil {
		return err
	}
	if err := k.w.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka: publicar en %s: %w", topic, err)
	}
	return nil
}

// Close vacía y cierra el writer.
func (k *KafkaPublisher) Close() error {
	return k.w.Close()
}

func encodeMessage(topic, key string, event any) (kafkaGo.Message, error) {
	if topic == "" {
		return kafkaGo.Message{}, fmt.Errorf("kafka: topic vacío")
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("kafka: serializar evento: %w", err)
	}
	return kafkaGo.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	}, nil
}

// NoopPublisher descarta los eventos (KAFKA_BROKERS vacío).
type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(context.Context, string, string, any) error { return nil }
