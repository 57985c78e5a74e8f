package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/twmb/franz-go/pkg/kgo"
)

const maxBufferedRecords = 1024

// Producer publishes cache refresh events to one topic.
type Producer struct {
	topic  string
	client *kgo.Client
}

func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, errors.New("no Kafka brokers configured")
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.DefaultProduceTopic(topic),
		kgo.ProducerBatchMaxBytes(1<<20),
		kgo.RecordDeliveryTimeout(10*time.Second),
		kgo.MaxBufferedRecords(maxBufferedRecords),
	)
	if err != nil {
		return nil, fmt.Errorf("create Kafka producer: %w", err)
	}

	log.Info().Str("topic", topic).Strs("brokers", brokers).Msg("Kafka producer initialized")
	return &Producer{topic: topic, client: client}, nil
}

func (p *Producer) Close() {
	p.client.Close()
}

// Publish queues one record. kgo buffers it and reports the outcome through
// the callback; Produce blocks only when the buffer is full.
func (p *Producer) Publish(ctx context.Context, key, value []byte) {
	msg := &kgo.Record{
		Topic: p.topic,
		Key:   key,
		Value: value,
	}

	p.client.Produce(ctx, msg, func(r *kgo.Record, err error) {
		if err != nil {
			log.Warn().Err(err).Str("topic", p.topic).Bytes("key", r.Key).Msg("Kafka publish failed")
			return
		}
		log.Debug().Str("topic", p.topic).Bytes("key", r.Key).Int64("offset", r.Offset).Msg("Published")
	})
}

// PublishObjectAsync marshals obj to JSON and queues it without waiting for delivery.
func (p *Producer) PublishObjectAsync(key []byte, obj interface{}) {
	value, err := json.Marshal(obj)
	if err != nil {
		log.Error().Err(err).Bytes("key", key).Msg("Failed to marshal object for Kafka")
		return
	}
	p.Publish(context.Background(), key, value)
}
