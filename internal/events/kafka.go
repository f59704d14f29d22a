package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"relief-ledger/internal/config"
)

// KafkaPublisher publishes domain events through a synchronous idempotent
// producer. Inventory lifecycle events and stock alerts go to separate
// topics so alert consumers do not have to sift the full change stream.
type KafkaPublisher struct {
	producer sarama.SyncProducer
	logger   *zap.Logger
	cfg      *config.Config
}

func NewKafkaPublisher(cfg *config.Config, logger *zap.Logger) (*KafkaPublisher, error) {
	sc := sarama.NewConfig()
	sc.ClientID = cfg.KafkaClientID
	sc.Producer.Return.Successes = true
	sc.Producer.Retry.Max = cfg.KafkaRetries
	sc.Producer.Idempotent = true
	sc.Net.MaxOpenRequests = 1

	switch cfg.KafkaAcks {
	case "0":
		sc.Producer.RequiredAcks = sarama.NoResponse
	case "1":
		sc.Producer.RequiredAcks = sarama.WaitForLocal
	default:
		sc.Producer.RequiredAcks = sarama.WaitForAll
	}

	producer, err := sarama.NewSyncProducer(cfg.KafkaBrokers, sc)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &KafkaPublisher{producer: producer, logger: logger, cfg: cfg}, nil
}

// Publish sends the event with retries and exponential backoff. The
// partition key is the item code, keeping per-item ordering.
func (p *KafkaPublisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	topic := p.topicFor(event)
	message := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(event.Key()),
		Value: sarama.ByteEncoder(payload),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event-type"), Value: []byte(event.Type())},
			{Key: []byte("event-id"), Value: []byte(uuid.NewString())},
			{Key: []byte("timestamp"), Value: []byte(time.Now().UTC().Format(time.RFC3339))},
		},
	}

	const maxAttempts = 3
	baseDelay := 100 * time.Millisecond

	for attempt := 0; attempt < maxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		partition, offset, err := p.producer.SendMessage(message)
		if err == nil {
			p.logger.Debug("event published",
				zap.String("topic", topic),
				zap.String("event_type", event.Type()),
				zap.Int32("partition", partition),
				zap.Int64("offset", offset),
			)
			return nil
		}

		p.logger.Warn("failed to publish event, retrying",
			zap.String("topic", topic),
			zap.String("event_type", event.Type()),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)

		if attempt < maxAttempts-1 {
			delay := baseDelay * time.Duration(1<<uint(attempt))
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled during backoff: %w", ctx.Err())
			case <-time.After(delay):
			}
		}
	}

	return fmt.Errorf("failed to publish %s event after %d attempts", event.Type(), maxAttempts)
}

func (p *KafkaPublisher) Close() error {
	if p.producer != nil {
		return p.producer.Close()
	}
	return nil
}

func (p *KafkaPublisher) topicFor(event Event) string {
	switch event.(type) {
	case LowStockAlert, CriticalStockAlert:
		return p.cfg.KafkaTopicAlerts
	default:
		return p.cfg.KafkaTopicInventory
	}
}
