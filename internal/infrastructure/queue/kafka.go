package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Somtiee/swaparc/internal/domain/model"
	"github.com/Somtiee/swaparc/internal/domain/repository"
)

// KafkaConfig holds Kafka connection configuration
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// KafkaPublisher pushes indexed swap events to a topic for downstream
// consumers (analytics, notifications). The indexer works the same with it
// disabled; publish failures are the caller's to log and ignore.
type KafkaPublisher struct {
	writer *kafka.Writer
}

func NewKafkaPublisher(config KafkaConfig) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(config.Brokers...),
		Topic:        config.Topic,
		Balancer:     &kafka.Hash{}, // events for the same wallet share a partition
		RequiredAcks: kafka.RequireAll,
	}
	return &KafkaPublisher{writer: writer}
}

var _ repository.SwapPublisher = (*KafkaPublisher)(nil)

// PublishSwaps sends a batch of priced swap events, keyed by trader wallet.
func (p *KafkaPublisher) PublishSwaps(ctx context.Context, swaps []*model.SwapEvent) error {
	if len(swaps) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(swaps))
	for _, swap := range swaps {
		data, err := json.Marshal(swap)
		if err != nil {
			return err
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(swap.Trader),
			Value: data,
			Time:  time.Now(),
		})
	}
	return p.writer.WriteMessages(ctx, msgs...)
}

// Close closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
