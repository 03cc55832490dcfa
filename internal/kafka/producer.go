package kafka

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Producer delivers share events to the collaborators that actually send
// email, SMS or social posts.
type Producer interface {
	SendMessage(ctx context.Context, topic string, key []byte, value []byte) error
	Close() error
}

// LogProducer is the placeholder used when no brokers are configured: it
// only logs what would have been published.
type LogProducer struct {
	logger *zap.Logger
}

func NewLogProducer(logger *zap.Logger) *LogProducer {
	logger.Info("share events will be logged, no kafka brokers configured")
	return &LogProducer{logger: logger}
}

func (p *LogProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.logger.Info("share event",
		zap.String("topic", topic),
		zap.ByteString("key", key),
		zap.Int("bytes", len(value)))
	return nil
}

func (p *LogProducer) Close() error { return nil }

// WriterProducer publishes to Kafka through a kafka-go Writer.
type WriterProducer struct {
	writer *kafka.Writer
}

func NewWriterProducer(brokers []string) *WriterProducer {
	return &WriterProducer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(brokers...),
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			BatchTimeout:           50 * time.Millisecond,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *WriterProducer) SendMessage(ctx context.Context, topic string, key []byte, value []byte) error {
	err := p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("kafka: write to %s: %w", topic, err)
	}
	return nil
}

func (p *WriterProducer) Close() error {
	return p.writer.Close()
}

// New returns a WriterProducer for the given brokers, or a LogProducer when
// the list is empty.
func New(brokers []string, logger *zap.Logger) Producer {
	if len(brokers) == 0 {
		return NewLogProducer(logger)
	}
	return NewWriterProducer(brokers)
}
