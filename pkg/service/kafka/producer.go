package kafka

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Producer publishes ingestion messages to the topic
type Producer struct {
	writer messageWriter
	topic  string
}

// NewProducer creates a producer for cfg.Topic
func NewProducer(cfg Config) (*Producer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Producer{
		writer: &kafkago.Writer{
			Addr:                   kafkago.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafkago.Hash{},
			RequiredAcks:           kafkago.RequireAll,
			AllowAutoTopicCreation: false,
			Transport:              cfg.transport(),
		},
		topic: cfg.Topic,
	}, nil
}

// Publish writes msgs as JSON payloads keyed by URL
func (p *Producer) Publish(ctx context.Context, msgs ...*model.IngestMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	records := make([]kafkago.Message, 0, len(msgs))
	for _, msg := range msgs {
		if err := model.ValidateArticleURL(msg.URL); err != nil {
			return goerr.Wrap(err, "invalid ingestion message", goerr.V("url", msg.URL))
		}
		raw, err := json.Marshal(msg)
		if err != nil {
			return goerr.Wrap(err, "failed to marshal ingestion message", goerr.V("url", msg.URL))
		}
		records = append(records, kafkago.Message{
			Key:   []byte(msg.URL),
			Value: raw,
		})
	}

	if err := p.writer.WriteMessages(ctx, records...); err != nil {
		return goerr.Wrap(err, "failed to publish kafka messages",
			goerr.V("topic", p.topic),
			goerr.V("count", len(records)),
		)
	}
	return nil
}

// Close flushes pending writes
func (p *Producer) Close() error {
	if err := p.writer.Close(); err != nil {
		return goerr.Wrap(err, "failed to close kafka writer")
	}
	return nil
}
