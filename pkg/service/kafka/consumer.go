package kafka

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
)

// Handler processes one decoded ingestion message. Its error is logged and
// does not stop consumption.
type Handler func(ctx context.Context, msg *model.IngestMessage) error

type messageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Consumer reads ingestion messages from a topic one at a time
type Consumer struct {
	reader  messageReader
	groupID string
}

// NewConsumer creates a consumer that joins a new group derived from
// cfg.GroupIDPrefix and startedAt.
func NewConsumer(cfg Config, startedAt time.Time) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.GroupIDPrefix == "" {
		return nil, goerr.New("kafka group ID prefix is required")
	}

	groupID := GroupID(cfg.GroupIDPrefix, startedAt)
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		GroupID:  groupID,
		Topic:    cfg.Topic,
		Dialer:   cfg.dialer(),
		MinBytes: 1,
		MaxBytes: 10e6,
	})

	return &Consumer{reader: reader, groupID: groupID}, nil
}

// GroupID returns the consumer group this consumer joined
func (c *Consumer) GroupID() string {
	return c.groupID
}

// Run fetches messages until ctx is cancelled. Every fetched message is
// committed after handling whatever the outcome, so failed messages are not
// redelivered.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	logger := logging.From(ctx)
	logger.Info("kafka consumer started", slog.String("group_id", c.groupID))

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, context.Canceled) {
				logger.Info("kafka consumer stopped")
				return nil
			}
			return goerr.Wrap(err, "failed to fetch kafka message", goerr.V("group_id", c.groupID))
		}

		c.handle(ctx, msg, handler)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Error("failed to commit kafka message",
				slog.Any("error", err),
				slog.Int("partition", msg.Partition),
				slog.Int64("offset", msg.Offset),
			)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg kafkago.Message, handler Handler) {
	logger := logging.From(ctx).With(
		slog.String("topic", msg.Topic),
		slog.Int("partition", msg.Partition),
		slog.Int64("offset", msg.Offset),
	)

	req, err := model.ParseIngestMessage(msg.Value)
	if err != nil {
		logger.Warn("dropping malformed kafka message",
			slog.Any("error", err),
			slog.Int("size", len(msg.Value)),
		)
		return
	}

	logger.Info("received ingestion message", slog.String("url", req.URL))
	if err := handler(logging.With(ctx, logger), req); err != nil {
		logger.Error("failed to handle kafka message",
			slog.Any("error", err),
			slog.String("url", req.URL),
		)
	}
}

// Close leaves the consumer group
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return goerr.Wrap(err, "failed to close kafka reader")
	}
	return nil
}
