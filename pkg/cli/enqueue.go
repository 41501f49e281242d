package cli

import (
	"context"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/cli/config"
	"github.com/secmon-lab/newsagent/pkg/domain/model"
	"github.com/secmon-lab/newsagent/pkg/service/kafka"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdEnqueue() *cli.Command {
	var kafkaCfg config.Kafka

	return &cli.Command{
		Name:      "enqueue",
		Aliases:   []string{"e"},
		Usage:     "Publish article URLs to the Kafka topic",
		ArgsUsage: "<url> [url...]",
		Flags:     kafkaCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			urls := c.Args().Slice()
			if len(urls) == 0 {
				return goerr.New("at least one URL is required")
			}

			brokerCfg, err := kafkaCfg.Configure()
			if err != nil {
				return err
			}

			producer, err := kafka.NewProducer(*brokerCfg)
			if err != nil {
				return goerr.Wrap(err, "failed to create kafka producer")
			}
			defer func() {
				if err := producer.Close(); err != nil {
					logging.Default().Error("failed to close kafka producer", "error", err.Error())
				}
			}()

			now := time.Now()
			msgs := make([]*model.IngestMessage, 0, len(urls))
			for _, u := range urls {
				msgs = append(msgs, model.NewIngestMessage(u, now))
			}

			if err := producer.Publish(ctx, msgs...); err != nil {
				return goerr.Wrap(err, "failed to publish URLs")
			}

			logging.Default().Info("URLs enqueued", "topic", brokerCfg.Topic, "count", len(msgs))
			return nil
		},
	}
}
