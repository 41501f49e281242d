package config

import (
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/service/kafka"
	"github.com/urfave/cli/v3"
)

// Kafka holds CLI flags for the message broker
type Kafka struct {
	brokers       []string
	topic         string
	groupIDPrefix string
	username      string
	password      string
	disableTLS    bool
	dialTimeout   time.Duration
}

// Flags returns CLI flags for Kafka configuration
func (k *Kafka) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:        "kafka-broker",
			Category:    "Kafka",
			Usage:       "Kafka bootstrap broker address (repeatable or comma separated)",
			Sources:     cli.EnvVars("NEWSAGENT_KAFKA_BROKERS"),
			Destination: &k.brokers,
		},
		&cli.StringFlag{
			Name:        "kafka-topic",
			Category:    "Kafka",
			Usage:       "Topic carrying article URLs",
			Sources:     cli.EnvVars("NEWSAGENT_KAFKA_TOPIC"),
			Destination: &k.topic,
		},
		&cli.StringFlag{
			Name:        "kafka-group-id-prefix",
			Category:    "Kafka",
			Usage:       "Consumer group ID prefix; the process start time is appended",
			Value:       "newsagent-",
			Sources:     cli.EnvVars("NEWSAGENT_KAFKA_GROUP_ID_PREFIX"),
			Destination: &k.groupIDPrefix,
		},
		&cli.StringFlag{
			Name:        "kafka-username",
			Category:    "Kafka",
			Usage:       "SASL/PLAIN username",
			Sources:     cli.EnvVars("NEWSAGENT_KAFKA_USERNAME"),
			Destination: &k.username,
		},
		&cli.StringFlag{
			Name:        "kafka-password",
			Category:    "Kafka",
			Usage:       "SASL/PLAIN password",
			Sources:     cli.EnvVars("NEWSAGENT_KAFKA_PASSWORD"),
			Destination: &k.password,
		},
		&cli.BoolFlag{
			Name:        "kafka-disable-tls",
			Category:    "Kafka",
			Usage:       "Connect without TLS (local development only)",
			Sources:     cli.EnvVars("NEWSAGENT_KAFKA_DISABLE_TLS"),
			Destination: &k.disableTLS,
		},
		&cli.DurationFlag{
			Name:        "kafka-dial-timeout",
			Category:    "Kafka",
			Usage:       "Timeout for connecting to a broker",
			Value:       10 * time.Second,
			Sources:     cli.EnvVars("NEWSAGENT_KAFKA_DIAL_TIMEOUT"),
			Destination: &k.dialTimeout,
		},
	}
}

// LogValue implements slog.LogValuer. The password is never logged.
func (k Kafka) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("brokers", k.brokers),
		slog.String("topic", k.topic),
		slog.String("group_id_prefix", k.groupIDPrefix),
		slog.String("username", k.username),
		slog.Bool("tls", !k.disableTLS),
	)
}

// Configure builds and validates the broker configuration
func (k *Kafka) Configure() (*kafka.Config, error) {
	cfg := &kafka.Config{
		Brokers:       k.brokers,
		Topic:         k.topic,
		GroupIDPrefix: k.groupIDPrefix,
		Username:      k.username,
		Password:      k.password,
		DisableTLS:    k.disableTLS,
		DialTimeout:   k.dialTimeout,
	}
	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(ErrMissingRequired, "invalid kafka configuration", goerr.V("error", err.Error()))
	}
	return cfg, nil
}
