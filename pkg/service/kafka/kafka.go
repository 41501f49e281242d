package kafka

import (
	"crypto/tls"
	"log/slog"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl"
	"github.com/segmentio/kafka-go/sasl/plain"
)

const (
	clientID           = "newsagent"
	defaultDialTimeout = 10 * time.Second
)

// Config holds broker connection settings shared by Consumer and Producer
type Config struct {
	Brokers       []string
	Topic         string
	GroupIDPrefix string
	Username      string
	Password      string `masq:"secret"`
	DisableTLS    bool
	DialTimeout   time.Duration
}

// LogValue implements slog.LogValuer
func (c Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Any("brokers", c.Brokers),
		slog.String("topic", c.Topic),
		slog.String("group_id_prefix", c.GroupIDPrefix),
		slog.String("username", c.Username),
		slog.Bool("tls", !c.DisableTLS),
	)
}

// Validate checks that the settings required to reach the broker are present
func (c Config) Validate() error {
	if len(c.Brokers) == 0 {
		return goerr.New("kafka broker is required")
	}
	if c.Topic == "" {
		return goerr.New("kafka topic is required")
	}
	if (c.Username == "") != (c.Password == "") {
		return goerr.New("kafka username and password must be set together",
			goerr.V("username", c.Username))
	}
	return nil
}

// GroupID derives a consumer group ID from the prefix and the start time,
// so every process start joins a fresh group.
func GroupID(prefix string, startedAt time.Time) string {
	return prefix + strconv.FormatInt(startedAt.UnixMilli(), 10)
}

func (c Config) mechanism() sasl.Mechanism {
	if c.Username == "" {
		return nil
	}
	return plain.Mechanism{
		Username: c.Username,
		Password: c.Password,
	}
}

func (c Config) tlsConfig() *tls.Config {
	if c.DisableTLS {
		return nil
	}
	return &tls.Config{MinVersion: tls.VersionTLS12}
}

func (c Config) dialTimeout() time.Duration {
	if c.DialTimeout > 0 {
		return c.DialTimeout
	}
	return defaultDialTimeout
}

func (c Config) dialer() *kafkago.Dialer {
	return &kafkago.Dialer{
		ClientID:      clientID,
		Timeout:       c.dialTimeout(),
		DualStack:     true,
		TLS:           c.tlsConfig(),
		SASLMechanism: c.mechanism(),
	}
}

func (c Config) transport() *kafkago.Transport {
	return &kafkago.Transport{
		ClientID:    clientID,
		DialTimeout: c.dialTimeout(),
		TLS:         c.tlsConfig(),
		SASL:        c.mechanism(),
	}
}
