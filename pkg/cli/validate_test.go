package cli_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/cli"
	"github.com/secmon-lab/newsagent/pkg/cli/config"
)

func TestRun_ValidateCommand_ValidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[extractor]
content_selectors = ["div.story-body", "article"]

[query]
top_k = 3

[timeouts]
fetch = "15s"
`
	gt.NoError(t, os.WriteFile(configPath, []byte(content), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"newsagent", "validate", "--config", configPath}, "test")
	gt.NoError(t, err)
}

func TestRun_ValidateCommand_InvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.toml")
	content := `
[query]
top_k = 100
`
	gt.NoError(t, os.WriteFile(configPath, []byte(content), 0o600)).Required()

	err := cli.Run(context.Background(), []string{"newsagent", "validate", "--config", configPath}, "test")
	gt.Error(t, err).Is(config.ErrInvalidConfig)
}

func TestRun_ValidateCommand_MissingFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "missing.toml")

	err := cli.Run(context.Background(), []string{"newsagent", "validate", "--config", configPath}, "test")
	gt.Error(t, err).Is(config.ErrConfigNotFound)
}

func TestRun_ValidateCommand_NoConfig(t *testing.T) {
	err := cli.Run(context.Background(), []string{"newsagent", "validate"}, "test")
	gt.Error(t, err).Is(config.ErrMissingRequired)
}

func TestRun_IngestCommand_RequiresURL(t *testing.T) {
	err := cli.Run(context.Background(), []string{"newsagent", "ingest"}, "test")
	gt.Error(t, err)
}

func TestRun_ServeCommand_RequiresKafka(t *testing.T) {
	t.Setenv("NEWSAGENT_KAFKA_BROKERS", "")
	t.Setenv("NEWSAGENT_KAFKA_TOPIC", "")

	err := cli.Run(context.Background(), []string{"newsagent", "serve", "--repository-backend", "memory"}, "test")
	gt.Error(t, err).Is(config.ErrMissingRequired)
}
