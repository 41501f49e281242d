package cli_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/newsagent/pkg/cli"
	"github.com/secmon-lab/newsagent/pkg/cli/config"
)

func TestGetIndexConfig(t *testing.T) {
	cfg := cli.GetIndexConfig("test_", 768)
	gt.Array(t, cfg.Collections).Length(1).Required()
	gt.Value(t, cfg.Collections[0].Name).Equal("test_articles")
	gt.Array(t, cfg.Collections[0].Indexes).Length(1).Required()

	field := cfg.Collections[0].Indexes[0].Fields[0]
	gt.Value(t, field.Path).Equal("Embedding")
	gt.Value(t, field.Vector).NotNil().Required()
	gt.Value(t, field.Vector.Dimension).Equal(768)
	gt.NoError(t, cfg.Validate())
}

func TestRun_MigrateCommand_RejectsDimension(t *testing.T) {
	err := cli.Run(context.Background(), []string{
		"newsagent", "migrate",
		"--firestore-project-id", "test-project",
		"--embedding-dimension", "0",
	}, "test")
	gt.Error(t, err).Is(config.ErrInvalidConfig)
}
