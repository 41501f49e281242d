package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/cli/config"
	"github.com/secmon-lab/newsagent/pkg/domain/interfaces"
	"github.com/secmon-lab/newsagent/pkg/service/answer"
	"github.com/secmon-lab/newsagent/pkg/service/crawler"
	"github.com/secmon-lab/newsagent/pkg/service/embedding"
	"github.com/secmon-lab/newsagent/pkg/service/normalizer"
	"github.com/secmon-lab/newsagent/pkg/usecase"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// pipelineConfig groups the flags every pipeline-running command shares
type pipelineConfig struct {
	appFile config.AppFile
	llm     config.LLM
	repo    config.Repository
	sentry  config.Sentry
}

func (p *pipelineConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, p.appFile.Flags()...)
	flags = append(flags, p.llm.Flags()...)
	flags = append(flags, p.repo.Flags()...)
	flags = append(flags, p.sentry.Flags()...)
	return flags
}

// pipeline is the set of constructed dependencies. Close releases them.
type pipeline struct {
	UseCases *usecase.UseCases
	Repo     interfaces.Repository
	closers  []func()
}

func (p *pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

// build constructs every client once, at process start
func (p *pipelineConfig) build(ctx context.Context, version string) (*pipeline, error) {
	logger := logging.Default()
	out := &pipeline{}

	appCfg, err := p.appFile.Load()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load application config")
	}
	ucOpts, err := appCfg.UseCaseOptions()
	if err != nil {
		return nil, goerr.Wrap(err, "invalid application config")
	}
	crawlerOpts, err := appCfg.CrawlerOptions()
	if err != nil {
		return nil, goerr.Wrap(err, "invalid application config")
	}

	p.sentry.SetRelease(version)
	tracer, flush, err := p.sentry.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure tracing")
	}
	out.closers = append(out.closers, flush)

	llmClient, err := p.llm.Configure(ctx)
	if err != nil {
		out.Close()
		return nil, goerr.Wrap(err, "failed to configure LLM client")
	}

	embeddingSvc, err := embedding.New(llmClient, embedding.WithDimension(p.llm.Dimension()))
	if err != nil {
		out.Close()
		return nil, goerr.Wrap(err, "failed to create embedding service")
	}
	normalizerSvc, err := normalizer.New(llmClient, appCfg.Prompts.NormalizerOptions()...)
	if err != nil {
		out.Close()
		return nil, goerr.Wrap(err, "failed to create normalizer service")
	}
	answerSvc, err := answer.New(llmClient)
	if err != nil {
		out.Close()
		return nil, goerr.Wrap(err, "failed to create answer service")
	}

	repo, err := p.repo.Configure(ctx)
	if err != nil {
		out.Close()
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}
	out.Repo = repo
	out.closers = append(out.closers, func() {
		if err := repo.Close(); err != nil {
			logger.Error("failed to close repository", "error", err.Error())
		}
	})

	ucOpts = append(ucOpts,
		usecase.WithNormalizer(normalizerSvc),
		usecase.WithTracer(tracer),
	)
	out.UseCases = usecase.New(repo, crawler.New(crawlerOpts...), embeddingSvc, answerSvc, ucOpts...)

	logger.Info("Pipeline configured",
		"config", p.appFile.Path(),
		"llm", p.llm,
		"repository", p.repo,
		"sentry", p.sentry,
		"top_k", out.UseCases.Query.TopK(),
	)

	return out, nil
}
