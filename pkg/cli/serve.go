package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/newsagent/pkg/cli/config"
	gqlctrl "github.com/secmon-lab/newsagent/pkg/controller/graphql"
	httpctrl "github.com/secmon-lab/newsagent/pkg/controller/http"
	"github.com/secmon-lab/newsagent/pkg/service/kafka"
	"github.com/secmon-lab/newsagent/pkg/utils/logging"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var enableGraphiQL bool
	var pipeCfg pipelineConfig
	var kafkaCfg config.Kafka

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("NEWSAGENT_ADDR"),
			Destination: &addr,
		},
		&cli.BoolFlag{
			Name:        "graphiql",
			Usage:       "Enable GraphiQL playground",
			Value:       true,
			Sources:     cli.EnvVars("NEWSAGENT_GRAPHIQL"),
			Destination: &enableGraphiQL,
		},
	}
	flags = append(flags, pipeCfg.Flags()...)
	flags = append(flags, kafkaCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Consume article URLs from Kafka and serve the GraphQL query endpoint",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			startedAt := time.Now()

			brokerCfg, err := kafkaCfg.Configure()
			if err != nil {
				return err
			}

			pipe, err := pipeCfg.build(ctx, c.Root().Version)
			if err != nil {
				return err
			}
			defer pipe.Close()

			if err := pipe.Repo.Verify(ctx); err != nil {
				return goerr.Wrap(err, "vector store is not reachable")
			}

			consumer, err := kafka.NewConsumer(*brokerCfg, startedAt)
			if err != nil {
				return goerr.Wrap(err, "failed to create kafka consumer")
			}
			defer func() {
				if err := consumer.Close(); err != nil {
					logger.Error("failed to close kafka consumer", "error", err.Error())
				}
			}()

			gqlHandler := gqlctrl.NewServer(gqlctrl.NewResolver(pipe.UseCases))
			server := &http.Server{
				Addr: addr,
				Handler: httpctrl.New(gqlHandler,
					httpctrl.WithGraphiQL(enableGraphiQL),
					httpctrl.WithHealthCheck(pipe.Repo),
				),
				ReadHeaderTimeout: 30 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			eg, ctx := errgroup.WithContext(ctx)

			eg.Go(func() error {
				logger.Info("Starting HTTP server", "addr", addr, "graphiql", enableGraphiQL)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return goerr.Wrap(err, "failed to start server", goerr.V("addr", addr))
				}
				return nil
			})

			eg.Go(func() error {
				logger.Info("Starting kafka consumer", "kafka", brokerCfg, "group_id", consumer.GroupID())
				return consumer.Run(ctx, pipe.UseCases.Ingest.HandleMessage)
			})

			eg.Go(func() error {
				<-ctx.Done()
				logger.Info("Shutting down")

				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}
				return nil
			})

			if err := eg.Wait(); err != nil {
				return err
			}
			logger.Info("Server shutdown completed")
			return nil
		},
	}
}
