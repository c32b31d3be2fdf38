package cli

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/database/postgres"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/cnsipo-attrs/internal/infrastructure/monitoring/prometheus"
	apihttp "github.com/turtacn/cnsipo-attrs/internal/interfaces/http"
	"github.com/turtacn/cnsipo-attrs/internal/interfaces/http/handlers"
)

// ServeOptions holds the flags of the serve command.
type ServeOptions struct {
	Port    int
	LocFile string
	CheckDB bool
}

// NewServeCmd creates the serve command.
func NewServeCmd() *cobra.Command {
	opts := &ServeOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the classifiers over HTTP",
		Long: "Start the classification API. Endpoints live under /api/v1; /healthz,\n" +
			"/readyz and /metrics are served at the root.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cliCtx, err := GetCLIContext(cmd)
			if err != nil {
				return err
			}
			srv, cleanup, err := buildServer(cmd.Context(), cliCtx, opts)
			if err != nil {
				return err
			}
			defer cleanup()
			return runServer(cmd.Context(), srv)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Port, "port", 0, "listen port; overrides server.port")
	f.StringVarP(&opts.LocFile, "loc-file", "l", "", "country/state/city list (default: built-in)")
	f.BoolVar(&opts.CheckDB, "check-db", false, "include database connectivity in /readyz")
	return cmd
}

// buildServer wires the parser, metrics and handlers into a server. The
// returned cleanup releases the database pool, if any.
func buildServer(ctx context.Context, cliCtx *CLIContext, opts *ServeOptions) (*apihttp.Server, func(), error) {
	cfg := *cliCtx.Config
	if opts.Port > 0 {
		cfg.Server.Port = opts.Port
	}
	logger := cliCtx.Logger
	cleanup := func() {}

	parser, err := cliCtx.NewParser(opts.LocFile)
	if err != nil {
		return nil, cleanup, err
	}

	collector, err := prometheus.NewMetricsCollector(prometheus.CollectorConfig{
		Namespace:            cfg.Metrics.Namespace,
		Subsystem:            cfg.Metrics.Subsystem,
		EnableProcessMetrics: true,
		EnableGoMetrics:      true,
	}, logger)
	if err != nil {
		return nil, cleanup, err
	}
	metrics := prometheus.NewAppMetrics(collector)
	prometheus.RecordRefDataSizes(metrics, parser.Tables().Stats().Map())

	var checkers []handlers.HealthChecker
	if opts.CheckDB {
		pool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { postgres.Close(pool) }
		checkers = append(checkers, handlers.NewCheckerFunc("database", func(ctx context.Context) error {
			return postgres.HealthCheck(ctx, pool)
		}))
	}

	gin.SetMode(cfg.Server.Mode)
	router := apihttp.NewRouter(apihttp.RouterConfig{
		ClassifyHandler: handlers.NewClassifyHandler(parser, metrics),
		HealthHandler:   handlers.NewHealthHandler(Version, parser.Tables(), checkers...),
		Logger:          logger.Named("api"),
		Metrics:         metrics,
		MetricsHandler:  collector.Handler(),
	})
	return apihttp.NewServer(cfg.Server, router, logger), cleanup, nil
}

// runServer serves until ctx is cancelled, then shuts down gracefully.
func runServer(ctx context.Context, srv *apihttp.Server) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logging.Default().Info("shutdown signal received")
		if err := srv.Stop(context.Background()); err != nil {
			return err
		}
		return <-errCh
	}
}

//Personal.AI order the ending
