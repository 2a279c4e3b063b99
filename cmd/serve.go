package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spigell/resume-scorer/internal/knowledge"
	"github.com/spigell/resume-scorer/internal/logger"
	"github.com/spigell/resume-scorer/internal/metrics"
	"github.com/spigell/resume-scorer/internal/server"
	"github.com/spigell/resume-scorer/internal/tracing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the resume analysis HTTP API",
	Run: func(_ *cobra.Command, _ []string) {
		serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func serve() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-scorer server", zap.String("version", version))

	shutdown, err := tracing.Setup(ctx, config.Tracing, logger)
	if err != nil {
		logger.Fatal("setting up tracing", zap.Error(err))
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("flushing traces", zap.Error(err))
		}
	}()

	kb, err := knowledge.Load()
	if err != nil {
		logger.Fatal("loading keyword knowledgebase", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	rec := metrics.New(reg)

	p, err := newPipeline(ctx, config, kb, rec, logger)
	if err != nil {
		logger.Fatal("building the pipeline", zap.Error(err))
	}

	srv, err := server.New(config.Server, server.Deps{
		Analyzer:       p,
		Catalog:        kb,
		Metrics:        rec,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		Logger:         logger,
	})
	if err != nil {
		logger.Fatal("building the server", zap.Error(err))
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}

	logger.Info("server stopped")
}
