// partsupport-loader creates the search indexes and loads part catalogs and repair guides.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/partsupport/internal/app"
	"github.com/kailas-cloud/partsupport/internal/config"
	"github.com/kailas-cloud/partsupport/internal/ingest"
	logpkg "github.com/kailas-cloud/partsupport/internal/logger"
	"github.com/kailas-cloud/partsupport/internal/version"
)

// loaderFlags are shared by every subcommand.
type loaderFlags struct {
	env         string
	workers     int
	batchSize   int
	metricsPort int
}

func main() {
	_ = godotenv.Load()

	var flags loaderFlags
	root := &cobra.Command{
		Use:           "partsupport-loader",
		Short:         "Create indexes and load catalogs into the parts and repairs collections",
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.env, "env", config.GetEnv(), "config environment (local, dev, prod)")
	root.PersistentFlags().IntVar(&flags.workers, "workers", 4, "concurrent batch writers")
	root.PersistentFlags().IntVar(&flags.batchSize, "batch-size", 50, "records per embed+write batch")
	root.PersistentFlags().IntVar(&flags.metricsPort, "metrics-port", 0, "serve Prometheus metrics on this port (0 = off)")

	root.AddCommand(indexesCMD(&flags), partsCMD(&flags), repairsCMD(&flags))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// session is the state one subcommand runs with.
type session struct {
	app     *app.App
	logger  *zap.Logger
	metrics *ingest.Metrics
	opts    ingest.Options
	stop    func()
}

// openSession loads config, connects and starts the optional metrics server.
// Indexes are not required to exist: the loader is what creates them.
func openSession(ctx context.Context, flags *loaderFlags) (*session, error) {
	cfg, err := config.Load(flags.env)
	if err != nil {
		return nil, err
	}
	notRequired := false
	cfg.Index.RequireOnStart = &notRequired

	logger, err := logpkg.NewLogger(flags.env, logpkg.Options{
		Level:    cfg.Logging.Level,
		Encoding: cfg.Logging.Encoding,
	})
	if err != nil {
		return nil, fmt.Errorf("create logger: %w", err)
	}

	a, err := app.Init(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	m := ingest.NewMetrics(reg)

	var srv *http.Server
	if flags.metricsPort > 0 {
		srv = serveMetrics(flags.metricsPort, reg, logger)
	}

	return &session{
		app:     a,
		logger:  logger,
		metrics: m,
		opts:    ingest.Options{Workers: flags.workers, BatchSize: flags.batchSize, Metrics: m},
		stop: func() {
			if srv != nil {
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}
			a.Close()
			_ = logger.Sync()
		},
	}, nil
}

// signalContext cancels on SIGINT/SIGTERM so batches in flight can finish.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// serveMetrics exposes the loader registry together with the embedding metrics.
func serveMetrics(port int, reg *prometheus.Registry, logger *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		prometheus.Gatherers{reg, prometheus.DefaultGatherer},
		promhttp.HandlerOpts{},
	))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Metrics server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server error", zap.Error(err))
		}
	}()

	return srv
}

// report logs a run summary and turns partial failure into an error.
func report(logger *zap.Logger, collection string, res ingest.Result) error {
	logger.Info("Load complete",
		zap.String("collection", collection),
		zap.String("run_id", res.RunID),
		zap.Int64("processed", res.Processed),
		zap.Int64("failed", res.Failed),
		zap.Duration("duration", res.Duration),
	)
	if res.Failed > 0 {
		return fmt.Errorf("%s: %d of %d records failed", collection, res.Failed, res.Failed+res.Processed)
	}
	return nil
}
