// Command sqlvault backs up a set of MySQL tables to columnar Parquet
// files, one file per table, in parallel with fail-fast cancellation.
package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/TFMV/sqlvault/internal/config"
	"github.com/TFMV/sqlvault/internal/metrics"
	"github.com/TFMV/sqlvault/pkg/batchbackup"
)

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	if err := run(logger); err != nil {
		logger.Fatal().Err(err).Msg("backup run failed")
	}
}

func run(logger zerolog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pool, err := sql.Open("mysql", cfg.DatabaseDSN)
	if err != nil {
		return err
	}
	defer pool.Close()

	recorder := metrics.NewRecorder(prometheus.DefaultRegisterer)

	metricsSrv := &http.Server{Addr: ":9090", Handler: promhttp.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn().Err(err).Msg("metrics server stopped")
		}
	}()
	defer metricsSrv.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Strs("tables", cfg.Tables).Str("root_dir", cfg.RootDir).Msg("starting batch backup")

	err = batchbackup.Execute(ctx, batchbackup.Options{
		Pool:      pool,
		RootDir:   cfg.RootDir,
		Tables:    cfg.Tables,
		ChunkSize: cfg.ChunkSize,
		Recorder:  recorder,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	logger.Info().Msg("batch backup complete")
	return nil
}
