// Package batchbackup fans a set of table backups out across
// goroutines with fail-fast cancellation: the first table to fail
// cancels every sibling still running (spec.md §4.7).
package batchbackup

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/TFMV/sqlvault/internal/metrics"
	"github.com/TFMV/sqlvault/internal/xerrors"
	"github.com/TFMV/sqlvault/pkg/reader"
	"github.com/TFMV/sqlvault/pkg/tablebackup"
)

// ReaderFactory builds the Reader used for one table's backup. Tests
// inject a fake; production code leaves this nil and gets a
// *reader.MySQLReader bound to opts.Pool.
type ReaderFactory func(table string) tablebackup.Reader

// Options configures one BatchBackup run.
type Options struct {
	Pool          *sql.DB
	RootDir       string
	Tables        []string
	ChunkSize     int
	Recorder      *metrics.Recorder
	Logger        zerolog.Logger
	ReaderFactory ReaderFactory
}

// Execute runs one TableBackup per table concurrently via
// errgroup.WithContext, the idiomatic Go analogue of a JoinSet with
// abort_all on first error: the group's derived context is cancelled
// the moment any table returns an error, and errgroup.Wait returns
// that first error, wrapped as CodeUnrecoverable only if the failure
// came from this layer (a panic) rather than the table's own pipeline.
func Execute(ctx context.Context, opts Options) error {
	g, gctx := errgroup.WithContext(ctx)

	newReader := opts.ReaderFactory
	if newReader == nil {
		newReader = func(table string) tablebackup.Reader {
			return &reader.MySQLReader{
				DB:        opts.Pool,
				Table:     table,
				ChunkSize: opts.ChunkSize,
				Recorder:  opts.Recorder,
				Logger:    opts.Logger,
			}
		}
	}

	for _, table := range opts.Tables {
		table := table
		g.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					err = xerrors.Wrapf(nil, xerrors.CodeUnrecoverable, "table %s: panic during backup: %v", table, p)
				}
			}()

			tb := tablebackup.New(table, opts.RootDir, newReader(table))
			if err := tb.Execute(gctx); err != nil {
				return fmt.Errorf("table %s: %w", table, err)
			}
			return nil
		})
	}

	return g.Wait()
}
