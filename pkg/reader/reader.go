// Package reader implements the producer side of the table backup
// pipeline: discover a table's schema, stream its rows in chunk-sized
// batches, and hand each batch to a writer pipeline over a bounded
// channel (spec.md §4.4).
package reader

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/rs/zerolog"

	"github.com/TFMV/sqlvault/internal/metrics"
	"github.com/TFMV/sqlvault/internal/xerrors"
	"github.com/TFMV/sqlvault/pkg/batchrecord"
	"github.com/TFMV/sqlvault/pkg/columns"
	"github.com/TFMV/sqlvault/pkg/schema"
	"github.com/TFMV/sqlvault/pkg/writer"
)

// MySQLReader streams one table's rows into chunk-sized Arrow record
// batches against a *sql.DB connection pool.
type MySQLReader struct {
	DB        *sql.DB
	Table     string
	ChunkSize int
	Recorder  *metrics.Recorder
	Logger    zerolog.Logger
}

// Read drives writer_factory through a full table backup: discover the
// schema, start the writer pipeline, stream rows into batches, and wait
// for the writer to finish. Table names are trusted configuration
// input (internal/config trims and de-duplicates the TABLES list but
// does not otherwise check the names), never end-user
// input, so they're interpolated directly into the identifier position
// with backtick quoting rather than passed as a bound parameter (MySQL
// doesn't allow identifiers as bind parameters).
func (r *MySQLReader) Read(ctx context.Context, factory writer.Factory) error {
	rows, err := r.DB.QueryContext(ctx, fmt.Sprintf("SELECT * FROM `%s`", r.Table))
	if err != nil {
		return xerrors.Wrapf(err, xerrors.CodeReadError, "querying table %s", r.Table)
	}
	defer rows.Close()

	cols, err := rows.ColumnTypes()
	if err != nil {
		return xerrors.Wrap(err, xerrors.CodeReadError, "reading column metadata")
	}

	metas := make([]schema.SourceColumnMeta, len(cols))
	for i, ct := range cols {
		metas[i] = deriveMeta(ct)
	}
	sch, descriptors, err := schema.Build(metas)
	if err != nil {
		// UnsupportedType: abort with no file side effects, the writer
		// pipeline is never started.
		return err
	}

	capacity := 2 * r.ChunkSize
	if capacity < 1 {
		capacity = 1
	}
	msgs := make(chan writer.Message, capacity)

	pipeline := &writer.Pipeline{Table: r.Table, Factory: factory, Recorder: r.Recorder, Logger: r.Logger}
	writerDone := make(chan error, 1)
	go func() { writerDone <- pipeline.Run(sch, msgs) }()

	r.Logger.Debug().Str("table", r.Table).Int("columns", len(descriptors)).Msg("starting table read")

	mem := memory.NewGoAllocator()
	dests := make([]any, len(descriptors))
	for i, d := range descriptors {
		dests[i] = scanDest(d)
	}

	readErr := r.readLoop(ctx, rows, sch, descriptors, dests, mem, msgs)
	close(msgs)
	writerErr := <-writerDone

	if readErr != nil {
		return readErr
	}
	return writerErr
}

func (r *MySQLReader) readLoop(
	ctx context.Context,
	rows *sql.Rows,
	sch *arrow.Schema,
	descriptors []schema.ColumnDescriptor,
	dests []any,
	mem memory.Allocator,
	msgs chan<- writer.Message,
) error {
	for {
		holders := make([]*columns.NullableHolder, len(descriptors))
		for i, d := range descriptors {
			b, err := columns.New(mem, d)
			if err != nil {
				msgs <- writer.ErrorMsg(err)
				return err
			}
			holders[i] = &columns.NullableHolder{Name: d.Name, Nullable: d.Nullable, Builder: b}
		}

		rowsAppended := 0
		for r.ChunkSize <= 0 || rowsAppended < r.ChunkSize {
			if !rows.Next() {
				break
			}
			if err := rows.Scan(dests...); err != nil {
				werr := xerrors.Wrap(err, xerrors.CodeReadError, "scanning row")
				msgs <- writer.ErrorMsg(werr)
				return werr
			}
			for i, d := range descriptors {
				val, err := cellValue(d, dests[i])
				if err != nil {
					msgs <- writer.ErrorMsg(err)
					return err
				}
				if val == nil {
					val = columns.NullValue
				}
				if err := holders[i].Push(val); err != nil {
					werr := xerrors.Wrapf(err, xerrors.CodeReadError, "column %s", d.Name)
					msgs <- writer.ErrorMsg(werr)
					return werr
				}
			}
			rowsAppended++
		}

		if err := rows.Err(); err != nil {
			werr := xerrors.Wrap(err, xerrors.CodeReadError, "row stream error")
			msgs <- writer.ErrorMsg(werr)
			return werr
		}

		if rowsAppended == 0 {
			msgs <- writer.Finish()
			return nil
		}

		arrays := make([]arrow.Array, len(holders))
		for i, h := range holders {
			arrays[i] = h.Builder.Finish()
		}
		batch, err := batchrecord.Assemble(sch, arrays)
		if err != nil {
			msgs <- writer.ErrorMsg(err)
			return err
		}

		select {
		case msgs <- writer.Chunk(batch):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
