package reader

import (
	"context"
	"database/sql/driver"
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/sqlvault/pkg/writer"
)

type capturedWriter struct {
	schema   *arrow.Schema
	batches  []arrow.Record
	finished bool
	aborted  bool
}

func (w *capturedWriter) Setup(schema *arrow.Schema) error {
	w.schema = schema
	return nil
}
func (w *capturedWriter) Write(batch arrow.Record) error {
	w.batches = append(w.batches, batch)
	return nil
}
func (w *capturedWriter) Finish() error { w.finished = true; return nil }
func (w *capturedWriter) Abort() error  { w.aborted = true; return nil }

type capturedFactory struct{ w *capturedWriter }

func (f capturedFactory) Create() writer.Writer { return f.w }

func TestReadMinimalTableOneBatch(t *testing.T) {
	source := &fakeTableSource{tables: map[string]*fakeRows{
		"accounts": {
			cols: []fakeColumn{
				{name: "id", typeName: "INT UNSIGNED", nullable: false},
				{name: "name", typeName: "VARCHAR", nullable: true},
			},
			rows: [][]driver.Value{
				{int64(1), []byte("a")},
				{int64(2), nil},
				{int64(3), []byte("c")},
			},
		},
	}}
	db := newFakeDB(t, source)

	w := &capturedWriter{}
	r := &MySQLReader{DB: db, Table: "accounts", ChunkSize: 1000, Logger: zerolog.Nop()}
	err := r.Read(context.Background(), capturedFactory{w})
	require.NoError(t, err)

	assert.True(t, w.finished)
	assert.False(t, w.aborted)
	require.Len(t, w.batches, 1)
	assert.Equal(t, int64(3), w.batches[0].NumRows())

	assert.Equal(t, "id", w.schema.Field(0).Name)
	assert.Equal(t, arrow.PrimitiveTypes.Uint64, w.schema.Field(0).Type)
	assert.False(t, w.schema.Field(0).Nullable)
	assert.Equal(t, arrow.BinaryTypes.String, w.schema.Field(1).Type)
	assert.True(t, w.schema.Field(1).Nullable)
}

func TestReadChunkingBoundary(t *testing.T) {
	const total = 2500
	rows := make([][]driver.Value, total)
	for i := range rows {
		rows[i] = []driver.Value{int64(i)}
	}
	source := &fakeTableSource{tables: map[string]*fakeRows{
		"events": {
			cols: []fakeColumn{{name: "id", typeName: "BIGINT", nullable: false}},
			rows: rows,
		},
	}}
	db := newFakeDB(t, source)

	w := &capturedWriter{}
	r := &MySQLReader{DB: db, Table: "events", ChunkSize: 1000, Logger: zerolog.Nop()}
	err := r.Read(context.Background(), capturedFactory{w})
	require.NoError(t, err)

	require.Len(t, w.batches, 3)
	assert.Equal(t, int64(1000), w.batches[0].NumRows())
	assert.Equal(t, int64(1000), w.batches[1].NumRows())
	assert.Equal(t, int64(500), w.batches[2].NumRows())
}

func TestReadEmptyTableStillFinishes(t *testing.T) {
	source := &fakeTableSource{tables: map[string]*fakeRows{
		"empty": {
			cols: []fakeColumn{{name: "id", typeName: "INT", nullable: false}},
			rows: nil,
		},
	}}
	db := newFakeDB(t, source)

	w := &capturedWriter{}
	r := &MySQLReader{DB: db, Table: "empty", ChunkSize: 1000, Logger: zerolog.Nop()}
	err := r.Read(context.Background(), capturedFactory{w})
	require.NoError(t, err)
	assert.True(t, w.finished)
	assert.Empty(t, w.batches)
}

func TestReadUnsupportedTypeAbortsBeforeWriterStarts(t *testing.T) {
	source := &fakeTableSource{tables: map[string]*fakeRows{
		"weird": {
			cols: []fakeColumn{{name: "flags", typeName: "BIT", nullable: false}},
			rows: [][]driver.Value{{int64(1)}},
		},
	}}
	db := newFakeDB(t, source)

	w := &capturedWriter{}
	r := &MySQLReader{DB: db, Table: "weird", ChunkSize: 1000, Logger: zerolog.Nop()}
	err := r.Read(context.Background(), capturedFactory{w})
	require.Error(t, err)
	assert.Nil(t, w.schema)
	assert.False(t, w.finished)
	assert.False(t, w.aborted)
}
