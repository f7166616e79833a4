package reader

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeColumn describes one column of a fake in-memory result set the
// way go-sql-driver/mysql would report it over database/sql.
type fakeColumn struct {
	name     string
	typeName string
	nullable bool
}

type fakeRows struct {
	cols []fakeColumn
	rows [][]driver.Value
	pos  int
}

func (r *fakeRows) Columns() []string {
	names := make([]string, len(r.cols))
	for i, c := range r.cols {
		names[i] = c.name
	}
	return names
}

func (r *fakeRows) Close() error { return nil }

func (r *fakeRows) Next(dest []driver.Value) error {
	if r.pos >= len(r.rows) {
		return io.EOF
	}
	copy(dest, r.rows[r.pos])
	r.pos++
	return nil
}

func (r *fakeRows) ColumnTypeDatabaseTypeName(index int) string {
	return r.cols[index].typeName
}

func (r *fakeRows) ColumnTypeNullable(index int) (nullable, ok bool) {
	return r.cols[index].nullable, true
}

type fakeTableSource struct {
	mu     sync.Mutex
	tables map[string]*fakeRows
}

func (s *fakeTableSource) rowsFor(query string) (driver.Rows, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for table, rows := range s.tables {
		if strings.Contains(query, table) {
			return &fakeRows{cols: rows.cols, rows: rows.rows}, nil
		}
	}
	return nil, fmt.Errorf("fake driver: unknown table in query %q", query)
}

type fakeStmt struct {
	query  string
	source *fakeTableSource
}

func (s *fakeStmt) Close() error  { return nil }
func (s *fakeStmt) NumInput() int { return -1 }
func (s *fakeStmt) Exec(args []driver.Value) (driver.Result, error) {
	return nil, fmt.Errorf("fake driver: Exec not supported")
}
func (s *fakeStmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.source.rowsFor(s.query)
}

type fakeConn struct{ source *fakeTableSource }

func (c *fakeConn) Prepare(query string) (driver.Stmt, error) {
	return &fakeStmt{query: query, source: c.source}, nil
}
func (c *fakeConn) Close() error              { return nil }
func (c *fakeConn) Begin() (driver.Tx, error) { return nil, fmt.Errorf("fake driver: transactions not supported") }

func (c *fakeConn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	return c.source.rowsFor(query)
}

type fakeDriver struct{ source *fakeTableSource }

func (d *fakeDriver) Open(name string) (driver.Conn, error) {
	return &fakeConn{source: d.source}, nil
}

var fakeDriverSeq int32

// newFakeDB registers a fresh fake driver under a unique name (database/sql
// driver names are process-global) and opens a pool against it.
func newFakeDB(t *testing.T, source *fakeTableSource) *sql.DB {
	t.Helper()
	name := fmt.Sprintf("sqlvault_fake_%d", atomic.AddInt32(&fakeDriverSeq, 1))
	sql.Register(name, &fakeDriver{source: source})
	db, err := sql.Open(name, "fake")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}
