// Package tablebackup composes one table's reader and writer pipeline
// and owns the one piece of cleanup that outlives either: removing a
// partial artifact after a failed or cancelled run (spec.md §4.6).
package tablebackup

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/TFMV/sqlvault/internal/xerrors"
	"github.com/TFMV/sqlvault/pkg/writer"
)

// Paths are the two filesystem artifacts one table's backup owns
// exclusively. Temp is transient; Final exists only after a successful
// Execute.
type Paths struct {
	Final string
	Temp  string
}

// NewPaths derives Temp from Final by replacing its extension with
// ".temp" (e.g. "accounts.parquet" -> "accounts.temp"), matching
// spec.md §3's TableBackupArtifacts definition exactly.
func NewPaths(final string) Paths {
	ext := filepath.Ext(final)
	temp := strings.TrimSuffix(final, ext) + ".temp"
	return Paths{Final: final, Temp: temp}
}

// Reader is the subset of MySQLReader's contract TableBackup depends
// on, kept narrow so tests can supply a fake.
type Reader interface {
	Read(ctx context.Context, factory writer.Factory) error
}

// TableBackup runs one table's reader against a writer factory bound
// to this table's paths.
type TableBackup struct {
	Table   string
	Paths   Paths
	Reader  Reader
	Factory writer.Factory
}

// New builds a TableBackup whose final path is rootDir/<table>.parquet
// and whose writer factory is the concrete ParquetWriter.
func New(table, rootDir string, rdr Reader) *TableBackup {
	final := filepath.Join(rootDir, table+".parquet")
	return &TableBackup{
		Table:   table,
		Paths:   NewPaths(final),
		Reader:  rdr,
		Factory: writer.ParquetWriterFactory{FinalPath: final},
	}
}

// Execute delegates to Reader.Read. On error it aborts (removing both
// artifacts, tolerating absence) and returns the original error
// unchanged.
func (t *TableBackup) Execute(ctx context.Context) error {
	if err := t.Reader.Read(ctx, t.Factory); err != nil {
		t.Abort()
		return err
	}
	return nil
}

// Abort removes Temp then Final, tolerating either being absent.
// Idempotent: safe to call repeatedly. Called after a successful
// Execute, it removes the published Final file.
func (t *TableBackup) Abort() error {
	if err := removeIfExists(t.Paths.Temp); err != nil {
		return err
	}
	return removeIfExists(t.Paths.Final)
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return xerrors.Wrapf(err, xerrors.CodeWriteError, "removing %s", path)
	}
	return nil
}
