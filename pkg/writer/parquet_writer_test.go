package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParquetWriterPublishesAtomically(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "accounts.parquet")
	temp := filepath.Join(dir, "accounts.temp")

	w := NewParquetWriter(final)
	require.NoError(t, w.Setup(testSchema()))
	_, err := os.Stat(temp)
	require.NoError(t, err)

	require.NoError(t, w.Write(testBatch(2)))
	require.NoError(t, w.Finish())

	_, err = os.Stat(final)
	assert.NoError(t, err)
	_, err = os.Stat(temp)
	assert.True(t, os.IsNotExist(err))
}

func TestParquetWriterAbortRemovesArtifacts(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "transactions.parquet")
	temp := filepath.Join(dir, "transactions.temp")

	w := NewParquetWriter(final)
	require.NoError(t, w.Setup(testSchema()))
	require.NoError(t, w.Write(testBatch(1)))
	require.NoError(t, w.Abort())

	_, err := os.Stat(temp)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(final)
	assert.True(t, os.IsNotExist(err))
}

func TestParquetWriterAbortIsIdempotentWithoutSetup(t *testing.T) {
	dir := t.TempDir()
	final := filepath.Join(dir, "never_set_up.parquet")

	w := NewParquetWriter(final)
	require.NoError(t, w.Abort())
	require.NoError(t, w.Abort())
}
