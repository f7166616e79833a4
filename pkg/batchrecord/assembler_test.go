package batchrecord

import (
	"testing"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/sqlvault/internal/xerrors"
)

func testSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "id", Type: arrow.PrimitiveTypes.Int64},
		{Name: "name", Type: arrow.BinaryTypes.String, Nullable: true},
	}, nil)
}

func buildArrays(t *testing.T, n int) []arrow.Array {
	t.Helper()
	mem := memory.NewGoAllocator()

	idB := array.NewInt64Builder(mem)
	nameB := array.NewStringBuilder(mem)
	for i := 0; i < n; i++ {
		idB.Append(int64(i))
		nameB.Append("row")
	}
	id := idB.NewArray()
	idB.Release()
	name := nameB.NewArray()
	nameB.Release()
	return []arrow.Array{id, name}
}

func TestAssembleHappyPath(t *testing.T) {
	sch := testSchema()
	arrays := buildArrays(t, 3)

	rec, err := Assemble(sch, arrays)
	require.NoError(t, err)
	assert.Equal(t, int64(3), rec.NumRows())
	assert.Equal(t, int64(2), rec.NumCols())
}

func TestAssembleEmptyBatch(t *testing.T) {
	sch := testSchema()
	arrays := buildArrays(t, 0)

	rec, err := Assemble(sch, arrays)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rec.NumRows())
}

func TestAssembleRejectsWrongArrayCount(t *testing.T) {
	sch := testSchema()
	arrays := buildArrays(t, 2)

	_, err := Assemble(sch, arrays[:1])
	require.Error(t, err)
	assert.True(t, xerrors.HasCode(err, xerrors.CodeBatchShapeMismatch))
}

func TestAssembleRejectsTypeMismatch(t *testing.T) {
	sch := testSchema()
	mem := memory.NewGoAllocator()

	idB := array.NewInt64Builder(mem)
	idB.Append(1)
	id := idB.NewArray()
	idB.Release()

	wrongB := array.NewInt64Builder(mem)
	wrongB.Append(2)
	wrong := wrongB.NewArray()
	wrongB.Release()

	_, err := Assemble(sch, []arrow.Array{id, wrong})
	require.Error(t, err)
	assert.True(t, xerrors.HasCode(err, xerrors.CodeBatchShapeMismatch))
}

func TestAssembleRejectsLengthMismatch(t *testing.T) {
	sch := testSchema()
	mem := memory.NewGoAllocator()

	idB := array.NewInt64Builder(mem)
	idB.Append(1)
	idB.Append(2)
	id := idB.NewArray()
	idB.Release()

	nameB := array.NewStringBuilder(mem)
	nameB.Append("only one")
	name := nameB.NewArray()
	nameB.Release()

	_, err := Assemble(sch, []arrow.Array{id, name})
	require.Error(t, err)
	assert.True(t, xerrors.HasCode(err, xerrors.CodeBatchShapeMismatch))
}
