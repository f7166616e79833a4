// Package batchrecord groups a row of finished column arrays under a
// schema into an immutable arrow.Record, the unit the writer pipeline
// streams over its channel (spec.md §4.3).
package batchrecord

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"

	"github.com/TFMV/sqlvault/internal/xerrors"
)

// Assemble validates that arrays matches schema exactly — same field
// count, same per-field type, same length across every array — and
// builds the resulting record. Any mismatch is a programmer error in
// the caller (reader and schema always agree on shape), reported as
// CodeBatchShapeMismatch rather than panicking so it surfaces through
// the normal error-propagation path.
func Assemble(schema *arrow.Schema, arrays []arrow.Array) (arrow.Record, error) {
	if len(arrays) != schema.NumFields() {
		return nil, xerrors.Wrapf(nil, xerrors.CodeBatchShapeMismatch,
			"schema has %d fields but %d arrays were given", schema.NumFields(), len(arrays))
	}

	var rowCount int64 = -1
	for i, arr := range arrays {
		field := schema.Field(i)
		if !arrow.TypeEqual(arr.DataType(), field.Type) {
			return nil, xerrors.Wrapf(nil, xerrors.CodeBatchShapeMismatch,
				"column %d (%s): expected type %s, got %s", i, field.Name, field.Type, arr.DataType())
		}
		n := int64(arr.Len())
		if rowCount == -1 {
			rowCount = n
			continue
		}
		if n != rowCount {
			return nil, xerrors.Wrapf(nil, xerrors.CodeBatchShapeMismatch,
				"column %d (%s): length %d does not match preceding column length %d", i, field.Name, n, rowCount)
		}
	}
	if rowCount == -1 {
		rowCount = 0
	}

	return array.NewRecord(schema, arrays, rowCount), nil
}
