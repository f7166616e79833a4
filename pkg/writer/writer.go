// Package writer defines the blocking-consumer side of the table backup
// pipeline: a Writer that turns a schema and a stream of record batches
// into a published columnar file, plus the state machine that drains a
// reader's channel and drives one (spec.md §4.5).
package writer

import (
	"github.com/apache/arrow-go/v18/arrow"
)

// Writer is a concrete columnar file writer. Setup must be called
// exactly once before any Write; Finish or Abort closes it out. Abort
// may be called more than once, and also without a prior Setup.
type Writer interface {
	// Setup opens a fresh file at the writer's temp path (truncating any
	// existing one) and initializes the columnar encoder for schema.
	Setup(schema *arrow.Schema) error
	// Write appends one record batch to the open file.
	Write(batch arrow.Record) error
	// Finish finalizes the encoder, closes the file, and atomically
	// publishes it (temp path renamed to the final path).
	Finish() error
	// Abort removes the writer's temp and final paths, if present,
	// tolerating their absence. Idempotent.
	Abort() error
}

// Factory constructs a fresh Writer bound to one table's output paths.
type Factory interface {
	Create() Writer
}
