package writer

import "github.com/apache/arrow-go/v18/arrow"

// MessageKind tags a Message's payload variant.
type MessageKind int

const (
	// KindChunk carries one finished record batch.
	KindChunk MessageKind = iota
	// KindFinish signals a clean end of stream: zero or more Chunks
	// preceded it, nothing follows.
	KindFinish
	// KindError signals the reader hit a decode or stream error; the
	// error has already been surfaced on the reader side; the writer
	// only needs to abort its artifact.
	KindError
)

// Message is the channel payload the reader pipeline sends and the
// writer pipeline drains: a well-formed per-table stream is zero or
// more Chunk messages followed by exactly one terminal Finish or Error
// (spec.md §4.4/§4.5).
type Message struct {
	Kind  MessageKind
	Batch arrow.Record
	Err   error
}

// Chunk builds a Message carrying a record batch.
func Chunk(batch arrow.Record) Message { return Message{Kind: KindChunk, Batch: batch} }

// Finish builds the terminal success Message.
func Finish() Message { return Message{Kind: KindFinish} }

// ErrorMsg builds the terminal failure Message.
func ErrorMsg(err error) Message { return Message{Kind: KindError, Err: err} }
