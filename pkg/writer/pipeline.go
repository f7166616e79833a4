package writer

import (
	"github.com/apache/arrow-go/v18/arrow"
	"github.com/rs/zerolog"

	"github.com/TFMV/sqlvault/internal/metrics"
	"github.com/TFMV/sqlvault/internal/xerrors"
)

// Pipeline drains one table's message channel and drives a Writer
// through its state machine: Init -> Open(after setup) ->
// Open(after N writes) -> Published(after Finish) | Aborted(after
// Abort or premature channel close) (spec.md §4.5).
type Pipeline struct {
	Table    string
	Factory  Factory
	Recorder *metrics.Recorder
	Logger   zerolog.Logger
}

// Run materializes a writer from p.Factory, calls Setup(schema), then
// drains msgs until a terminal message is seen or the channel closes.
// It never observes ctx directly: cancellation reaches it only through
// the reader dropping its sender, which this loop sees as channel
// closure (spec.md §5, "Cancellation").
func (p *Pipeline) Run(schema *arrow.Schema, msgs <-chan Message) error {
	w := p.Factory.Create()
	if err := w.Setup(schema); err != nil {
		return xerrors.Wrap(err, xerrors.CodeWriteError, "writer setup failed")
	}

	for msg := range msgs {
		p.Recorder.ObserveChannelDepth(p.Table, len(msgs))

		switch msg.Kind {
		case KindChunk:
			if err := w.Write(msg.Batch); err != nil {
				p.Logger.Warn().Str("table", p.Table).Err(err).Msg("write failed, aborting artifact")
				p.Recorder.ObserveError(p.Table)
				if abortErr := w.Abort(); abortErr != nil {
					p.Logger.Warn().Str("table", p.Table).Err(abortErr).Msg("abort after write failure also failed")
				}
				return xerrors.Wrap(err, xerrors.CodeWriteError, "failed to write batch")
			}
			p.Recorder.ObserveBatch(p.Table, int(msg.Batch.NumRows()))

		case KindFinish:
			if err := w.Finish(); err != nil {
				p.Recorder.ObserveError(p.Table)
				return xerrors.Wrap(err, xerrors.CodeWriteError, "failed to finish and publish artifact")
			}
			p.Logger.Debug().Str("table", p.Table).Msg("table backup published")
			return nil

		case KindError:
			p.Recorder.ObserveError(p.Table)
			if err := w.Abort(); err != nil {
				return xerrors.Wrap(err, xerrors.CodeWriteError, "abort after upstream error also failed")
			}
			return nil
		}
	}

	// Channel closed without a terminal message: the reader dropped its
	// sender without signalling, which only happens on a panic or
	// cancellation upstream.
	p.Recorder.ObserveError(p.Table)
	if err := w.Abort(); err != nil {
		p.Logger.Warn().Str("table", p.Table).Err(err).Msg("abort after premature end of stream also failed")
	}
	return xerrors.New(xerrors.CodePrematureEndOfStream, "message channel closed before a terminal message was seen")
}
