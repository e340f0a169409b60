// Package stream carries pipeline stages from one run to its consumer.
package stream

import (
	"errors"

	"uistudio/internal/domain/entity"
)

var (
	// ErrClosed is returned by Send once the consumer has gone away.
	ErrClosed = errors.New("stream closed")
	// ErrOutOfOrder is returned for a stage that would move progress backwards.
	ErrOutOfOrder = errors.New("stage out of order")
)

// Sink receives the stages of one run in order.
type Sink interface {
	Send(stage entity.PipelineStage) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(stage entity.PipelineStage) error

func (f SinkFunc) Send(stage entity.PipelineStage) error { return f(stage) }

// Discard accepts and drops every stage.
var Discard Sink = SinkFunc(func(entity.PipelineStage) error { return nil })

// Ordered reports whether next may follow prev: neither its stage nor its
// progress may go backwards.
func Ordered(prev, next entity.PipelineStage) bool {
	return next.Stage.Rank() >= prev.Stage.Rank() && next.Progress >= prev.Progress
}
