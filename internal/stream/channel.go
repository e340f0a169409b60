package stream

import (
	"sync"

	"uistudio/internal/domain/entity"
)

// Channel is a buffered Sink owned by a single run. The producer calls Send and
// Close from one goroutine; the consumer reads Stages and may call Cancel at any
// time to make further sends fail with ErrClosed.
type Channel struct {
	ch   chan entity.PipelineStage
	done chan struct{}

	mu      sync.Mutex
	closed  bool
	hasLast bool
	last    entity.PipelineStage

	cancelOnce sync.Once
}

var _ Sink = (*Channel)(nil)

func NewChannel(buffer int) *Channel {
	if buffer < 0 {
		buffer = 0
	}
	return &Channel{
		ch:   make(chan entity.PipelineStage, buffer),
		done: make(chan struct{}),
	}
}

func (c *Channel) Send(stage entity.PipelineStage) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.hasLast && !Ordered(c.last, stage) {
		c.mu.Unlock()
		return ErrOutOfOrder
	}
	c.last, c.hasLast = stage, true
	c.mu.Unlock()

	select {
	case <-c.done:
		return ErrClosed
	default:
	}
	select {
	case c.ch <- stage:
		return nil
	case <-c.done:
		return ErrClosed
	}
}

// Stages is the consumer side of the channel. It is closed by Close.
func (c *Channel) Stages() <-chan entity.PipelineStage { return c.ch }

// Close ends the stream. Only the producer may call it.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.ch)
	}
}

// Cancel tells the producer the consumer has left.
func (c *Channel) Cancel() {
	c.cancelOnce.Do(func() { close(c.done) })
}

// Done is closed once Cancel has been called.
func (c *Channel) Done() <-chan struct{} { return c.done }
