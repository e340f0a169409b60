package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"uistudio/internal/domain/entity"
)

// EndMarker is the payload of the final SSE record.
const EndMarker = "[DONE]"

// Encoder writes stages to a transport, followed by one end-of-stream marker.
type Encoder interface {
	Encode(stage entity.PipelineStage) error
	End() error
}

// SSEWriter writes stages as server-sent events: one "stage" event per record
// and a final "end" event carrying EndMarker.
type SSEWriter struct {
	w       io.Writer
	flusher http.Flusher
}

// NewSSEWriter sets the event-stream headers and writes the status line.
func NewSSEWriter(w http.ResponseWriter) *SSEWriter {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher, _ := w.(http.Flusher)
	return &SSEWriter{w: w, flusher: flusher}
}

func (s *SSEWriter) Encode(stage entity.PipelineStage) error {
	data, err := json.Marshal(stage)
	if err != nil {
		return fmt.Errorf("marshal stage: %w", err)
	}
	return s.write("stage", data)
}

func (s *SSEWriter) End() error {
	return s.write("end", []byte(EndMarker))
}

func (s *SSEWriter) write(event string, data []byte) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return fmt.Errorf("write %s event: %w", event, err)
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Frame is one WebSocket message of a stage stream.
type Frame struct {
	Type  string                `json:"type"` // stage, end, error
	Stage *entity.PipelineStage `json:"stage,omitempty"`
	Error string                `json:"error,omitempty"`
}

const wsWriteWait = 10 * time.Second

// WSWriter writes stages as JSON frames on a WebSocket connection.
type WSWriter struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func NewWSWriter(conn *websocket.Conn) *WSWriter {
	return &WSWriter{conn: conn}
}

func (w *WSWriter) Encode(stage entity.PipelineStage) error {
	return w.WriteFrame(Frame{Type: "stage", Stage: &stage})
}

func (w *WSWriter) End() error {
	return w.WriteFrame(Frame{Type: "end"})
}

// WriteFrame sends one frame; it is safe for concurrent use.
func (w *WSWriter) WriteFrame(f Frame) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := w.conn.WriteJSON(f); err != nil {
		return fmt.Errorf("write %s frame: %w", f.Type, err)
	}
	return nil
}

// Forward copies stages to enc until the channel is closed, then writes the end
// marker. It returns early when ctx is done or the transport fails.
func Forward(ctx context.Context, stages <-chan entity.PipelineStage, enc Encoder) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case stage, ok := <-stages:
			if !ok {
				return enc.End()
			}
			if err := enc.Encode(stage); err != nil {
				return err
			}
		}
	}
}
