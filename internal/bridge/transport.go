package bridge

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const writeDeadline = 10 * time.Second

var errTransportClosed = errors.New("transport closed")

// wsTransport writes null-terminated event frames as websocket messages.
type wsTransport struct {
	conn *websocket.Conn
}

func (t *wsTransport) writeFrame(frame []byte) error {
	_ = t.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
	return t.conn.WriteMessage(websocket.BinaryMessage, frame)
}

func (t *wsTransport) close() error {
	return t.conn.Close()
}

// sseTransport writes pre-framed SSE records to the response stream. The
// write worker is the only writer; closing is the handler returning.
type sseTransport struct {
	w       http.ResponseWriter
	flusher http.Flusher

	mu     sync.Mutex
	closed bool
}

func (t *sseTransport) writeFrame(frame []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return errTransportClosed
	}
	if _, err := t.w.Write(frame); err != nil {
		return err
	}
	t.flusher.Flush()
	return nil
}

func (t *sseTransport) close() error {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	return nil
}
