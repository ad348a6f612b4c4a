package bridge

import (
	"sync"

	"github.com/google/uuid"

	"sessionbridge/internal/logging"
)

// TransportKind names the two peer transports.
type TransportKind string

const (
	TransportSocket TransportKind = "framed-socket"
	TransportSSE    TransportKind = "sse"
)

// peerTransport is the write side of one connection. writeFrame is only
// called from the peer's write worker.
type peerTransport interface {
	writeFrame(frame []byte) error
	close() error
}

// peer is one connected client: a bounded outbound queue drained by a
// single write worker. A peer is created on accept and torn down on close,
// write error, or shutdown; it never changes transports.
type peer struct {
	id    string
	kind  TransportKind
	queue *frameQueue
	tr    peerTransport
	log   logging.Logger

	// onClose unregisters the peer; set by the registry on add.
	onClose func(*peer)

	closeOnce sync.Once
	done      chan struct{}

	mu      sync.Mutex
	lastErr error

	lossyOnce sync.Once
}

func newPeer(kind TransportKind, tr peerTransport, queueCapacity int, log logging.Logger) *peer {
	return &peer{
		id:    uuid.NewString(),
		kind:  kind,
		queue: newFrameQueue(queueCapacity),
		tr:    tr,
		log:   log,
		done:  make(chan struct{}),
	}
}

// enqueue hands a serialized frame to the peer's queue. Never blocks.
func (p *peer) enqueue(frame []byte) {
	if p.queue.push(frame) {
		p.lossyOnce.Do(func() {
			p.log.Debug("peer queue full, dropping oldest frames", "peer", p.id, "transport", string(p.kind))
		})
	}
}

// writeLoop drains the queue onto the transport until the queue is closed
// or a write fails. It owns the transport teardown.
func (p *peer) writeLoop() {
	for {
		frame, ok := p.queue.pop()
		if !ok {
			break
		}
		if err := p.tr.writeFrame(frame); err != nil {
			p.mu.Lock()
			p.lastErr = err
			p.mu.Unlock()
			p.log.Debug("peer write failed", "peer", p.id, "error", err)
			break
		}
	}
	p.close()
}

// close tears the peer down: unregister, stop the queue, close the
// transport. Safe to call from any goroutine, any number of times.
func (p *peer) close() {
	p.closeOnce.Do(func() {
		if p.onClose != nil {
			p.onClose(p)
		}
		p.queue.close()
		_ = p.tr.close()
		close(p.done)
	})
}

// closed returns a channel that is closed once the peer is torn down.
func (p *peer) closed() <-chan struct{} { return p.done }

func (p *peer) lastError() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
