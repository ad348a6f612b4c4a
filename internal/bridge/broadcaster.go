package bridge

import "sessionbridge/internal/logging"

// broadcaster fans canonical events out to every registered peer. Events
// from one host stream arrive here serially, and each peer queue is FIFO,
// so per-source ordering survives the fan-out. No peer lock is held while
// serializing.
type broadcaster struct {
	sessionID string
	reg       *registry
	log       logging.Logger
}

func newBroadcaster(sessionID string, reg *registry, log logging.Logger) *broadcaster {
	return &broadcaster{sessionID: sessionID, reg: reg, log: log}
}

// broadcast stamps the session id on ev, encodes it once per transport
// kind, and enqueues it on every peer. Never blocks on a peer.
func (b *broadcaster) broadcast(ev Event) {
	ev.TaskID = b.sessionID

	socketFrame, err := EncodeSocketFrame(ev)
	if err != nil {
		b.log.Error("encode socket frame", "kind", string(ev.Kind), "error", err)
		return
	}
	sseFrame, err := EncodeSSEFrame(ev)
	if err != nil {
		b.log.Error("encode sse frame", "kind", string(ev.Kind), "error", err)
		return
	}

	for _, p := range b.reg.snapshot() {
		switch p.kind {
		case TransportSocket:
			p.enqueue(socketFrame)
		case TransportSSE:
			p.enqueue(sseFrame)
		}
	}
}
