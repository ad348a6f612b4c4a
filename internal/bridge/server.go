package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"sessionbridge/internal/host"
	"sessionbridge/internal/logging"
)

// Server wires the bridge together and owns its lifecycle: bind the
// loopback listener, attach host subscriptions, serve peers, and tear it
// all down again. Stop is idempotent.
type Server struct {
	cfg Config
	h   host.Host
	log logging.Logger

	reg     *registry
	bc      *broadcaster
	arb     *arbiter
	adapter *busAdapter
	router  *inputRouter

	upgrader websocket.Upgrader

	mu      sync.Mutex
	ln      net.Listener
	httpSrv *http.Server
	started bool
	stopped bool
}

// NewServer assembles a bridge for the given host. Nothing is bound until
// Start.
func NewServer(cfg Config, h host.Host, log logging.Logger) *Server {
	cfg = cfg.withDefaults()
	s := &Server{
		cfg: cfg,
		h:   h,
		log: log,
		reg: newRegistry(),
		upgrader: websocket.Upgrader{
			// Loopback-only listener; origin checks add nothing here.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.bc = newBroadcaster(h.SessionID(), s.reg, log)
	s.arb = newArbiter(h, log)
	s.adapter = newBusAdapter(h, s.bc, s.arb, log)
	s.router = newInputRouter(h, s.arb, log)
	return s
}

// Start binds 127.0.0.1:port and begins serving. A bind failure
// propagates; a host-subscription failure is logged and the server keeps
// running with whatever subscriptions succeeded.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return errors.New("server already started")
	}

	ln, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", s.cfg.Port))
	if err != nil {
		return fmt.Errorf("bind bridge listener: %w", err)
	}
	s.ln = ln

	if err := s.adapter.start(); err != nil {
		s.log.Error("host subscriptions incomplete", "error", err)
	}

	s.httpSrv = &http.Server{Handler: s.handler()}
	go func() {
		if err := s.httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, net.ErrClosed) {
			s.log.Error("bridge http server", "error", err)
		}
	}()

	s.started = true
	s.log.Info("session bridge listening", "addr", ln.Addr().String(), "session", s.h.SessionID())
	return nil
}

// Addr returns the bound listen address, or empty before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Broadcast injects a canonical event directly into the fan-out. The
// session id is stamped on the way out.
func (s *Server) Broadcast(ev Event) {
	s.bc.broadcast(ev)
}

// PeerCount reports the number of registered peers.
func (s *Server) PeerCount() int {
	return s.reg.len()
}

// Stop shuts the bridge down: stop accepting, detach from the host, close
// every peer queue, flush best-effort within ctx, then close transports
// and the HTTP server. Safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started || s.stopped {
		s.mu.Unlock()
		return nil
	}
	s.stopped = true
	ln := s.ln
	httpSrv := s.httpSrv
	s.mu.Unlock()

	// No new connections, no new events.
	_ = ln.Close()
	s.adapter.stop()
	s.arb.clear()

	peers := s.reg.snapshot()
	for _, p := range peers {
		p.queue.close()
	}
	for _, p := range peers {
		select {
		case <-p.closed():
		case <-ctx.Done():
		}
		p.close()
	}

	err := httpSrv.Close()
	s.log.Info("session bridge stopped")
	return err
}
