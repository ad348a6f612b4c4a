package bridge

import (
	"encoding/json"
	"io"
	"net/http"
)

// handler builds the route table. The stream-posting aliases all share one
// handler; only the task-scoped forms validate the task id.
func (s *Server) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /.well-known/agent-card.json", s.handleAgentCard)
	mux.HandleFunc("POST /tasks", s.handleCreateTask)
	mux.HandleFunc("POST /tasks/{taskId}/messages/stream", s.handleTaskStream)
	mux.HandleFunc("POST /tasks/{taskId}/messages", s.handleTaskStream)
	mux.HandleFunc("POST /v1/tasks/{taskId}/messages", s.handleTaskStream)
	mux.HandleFunc("POST /v1/message:stream", s.handleStream)
	mux.HandleFunc("POST /{$}", s.handleStream)
	mux.HandleFunc("GET /ws", s.handleSocket)
	mux.HandleFunc("/", s.handleNotFound)

	return mux
}

func (s *Server) handleAgentCard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, agentCard("http://"+s.Addr()))
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON payload"})
		return
	}
	if len(body) > 0 && !json.Valid(body) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON payload"})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": s.h.SessionID()})
}

// handleTaskStream is the task-scoped stream endpoint: unknown task ids
// get a 404, the current session's id behaves like handleStream.
func (s *Server) handleTaskStream(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("taskId") != s.h.SessionID() {
		s.handleNotFound(w, r)
		return
	}
	s.handleStream(w, r)
}

// handleStream opens an SSE peer: the request body is routed as an inbound
// message and the response stays open, streaming events, until the client
// disconnects or the bridge shuts down.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "streaming unsupported"})
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || (len(body) > 0 && !json.Valid(body)) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid JSON payload"})
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	// Register before the headers go out so a client that has seen the
	// response is already part of the fan-out.
	p := newPeer(TransportSSE, &sseTransport{w: w, flusher: flusher}, s.cfg.QueueCapacity, s.log)
	s.reg.add(p)
	s.log.Debug("sse peer connected", "peer", p.id)

	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	if len(body) > 0 {
		s.router.handleRaw(body, p.id)
	}

	go func() {
		select {
		case <-r.Context().Done():
			p.close()
		case <-p.closed():
		}
	}()

	// The write worker runs on the handler goroutine; returning ends the
	// response stream.
	p.writeLoop()
	s.log.Debug("sse peer disconnected", "peer", p.id)
}

// handleSocket upgrades to the framed-socket transport and pumps inbound
// frames through the router until the peer goes away.
func (s *Server) handleSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	p := newPeer(TransportSocket, &wsTransport{conn: conn}, s.cfg.QueueCapacity, s.log)
	s.reg.add(p)
	s.log.Debug("socket peer connected", "peer", p.id)

	go p.writeLoop()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			break
		}
		s.router.handleRaw(msg, p.id)
	}
	p.close()
	s.log.Debug("socket peer disconnected", "peer", p.id)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Not Found"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
