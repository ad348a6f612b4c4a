package bridge

import (
	"sync"

	"sessionbridge/internal/host"
	"sessionbridge/internal/logging"
)

// arbiter enforces at-most-one resolution per tool confirmation. The first
// answer from any participant wins; everything after is a no-op. The map
// operation is a plain test-and-clear, and the bus publish happens outside
// the lock.
type arbiter struct {
	h   host.Host
	log logging.Logger

	mu      sync.Mutex
	pending map[string]struct{}
}

func newArbiter(h host.Host, log logging.Logger) *arbiter {
	return &arbiter{h: h, log: log, pending: make(map[string]struct{})}
}

// track records a confirmation request awaiting an answer.
func (a *arbiter) track(correlationID string) {
	a.mu.Lock()
	a.pending[correlationID] = struct{}{}
	a.mu.Unlock()
}

// resolve admits the first response for correlationID and publishes the
// decision to the host bus. Later responses report false and have no side
// effects. Any option other than proceed_once counts as a refusal.
func (a *arbiter) resolve(correlationID, optionID, source string) bool {
	a.mu.Lock()
	_, ok := a.pending[correlationID]
	if ok {
		delete(a.pending, correlationID)
	}
	a.mu.Unlock()

	if !ok {
		a.log.Debug("confirmation already resolved or unknown", "correlation_id", correlationID, "source", source)
		return false
	}

	confirmed := optionID == OptionProceedOnce
	err := a.h.PublishBus(host.TopicToolConfirmationResponse, host.ConfirmationResponse{
		CorrelationID: correlationID,
		Confirmed:     confirmed,
	})
	if err != nil {
		a.log.Error("publish confirmation response", "correlation_id", correlationID, "error", err)
	}
	return true
}

// discard clears a pending entry without publishing, for confirmations the
// host resolved on its own (terminal answer, tool cancel).
func (a *arbiter) discard(correlationID string) {
	a.mu.Lock()
	delete(a.pending, correlationID)
	a.mu.Unlock()
}

// clear drops every pending entry; called on shutdown.
func (a *arbiter) clear() {
	a.mu.Lock()
	a.pending = make(map[string]struct{})
	a.mu.Unlock()
}

func (a *arbiter) pendingCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.pending)
}
