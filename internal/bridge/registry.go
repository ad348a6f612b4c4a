package bridge

import "sync"

// registry is the live peer set. Producers (broadcaster) and consumers
// (accept paths, close callbacks) run concurrently; iteration works on a
// snapshot so unregistration during a broadcast is safe.
type registry struct {
	mu    sync.RWMutex
	peers map[string]*peer
}

func newRegistry() *registry {
	return &registry{peers: make(map[string]*peer)}
}

// add admits a peer whose transport is already open and wires its close
// callback to unregister itself.
func (r *registry) add(p *peer) string {
	p.onClose = func(pp *peer) { r.remove(pp.id) }
	r.mu.Lock()
	r.peers[p.id] = p
	r.mu.Unlock()
	return p.id
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	delete(r.peers, id)
	r.mu.Unlock()
}

// snapshot returns the current peers; safe to iterate without the lock.
func (r *registry) snapshot() []*peer {
	r.mu.RLock()
	defer r.mu.RUnlock()
	peers := make([]*peer, 0, len(r.peers))
	for _, p := range r.peers {
		peers = append(peers, p)
	}
	return peers
}

func (r *registry) len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.peers)
}
