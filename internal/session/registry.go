package session

import "sync"

// Observer is one connected duplex-channel client. Send must not block:
// transports enqueue into a bounded per-connection queue and report an
// error when it is saturated, at which point the observer is treated as
// disconnected.
type Observer interface {
	ID() string
	Send(payload []byte) error
}

// Registry is the set of currently connected observers. Membership changes
// are safe to perform concurrently with an in-flight broadcast.
type Registry struct {
	mu        sync.Mutex
	observers map[string]Observer
	lastSeq   uint64
}

func NewRegistry() *Registry {
	return &Registry{observers: map[string]Observer{}}
}

func (r *Registry) Add(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers[o.ID()] = o
}

// Remove is a no-op if the observer is not registered.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observers, id)
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.observers)
}

// Broadcast fans payload out to every observer except excludeID. A snapshot
// older than one already broadcast is dropped, so observers never see state
// move backwards. Observers whose send fails are removed without aborting
// delivery to the rest. Sends are non-blocking enqueues, so holding the
// lock across the loop is cheap and keeps per-observer ordering strict.
func (r *Registry) Broadcast(seq uint64, payload []byte, excludeID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if seq < r.lastSeq {
		return
	}
	r.lastSeq = seq

	var failed []string
	for id, o := range r.observers {
		if id == excludeID {
			continue
		}
		if err := o.Send(payload); err != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		delete(r.observers, id)
	}
}
