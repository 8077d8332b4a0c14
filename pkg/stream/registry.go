package stream

import (
	"sort"
	"sync"

	"garuda/pkg/core"
)

// Registry is the single source of truth for what should be
// subscribed, independent of connection state. It keeps set semantics
// over subscription identity and survives reconnects: the session
// replays the active set every time it reaches Ready.
type Registry struct {
	mu   sync.RWMutex
	subs map[string]core.Subscription
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{subs: make(map[string]core.Subscription)}
}

// Add records a desired subscription. Adding an already-present
// subscription is a no-op; the return value reports whether the set
// changed.
func (r *Registry) Add(sub core.Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sub.Key()
	if _, ok := r.subs[key]; ok {
		return false
	}
	r.subs[key] = sub
	return true
}

// Remove drops a subscription. The return value reports whether the
// set changed.
func (r *Registry) Remove(sub core.Subscription) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := sub.Key()
	if _, ok := r.subs[key]; !ok {
		return false
	}
	delete(r.subs, key)
	return true
}

// Contains reports whether the subscription is in the desired set.
func (r *Registry) Contains(sub core.Subscription) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.subs[sub.Key()]
	return ok
}

// ActiveFor returns the desired subscriptions matching the given
// session visibility, in a deterministic order.
func (r *Registry) ActiveFor(private bool) []core.Subscription {
	r.mu.RLock()
	defer r.mu.RUnlock()

	active := make([]core.Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		if sub.Private == private {
			active = append(active, sub)
		}
	}
	sort.Slice(active, func(i, j int) bool {
		return active[i].Key() < active[j].Key()
	})
	return active
}

// Len returns the number of desired subscriptions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs)
}
