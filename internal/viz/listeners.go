package viz

import (
	"fmt"

	"github.com/ziadkadry99/attnviz/internal/scene"
)

// ContainerTarget is the listener target naming the scroll container.
const ContainerTarget scene.ID = "container"

// Listener is one event subscription the host attaches on our behalf.
type Listener struct {
	ID     string   `json:"id"`
	Target scene.ID `json:"target"`
	Event  string   `json:"event"`
}

// Registry records every listener of a mount so teardown can remove them.
type Registry struct {
	next  int
	items []Listener
}

// Add registers a listener and returns it.
func (r *Registry) Add(target scene.ID, event string) Listener {
	r.next++
	l := Listener{ID: fmt.Sprintf("l%d", r.next), Target: target, Event: event}
	r.items = append(r.items, l)
	return l
}

// List returns the registered listeners in registration order.
func (r *Registry) List() []Listener {
	out := make([]Listener, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of registered listeners.
func (r *Registry) Len() int { return len(r.items) }

// RemoveAll drops every listener and returns what was removed.
func (r *Registry) RemoveAll() []Listener {
	out := r.items
	r.items = nil
	return out
}
