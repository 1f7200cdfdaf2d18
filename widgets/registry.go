package widgets

import (
	"github.com/google/uuid"
	"github.com/npillmayer/reactree/slab"
)

// Registry finds component widgets by their IDs.
type Registry struct {
	byID map[uuid.UUID]slab.Key
}

// Lookup returns the widget key of a component.
func (r *Registry) Lookup(id uuid.UUID) (slab.Key, bool) {
	key, ok := r.byID[id]
	return key, ok
}

// Len returns the number of live components.
func (r *Registry) Len() int {
	return len(r.byID)
}

// IDs returns the IDs of all live components, in no particular order.
func (r *Registry) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(r.byID))
	for id := range r.byID {
		ids = append(ids, id)
	}
	return ids
}

func (r *Registry) register(id uuid.UUID, key slab.Key) {
	if r.byID == nil {
		r.byID = make(map[uuid.UUID]slab.Key)
	}
	r.byID[id] = key
}

func (r *Registry) unregister(id uuid.UUID) {
	delete(r.byID, id)
}
