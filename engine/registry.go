package engine

import (
	"fmt"

	"github.com/noodles-run/noodles-server/types"
)

// registry is the component-identifier store, mirroring rigatoni.core.Server
// state/client_state split and grounded in the teacher's
// RuleComponentRegistry map-plus-mutex shape, minus the mutex: the scene
// engine that owns this registry runs single-threaded per spec.md §5, so no
// internal locking is needed here - callers serialize through engine.Scene.
type registry struct {
	// state is the authoritative, freely-mutable value for every live id.
	state map[types.ID]any
	// clientState is the last snapshot broadcast to clients, used to
	// compute update deltas (§3.5).
	clientState map[types.ID]any
	// order records insertion order per kind, for by_type enumeration
	// (§4.2) and as the tie-break in topological introduction (§4.6).
	order map[types.Kind][]types.ID
}

func newRegistry() *registry {
	return &registry{
		state:       make(map[types.ID]any),
		clientState: make(map[types.ID]any),
		order:       make(map[types.Kind][]types.ID),
	}
}

// insert requires id to be unused; it is a programmer error to call this
// twice for the same id, since the scene engine only calls it right after
// allocating that id.
func (r *registry) insert(id types.ID, component any) {
	r.state[id] = component
	r.order[id.Kind] = append(r.order[id.Kind], id)
}

func (r *registry) get(id types.ID) (any, error) {
	c, ok := r.state[id]
	if !ok {
		return nil, &types.NotFoundError{ID: id}
	}
	return c, nil
}

// remove deletes id from both state and clientState and returns the removed
// value. Returns false if id was not present (the caller has already
// verified this in practice, but defends against double-removal).
func (r *registry) remove(id types.ID) (any, bool) {
	c, ok := r.state[id]
	if !ok {
		return nil, false
	}
	delete(r.state, id)
	delete(r.clientState, id)
	order := r.order[id.Kind]
	for i, o := range order {
		if o == id {
			r.order[id.Kind] = append(order[:i], order[i+1:]...)
			break
		}
	}
	return c, true
}

// byName performs the linear first-match scan §4.2 specifies; names are
// informational and duplicates are permitted.
func (r *registry) byName(kind types.Kind, name string) (types.ID, bool) {
	for _, id := range r.order[kind] {
		c := r.state[id]
		if named, ok := c.(interface{ ComponentName() string }); ok && named.ComponentName() == name {
			return id, true
		}
	}
	return types.ID{}, false
}

// byType enumerates every live id of kind, in insertion order.
func (r *registry) byType(kind types.Kind) []types.ID {
	out := make([]types.ID, len(r.order[kind]))
	copy(out, r.order[kind])
	return out
}

func (r *registry) String() string {
	return fmt.Sprintf("registry{%d live components}", len(r.state))
}
