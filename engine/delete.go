package engine

import "github.com/noodles-run/noodles-server/types"

// deleteScheduler implements the deferred-delete cascade of §4.4, grounded
// in rigatoni.core.Server.delete_component / delete_queue. It only decides
// whether and when a component actually leaves the registry; the scene
// engine still owns broadcasting and reference-count bookkeeping around it.
type deleteScheduler struct {
	queue map[types.ID]bool
}

func newDeleteScheduler() *deleteScheduler {
	return &deleteScheduler{queue: make(map[types.ID]bool)}
}

// tryDelete reports whether id is immediately removable (no incoming
// references) or, if not, defers it and returns false. Callers that get
// true still need to perform the registry removal/broadcast themselves -
// this type only tracks eligibility, keeping the scheduler free of the
// broadcast/registry side effects so scene.go stays the single place those
// happen, matching §4.6's "sole external API surface" role for Scene.
func (d *deleteScheduler) tryDelete(id types.ID, refs *refTracker) bool {
	if refs.hasIncoming(id) {
		d.queue[id] = true
		return false
	}
	delete(d.queue, id)
	return true
}

// drain removes every queued id whose incoming set has since become empty,
// invoking remove for each. It runs until no further entry in the queue is
// eligible, implementing the cascading check in §3.3's "Deferred progress"
// invariant. remove performs the actual registry/broadcast removal and
// returns nothing; entries it unblocks (its own outgoing references having
// just been decremented) are picked up by the next pass over the queue.
func (d *deleteScheduler) drain(refs *refTracker, remove func(types.ID)) {
	for {
		progressed := false
		for id := range d.queue {
			if refs.hasIncoming(id) {
				continue
			}
			delete(d.queue, id)
			remove(id)
			progressed = true
		}
		if !progressed {
			return
		}
	}
}

func (d *deleteScheduler) isQueued(id types.ID) bool {
	return d.queue[id]
}
