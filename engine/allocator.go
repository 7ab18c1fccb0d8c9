package engine

import "github.com/noodles-run/noodles-server/types"

// allocator hands out (slot, generation) pairs per kind, recycling freed
// slots with their generation bumped so a stale handle from before the free
// can never alias a newly allocated one. Grounded on
// rigatoni.core.Server._get_id / SlotTracker, redesigned per spec.md §4.1 to
// increment the generation on free rather than reusing it verbatim.
type allocator struct {
	nextSlot map[types.Kind]uint32
	freeList map[types.Kind][]types.ID
}

func newAllocator() *allocator {
	return &allocator{
		nextSlot: make(map[types.Kind]uint32),
		freeList: make(map[types.Kind][]types.ID),
	}
}

// alloc returns the next available identifier for kind, preferring a
// recycled slot over a fresh one (FIFO, matching the queue semantics of the
// original SlotTracker.on_deck).
func (a *allocator) alloc(kind types.Kind) types.ID {
	if queue := a.freeList[kind]; len(queue) > 0 {
		id := queue[0]
		a.freeList[kind] = queue[1:]
		return id
	}
	slot := a.nextSlot[kind]
	a.nextSlot[kind] = slot + 1
	return types.ID{Kind: kind, Slot: slot, Gen: 0}
}

// free pushes id's slot back onto kind's queue with its generation
// incremented, per spec.md §4.1's free(id) operation.
func (a *allocator) free(id types.ID) {
	a.freeList[id.Kind] = append(a.freeList[id.Kind], types.ID{
		Kind: id.Kind,
		Slot: id.Slot,
		Gen:  id.Gen + 1,
	})
}
