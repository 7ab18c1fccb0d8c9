package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noodles-run/noodles-server/types"
)

func TestDeleteSchedulerImmediateWhenUnreferenced(t *testing.T) {
	d := newDeleteScheduler()
	refs := newRefTracker()
	id := types.ID{Kind: types.KindLight, Slot: 0}

	assert.True(t, d.tryDelete(id, refs))
	assert.False(t, d.isQueued(id))
}

func TestDeleteSchedulerDefersWhenReferenced(t *testing.T) {
	d := newDeleteScheduler()
	refs := newRefTracker()
	lightID := types.ID{Kind: types.KindLight, Slot: 0}
	entityID := types.ID{Kind: types.KindEntity, Slot: 0}
	refs.scanAdd(entityID, types.Entity{Base: types.Base{ID: entityID}, Lights: []types.LightID{lightID}})

	assert.False(t, d.tryDelete(lightID, refs))
	assert.True(t, d.isQueued(lightID))
}

func TestDeleteSchedulerDrainCascades(t *testing.T) {
	d := newDeleteScheduler()
	refs := newRefTracker()

	lightID := types.ID{Kind: types.KindLight, Slot: 0}
	entityID := types.ID{Kind: types.KindEntity, Slot: 0}
	entity := types.Entity{Base: types.Base{ID: entityID}, Lights: []types.LightID{lightID}}
	refs.scanAdd(entityID, entity)

	// lightID can't be removed yet - entityID still refers to it.
	assert.False(t, d.tryDelete(lightID, refs))

	var removed []types.ID
	remove := func(id types.ID) {
		removed = append(removed, id)
	}

	// Nothing is eligible until entity's own reference is cleared.
	d.drain(refs, remove)
	assert.Empty(t, removed)

	refs.scanRemove(entityID, entity)
	d.drain(refs, remove)
	assert.Equal(t, []types.ID{lightID}, removed)
	assert.False(t, d.isQueued(lightID))
}

func TestDeleteSchedulerTryDeleteClearsStaleQueueEntry(t *testing.T) {
	d := newDeleteScheduler()
	refs := newRefTracker()
	id := types.ID{Kind: types.KindTable, Slot: 0}
	referrer := types.ID{Kind: types.KindEntity, Slot: 0}

	refs.scanAdd(referrer, types.Entity{Base: types.Base{ID: referrer}, Tables: []types.TableID{id}})
	assert.False(t, d.tryDelete(id, refs))
	assert.True(t, d.isQueued(id))

	refs.scanRemove(referrer, types.Entity{Base: types.Base{ID: referrer}, Tables: []types.TableID{id}})
	assert.True(t, d.tryDelete(id, refs))
	assert.False(t, d.isQueued(id))
}
