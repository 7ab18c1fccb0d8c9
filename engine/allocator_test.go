package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noodles-run/noodles-server/types"
)

func TestAllocatorFreshSlotsIncrement(t *testing.T) {
	a := newAllocator()
	first := a.alloc(types.KindEntity)
	second := a.alloc(types.KindEntity)

	assert.Equal(t, types.ID{Kind: types.KindEntity, Slot: 0, Gen: 0}, first)
	assert.Equal(t, types.ID{Kind: types.KindEntity, Slot: 1, Gen: 0}, second)
}

func TestAllocatorKindsAreIndependent(t *testing.T) {
	a := newAllocator()
	entity := a.alloc(types.KindEntity)
	light := a.alloc(types.KindLight)

	assert.Equal(t, uint32(0), entity.Slot)
	assert.Equal(t, uint32(0), light.Slot)
	assert.NotEqual(t, entity.Kind, light.Kind)
}

func TestAllocatorFreeRecyclesWithIncrementedGeneration(t *testing.T) {
	a := newAllocator()
	id := a.alloc(types.KindBuffer)
	a.free(id)

	recycled := a.alloc(types.KindBuffer)
	assert.Equal(t, id.Slot, recycled.Slot)
	assert.Equal(t, id.Gen+1, recycled.Gen, "a recycled slot's generation must be bumped so a stale handle never aliases the new one")
}

func TestAllocatorFreeListIsFIFO(t *testing.T) {
	a := newAllocator()
	id0 := a.alloc(types.KindTable)
	id1 := a.alloc(types.KindTable)
	a.free(id0)
	a.free(id1)

	first := a.alloc(types.KindTable)
	second := a.alloc(types.KindTable)
	assert.Equal(t, id0.Slot, first.Slot)
	assert.Equal(t, id1.Slot, second.Slot)
}

func TestAllocatorPrefersFreeListOverFreshSlot(t *testing.T) {
	a := newAllocator()
	id0 := a.alloc(types.KindMethod)
	_ = a.alloc(types.KindMethod)
	a.free(id0)

	recycled := a.alloc(types.KindMethod)
	assert.Equal(t, id0.Slot, recycled.Slot, "a freed slot must be reused before handing out slot 2")

	fresh := a.alloc(types.KindMethod)
	assert.Equal(t, uint32(2), fresh.Slot)
}
