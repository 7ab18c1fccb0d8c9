package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noodles-run/noodles-server/types"
)

func TestWireTagsCreateDeleteForEveryConcreteKind(t *testing.T) {
	for _, kind := range types.AllConcreteKinds {
		_, ok := createTag(kind)
		assert.True(t, ok, "every concrete kind must have a create tag: %s", kind)
		_, ok = deleteTag(kind)
		assert.True(t, ok, "every concrete kind must have a delete tag: %s", kind)
	}
}

func TestUpdateTagOnlyForUpdatableKinds(t *testing.T) {
	_, ok := updateTag(types.KindEntity)
	assert.True(t, ok)
	_, ok = updateTag(types.KindBuffer)
	assert.False(t, ok, "Buffer has no update message per the wire table")
	_, ok = updateTag(types.KindDocument)
	assert.True(t, ok, "Document is updatable even though it is never created/deleted")
}

func TestProjectFullOmitsZeroFields(t *testing.T) {
	id := types.ID{Kind: types.KindEntity, Slot: 0}
	entity := types.Entity{Base: types.Base{ID: id}}
	dict := ProjectFull(entity)

	assert.Equal(t, id, dict["id"].(types.ID))
	_, hasName := dict["name"]
	assert.False(t, hasName, "an empty Name tagged omitempty must not appear")
}

func TestProjectFullIncludesSetFields(t *testing.T) {
	id := types.ID{Kind: types.KindEntity, Slot: 1}
	parent := types.ID{Kind: types.KindEntity, Slot: 0}
	entity := types.Entity{Base: types.Base{ID: id, Name: "child"}, Parent: &parent}
	dict := ProjectFull(entity)

	assert.Equal(t, "child", dict["name"])
	assert.Equal(t, &parent, dict["parent"])
}

func TestProjectIDOnly(t *testing.T) {
	id := types.ID{Kind: types.KindLight, Slot: 4}
	dict := projectIDOnly(id)
	assert.Equal(t, map[string]any{"id": id}, dict)
}

func TestProjectDeltaOnlyChangedFields(t *testing.T) {
	id := types.ID{Kind: types.KindEntity, Slot: 0}
	old := types.Entity{Base: types.Base{ID: id, Name: "a"}}
	updated := types.Entity{Base: types.Base{ID: id, Name: "b"}}

	delta := projectDelta(old, updated)
	assert.Equal(t, "b", delta["name"])
	_, hasParent := delta["parent"]
	assert.False(t, hasParent, "unchanged fields must not appear in the delta")
}

func TestProjectDeltaEmptyWhenIdentical(t *testing.T) {
	id := types.ID{Kind: types.KindEntity, Slot: 0}
	e := types.Entity{Base: types.Base{ID: id, Name: "same"}}

	delta := projectDelta(e, e)
	assert.Empty(t, delta, "no field differs, so no frame content should be produced")
}

func TestProjectDeltaDropsFieldClearedBackToZero(t *testing.T) {
	id := types.ID{Kind: types.KindEntity, Slot: 0}
	parent := types.ID{Kind: types.KindEntity, Slot: 9}
	old := types.Entity{Base: types.Base{ID: id}, Parent: &parent}
	updated := types.Entity{Base: types.Base{ID: id}, Parent: nil}

	delta := projectDelta(old, updated)
	_, hasParent := delta["parent"]
	assert.False(t, hasParent, "clearing an omitempty field back to zero emits no signal on this wire")
}

func TestDocumentUpdateDict(t *testing.T) {
	methodIDs := []types.ID{{Kind: types.KindMethod, Slot: 0}}
	signalIDs := []types.ID{{Kind: types.KindSignal, Slot: 0}, {Kind: types.KindSignal, Slot: 1}}

	dict := documentUpdateDict(methodIDs, signalIDs)
	assert.Equal(t, methodIDs, dict["methods_list"])
	assert.Equal(t, signalIDs, dict["signals_list"])
}
