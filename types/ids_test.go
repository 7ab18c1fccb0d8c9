package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "Entity", KindEntity.String())
	assert.Equal(t, "Document", KindDocument.String())
	assert.Equal(t, "Kind(200)", Kind(200).String())
}

func TestIDString(t *testing.T) {
	id := ID{Kind: KindBuffer, Slot: 3, Gen: 1}
	assert.Equal(t, "Buffer|3/1|", id.String())
}

func TestIDEquality(t *testing.T) {
	a := ID{Kind: KindEntity, Slot: 1, Gen: 0}
	b := ID{Kind: KindEntity, Slot: 1, Gen: 0}
	c := ID{Kind: KindLight, Slot: 1, Gen: 0}
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c, "same slot/gen but different kind must not compare equal")
}

func TestAllConcreteKindsExcludesDocument(t *testing.T) {
	assert.Len(t, AllConcreteKinds, 13)
	for _, k := range AllConcreteKinds {
		assert.NotEqual(t, KindDocument, k)
	}
}
