package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noodles-run/noodles-server/types"
)

func TestCreateEntityReturnsConcreteTypeWithAllocatedID(t *testing.T) {
	scene, _ := newTestScene(t)

	entity, err := CreateEntity(scene, types.Entity{Base: types.Base{Name: "root"}})
	require.NoError(t, err)
	assert.Equal(t, types.KindEntity, entity.ID.Kind)
	assert.Equal(t, "root", entity.Name)
}

func TestCreateBufferRejectsInvalidOneOf(t *testing.T) {
	scene, _ := newTestScene(t)

	_, err := CreateBuffer(scene, types.Buffer{})
	assert.Error(t, err)
}

func TestCreateTypedReturnsOverrideUnderlyingBase(t *testing.T) {
	overrides := NewOverrideRegistry()
	overrides.Register(types.KindTable, NewInMemoryTableOverride())

	scene, err := NewScene(types.NewConfig(
		types.WithLogger(types.NopLogger{}),
		types.WithOverrides(overrides),
	), &fakeBroadcaster{}, nil)
	require.NoError(t, err)

	table, err := CreateTable(scene, types.Table{Base: types.Base{Name: "grid"}})
	require.NoError(t, err)
	assert.Equal(t, "grid", table.Name)

	stored, err := scene.reg.get(table.ID)
	require.NoError(t, err)
	_, ok := stored.(*InMemoryTable)
	assert.True(t, ok, "the registry must retain the override type even though CreateTable returns the plain schema type")
}

func TestCreateLightRoundTripsAttributes(t *testing.T) {
	scene, _ := newTestScene(t)

	light, err := CreateLight(scene, types.Light{
		Base:        types.Base{Name: "sun"},
		Directional: &types.DirectionalLight{},
		Intensity:   2.5,
	})
	require.NoError(t, err)
	assert.Equal(t, 2.5, light.Intensity)
	assert.Equal(t, "sun", light.Name)
}
