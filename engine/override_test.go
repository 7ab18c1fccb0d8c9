package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noodles-run/noodles-server/types"
)

func TestOverrideRegistryNewWithoutRegistrationFails(t *testing.T) {
	reg := NewOverrideRegistry()
	_, ok := reg.New(types.KindTable)
	assert.False(t, ok)
}

func TestOverrideRegistryRegisterAndNew(t *testing.T) {
	reg := NewOverrideRegistry()
	reg.Register(types.KindTable, NewInMemoryTableOverride())

	v, ok := reg.New(types.KindTable)
	assert.True(t, ok)
	table, ok := v.(*InMemoryTable)
	assert.True(t, ok)
	assert.NotNil(t, table.Rows)
}

func TestOverrideRegistryNewReturnsFreshInstanceEachTime(t *testing.T) {
	reg := NewOverrideRegistry()
	reg.Register(types.KindTable, NewInMemoryTableOverride())

	a, _ := reg.New(types.KindTable)
	b, _ := reg.New(types.KindTable)
	assert.NotSame(t, a.(*InMemoryTable), b.(*InMemoryTable))
}

func TestOverrideRegistryRegisterReplacesPreviousConstructor(t *testing.T) {
	reg := NewOverrideRegistry()
	reg.Register(types.KindTable, func() any { return "first" })
	reg.Register(types.KindTable, func() any { return "second" })

	v, ok := reg.New(types.KindTable)
	assert.True(t, ok)
	assert.Equal(t, "second", v)
}

func TestOverrideRegistryUnregister(t *testing.T) {
	reg := NewOverrideRegistry()
	reg.Register(types.KindTable, NewInMemoryTableOverride())
	reg.Unregister(types.KindTable)

	_, ok := reg.New(types.KindTable)
	assert.False(t, ok)
}

func TestInMemoryTableHandlersMutateRowsNotWire(t *testing.T) {
	table := &InMemoryTable{Rows: make(map[int][]any)}

	require := assert.New(t)
	require.NoError(table.HandleInsert([]int{1, 2}, [][]any{{"a"}, {"b"}}))
	require.Equal([]any{"a"}, table.Rows[1])

	require.NoError(table.HandleUpdate([]int{1}, [][]any{{"z"}}))
	require.Equal([]any{"z"}, table.Rows[1])

	require.NoError(table.HandleDelete([]int{2}))
	_, stillThere := table.Rows[2]
	require.False(stillThere)

	require.NoError(table.HandleClear())
	require.Empty(table.Rows)

	require.NoError(table.HandleSetSelection(types.Selection{Name: "sel"}))
}

func TestInMemoryTableHandleInsertRejectsLengthMismatch(t *testing.T) {
	table := &InMemoryTable{Rows: make(map[int][]any)}
	err := table.HandleInsert([]int{1, 2}, [][]any{{"a"}})
	assert.Error(t, err)
}

func TestJSFilteredTableOverrideAcceptsOnlyMatchingRows(t *testing.T) {
	ctor, err := NewJSFilteredTableOverride("return row[0] > 10")
	assert.NoError(t, err)

	v := ctor()
	table := v.(*JSFilteredTable)

	assert.NoError(t, table.HandleInsert([]int{1, 2}, [][]any{{int64(20)}, {int64(1)}}))
	_, kept := table.Rows[1]
	_, dropped := table.Rows[2]
	assert.True(t, kept)
	assert.False(t, dropped)
}

func TestJSFilteredTableOverrideSharesCompiledProgramAcrossInstances(t *testing.T) {
	ctor, err := NewJSFilteredTableOverride("return true")
	assert.NoError(t, err)

	v1 := ctor()
	v2 := ctor()
	assert.Same(t, v1.(*JSFilteredTable).pool, v2.(*JSFilteredTable).pool)
}

func TestNewJSFilteredTableOverrideRejectsInvalidScript(t *testing.T) {
	_, err := NewJSFilteredTableOverride("this is not valid javascript {{{")
	assert.Error(t, err)
}

func TestSceneUpdateOnOverriddenKindPreservesOverrideState(t *testing.T) {
	overrides := NewOverrideRegistry()
	overrides.Register(types.KindTable, NewInMemoryTableOverride())

	scene, err := NewScene(types.NewConfig(
		types.WithLogger(types.NopLogger{}),
		types.WithOverrides(overrides),
	), &fakeBroadcaster{}, nil)
	require.NoError(t, err)

	table, err := CreateTable(scene, types.Table{Base: types.Base{Name: "grid"}})
	require.NoError(t, err)

	stored, err := scene.reg.get(table.ID)
	require.NoError(t, err)
	inMemory := stored.(*InMemoryTable)
	require.NoError(t, inMemory.HandleInsert([]int{1}, [][]any{{"a"}}))

	table.Meta = stringPtr("updated")
	require.NoError(t, scene.Update(table))

	restored, err := scene.reg.get(table.ID)
	require.NoError(t, err)
	again := restored.(*InMemoryTable)
	assert.Same(t, inMemory, again, "Update must not replace the override instance")
	assert.Equal(t, []any{"a"}, again.Rows[1], "override-private state must survive Update")
	assert.Equal(t, "updated", *again.Meta)
}

func stringPtr(s string) *string { return &s }
