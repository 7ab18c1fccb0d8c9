package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noodles-run/noodles-server/types"
)

func lastInvokeSignalData(t *testing.T, bcast *fakeBroadcaster) []any {
	t.Helper()
	require.NotEmpty(t, bcast.frames)
	last := bcast.frames[len(bcast.frames)-1]
	require.Equal(t, TagInvoke, last[0])
	dict := last[1].(map[string]any)
	return dict["signal_data"].([]any)
}

func TestTableResetInvokesSignalWithInitData(t *testing.T) {
	scene, bcast := newTestScene(t)
	table, err := CreateTable(scene, types.Table{Base: types.Base{Name: "grid"}})
	require.NoError(t, err)
	signal, err := CreateSignal(scene, types.Signal{Base: types.Base{Name: "table_reset"}})
	require.NoError(t, err)

	init := types.TableInitData{Keys: []int{1, 2}, Data: [][]any{{"a"}, {"b"}}}
	require.NoError(t, scene.TableReset(signal.ID, table, init))

	data := lastInvokeSignalData(t, bcast)
	require.Len(t, data, 1)
	assert.Equal(t, init, data[0])
}

func TestTableUpdatedInvokesSignalWithKeysAndRows(t *testing.T) {
	scene, bcast := newTestScene(t)
	table, err := CreateTable(scene, types.Table{Base: types.Base{Name: "grid"}})
	require.NoError(t, err)
	signal, err := CreateSignal(scene, types.Signal{Base: types.Base{Name: "table_updated"}})
	require.NoError(t, err)

	require.NoError(t, scene.TableUpdated(signal.ID, table, []int{3}, [][]any{{"z"}}))

	data := lastInvokeSignalData(t, bcast)
	require.Len(t, data, 2)
	assert.Equal(t, []int{3}, data[0])
	assert.Equal(t, [][]any{{"z"}}, data[1])
}

func TestTableRowsRemovedInvokesSignalWithKeys(t *testing.T) {
	scene, bcast := newTestScene(t)
	table, err := CreateTable(scene, types.Table{Base: types.Base{Name: "grid"}})
	require.NoError(t, err)
	signal, err := CreateSignal(scene, types.Signal{Base: types.Base{Name: "table_rows_removed"}})
	require.NoError(t, err)

	require.NoError(t, scene.TableRowsRemoved(signal.ID, table, []int{7, 8}))

	data := lastInvokeSignalData(t, bcast)
	require.Len(t, data, 1)
	assert.Equal(t, []int{7, 8}, data[0])
}

func TestTableSelectionUpdatedInvokesSignalWithSelection(t *testing.T) {
	scene, bcast := newTestScene(t)
	table, err := CreateTable(scene, types.Table{Base: types.Base{Name: "grid"}})
	require.NoError(t, err)
	signal, err := CreateSignal(scene, types.Signal{Base: types.Base{Name: "table_selection_updated"}})
	require.NoError(t, err)

	sel := types.Selection{Name: "sel", Rows: []int{1}}
	require.NoError(t, scene.TableSelectionUpdated(signal.ID, table, sel))

	data := lastInvokeSignalData(t, bcast)
	require.Len(t, data, 1)
	assert.Equal(t, sel, data[0])
}

func TestTableResetFailsWhenTargetIsNotAValidInvocationTarget(t *testing.T) {
	scene, _ := newTestScene(t)
	buffer, err := CreateBuffer(scene, types.Buffer{Base: types.Base{Name: "not-a-table"}, InlineBytes: []byte("x")})
	require.NoError(t, err)
	signal, err := CreateSignal(scene, types.Signal{Base: types.Base{Name: "s"}})
	require.NoError(t, err)

	// TableReset only accepts a types.Table, so the same table_reset payload
	// is sent through InvokeSignal, the call TableReset delegates to.
	err = scene.InvokeSignal(signal.ID, buffer, []any{types.TableInitData{}})
	assert.Error(t, err)
}
