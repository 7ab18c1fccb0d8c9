package engine

import "github.com/noodles-run/noodles-server/types"

// TableReset invokes signalID (expected to be a table's "table_reset"
// signal) on table, carrying the full replacement dataset - the Go
// equivalent of rigatoni.noodle_objects.Table.table_reset (SPEC_FULL §C.5).
func (s *Scene) TableReset(signalID types.SignalID, table types.Table, data types.TableInitData) error {
	return s.InvokeSignal(signalID, table, []any{data})
}

// TableUpdated invokes signalID ("table_updated") with the keys/rows that
// changed.
func (s *Scene) TableUpdated(signalID types.SignalID, table types.Table, keys []int, rows [][]any) error {
	return s.InvokeSignal(signalID, table, []any{keys, rows})
}

// TableRowsRemoved invokes signalID ("table_rows_removed") with the keys
// that were removed.
func (s *Scene) TableRowsRemoved(signalID types.SignalID, table types.Table, keys []int) error {
	return s.InvokeSignal(signalID, table, []any{keys})
}

// TableSelectionUpdated invokes signalID ("table_selection_updated") with
// the new selection.
func (s *Scene) TableSelectionUpdated(signalID types.SignalID, table types.Table, sel types.Selection) error {
	return s.InvokeSignal(signalID, table, []any{sel})
}
