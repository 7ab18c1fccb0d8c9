package engine

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/noodles-run/noodles-server/types"
)

// InMemoryTable is a reference Table behavior override (SPEC_FULL §C.5):
// it embeds types.Table for wire projection and keeps its row data entirely
// server-side, exactly the "in-memory data frame the wire never sees"
// scenario spec.md §4.8 calls out. Rows is tagged structs:"-" so
// ProjectFull/projectDelta never surface it.
type InMemoryTable struct {
	types.Table
	Rows map[int][]any `structs:"-"`
}

// NewInMemoryTableOverride returns an OverrideConstructor suitable for
// OverrideRegistry.Register(types.KindTable, ...).
func NewInMemoryTableOverride() OverrideConstructor {
	return func() any {
		return &InMemoryTable{Rows: make(map[int][]any)}
	}
}

func (t *InMemoryTable) HandleInsert(keys []int, rows [][]any) error {
	if len(keys) != len(rows) {
		return fmt.Errorf("keys/rows length mismatch: %d vs %d", len(keys), len(rows))
	}
	for i, k := range keys {
		t.Rows[k] = rows[i]
	}
	return nil
}

func (t *InMemoryTable) HandleUpdate(keys []int, rows [][]any) error {
	return t.HandleInsert(keys, rows)
}

func (t *InMemoryTable) HandleDelete(keys []int) error {
	for _, k := range keys {
		delete(t.Rows, k)
	}
	return nil
}

func (t *InMemoryTable) HandleClear() error {
	t.Rows = make(map[int][]any)
	return nil
}

func (t *InMemoryTable) HandleSetSelection(types.Selection) error { return nil }

var _ types.TableHandlers = (*InMemoryTable)(nil)

// JSFilteredTable is a second Table override example: row writes are
// accepted only if a user-supplied JavaScript predicate returns true for
// the row, evaluated through goja the way the teacher's
// components/transform/js_filter_node.go evaluates a filter script - one
// compiled program, one pooled *goja.Runtime per concurrent use.
type JSFilteredTable struct {
	types.Table
	Rows   map[int][]any `structs:"-"`
	script string        `structs:"-"`
	pool   *sync.Pool    `structs:"-"`
}

// NewJSFilteredTableOverride compiles predicateScript once (the body of a
// JS function of `row` that returns a boolean, e.g. "return row[0] > 10")
// and returns a
// constructor that shares the compiled program across instances via a
// goja.Runtime pool.
func NewJSFilteredTableOverride(predicateScript string) (OverrideConstructor, error) {
	src := fmt.Sprintf("function accept(row) { %s }", predicateScript)
	program, err := goja.Compile("predicate.js", src, true)
	if err != nil {
		return nil, fmt.Errorf("compiling table row predicate: %w", err)
	}
	pool := &sync.Pool{
		New: func() any {
			vm := goja.New()
			if _, err := vm.RunProgram(program); err != nil {
				panic(fmt.Sprintf("predicate.js failed to load in new goja runtime: %v", err))
			}
			return vm
		},
	}
	return func() any {
		return &JSFilteredTable{Rows: make(map[int][]any), script: predicateScript, pool: pool}
	}, nil
}

func (t *JSFilteredTable) accepts(row []any) (bool, error) {
	vm := t.pool.Get().(*goja.Runtime)
	defer t.pool.Put(vm)

	fnVal := vm.Get("accept")
	fn, ok := goja.AssertFunction(fnVal)
	if !ok {
		return false, fmt.Errorf("accept is not a function")
	}
	res, err := fn(goja.Undefined(), vm.ToValue(row))
	if err != nil {
		return false, err
	}
	accepted, _ := res.Export().(bool)
	return accepted, nil
}

func (t *JSFilteredTable) HandleInsert(keys []int, rows [][]any) error {
	if len(keys) != len(rows) {
		return fmt.Errorf("keys/rows length mismatch: %d vs %d", len(keys), len(rows))
	}
	for i, k := range keys {
		ok, err := t.accepts(rows[i])
		if err != nil {
			return err
		}
		if ok {
			t.Rows[k] = rows[i]
		}
	}
	return nil
}

func (t *JSFilteredTable) HandleUpdate(keys []int, rows [][]any) error {
	return t.HandleInsert(keys, rows)
}

func (t *JSFilteredTable) HandleDelete(keys []int) error {
	for _, k := range keys {
		delete(t.Rows, k)
	}
	return nil
}

func (t *JSFilteredTable) HandleClear() error {
	t.Rows = make(map[int][]any)
	return nil
}

func (t *JSFilteredTable) HandleSetSelection(types.Selection) error { return nil }

var _ types.TableHandlers = (*JSFilteredTable)(nil)
