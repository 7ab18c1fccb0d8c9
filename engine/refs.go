package engine

import (
	"reflect"

	"github.com/noodles-run/noodles-server/types"
)

// refTracker maintains, for every identifier x, the reverse set of
// identifiers whose component transitively embeds x - rigatoni's
// self.references dict, grounded in core.py's _update_references. Recursive
// scanning itself uses reflect directly rather than fatih/structs: structs
// is built for flattening a struct's own fields to a map (used in
// engine/encode.go for wire projection), not for walking arbitrary nested
// slices/pointers/structs looking for an ID type, which reflect expresses
// more directly and with no dependency that does this walk for us in the
// pack.
type refTracker struct {
	refsIn map[types.ID]map[types.ID]bool
}

func newRefTracker() *refTracker {
	return &refTracker{refsIn: make(map[types.ID]map[types.ID]bool)}
}

func (t *refTracker) incoming(id types.ID) []types.ID {
	set := t.refsIn[id]
	out := make([]types.ID, 0, len(set))
	for ref := range set {
		out = append(out, ref)
	}
	return out
}

func (t *refTracker) hasIncoming(id types.ID) bool {
	return len(t.refsIn[id]) > 0
}

// scanAdd walks value (a component, or any nested field of one) and, for
// every embedded identifier x other than the component's own id, records
// parent as a referrer of x.
func (t *refTracker) scanAdd(parent types.ID, value any) {
	t.scan(parent, value, true)
}

func (t *refTracker) scanRemove(parent types.ID, value any) {
	t.scan(parent, value, false)
}

func (t *refTracker) scan(parent types.ID, value any, add bool) {
	if value == nil {
		return
	}
	t.walkValue(parent, reflect.ValueOf(value), add)
}

var idType = reflect.TypeOf(types.ID{})

// walkValue recurses into rv, recording every embedded identifier other than
// parent's own id (§4.3: "every embedded identifier x other than value.id
// itself"). Self-reference is detected by value equality against parent
// rather than by field position, so it applies uniformly whether the id
// sits at the component's top-level Base.ID or arrives re-nested through an
// override's embedding.
func (t *refTracker) walkValue(parent types.ID, rv reflect.Value, add bool) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return
		}
		t.walkValue(parent, rv.Elem(), add)

	case reflect.Struct:
		if rv.Type() == idType {
			id := rv.Interface().(types.ID)
			if id == parent {
				return
			}
			t.record(parent, id, add)
			return
		}
		for i := 0; i < rv.NumField(); i++ {
			if !rv.Type().Field(i).IsExported() {
				continue
			}
			t.walkValue(parent, rv.Field(i), add)
		}

	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			t.walkValue(parent, rv.Index(i), add)
		}

	case reflect.Map:
		for _, key := range rv.MapKeys() {
			t.walkValue(parent, rv.MapIndex(key), add)
		}

	default:
		// scalars (string, number, bool, []byte elements, ...) carry no
		// identifiers and are ignored, per §4.3.
	}
}

func (t *refTracker) record(parent, target types.ID, add bool) {
	if add {
		set, ok := t.refsIn[target]
		if !ok {
			set = make(map[types.ID]bool)
			t.refsIn[target] = set
		}
		set[parent] = true
		return
	}
	if set, ok := t.refsIn[target]; ok {
		delete(set, parent)
		if len(set) == 0 {
			delete(t.refsIn, target)
		}
	}
}

// collectEmbeddedIDs returns every identifier embedded anywhere within
// value, excluding self (value's own id, if it has one). Used by
// topological introduction ordering, which needs a component's outgoing
// edges directly rather than the registry-wide reverse index a refTracker
// maintains.
func collectEmbeddedIDs(self types.ID, value any) []types.ID {
	var out []types.ID
	var walk func(rv reflect.Value)
	walk = func(rv reflect.Value) {
		switch rv.Kind() {
		case reflect.Ptr, reflect.Interface:
			if rv.IsNil() {
				return
			}
			walk(rv.Elem())
		case reflect.Struct:
			if rv.Type() == idType {
				id := rv.Interface().(types.ID)
				if id != self {
					out = append(out, id)
				}
				return
			}
			for i := 0; i < rv.NumField(); i++ {
				if !rv.Type().Field(i).IsExported() {
					continue
				}
				walk(rv.Field(i))
			}
		case reflect.Slice, reflect.Array:
			for i := 0; i < rv.Len(); i++ {
				walk(rv.Index(i))
			}
		case reflect.Map:
			for _, key := range rv.MapKeys() {
				walk(rv.MapIndex(key))
			}
		}
	}
	walk(reflect.ValueOf(value))
	return out
}
