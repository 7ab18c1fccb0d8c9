package engine

import (
	"reflect"
	"strings"

	"github.com/fatih/structs"

	"github.com/noodles-run/noodles-server/types"
)

// Frame is the flat [tag, dict, tag, dict, ...] sequence described in
// spec.md §4.5/§6.1. transport is the only package that turns this into
// bytes (CBOR encode/decode lives at the transport boundary, never here).
type Frame []any

type action int

const (
	actionCreate action = iota
	actionUpdate
	actionDelete
	actionReset
	actionInvoke
	actionReply
	actionInitialized
)

// wireTags is the static (action, kind) -> tag table of §4.5. Kinds absent
// from a sub-map have no message of that action (e.g. Buffer has no update
// tag, so calling Update on a Buffer fails with UnupdatableError when its
// "update" lookup here comes back empty).
var wireTags = map[action]map[types.Kind]int{
	actionCreate: {
		types.KindMethod: 0, types.KindSignal: 2, types.KindEntity: 4,
		types.KindPlot: 7, types.KindBuffer: 10, types.KindBufferView: 12,
		types.KindMaterial: 14, types.KindImage: 17, types.KindTexture: 19,
		types.KindSampler: 21, types.KindLight: 23, types.KindGeometry: 26,
		types.KindTable: 28,
	},
	actionDelete: {
		types.KindMethod: 1, types.KindSignal: 3, types.KindEntity: 6,
		types.KindPlot: 9, types.KindBuffer: 11, types.KindBufferView: 13,
		types.KindMaterial: 16, types.KindImage: 18, types.KindTexture: 20,
		types.KindSampler: 22, types.KindLight: 25, types.KindGeometry: 27,
		types.KindTable: 30,
	},
	actionUpdate: {
		types.KindEntity: 5, types.KindPlot: 8, types.KindMaterial: 15,
		types.KindLight: 24, types.KindTable: 29, types.KindDocument: 31,
	},
}

// Tag constants for the four fixed-purpose messages of §4.5 that have no
// per-kind variant. Exported so transport can frame replies (TagReply) and
// recognize/emit the others without duplicating the wire table.
const (
	TagReset       = 32
	TagInvoke      = 33
	TagReply       = 34
	TagInitialized = 35
)

func createTag(kind types.Kind) (int, bool) {
	tag, ok := wireTags[actionCreate][kind]
	return tag, ok
}

func deleteTag(kind types.Kind) (int, bool) {
	tag, ok := wireTags[actionDelete][kind]
	return tag, ok
}

func updateTag(kind types.Kind) (int, bool) {
	tag, ok := wireTags[actionUpdate][kind]
	return tag, ok
}

// ProjectFull returns the component's full wire dictionary: every public
// field whose value is non-zero/non-nil, per §4.5's create contents.
// Overrides are expected to tag server-only fields `structs:"-"` so
// fatih/structs never surfaces them - see InMemoryTable and JSFilteredTable
// in override_examples.go.
func ProjectFull(component any) map[string]any {
	return structs.Map(component)
}

// projectIDOnly is the {id} dictionary used for delete messages (§4.5).
func projectIDOnly(id types.ID) map[string]any {
	return map[string]any{"id": id}
}

// projectDelta computes the update dictionary: "id" plus exactly the
// top-level fields whose value differs between old and new (§4.6). old and
// new must be values of the same concrete schema struct type (never the
// override type - callers pass the base component value, since wire
// projection is always restricted to the base kind's field set per §4.8).
func projectDelta(old, newVal any) map[string]any {
	delta := map[string]any{}
	flattenDelta(reflect.ValueOf(old), reflect.ValueOf(newVal), delta)
	return delta
}

func flattenDelta(oldV, newV reflect.Value, out map[string]any) {
	t := newV.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get("structs")
		name, omit := parseStructsTag(tag, field.Name)
		if name == "-" {
			continue
		}
		oldField := oldV.Field(i)
		newField := newV.Field(i)
		if field.Anonymous && newField.Kind() == reflect.Struct {
			flattenDelta(oldField, newField, out)
			continue
		}
		if reflect.DeepEqual(oldField.Interface(), newField.Interface()) {
			continue
		}
		if omit && isZero(newField) {
			// Field cleared back to its zero value - no well-known way to
			// signal "now absent" on this wire without also signaling
			// "never set"; dropping it here matches §3.4's no-op policy
			// for writes that do not change observable client state.
			continue
		}
		out[name] = newField.Interface()
	}
}

func parseStructsTag(tag, fieldName string) (name string, omitempty bool) {
	if tag == "" {
		return fieldName, false
	}
	parts := strings.Split(tag, ",")
	name = parts[0]
	if name == "" {
		name = fieldName
	}
	for _, p := range parts[1:] {
		if p == "omitempty" {
			omitempty = true
		}
	}
	return name, omitempty
}

func isZero(v reflect.Value) bool {
	return v.IsZero()
}

// documentUpdateDict builds the special-cased Document update contents
// (§4.5): no component exists for the Document singleton, so its update
// carries methods_list/signals_list enumerating every live Method/Signal id
// rather than a field-wise delta.
func documentUpdateDict(methodIDs, signalIDs []types.ID) map[string]any {
	return map[string]any{
		"methods_list": methodIDs,
		"signals_list": signalIDs,
	}
}
