package engine

import (
	"fmt"
	"reflect"

	"github.com/noodles-run/noodles-server/types"
)

// baseTypeByKind maps each concrete component kind to its schema struct
// type, used to recognize a caller-supplied value's kind and to locate the
// embedded base struct inside a behavior override.
var baseTypeByKind = map[types.Kind]reflect.Type{
	types.KindMethod:     reflect.TypeOf(types.Method{}),
	types.KindSignal:     reflect.TypeOf(types.Signal{}),
	types.KindEntity:     reflect.TypeOf(types.Entity{}),
	types.KindPlot:       reflect.TypeOf(types.Plot{}),
	types.KindBuffer:     reflect.TypeOf(types.Buffer{}),
	types.KindBufferView: reflect.TypeOf(types.BufferView{}),
	types.KindMaterial:   reflect.TypeOf(types.Material{}),
	types.KindImage:      reflect.TypeOf(types.Image{}),
	types.KindTexture:    reflect.TypeOf(types.Texture{}),
	types.KindSampler:    reflect.TypeOf(types.Sampler{}),
	types.KindLight:      reflect.TypeOf(types.Light{}),
	types.KindGeometry:   reflect.TypeOf(types.Geometry{}),
	types.KindTable:      reflect.TypeOf(types.Table{}),
}

var kindByBaseType = func() map[reflect.Type]types.Kind {
	m := make(map[reflect.Type]types.Kind, len(baseTypeByKind))
	for k, t := range baseTypeByKind {
		m[t] = k
	}
	return m
}()

// deref returns the struct Value component describes, following one
// pointer indirection if component is a pointer - behavior overrides are
// free to be either plain structs or pointers to structs (a pointer is
// required whenever an override's handler methods need a pointer receiver,
// e.g. InMemoryTable.HandleInsert).
func deref(component any) reflect.Value {
	v := reflect.ValueOf(component)
	if v.Kind() == reflect.Ptr {
		return v.Elem()
	}
	return v
}

// kindOf recognizes a caller-supplied component value's kind. component may
// be a plain base schema struct (types.Entity{...}), a pointer to one, or a
// behavior override (value or pointer) embedding one.
func kindOf(component any) (types.Kind, error) {
	v := deref(component)
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return 0, fmt.Errorf("value of type %T is not a recognized component kind", component)
	}
	if k, ok := kindByBaseType[v.Type()]; ok {
		return k, nil
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.Anonymous {
			continue
		}
		if k, ok := kindByBaseType[f.Type]; ok {
			return k, nil
		}
	}
	return 0, fmt.Errorf("value of type %T is not a recognized component kind", component)
}

// setComponentID sets component's embedded Base.ID to id. If component is a
// pointer, it is mutated in place and returned unchanged (identity
// preserved, which matters for pointer-receiver overrides); if it is a
// plain struct value, a modified copy is returned.
func setComponentID(component any, id types.ID) any {
	if reflect.ValueOf(component).Kind() == reflect.Ptr {
		base := findAnonymous(deref(component), reflect.TypeOf(types.Base{}))
		if base.IsValid() {
			base.FieldByName("ID").Set(reflect.ValueOf(id))
		}
		return component
	}
	v := addressableCopy(component)
	base := findAnonymous(v, reflect.TypeOf(types.Base{}))
	if base.IsValid() {
		base.FieldByName("ID").Set(reflect.ValueOf(id))
	}
	return v.Interface()
}

// extractBase returns (a copy of) the base schema struct portion of
// component for kind - itself, if component already is that type (value or
// pointer), otherwise the embedded field matching kind's base type inside
// an override.
func extractBase(kind types.Kind, component any) (any, bool) {
	wantType := baseTypeByKind[kind]
	v := deref(component)
	if !v.IsValid() {
		return nil, false
	}
	if v.Type() == wantType {
		return v.Interface(), true
	}
	f := findAnonymous(v, wantType)
	if !f.IsValid() {
		return nil, false
	}
	return f.Interface(), true
}

// withBase splices base into override's embedded field matching kind's base
// type. If override is a pointer, it is mutated in place and returned
// unchanged; otherwise a modified copy is returned.
func withBase(kind types.Kind, override any, base any) any {
	wantType := baseTypeByKind[kind]
	if reflect.ValueOf(override).Kind() == reflect.Ptr {
		f := findAnonymous(deref(override), wantType)
		if f.IsValid() && f.CanSet() {
			f.Set(reflect.ValueOf(base))
		}
		return override
	}
	v := addressableCopy(override)
	f := findAnonymous(v, wantType)
	if f.IsValid() && f.CanSet() {
		f.Set(reflect.ValueOf(base))
	}
	return v.Interface()
}

// addressableCopy returns a settable reflect.Value holding a copy of v.
func addressableCopy(v any) reflect.Value {
	rv := reflect.ValueOf(v)
	cp := reflect.New(rv.Type()).Elem()
	cp.Set(rv)
	return cp
}

// findAnonymous locates, within v (an addressable or plain struct Value),
// the field of exactly type want, recursing through anonymous fields (base
// struct, or override-embedding-base, and so on).
func findAnonymous(v reflect.Value, want reflect.Type) reflect.Value {
	if !v.IsValid() || v.Kind() != reflect.Struct {
		return reflect.Value{}
	}
	if v.Type() == want {
		return v
	}
	for i := 0; i < v.NumField(); i++ {
		f := v.Type().Field(i)
		if !f.Anonymous {
			continue
		}
		fv := v.Field(i)
		if fv.Kind() == reflect.Ptr {
			if fv.IsNil() {
				continue
			}
			fv = fv.Elem()
		}
		if f.Type == want || (f.Type.Kind() == reflect.Ptr && f.Type.Elem() == want) {
			return fv
		}
		if found := findAnonymous(fv, want); found.IsValid() {
			return found
		}
	}
	return reflect.Value{}
}
