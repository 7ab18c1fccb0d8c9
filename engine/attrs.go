package engine

import (
	"reflect"

	"github.com/mitchellh/mapstructure"

	"github.com/noodles-run/noodles-server/types"
)

// newZeroForKind returns a pointer to a freshly zeroed schema struct for
// kind, suitable as a mapstructure.Decode target.
func newZeroForKind(kind types.Kind) (any, bool) {
	t, ok := baseTypeByKind[kind]
	if !ok {
		return nil, false
	}
	return reflect.New(t).Interface(), true
}

// decodeAttrs binds a loosely-typed attribute bag into ptr (as produced by
// newZeroForKind), the Go equivalent of rigatoni's **kwargs component
// construction, grounded in the teacher's maps.Map2Struct usage
// (components/common/end_node.go) via mitchellh/mapstructure directly.
func decodeAttrs(attrs map[string]any, ptr any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           ptr,
		WeaklyTypedInput: true,
		TagName:          "json",
		Squash:           true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(attrs)
}

// derefToValue returns the struct value pointed to by ptr (as produced by
// newZeroForKind after decodeAttrs populates it).
func derefToValue(ptr any) any {
	return reflect.ValueOf(ptr).Elem().Interface()
}
