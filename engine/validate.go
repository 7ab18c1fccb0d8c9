package engine

import (
	"fmt"

	"github.com/noodles-run/noodles-server/types"
)

// validateBase re-checks the one-of constraints of §3.2 (mirrors
// noodle_objects.py's root_validators: Plot.one_of, Buffer.one_of,
// Image.one_of, Light's implicit one-of). Called on both create and update,
// as the spec requires attributes be "re-checked on update".
func validateBase(kind types.Kind, base any) error {
	switch c := base.(type) {
	case types.Plot:
		if oneSet(c.SimplePlot != nil, c.URLPlot != nil) {
			return nil
		}
		return fmt.Errorf("exactly one of simple_plot or url_plot must be set")
	case types.Buffer:
		if oneSet(c.InlineBytes != nil, c.URIBytes != nil) {
			return nil
		}
		return fmt.Errorf("exactly one of inline_bytes or uri_bytes must be set")
	case types.Image:
		if oneSet(c.BufferSource != nil, c.URISource != nil) {
			return nil
		}
		return fmt.Errorf("exactly one of buffer_source or uri_source must be set")
	case types.Light:
		if oneSet(c.Point != nil, c.Spot != nil, c.Directional != nil) {
			return nil
		}
		return fmt.Errorf("exactly one of point, spot, or directional must be set")
	case types.BufferView:
		if c.Length == 0 {
			return fmt.Errorf("length is required")
		}
	case types.Texture:
		if c.Image == (types.ID{}) {
			return fmt.Errorf("image is required")
		}
	}
	return nil
}

func oneSet(flags ...bool) bool {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n == 1
}

// validateInvocationContext enforces §3.2's InvocationContext rule: at most
// one of entity/table/plot set, exactly one when required.
func validateInvocationContext(ctx *types.InvocationContext, required bool) error {
	if ctx == nil {
		if required {
			return fmt.Errorf("invocation context is required")
		}
		return nil
	}
	n := ctx.SetCount()
	if n > 1 {
		return fmt.Errorf("at most one of entity, table, plot may be set")
	}
	if required && n == 0 {
		return fmt.Errorf("invocation context is required")
	}
	return nil
}
