package types

// StartingComponent describes a component the scene should create before
// accepting any connections (SPEC_FULL §C.2, mirrors
// rigatoni.noodle_objects.StartingComponent). For Method kinds, Handler is
// bound under the method's own Name in the dispatcher at scene construction
// time - the Go equivalent of the original's InjectedMethod.
type StartingComponent struct {
	Kind    Kind
	Attrs   map[string]any
	Handler MethodHandler
}

// MethodHandler is the signature every registered method implementation
// satisfies (§4.7). ctx carries the invocation context derived from the
// target component (entity/table/plot), when the target requires one.
// Returning a *MethodException sends that exception verbatim to the client;
// any other error is logged and replaced on the wire by NewInternalError.
type MethodHandler func(ctx *InvocationContext, args []any) (any, error)

// TableHandlers is the optional interface a Table behavior override may
// implement to receive row-mutation requests from clients (SPEC_FULL §C.5,
// mirrors rigatoni.noodle_objects.Table.handle_*). A Table override that
// does not implement this interface simply has no client-writable rows -
// the core never calls these methods itself, only a transport-level method
// handler wired to them would.
type TableHandlers interface {
	HandleInsert(keys []int, rows [][]any) error
	HandleUpdate(keys []int, rows [][]any) error
	HandleDelete(keys []int) error
	HandleClear() error
	HandleSetSelection(sel Selection) error
}
