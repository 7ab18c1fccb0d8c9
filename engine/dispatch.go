package engine

import (
	"fmt"
	"strconv"
	"time"

	"github.com/expr-lang/expr"
	"github.com/gofrs/uuid/v5"
	"github.com/mitchellh/mapstructure"

	"github.com/noodles-run/noodles-server/types"
)

// methodDispatcher routes invocations by method name, grounded in
// rigatoni.core.Server._invoke_method / methods_by_name (§4.7).
type methodDispatcher struct {
	byName map[string]types.MethodHandler
	logger types.Logger
}

func newMethodDispatcher(logger types.Logger) *methodDispatcher {
	return &methodDispatcher{byName: make(map[string]types.MethodHandler), logger: logger}
}

func (d *methodDispatcher) register(name string, handler types.MethodHandler) {
	d.byName[name] = handler
}

func (d *methodDispatcher) unregister(name string) {
	delete(d.byName, name)
}

// HandleInvoke implements the full protocol of §4.7 against a decoded
// invoke payload (the content-map that arrived alongside wire tag 33). It
// never panics: every failure path produces a Reply, per §7's "never crash
// the server" policy.
func (s *Scene) HandleInvoke(raw map[string]any) types.Reply {
	methodID, invokeID, rawCtx, args, err := parseInvoke(raw)
	if invokeID == "" {
		// Clients are not required to supply invoke_id (§4.7); when absent,
		// generate one so the reply still carries a correlatable id.
		invokeID = uuid.Must(uuid.NewV4()).String()
	}
	if err != nil {
		return types.Reply{InvokeID: invokeID, MethodException: types.NewParseError()}
	}

	componentAny, getErr := s.reg.get(methodID)
	if getErr != nil {
		return types.Reply{InvokeID: invokeID, MethodException: types.NewMethodNotFound()}
	}
	method, ok := extractBase(types.KindMethod, componentAny)
	if !ok {
		return types.Reply{InvokeID: invokeID, MethodException: types.NewMethodNotFound()}
	}
	m := method.(types.Method)

	handler, ok := s.dispatch.byName[m.Name]
	if !ok {
		return types.Reply{InvokeID: invokeID, MethodException: types.NewMethodNotFound()}
	}

	var ctx *types.InvocationContext
	if rawCtx != nil {
		var decoded types.InvocationContext
		if decErr := mapstructure.Decode(rawCtx, &decoded); decErr == nil {
			ctx = &decoded
		}
	}

	if m.Guard != "" && !evalGuard(m.Guard, ctx, args, s.cfg.Logger) {
		return types.Reply{
			InvokeID: invokeID,
			MethodException: &types.MethodException{
				Code:    types.CodeInvalidParams,
				Message: "Invocation rejected by guard",
			},
		}
	}

	start := time.Now()
	result, callErr := func() (res any, err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("handler panicked: %v", r)
			}
		}()
		return handler(ctx, args)
	}()
	dispatchLatency.WithLabelValues(m.Name).Observe(time.Since(start).Seconds())

	if callErr == nil {
		return types.Reply{InvokeID: invokeID, Result: result}
	}
	if mex, ok := callErr.(*types.MethodException); ok {
		dispatchErrorsTotal.WithLabelValues(m.Name, strconv.Itoa(mex.Code)).Inc()
		return types.Reply{InvokeID: invokeID, MethodException: mex}
	}
	s.cfg.Logger.Errorf("method %q handler error: %v", m.Name, callErr)
	dispatchErrorsTotal.WithLabelValues(m.Name, strconv.Itoa(types.CodeInternalError)).Inc()
	return types.Reply{InvokeID: invokeID, MethodException: types.NewInternalError()}
}

func parseInvoke(raw map[string]any) (methodID types.ID, invokeID string, rawCtx map[string]any, args []any, err error) {
	invokeID, _ = raw["invoke_id"].(string)

	pair, ok := raw["method"].([]any)
	if !ok || len(pair) != 2 {
		return types.ID{}, invokeID, nil, nil, fmt.Errorf("malformed method reference")
	}
	slot, ok1 := toUint32(pair[0])
	gen, ok2 := toUint32(pair[1])
	if !ok1 || !ok2 {
		return types.ID{}, invokeID, nil, nil, fmt.Errorf("malformed method reference")
	}
	methodID = types.ID{Kind: types.KindMethod, Slot: slot, Gen: gen}

	if c, ok := raw["context"].(map[string]any); ok {
		rawCtx = c
	}
	if a, ok := raw["args"].([]any); ok {
		args = a
	} else {
		args = []any{}
	}
	return methodID, invokeID, rawCtx, args, nil
}

func toUint32(v any) (uint32, bool) {
	switch n := v.(type) {
	case uint32:
		return n, true
	case int:
		return uint32(n), true
	case int64:
		return uint32(n), true
	case uint64:
		return uint32(n), true
	case float64:
		return uint32(n), true
	default:
		return 0, false
	}
}

// evalGuard evaluates a Method.Guard expr-lang expression (SPEC_FULL §C.3)
// against {args, context}. A compile or runtime error is logged and treated
// as a rejection - a broken guard fails closed, never open.
func evalGuard(guardExpr string, ctx *types.InvocationContext, args []any, logger types.Logger) bool {
	env := map[string]any{"args": args, "context": ctx}
	program, err := expr.Compile(guardExpr, expr.Env(env), expr.AsBool())
	if err != nil {
		logger.Warnf("method guard %q failed to compile: %v", guardExpr, err)
		return false
	}
	out, err := expr.Run(program, env)
	if err != nil {
		logger.Warnf("method guard %q failed to evaluate: %v", guardExpr, err)
		return false
	}
	ok, _ := out.(bool)
	return ok
}
