package engine

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/noodles-run/noodles-server/types"
)

// Broadcaster is the only collaborator the scene engine requires from the
// transport layer (spec.md §1: "the core calls broadcast(frame)..."). The
// transport package's connection manager implements this.
type Broadcaster interface {
	Broadcast(frame Frame)
}

// Scene is the sole external API surface for server code (§4.6): it
// composes the allocator, registry, reference tracker, delete scheduler,
// and method dispatcher, and is the only thing that ever calls Broadcaster.
type Scene struct {
	cfg      types.Config
	ids      *allocator
	reg      *registry
	refs     *refTracker
	del      *deleteScheduler
	dispatch *methodDispatcher
	bcast    Broadcaster

	beforeOps []types.BeforeOperationAspect
	afterOps  []types.AfterOperationAspect

	cmdCh chan func(*Scene)
	ready chan struct{}
}

// NewScene constructs a Scene, applies cfg, and creates every starting
// component in order (SPEC_FULL §C.2) before returning - mirroring
// rigatoni.core.Server.__init__'s starting_components loop. Method starting
// components with a non-nil Handler are registered under their own name,
// reproducing InjectedMethod.
func NewScene(cfg types.Config, bcast Broadcaster, starting []types.StartingComponent) (*Scene, error) {
	s := &Scene{
		cfg:      cfg,
		ids:      newAllocator(),
		reg:      newRegistry(),
		refs:     newRefTracker(),
		del:      newDeleteScheduler(),
		dispatch: newMethodDispatcher(cfg.Logger),
		bcast:    bcast,
		cmdCh:    make(chan func(*Scene)),
		ready:    make(chan struct{}),
	}

	// Each Scene gets its own isolated aspect instances via Aspect.New(),
	// the same per-engine isolation the teacher's initBuiltinsAspects
	// performs for its rule engine instances.
	isolated := make(types.AspectList, 0, len(cfg.Aspects))
	for _, a := range cfg.Aspects {
		isolated = append(isolated, a.New())
	}
	s.beforeOps = isolated.GetBeforeAspects()
	s.afterOps = isolated.GetAfterAspects()

	for _, sc := range starting {
		component, err := s.createFromAttrs(sc.Kind, sc.Attrs)
		if err != nil {
			return nil, fmt.Errorf("starting component of kind %s: %w", sc.Kind, err)
		}
		if sc.Kind == types.KindMethod && sc.Handler != nil {
			method, _ := extractBase(types.KindMethod, component)
			s.dispatch.register(method.(types.Method).Name, sc.Handler)
		}
	}

	close(s.ready)
	return s, nil
}

// Ready is closed once every starting component has been created - the Go
// equivalent of rigatoni's threading.Event signaling server readiness
// (SPEC_FULL §C.1).
func (s *Scene) Ready() <-chan struct{} { return s.ready }

// Run processes queued scene-affecting calls (submitted via Submit)
// until ctx is done, implementing the single-threaded cooperative model of
// spec.md §5: every mutation runs on this one logical task.
func (s *Scene) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-s.cmdCh:
			fn(s)
		}
	}
}

// RunInBackground starts Run on its own goroutine and returns a stop
// function, mirroring rigatoni.core.Server's context-manager background
// thread (SPEC_FULL §C.1). Embedders that call Scene methods directly from
// their own goroutine should use Run themselves instead and never mix the
// two calling conventions on the same Scene.
func (s *Scene) RunInBackground() (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = s.Run(ctx) }()
	return cancel
}

// Submit enqueues fn to run on the scene task started by RunInBackground,
// serializing it with every other scene-affecting call as §5 requires.
func (s *Scene) Submit(fn func(*Scene)) {
	s.cmdCh <- fn
}

// --- create ------------------------------------------------------------

// Create allocates an id for component (a plain schema struct such as
// types.Entity{...}, with its ID field left zero), validates it, registers
// it, scans its outgoing references, mirrors it into client state, and
// broadcasts a create frame. It returns the behavior-override instance if
// one is registered for this kind (§4.8), otherwise component itself with
// its id populated.
func (s *Scene) Create(component any) (any, error) {
	kind, err := kindOf(component)
	if err != nil {
		return nil, &types.TypeError{Msg: err.Error()}
	}
	op, err := s.runBefore(types.Operation{Action: "create", Kind: kind, Component: component})
	if err != nil {
		return nil, err
	}
	result, err := s.create(op.Kind, op.Component)
	s.runAfter(op, err)
	return result, err
}

// runBefore runs every registered BeforeOperationAspect whose PointCut
// matches op, in Order, allowing each to veto the operation (non-nil error,
// short-circuiting the rest) or rewrite it before the next aspect sees it -
// mirroring the teacher's executeAroundAop Before chain.
func (s *Scene) runBefore(op types.Operation) (types.Operation, error) {
	for _, a := range s.beforeOps {
		if !a.PointCut(op) {
			continue
		}
		var err error
		op, err = a.Before(op)
		if err != nil {
			return op, err
		}
	}
	return op, nil
}

// runAfter runs every registered AfterOperationAspect whose PointCut matches
// op, in Order, after the operation has been applied (or failed).
func (s *Scene) runAfter(op types.Operation, opErr error) {
	for _, a := range s.afterOps {
		if a.PointCut(op) {
			a.After(op, opErr)
		}
	}
}

func (s *Scene) create(kind types.Kind, component any) (any, error) {
	if err := validateBase(kind, component); err != nil {
		return nil, &types.InvalidAttributesError{Kind: kind, Err: err}
	}

	id := s.ids.alloc(kind)
	base := setComponentID(component, id)

	stored := base
	if override, ok := s.cfg.Overrides.New(kind); ok {
		stored = withBase(kind, override, base)
	}

	s.reg.insert(id, stored)
	s.refs.scanAdd(id, stored)
	s.reg.clientState[id] = stored

	s.broadcastCreate(kind, id, stored)
	observeComponentCreated(kind)
	return stored, nil
}

// createFromAttrs decodes a loosely-typed attribute bag into the right
// schema struct via mapstructure (used for StartingComponent and any other
// caller working from map[string]any rather than a typed Go value).
func (s *Scene) createFromAttrs(kind types.Kind, attrs map[string]any) (any, error) {
	ptr, ok := newZeroForKind(kind)
	if !ok {
		return nil, fmt.Errorf("unknown component kind %s", kind)
	}
	if err := decodeAttrs(attrs, ptr); err != nil {
		return nil, &types.InvalidAttributesError{Kind: kind, Err: err}
	}
	return s.create(kind, derefToValue(ptr))
}

func (s *Scene) broadcastCreate(kind types.Kind, id types.ID, stored any) {
	tag, ok := createTag(kind)
	if !ok {
		return
	}
	dict := ProjectFull(stored)
	s.bcast.Broadcast(Frame{tag, dict})
	observeBroadcast("create")
	s.logFrame(Frame{tag, dict})
	_ = id
}

// --- update --------------------------------------------------------------

// Update recomputes the delta between handle and the last broadcast
// snapshot, applies reference-count bookkeeping, and broadcasts an update
// frame carrying only the changed fields - §4.6's update contract.
func (s *Scene) Update(handle any) (err error) {
	kind, err := kindOf(handle)
	if err != nil {
		return &types.TypeError{Msg: err.Error()}
	}
	tag, ok := updateTag(kind)
	if !ok {
		return &types.UnupdatableError{Kind: kind}
	}

	op, err := s.runBefore(types.Operation{Action: "update", Kind: kind, Component: handle})
	if err != nil {
		return err
	}
	handle = op.Component
	defer func() { s.runAfter(op, err) }()

	base, ok := extractBase(kind, handle)
	if !ok {
		return &types.TypeError{Msg: "handle does not embed a recognized base component"}
	}
	id := base.(types.Component).ComponentID()

	if verr := validateBase(kind, base); verr != nil {
		return &types.InvalidAttributesError{Kind: kind, Err: verr}
	}

	old, err := s.reg.get(id)
	if err != nil {
		return err
	}

	// old may be a behavior override (e.g. *InMemoryTable) rather than the
	// bare base struct handle carries - compare bases on both sides, and
	// splice the new base back into old's own (possibly override) shape
	// rather than discarding it, so override-private state survives update.
	oldBase, ok := extractBase(kind, old)
	if !ok {
		return &types.TypeError{Msg: "stored component lost its base type"}
	}

	delta := projectDelta(oldBase, base)
	if len(delta) == 0 {
		// Minimal-update invariant (§8 property 6): no field differs, no
		// frame is emitted.
		return nil
	}
	delta["id"] = id

	// Snapshot old's referenced ids before withBase below, which mutates a
	// pointer-typed override in place - scanning after mutation would scan
	// the same (already-updated) value twice and never clear a stale ref.
	s.refs.scanRemove(id, old)
	stored := withBase(kind, old, base)
	s.refs.scanAdd(id, stored)
	s.reg.state[id] = stored
	s.reg.clientState[id] = stored

	s.bcast.Broadcast(Frame{tag, delta})
	observeBroadcast("update")
	s.logFrame(Frame{tag, delta})
	return nil
}

// --- delete ---------------------------------------------------------------

// Delete resolves handleOrID (either a types.ID or any component value
// exposing ComponentID) and runs it through the delete scheduler (§4.4).
func (s *Scene) Delete(handleOrID any) error {
	id, err := resolveID(handleOrID)
	if err != nil {
		return err
	}
	op, err := s.runBefore(types.Operation{Action: "delete", Kind: id.Kind, Component: id})
	if err != nil {
		return err
	}
	id = op.Component.(types.ID)
	s.deleteByID(id)
	s.runAfter(op, nil)
	return nil
}

func (s *Scene) deleteByID(id types.ID) {
	if !s.del.tryDelete(id, s.refs) {
		s.cfg.Logger.Warnf("deferred delete of %s: still referenced", id)
		return
	}
	s.removeAndBroadcast(id)
	s.del.drain(s.refs, s.removeAndBroadcast)
}

func (s *Scene) removeAndBroadcast(id types.ID) {
	stored, ok := s.reg.remove(id)
	if !ok {
		return
	}
	s.refs.scanRemove(id, stored)
	s.ids.free(id)

	if tag, ok := deleteTag(id.Kind); ok {
		dict := projectIDOnly(id)
		s.bcast.Broadcast(Frame{tag, dict})
		observeBroadcast("delete")
		s.logFrame(Frame{tag, dict})
	}
	observeComponentDeleted(id.Kind)
}

func resolveID(handleOrID any) (types.ID, error) {
	switch v := handleOrID.(type) {
	case types.ID:
		return v, nil
	case types.Component:
		return v.ComponentID(), nil
	default:
		return types.ID{}, &types.TypeError{Msg: "delete requires an ID or a component handle"}
	}
}

// --- invoke_signal ----------------------------------------------------------

// InvokeSignal derives the invocation context from onComponent's kind
// (Entity -> {entity}, Table -> {table}, Plot -> {plot}) and broadcasts the
// Invoke record on tag 33 (§4.6).
func (s *Scene) InvokeSignal(signalID types.SignalID, onComponent any, data []any) (err error) {
	kind, err := kindOf(onComponent)
	if err != nil {
		return &types.InvalidTargetError{Kind: 0}
	}

	op, err := s.runBefore(types.Operation{Action: "invoke_signal", Kind: kind, Component: onComponent})
	if err != nil {
		return err
	}
	onComponent = op.Component
	defer func() { s.runAfter(op, err) }()

	base, ok := extractBase(kind, onComponent)
	if !ok {
		return &types.InvalidTargetError{Kind: kind}
	}
	id := base.(types.Component).ComponentID()

	var ctx types.InvocationContext
	switch kind {
	case types.KindEntity:
		ctx.Entity = &id
	case types.KindTable:
		ctx.Table = &id
	case types.KindPlot:
		ctx.Plot = &id
	default:
		return &types.InvalidTargetError{Kind: kind}
	}

	if data == nil {
		data = []any{}
	}
	invoke := types.Invoke{ID: signalID, Context: &ctx, SignalData: data}
	dict := ProjectFull(invoke)
	s.bcast.Broadcast(Frame{TagInvoke, dict})
	observeBroadcast("invoke")
	s.logFrame(Frame{TagInvoke, dict})
	return nil
}

// --- introduce --------------------------------------------------------------

// Introduce builds the topologically ordered create sequence a newly
// connected client receives, followed by a Document update and a single
// initialized tag (§4.6).
func (s *Scene) Introduce() Frame {
	order := s.topoOrder()

	frame := make(Frame, 0, len(order)*2+4)
	for _, id := range order {
		stored, err := s.reg.get(id)
		if err != nil {
			continue
		}
		tag, ok := createTag(id.Kind)
		if !ok {
			continue
		}
		frame = append(frame, tag, ProjectFull(stored))
	}

	methodIDs := s.reg.byType(types.KindMethod)
	signalIDs := s.reg.byType(types.KindSignal)
	if docTag, ok := updateTag(types.KindDocument); ok {
		frame = append(frame, docTag, documentUpdateDict(methodIDs, signalIDs))
	}

	frame = append(frame, TagInitialized, map[string]any{})
	return frame
}

// topoOrder returns every live id such that referents precede referrers
// (§4.6): a DFS where, before emitting v, every w that v refers to is
// emitted first - implemented here as a post-order push over the outgoing
// edges of each node, with ties broken by registry insertion order.
func (s *Scene) topoOrder() []types.ID {
	var all []types.ID
	for _, kind := range types.AllConcreteKinds {
		all = append(all, s.reg.byType(kind)...)
	}

	visited := make(map[types.ID]bool, len(all))
	var out []types.ID

	var visit func(id types.ID)
	visit = func(id types.ID) {
		if visited[id] {
			return
		}
		visited[id] = true
		stored, err := s.reg.get(id)
		if err != nil {
			return
		}
		for _, ref := range collectEmbeddedIDs(id, stored) {
			if _, err := s.reg.get(ref); err != nil {
				continue
			}
			visit(ref)
		}
		out = append(out, id)
	}

	for _, id := range all {
		visit(id)
	}
	return out
}

func (s *Scene) logFrame(frame Frame) {
	if s.cfg.FrameLog == nil {
		return
	}
	b, err := json.Marshal(frame)
	if err != nil {
		return
	}
	_, _ = s.cfg.FrameLog.Write(append(b, '\n'))
}
