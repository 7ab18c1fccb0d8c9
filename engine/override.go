package engine

import (
	"sync"

	"github.com/noodles-run/noodles-server/types"
)

// OverrideConstructor builds a fresh behavior-override instance for a kind.
// The returned value must embed that kind's base schema struct anonymously
// (e.g. a Table override embeds types.Table) - the engine splices the
// freshly allocated base component into that embedded field right after
// construction (§4.8).
type OverrideConstructor func() any

// OverrideRegistry is the concrete, mutable implementation of
// types.OverrideRegistry, grounded in the teacher's
// RuleComponentRegistry (engine/registry.go): a mutex-guarded map plus
// Register/Unregister, adapted from "node type -> node constructor" to
// "component kind -> override constructor".
type OverrideRegistry struct {
	mu           sync.RWMutex
	constructors map[types.Kind]OverrideConstructor
}

// NewOverrideRegistry returns an empty registry - no kind is overridden
// until Register is called.
func NewOverrideRegistry() *OverrideRegistry {
	return &OverrideRegistry{constructors: make(map[types.Kind]OverrideConstructor)}
}

// Register associates kind with a constructor. A second call for the same
// kind replaces the previous constructor, unlike the teacher's Register
// (which errors on duplicates) - overrides here are expected to be
// reconfigured freely during setup, before any scene is constructed.
func (r *OverrideRegistry) Register(kind types.Kind, ctor OverrideConstructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.constructors[kind] = ctor
}

func (r *OverrideRegistry) Unregister(kind types.Kind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.constructors, kind)
}

// New implements types.OverrideRegistry.
func (r *OverrideRegistry) New(kind types.Kind) (any, bool) {
	r.mu.RLock()
	ctor, ok := r.constructors[kind]
	r.mu.RUnlock()
	if !ok {
		return nil, false
	}
	return ctor(), true
}
