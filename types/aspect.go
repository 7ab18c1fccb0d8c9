package types

import "sort"

// Operation describes one scene-affecting call as it crosses the aspect
// boundary (SPEC_FULL §A.1's builtin/aspect package), adapted from the
// teacher's RuleContext/RuleMsg pairing down to the much flatter shape a
// scene mutation actually has: an action name, the component kind involved,
// and the component/id value itself.
type Operation struct {
	// Action is one of "create", "update", "delete", "invoke_signal".
	Action string
	Kind   Kind
	// Component is the value passed to Scene.Create/Update, the target
	// component passed to InvokeSignal, or the resolved ID for Delete.
	Component any
}

// Aspect is the base interface every scene-operation aspect implements,
// mirroring the teacher's types.Aspect (Order/New) exactly - Order controls
// execution sequence, New gives each Scene its own isolated instance.
type Aspect interface {
	Order() int
	New() Aspect
}

// OperationAspect aspects opt into specific operations via PointCut, the
// same selective-application role the teacher's NodeAspect.PointCut plays.
type OperationAspect interface {
	Aspect
	PointCut(op Operation) bool
}

// BeforeOperationAspect runs before the operation is applied to the scene
// and may reject it outright by returning a non-nil error, or adjust the
// component/id the operation will proceed with.
type BeforeOperationAspect interface {
	OperationAspect
	Before(op Operation) (Operation, error)
}

// AfterOperationAspect runs once the operation has completed (opErr is the
// result, nil on success), mirroring the teacher's AfterAspect callback.
type AfterOperationAspect interface {
	OperationAspect
	After(op Operation, opErr error)
}

// AspectList holds a Scene's configured aspects in registration order;
// GetBeforeAspects/GetAfterAspects partition and sort it by Order, the same
// split the teacher's AspectList.GetNodeAspects performs.
type AspectList []Aspect

func (list AspectList) sorted() AspectList {
	out := make(AspectList, len(list))
	copy(out, list)
	sort.Slice(out, func(i, j int) bool { return out[i].Order() < out[j].Order() })
	return out
}

// GetBeforeAspects returns every aspect in list implementing
// BeforeOperationAspect, ordered by Order ascending.
func (list AspectList) GetBeforeAspects() []BeforeOperationAspect {
	var out []BeforeOperationAspect
	for _, a := range list.sorted() {
		if b, ok := a.(BeforeOperationAspect); ok {
			out = append(out, b)
		}
	}
	return out
}

// GetAfterAspects returns every aspect in list implementing
// AfterOperationAspect, ordered by Order ascending.
func (list AspectList) GetAfterAspects() []AfterOperationAspect {
	var out []AfterOperationAspect
	for _, a := range list.sorted() {
		if af, ok := a.(AfterOperationAspect); ok {
			out = append(out, af)
		}
	}
	return out
}
