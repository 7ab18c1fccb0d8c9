package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeAspect is a minimal Aspect used only to exercise AspectList's sorting
// and interface-partitioning behavior.
type fakeAspect struct {
	order  int
	before bool
	after  bool
	calls  *[]string
	name   string
}

func (f *fakeAspect) Order() int { return f.order }
func (f *fakeAspect) New() Aspect { return f }
func (f *fakeAspect) PointCut(Operation) bool { return true }

func (f *fakeAspect) Before(op Operation) (Operation, error) {
	*f.calls = append(*f.calls, f.name)
	return op, nil
}

func (f *fakeAspect) After(op Operation, opErr error) {
	*f.calls = append(*f.calls, f.name)
}

// beforeOnlyAspect and afterOnlyAspect each implement just one of the richer
// interfaces, mirroring how a real aspect like Metrics implements both but
// others (a pure veto gate, a pure observer) only need one.
type beforeOnlyAspect struct {
	order int
	calls *[]string
}

func (b *beforeOnlyAspect) Order() int              { return b.order }
func (b *beforeOnlyAspect) New() Aspect             { return b }
func (b *beforeOnlyAspect) PointCut(Operation) bool { return true }
func (b *beforeOnlyAspect) Before(op Operation) (Operation, error) {
	*b.calls = append(*b.calls, "before-only")
	return op, nil
}

type afterOnlyAspect struct {
	order int
	calls *[]string
}

func (a *afterOnlyAspect) Order() int              { return a.order }
func (a *afterOnlyAspect) New() Aspect             { return a }
func (a *afterOnlyAspect) PointCut(Operation) bool { return true }
func (a *afterOnlyAspect) After(op Operation, opErr error) {
	*a.calls = append(*a.calls, "after-only")
}

func TestAspectListOrdering(t *testing.T) {
	var calls []string
	low := &fakeAspect{order: 10, calls: &calls, name: "validator"}
	mid := &fakeAspect{order: 500, calls: &calls, name: "metrics"}
	high := &fakeAspect{order: 900, calls: &calls, name: "debug"}

	list := AspectList{high, low, mid}

	befores := list.GetBeforeAspects()
	assert.Len(t, befores, 3)
	for _, b := range befores {
		_, err := b.Before(Operation{Action: "create", Kind: KindEntity})
		assert.NoError(t, err)
	}
	assert.Equal(t, []string{"validator", "metrics", "debug"}, calls)
}

func TestAspectListPartitionsByInterface(t *testing.T) {
	var calls []string
	beforeOnly := &beforeOnlyAspect{order: 1, calls: &calls}
	afterOnly := &afterOnlyAspect{order: 2, calls: &calls}

	list := AspectList{beforeOnly, afterOnly}

	assert.Len(t, list.GetBeforeAspects(), 1)
	assert.Len(t, list.GetAfterAspects(), 1)
}

func TestAspectListEmpty(t *testing.T) {
	var list AspectList
	assert.Empty(t, list.GetBeforeAspects())
	assert.Empty(t, list.GetAfterAspects())
}
