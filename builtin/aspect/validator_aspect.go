package aspect

import (
	"fmt"

	"github.com/noodles-run/noodles-server/types"
)

var _ types.BeforeOperationAspect = (*Validator)(nil)

// Validator rejects operations against a configurable set of kinds before
// they reach the scene, the same pre-initialization gatekeeping role the
// teacher's ChainValidator plays for rule chains (order 10, running ahead
// of every other aspect) - generalized here from chain-structure checks
// (cycle detection, endpoint restrictions) to a simple denylist, since a
// Scene has no chain topology to validate.
type Validator struct {
	DenyKinds map[types.Kind]bool
}

// NewValidator builds a Validator that rejects every operation (create,
// update, delete, and invoke_signal on a target) whose kind is in denyKinds.
func NewValidator(denyKinds ...types.Kind) *Validator {
	v := &Validator{DenyKinds: make(map[types.Kind]bool, len(denyKinds))}
	for _, k := range denyKinds {
		v.DenyKinds[k] = true
	}
	return v
}

func (v *Validator) Order() int { return 10 }

func (v *Validator) New() types.Aspect {
	return &Validator{DenyKinds: v.DenyKinds}
}

func (v *Validator) PointCut(op types.Operation) bool {
	return v.DenyKinds[op.Kind]
}

func (v *Validator) Before(op types.Operation) (types.Operation, error) {
	return op, &types.InvalidAttributesError{
		Kind: op.Kind,
		Err:  fmt.Errorf("kind %s is denied by policy", op.Kind),
	}
}
