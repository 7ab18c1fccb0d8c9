// Package aspect collects optional AOP-style hooks into scene operations,
// adapted from the teacher's builtin/aspect package (chain_debug_aspect.go,
// chain_validator_aspect.go) down from rule-chain node execution to the
// flatter create/update/delete/invoke_signal operations a Scene exposes.
package aspect

import "github.com/noodles-run/noodles-server/types"

var (
	_ types.BeforeOperationAspect = (*Debug)(nil)
	_ types.AfterOperationAspect  = (*Debug)(nil)
)

// Debug logs every scene operation before and after it runs, the Go
// equivalent of the teacher's ChainDebug aspect - here through the
// project's types.Logger rather than fmt.Println, since every other
// package logs through that interface and this aspect should too.
type Debug struct {
	log types.Logger
}

// NewDebug builds a Debug aspect that logs through log. log may be nil, in
// which case types.DefaultLogger() is used.
func NewDebug(log types.Logger) *Debug {
	if log == nil {
		log = types.DefaultLogger()
	}
	return &Debug{log: log}
}

func (d *Debug) Order() int { return 900 }

func (d *Debug) New() types.Aspect { return &Debug{log: d.log} }

func (d *Debug) PointCut(types.Operation) bool { return true }

func (d *Debug) Before(op types.Operation) (types.Operation, error) {
	d.log.Debugf("aspect debug: before %s %s", op.Action, op.Kind)
	return op, nil
}

func (d *Debug) After(op types.Operation, opErr error) {
	if opErr != nil {
		d.log.Debugf("aspect debug: after %s %s failed: %v", op.Action, op.Kind, opErr)
		return
	}
	d.log.Debugf("aspect debug: after %s %s", op.Action, op.Kind)
}
