package engine

import "github.com/noodles-run/noodles-server/types"

// NewConfig builds a types.Config and applies sensible package-level
// defaults, mirroring the teacher's engine.NewConfig (which defaults
// Parser/ComponentsRegistry on top of types.NewConfig's own defaults).
// Here the only engine-level default is Overrides, which types.NewConfig
// cannot provide itself without importing this package back.
func NewConfig(opts ...types.Option) types.Config {
	c := types.NewConfig(opts...)
	if c.Overrides == nil {
		c.Overrides = NewOverrideRegistry()
	}
	return c
}
