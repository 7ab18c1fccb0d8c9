package types

import "io"

// OverrideRegistry looks up a behavior-override constructor for a kind. The
// concrete implementation (engine.OverrideRegistry) lives in the engine
// package; Config only needs the interface to stay import-cycle free, the
// same separation the teacher's ComponentRegistry/Config split uses.
type OverrideRegistry interface {
	// New returns a newly constructed override for kind, or (nil, false) if
	// no override is registered - the scene then uses the base schema
	// struct unmodified.
	New(kind Kind) (any, bool)
}

// Config is the scene engine's functional-options configuration, following
// the same shape as the teacher's types.Config/types.NewConfig(opts...).
type Config struct {
	// Overrides supplies behavior-override constructors per kind (§4.8).
	// Defaults to an empty registry - no kind is overridden.
	Overrides OverrideRegistry

	// Logger receives every log line the engine and transport packages
	// emit. Defaults to DefaultLogger().
	Logger Logger

	// FrameLog, when set, receives a JSON projection of every frame the
	// Scene broadcasts (tag plus decoded wire dict); introductions and
	// replies sent to a single connection are not logged -
	// the Go equivalent of rigatoni's json_output replay log (SPEC_FULL
	// §C.4). Nil disables frame logging entirely, which is the default.
	FrameLog io.Writer

	// Properties carries arbitrary user-supplied configuration, mirroring
	// the teacher's Config.Properties bag.
	Properties map[string]any

	// Aspects are AOP-style hooks around scene operations (SPEC_FULL
	// builtin/aspect package), mirroring the teacher's Config.Aspects -
	// each is given its own isolated instance per Scene via Aspect.New().
	Aspects AspectList
}

// NewConfig builds a Config, applying defaults first and then every given
// Option in order, mirroring engine.NewConfig in the teacher.
func NewConfig(opts ...Option) Config {
	c := Config{
		Overrides:  emptyOverrideRegistry{},
		Logger:     DefaultLogger(),
		Properties: make(map[string]any),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		_ = opt(&c)
	}
	return c
}

type emptyOverrideRegistry struct{}

func (emptyOverrideRegistry) New(Kind) (any, bool) { return nil, false }
