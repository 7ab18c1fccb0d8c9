// Package transport implements the WebSocket connection loop and CBOR wire
// codec described by spec.md §4.9: handshake, introduction, and the
// steady-state invoke/reply exchange, plus fan-out broadcast to every
// connected client. The scene engine never imports this package; it only
// ever calls back through engine.Broadcaster.
package transport

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/noodles-run/noodles-server/engine"
)

// encMode and decMode are shared across every connection; fxamacker/cbor's
// Mode values are safe for concurrent use once built, so building them once
// at package init avoids re-validating options per message, mirroring the
// way rigatoni.core reuses the module-level cbor2 loads/dumps functions.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	encMode, err = cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("transport: building CBOR encode mode: %v", err))
	}
	decMode, err = cbor.DecOptions{}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("transport: building CBOR decode mode: %v", err))
	}
}

// encodeFrame serializes frame to CBOR, the wire representation of every
// NOODLES message (spec.md §4.5: "the outbound frame is the flat sequence
// [tag, dict, tag, dict, ...]").
func encodeFrame(frame engine.Frame) ([]byte, error) {
	return encMode.Marshal([]any(frame))
}

// decodeFrame parses a raw client message into its flat tag/dict sequence.
func decodeFrame(raw []byte) (engine.Frame, error) {
	var frame []any
	if err := decMode.Unmarshal(raw, &frame); err != nil {
		return nil, err
	}
	return engine.Frame(frame), nil
}

// decodeDict normalizes a decoded CBOR map into map[string]any - cbor/v2
// decodes map keys typed as `any` into `any`, which for a map with string
// keys comes back as map[any]any's Go equivalent only when the target is
// also `any`; since every NOODLES dict key is a string, the conversion here
// is exhaustive rather than best-effort.
func decodeDict(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	default:
		return nil, false
	}
}
