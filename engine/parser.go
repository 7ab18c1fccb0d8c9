package engine

import (
	"encoding/json"

	"github.com/noodles-run/noodles-server/types"
)

// JSONParser decodes a scene's starting-state definition from JSON,
// mirroring the teacher's JsonParser (engine/parser.go) retargeted from
// rule-chain definitions onto a flat list of starting components. The
// teacher's own parser delegates to an internal rule/utils/json helper
// that was not part of the retrieved pack (see DESIGN.md); this repo uses
// encoding/json directly, which is the idiomatic choice absent that helper.
type JSONParser struct{}

// startingComponentDef is the on-the-wire JSON shape of one entry; Handler
// cannot be expressed in JSON; callers attach method handlers after parsing
// by matching types.StartingComponent.Attrs["name"].
type startingComponentDef struct {
	Kind  string         `json:"kind"`
	Attrs map[string]any `json:"attrs"`
}

var kindByName = map[string]types.Kind{
	"method": types.KindMethod, "signal": types.KindSignal,
	"entity": types.KindEntity, "plot": types.KindPlot,
	"buffer": types.KindBuffer, "buffer_view": types.KindBufferView,
	"material": types.KindMaterial, "image": types.KindImage,
	"texture": types.KindTexture, "sampler": types.KindSampler,
	"light": types.KindLight, "geometry": types.KindGeometry,
	"table": types.KindTable,
}

// DecodeStartingComponents parses a JSON array of {kind, attrs} objects
// into starting components (SPEC_FULL §C.2).
func (p *JSONParser) DecodeStartingComponents(data []byte) ([]types.StartingComponent, error) {
	var defs []startingComponentDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, err
	}
	out := make([]types.StartingComponent, 0, len(defs))
	for _, d := range defs {
		kind, ok := kindByName[d.Kind]
		if !ok {
			return nil, &types.InvalidAttributesError{Err: errUnknownKindName(d.Kind)}
		}
		out = append(out, types.StartingComponent{Kind: kind, Attrs: d.Attrs})
	}
	return out, nil
}

// EncodeStartingComponents is the inverse of DecodeStartingComponents,
// mirroring the teacher's symmetric Encode/Decode pairing.
func (p *JSONParser) EncodeStartingComponents(components []types.StartingComponent) ([]byte, error) {
	defs := make([]startingComponentDef, 0, len(components))
	for _, c := range components {
		name := ""
		for n, k := range kindByName {
			if k == c.Kind {
				name = n
				break
			}
		}
		defs = append(defs, startingComponentDef{Kind: name, Attrs: c.Attrs})
	}
	return json.MarshalIndent(defs, "", "  ")
}

type errUnknownKindName string

func (e errUnknownKindName) Error() string { return "unknown component kind name: " + string(e) }
