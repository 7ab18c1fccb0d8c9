// Package geometry is a reference authoring library that builds Geometry
// components out of raw point/index data - a library utility that calls
// into the scene engine through its public Create API like any other
// client, with no special access (SPEC_FULL §C.6). Grounded on
// original_source/rigatoni/geometry/geometry_creation.py's
// set_up_attributes/build_geometry_buffer/build_geometry_patch/get_format.
package geometry

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/noodles-run/noodles-server/engine"
	"github.com/noodles-run/noodles-server/types"
)

// inlineLimit mirrors geometry_creation.py's INLINE_LIMIT: buffers larger
// than this are published out-of-band via a bytehost.Publisher instead of
// being inlined into the Buffer component.
const inlineLimit = 10000

// indexFormatFor picks the smallest index format that can address
// vertexCount vertices, mirroring get_format.
func indexFormatFor(vertexCount int) types.IndexFormat {
	switch {
	case vertexCount < 256:
		return types.IndexFormatU8
	case vertexCount < 65536:
		return types.IndexFormatU16
	default:
		return types.IndexFormatU32
	}
}

// attributeLayout is one entry of the interleaved vertex layout computed by
// layoutAttributes, mirroring set_up_attributes' AttributeInput list before
// it is turned into wire types.Attribute records.
type attributeLayout struct {
	semantic   types.AttributeSemantic
	format     types.Format
	normalized bool
	offset     int
	stride     int
}

// layoutAttributes decides which attribute streams are present (normals are
// always present - generated by the caller if not supplied - colors and
// textures only if given) and assigns byte offsets/strides within one
// interleaved vertex record, mirroring set_up_attributes. Texture/color
// attributes are marked normalized, matching the Python constants exactly.
func layoutAttributes(hasTangents, hasTextures, hasColors bool) []attributeLayout {
	layout := []attributeLayout{
		{semantic: types.SemanticPosition, format: types.FormatVec3},
		{semantic: types.SemanticNormal, format: types.FormatVec3},
	}
	if hasTangents {
		layout = append(layout, attributeLayout{semantic: types.SemanticTangent, format: types.FormatVec3})
	}
	if hasTextures {
		layout = append(layout, attributeLayout{semantic: types.SemanticTexture, format: types.FormatU16Vec2, normalized: true})
	}
	if hasColors {
		layout = append(layout, attributeLayout{semantic: types.SemanticColor, format: types.FormatU8Vec4, normalized: true})
	}

	offset := 0
	for i := range layout {
		layout[i].offset = offset
		offset += types.FormatByteSize[layout[i].format]
	}
	for i := range layout {
		layout[i].stride = offset
	}
	return layout
}

// PatchInput is the raw data for one geometry patch, mirroring
// GeometryPatchInput (geometry_objects.py).
type PatchInput struct {
	Vertices  []types.Vec3
	Normals   []types.Vec3 // generated via GenerateNormals if nil
	Tangents  []types.Vec3
	Textures  [][2]uint16
	Colors    [][4]uint8
	Indices   [][3]int
	IndexType types.PrimitiveType
	Material  types.MaterialID
}

// buildInterleavedBuffer packs every present attribute stream plus the
// index stream into one little-endian byte buffer, mirroring
// build_geometry_buffer's per-point, per-attribute np.array(...).tobytes()
// loop followed by the appended index bytes.
func buildInterleavedBuffer(input PatchInput, layout []attributeLayout, indexFormat types.IndexFormat) (data []byte, indexOffset int) {
	var buf bytes.Buffer
	for i := range input.Vertices {
		for _, attr := range layout {
			switch attr.semantic {
			case types.SemanticPosition:
				writeVec3(&buf, input.Vertices[i])
			case types.SemanticNormal:
				writeVec3(&buf, input.Normals[i])
			case types.SemanticTangent:
				writeVec3(&buf, input.Tangents[i])
			case types.SemanticTexture:
				binary.Write(&buf, binary.LittleEndian, input.Textures[i][0])
				binary.Write(&buf, binary.LittleEndian, input.Textures[i][1])
			case types.SemanticColor:
				buf.Write(input.Colors[i][:])
			}
		}
	}

	indexOffset = buf.Len()
	for _, tri := range input.Indices {
		for _, v := range tri {
			writeIndex(&buf, v, indexFormat)
		}
	}
	return buf.Bytes(), indexOffset
}

func writeVec3(buf *bytes.Buffer, v types.Vec3) {
	for _, c := range v {
		binary.Write(buf, binary.LittleEndian, float32(c))
	}
}

func writeIndex(buf *bytes.Buffer, v int, format types.IndexFormat) {
	switch format {
	case types.IndexFormatU8:
		buf.WriteByte(byte(v))
	case types.IndexFormatU16:
		binary.Write(buf, binary.LittleEndian, uint16(v))
	default:
		binary.Write(buf, binary.LittleEndian, uint32(v))
	}
}

// Publisher is satisfied by bytehost.Host; declared here as its own
// interface with the same method so this package does not need to import
// bytehost just to accept one (SPEC_FULL §C.7).
type Publisher interface {
	Publish(data []byte) (uri string)
}

// BuildPatch lays out input into an interleaved vertex+index byte buffer
// and returns the GeometryPatch record describing it, alongside the raw
// bytes the caller must wrap in a Buffer component - mirroring
// build_geometry_patch minus the Buffer/BufferView component creation,
// which CreateGeometryFromPoints performs against a live Scene.
func BuildPatch(input PatchInput) (types.GeometryPatch, []byte, error) {
	if len(input.Vertices) == 0 {
		return types.GeometryPatch{}, nil, fmt.Errorf("geometry: no vertices supplied")
	}
	if input.Normals == nil {
		input.Normals = GenerateNormals(input.Vertices, input.Indices)
	}

	layout := layoutAttributes(len(input.Tangents) > 0, len(input.Textures) > 0, len(input.Colors) > 0)
	indexFormat := indexFormatFor(len(input.Vertices))
	data, indexOffset := buildInterleavedBuffer(input, layout, indexFormat)

	patch := types.GeometryPatch{
		VertexCount: len(input.Vertices),
		Type:        input.IndexType,
		Material:    input.Material,
		Indices: &types.Index{
			Count:  len(input.Indices) * 3,
			Offset: indexOffset,
			Format: indexFormat,
		},
	}
	for _, a := range layout {
		patch.Attributes = append(patch.Attributes, types.Attribute{
			Semantic:   a.semantic,
			Format:     a.format,
			Normalized: a.normalized,
			Offset:     a.offset,
			Stride:     a.stride,
		})
	}
	return patch, data, nil
}

// CreateGeometryFromPoints builds one patch from input, wires the resulting
// bytes through a Buffer+BufferView, and creates the Geometry component -
// exactly as a hand-written client of the public Scene API would (§C.6).
// If pub is non-nil and the packed buffer exceeds the inline limit, the
// bytes are published out-of-band and the Buffer carries a URI instead of
// inlining them (mirrors build_geometry_buffer's INLINE_LIMIT branch).
func CreateGeometryFromPoints(scene *engine.Scene, name string, input PatchInput, pub Publisher) (types.Geometry, error) {
	patch, data, err := BuildPatch(input)
	if err != nil {
		return types.Geometry{}, err
	}

	bufferArg := types.Buffer{Base: types.Base{Name: name}, Size: uint64(len(data))}
	if len(data) > inlineLimit && pub != nil {
		bufferArg.URIBytes = strPtr(pub.Publish(data))
	} else {
		bufferArg.InlineBytes = data
	}

	buffer, err := engine.CreateBuffer(scene, bufferArg)
	if err != nil {
		return types.Geometry{}, fmt.Errorf("geometry: creating buffer: %w", err)
	}

	view, err := engine.CreateBufferView(scene, types.BufferView{
		Base:         types.Base{Name: name},
		SourceBuffer: buffer.ComponentID(),
		Type:         types.BufferTypeGeometry,
		Length:       buffer.Size,
	})
	if err != nil {
		return types.Geometry{}, fmt.Errorf("geometry: creating buffer view: %w", err)
	}

	viewID := view.ComponentID()
	for i := range patch.Attributes {
		patch.Attributes[i].View = viewID
	}
	patch.Indices.View = viewID

	geo, err := engine.CreateGeometry(scene, types.Geometry{
		Base:    types.Base{Name: name},
		Patches: []types.GeometryPatch{patch},
	})
	if err != nil {
		return types.Geometry{}, fmt.Errorf("geometry: creating geometry: %w", err)
	}
	return geo, nil
}

func strPtr(s string) *string { return &s }
