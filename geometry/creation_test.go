package geometry

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noodles-run/noodles-server/engine"
	"github.com/noodles-run/noodles-server/types"
)

func TestIndexFormatForBoundaries(t *testing.T) {
	assert.Equal(t, types.IndexFormatU8, indexFormatFor(0))
	assert.Equal(t, types.IndexFormatU8, indexFormatFor(255))
	assert.Equal(t, types.IndexFormatU16, indexFormatFor(256))
	assert.Equal(t, types.IndexFormatU16, indexFormatFor(65535))
	assert.Equal(t, types.IndexFormatU32, indexFormatFor(65536))
}

func TestLayoutAttributesAlwaysHasPositionAndNormal(t *testing.T) {
	layout := layoutAttributes(false, false, false)
	require.Len(t, layout, 2)
	assert.Equal(t, types.SemanticPosition, layout[0].semantic)
	assert.Equal(t, 0, layout[0].offset)
	assert.Equal(t, types.SemanticNormal, layout[1].semantic)
	assert.Equal(t, 12, layout[1].offset)
	assert.Equal(t, 24, layout[0].stride)
	assert.Equal(t, 24, layout[1].stride)
}

func TestLayoutAttributesAddsOptionalStreams(t *testing.T) {
	layout := layoutAttributes(true, true, true)
	var semantics []types.AttributeSemantic
	for _, a := range layout {
		semantics = append(semantics, a.semantic)
	}
	assert.Equal(t, []types.AttributeSemantic{
		types.SemanticPosition, types.SemanticNormal, types.SemanticTangent,
		types.SemanticTexture, types.SemanticColor,
	}, semantics)

	for _, a := range layout {
		if a.semantic == types.SemanticTexture || a.semantic == types.SemanticColor {
			assert.True(t, a.normalized)
		} else {
			assert.False(t, a.normalized)
		}
	}
}

func TestBuildPatchRejectsEmptyVertices(t *testing.T) {
	_, _, err := BuildPatch(PatchInput{})
	assert.Error(t, err)
}

func TestBuildPatchGeneratesNormalsWhenAbsent(t *testing.T) {
	input := PatchInput{
		Vertices: []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:  [][3]int{{0, 1, 2}},
	}
	patch, data, err := BuildPatch(input)
	require.NoError(t, err)
	assert.Equal(t, 3, patch.VertexCount)
	assert.NotEmpty(t, data)
	require.NotNil(t, patch.Indices)
	assert.Equal(t, 3, patch.Indices.Count)
	assert.Equal(t, types.IndexFormatU8, patch.Indices.Format)
}

func TestBuildPatchRespectsSuppliedNormals(t *testing.T) {
	custom := []types.Vec3{{9, 9, 9}, {9, 9, 9}, {9, 9, 9}}
	input := PatchInput{
		Vertices: []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Normals:  custom,
		Indices:  [][3]int{{0, 1, 2}},
	}
	patch, data, err := BuildPatch(input)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
	// The first vertex record's normal x component sits at the normal
	// attribute's offset; a generated normal would not be 9.
	normalX := math.Float32frombits(binary.LittleEndian.Uint32(data[patch.Attributes[1].Offset:]))
	assert.Equal(t, float32(9), normalX)
}

// fakePublisher records every buffer it is asked to publish out-of-band.
type fakePublisher struct {
	published [][]byte
}

func (f *fakePublisher) Publish(data []byte) string {
	f.published = append(f.published, data)
	return "http://bytehost.test/0"
}

func TestCreateGeometryFromPointsInlinesSmallBuffers(t *testing.T) {
	cfg := types.NewConfig(types.WithLogger(types.NopLogger{}))
	scene, err := engine.NewScene(cfg, noopBroadcaster{}, nil)
	require.NoError(t, err)

	input := PatchInput{
		Vertices: []types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:  [][3]int{{0, 1, 2}},
	}
	pub := &fakePublisher{}
	geo, err := CreateGeometryFromPoints(scene, "tri", input, pub)
	require.NoError(t, err)
	require.Len(t, geo.Patches, 1)
	assert.Empty(t, pub.published, "a small buffer must be inlined, not published out-of-band")
}

type noopBroadcaster struct{}

func (noopBroadcaster) Broadcast(engine.Frame) {}
