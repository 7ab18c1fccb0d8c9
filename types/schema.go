package types

import "math"

// Common vector/matrix aliases (§6.2). Matrices are row-major flat arrays,
// matching the wire format exactly so no transposition happens at the
// boundary.
type (
	Vec3 [3]float64
	Vec4 [4]float64
	Mat3 [9]float64
	Mat4 [16]float64
	RGB  = Vec3
	RGBA = Vec4
)

// Base carries the two fields every component has: its identifier and an
// optional informational name. Every concrete component kind embeds Base.
type Base struct {
	ID   ID     `structs:"id" json:"id"`
	Name string `structs:"name,omitempty" json:"name,omitempty"`
}

// ComponentID returns the component's own identifier. Every schema struct
// gets this for free via Base embedding, which is how the engine recovers a
// handle's identifier without a type switch over all thirteen kinds.
func (b Base) ComponentID() ID { return b.ID }

// ComponentName returns the component's informational name, used by the
// registry's by-name lookup (§4.2). Names are not unique.
func (b Base) ComponentName() string { return b.Name }

// Component is implemented by every concrete schema struct (via embedding
// Base) and by every behavior override (by embedding the base struct in
// turn).
type Component interface {
	ComponentID() ID
}

// --- enums -----------------------------------------------------------------

type AttributeSemantic string

const (
	SemanticPosition AttributeSemantic = "POSITION"
	SemanticNormal   AttributeSemantic = "NORMAL"
	SemanticTangent  AttributeSemantic = "TANGENT"
	SemanticTexture  AttributeSemantic = "TEXTURE"
	SemanticColor    AttributeSemantic = "COLOR"
)

type Format string

const (
	FormatU8      Format = "U8"
	FormatU16     Format = "U16"
	FormatU32     Format = "U32"
	FormatU8Vec4  Format = "U8VEC4"
	FormatU16Vec2 Format = "U16VEC2"
	FormatVec2    Format = "VEC2"
	FormatVec3    Format = "VEC3"
	FormatVec4    Format = "VEC4"
	FormatMat3    Format = "MAT3"
	FormatMat4    Format = "MAT4"
)

// FormatByteSize is the size in bytes of one element in the given format,
// used by the geometry authoring helpers (SPEC_FULL §C.6) to compute
// attribute offsets and strides.
var FormatByteSize = map[Format]int{
	FormatU8: 1, FormatU16: 2, FormatU32: 4,
	FormatU8Vec4: 4, FormatU16Vec2: 4,
	FormatVec2: 8, FormatVec3: 12, FormatVec4: 16,
	FormatMat3: 36, FormatMat4: 64,
}

type IndexFormat string

const (
	IndexFormatU8  IndexFormat = "U8"
	IndexFormatU16 IndexFormat = "U16"
	IndexFormatU32 IndexFormat = "U32"
)

type PrimitiveType string

const (
	PrimitivePoints        PrimitiveType = "POINTS"
	PrimitiveLines         PrimitiveType = "LINES"
	PrimitiveLineLoop      PrimitiveType = "LINE_LOOP"
	PrimitiveLineStrip     PrimitiveType = "LINE_STRIP"
	PrimitiveTriangles     PrimitiveType = "TRIANGLES"
	PrimitiveTriangleStrip PrimitiveType = "TRIANGLE_STRIP"
)

type ColumnType string

const (
	ColumnText    ColumnType = "TEXT"
	ColumnReal    ColumnType = "REAL"
	ColumnInteger ColumnType = "INTEGER"
)

type BufferType string

const (
	BufferTypeUnknown  BufferType = "UNK"
	BufferTypeGeometry BufferType = "GEOMETRY"
	BufferTypeImage    BufferType = "IMAGE"
)

type SamplerMode string

const (
	SamplerClampToEdge    SamplerMode = "CLAMP_TO_EDGE"
	SamplerMirroredRepeat SamplerMode = "MIRRORED_REPEAT"
	SamplerRepeat         SamplerMode = "REPEAT"
)

type MagFilter string

const (
	MagFilterNearest MagFilter = "NEAREST"
	MagFilterLinear  MagFilter = "LINEAR"
)

type MinFilter string

const (
	MinFilterNearest             MinFilter = "NEAREST"
	MinFilterLinear              MinFilter = "LINEAR"
	MinFilterLinearMipmapLinear  MinFilter = "LINEAR_MIPMAP_LINEAR"
)

// --- shared value records ---------------------------------------------------

type SelectionRange struct {
	KeyFromInclusive int `structs:"key_from_inclusive" json:"key_from_inclusive"`
	KeyToExclusive   int `structs:"key_to_exclusive" json:"key_to_exclusive"`
}

type Selection struct {
	Name      string           `structs:"name" json:"name"`
	Rows      []int            `structs:"rows,omitempty" json:"rows,omitempty"`
	RowRanges []SelectionRange `structs:"row_ranges,omitempty" json:"row_ranges,omitempty"`
}

type MethodArg struct {
	Name       string  `structs:"name" json:"name"`
	Doc        *string `structs:"doc,omitempty" json:"doc,omitempty"`
	EditorHint *string `structs:"editor_hint,omitempty" json:"editor_hint,omitempty"`
}

type BoundingBox struct {
	Min Vec3 `structs:"min" json:"min"`
	Max Vec3 `structs:"max" json:"max"`
}

type TextRepresentation struct {
	Txt    string  `structs:"txt" json:"txt"`
	Font   string  `structs:"font,omitempty" json:"font,omitempty"`
	Height float64 `structs:"height,omitempty" json:"height,omitempty"`
	Width  float64 `structs:"width,omitempty" json:"width,omitempty"`
}

type WebRepresentation struct {
	Source string  `structs:"source" json:"source"`
	Height float64 `structs:"height,omitempty" json:"height,omitempty"`
	Width  float64 `structs:"width,omitempty" json:"width,omitempty"`
}

type InstanceSource struct {
	View   BufferViewID `structs:"view" json:"view"`
	Stride int          `structs:"stride" json:"stride"`
	BB     *BoundingBox `structs:"bb,omitempty" json:"bb,omitempty"`
}

type RenderRepresentation struct {
	Mesh      GeometryID      `structs:"mesh" json:"mesh"`
	Instances *InstanceSource `structs:"instances,omitempty" json:"instances,omitempty"`
}

type TextureRef struct {
	Texture           TextureID `structs:"texture" json:"texture"`
	Transform         *Mat3     `structs:"transform,omitempty" json:"transform,omitempty"`
	TextureCoordSlot  int       `structs:"texture_coord_slot,omitempty" json:"texture_coord_slot,omitempty"`
}

type PBRInfo struct {
	BaseColor         RGBA        `structs:"base_color" json:"base_color"`
	BaseColorTexture  *TextureRef `structs:"base_color_texture,omitempty" json:"base_color_texture,omitempty"`
	Metallic          float64     `structs:"metallic" json:"metallic"`
	Roughness         float64     `structs:"roughness" json:"roughness"`
	MetalRoughTexture *TextureRef `structs:"metal_rough_texture,omitempty" json:"metal_rough_texture,omitempty"`
}

// DefaultPBRInfo mirrors the Python default_factory for Material.pbr_info.
func DefaultPBRInfo() PBRInfo {
	return PBRInfo{BaseColor: RGBA{1, 1, 1, 1}, Metallic: 1, Roughness: 1}
}

type PointLight struct {
	Range float64 `structs:"range" json:"range"`
}

type SpotLight struct {
	Range             float64 `structs:"range" json:"range"`
	InnerConeAngleRad float64 `structs:"inner_cone_angle_rad" json:"inner_cone_angle_rad"`
	OuterConeAngleRad float64 `structs:"outer_cone_angle_rad" json:"outer_cone_angle_rad"`
}

// DefaultSpotLight mirrors the Python default of pi/4 for the outer cone.
func DefaultSpotLight() SpotLight {
	return SpotLight{Range: -1, OuterConeAngleRad: math.Pi / 4}
}

type DirectionalLight struct {
	Range float64 `structs:"range" json:"range"`
}

type Attribute struct {
	View         BufferViewID      `structs:"view" json:"view"`
	Semantic     AttributeSemantic `structs:"semantic" json:"semantic"`
	Channel      *int              `structs:"channel,omitempty" json:"channel,omitempty"`
	Offset       int               `structs:"offset,omitempty" json:"offset,omitempty"`
	Stride       int               `structs:"stride,omitempty" json:"stride,omitempty"`
	Format       Format            `structs:"format" json:"format"`
	MinimumValue []float64         `structs:"minimum_value,omitempty" json:"minimum_value,omitempty"`
	MaximumValue []float64         `structs:"maximum_value,omitempty" json:"maximum_value,omitempty"`
	Normalized   bool              `structs:"normalized,omitempty" json:"normalized,omitempty"`
}

type Index struct {
	View   BufferViewID `structs:"view" json:"view"`
	Count  int          `structs:"count" json:"count"`
	Offset int          `structs:"offset,omitempty" json:"offset,omitempty"`
	Stride int          `structs:"stride,omitempty" json:"stride,omitempty"`
	Format IndexFormat  `structs:"format" json:"format"`
}

type GeometryPatch struct {
	Attributes  []Attribute `structs:"attributes" json:"attributes"`
	VertexCount int         `structs:"vertex_count" json:"vertex_count"`
	Indices     *Index      `structs:"indices,omitempty" json:"indices,omitempty"`
	Type        PrimitiveType `structs:"type" json:"type"`
	Material    MaterialID  `structs:"material" json:"material"`
}

// InvocationContext names which single entity/table/plot a signal or method
// invocation is scoped to. Exactly one field is set when a context is
// required (§3.2).
type InvocationContext struct {
	Entity *EntityID `structs:"entity,omitempty" json:"entity,omitempty"`
	Table  *TableID  `structs:"table,omitempty" json:"table,omitempty"`
	Plot   *PlotID   `structs:"plot,omitempty" json:"plot,omitempty"`
}

// SetCount returns how many of Entity/Table/Plot are non-nil.
func (c InvocationContext) SetCount() int {
	n := 0
	if c.Entity != nil {
		n++
	}
	if c.Table != nil {
		n++
	}
	if c.Plot != nil {
		n++
	}
	return n
}

type TableColumnInfo struct {
	Name string     `structs:"name" json:"name"`
	Type ColumnType `structs:"type" json:"type"`
}

// TableInitData is the payload of the table_reset signal (SPEC_FULL §C.5).
type TableInitData struct {
	Columns    []TableColumnInfo `structs:"columns" json:"columns"`
	Keys       []int             `structs:"keys" json:"keys"`
	Data       [][]any           `structs:"data" json:"data"`
	Selections []Selection       `structs:"selections,omitempty" json:"selections,omitempty"`
}

// --- the thirteen concrete component kinds ---------------------------------

type Method struct {
	Base
	Doc       *string     `structs:"doc,omitempty" json:"doc,omitempty"`
	ReturnDoc *string     `structs:"return_doc,omitempty" json:"return_doc,omitempty"`
	ArgDoc    []MethodArg `structs:"arg_doc,omitempty" json:"arg_doc,omitempty"`

	// Guard is a SPEC_FULL addition (§C.3): an optional expr-lang boolean
	// expression evaluated against {args, context} before dispatch. Empty
	// means unconditional dispatch, matching the original spec exactly.
	// Never serialized to clients - it is server-side dispatch policy.
	Guard string `structs:"-" json:"-"`
}

type Signal struct {
	Base
	Doc    *string     `structs:"doc,omitempty" json:"doc,omitempty"`
	ArgDoc []MethodArg `structs:"arg_doc,omitempty" json:"arg_doc,omitempty"`
}

type Entity struct {
	Base
	Parent     *EntityID             `structs:"parent,omitempty" json:"parent,omitempty"`
	Transform  *Mat4                 `structs:"transform,omitempty" json:"transform,omitempty"`
	TextRep    *TextRepresentation   `structs:"text_rep,omitempty" json:"text_rep,omitempty"`
	WebRep     *WebRepresentation    `structs:"web_rep,omitempty" json:"web_rep,omitempty"`
	RenderRep  *RenderRepresentation `structs:"render_rep,omitempty" json:"render_rep,omitempty"`
	Lights     []LightID             `structs:"lights,omitempty" json:"lights,omitempty"`
	Tables     []TableID             `structs:"tables,omitempty" json:"tables,omitempty"`
	Plots      []PlotID              `structs:"plots,omitempty" json:"plots,omitempty"`
	Tags       []string              `structs:"tags,omitempty" json:"tags,omitempty"`
	MethodsList []MethodID           `structs:"methods_list,omitempty" json:"methods_list,omitempty"`
	SignalsList []SignalID           `structs:"signals_list,omitempty" json:"signals_list,omitempty"`
	Influence  *BoundingBox          `structs:"influence,omitempty" json:"influence,omitempty"`
}

type Plot struct {
	Base
	Table       *TableID   `structs:"table,omitempty" json:"table,omitempty"`
	SimplePlot  *string    `structs:"simple_plot,omitempty" json:"simple_plot,omitempty"`
	URLPlot     *string    `structs:"url_plot,omitempty" json:"url_plot,omitempty"`
	MethodsList []MethodID `structs:"methods_list,omitempty" json:"methods_list,omitempty"`
	SignalsList []SignalID `structs:"signals_list,omitempty" json:"signals_list,omitempty"`
}

type Buffer struct {
	Base
	Size       uint64  `structs:"size" json:"size"`
	InlineBytes []byte `structs:"inline_bytes,omitempty" json:"inline_bytes,omitempty"`
	URIBytes   *string `structs:"uri_bytes,omitempty" json:"uri_bytes,omitempty"`
}

type BufferView struct {
	Base
	SourceBuffer BufferID   `structs:"source_buffer" json:"source_buffer"`
	Type         BufferType `structs:"type" json:"type"`
	Offset       uint64     `structs:"offset" json:"offset"`
	Length       uint64     `structs:"length" json:"length"`
}

type Material struct {
	Base
	PBRInfo                PBRInfo     `structs:"pbr_info" json:"pbr_info"`
	NormalTexture          *TextureRef `structs:"normal_texture,omitempty" json:"normal_texture,omitempty"`
	OcclusionTexture       *TextureRef `structs:"occlusion_texture,omitempty" json:"occlusion_texture,omitempty"`
	OcclusionTextureFactor float64     `structs:"occlusion_texture_factor,omitempty" json:"occlusion_texture_factor,omitempty"`
	EmissiveTexture        *TextureRef `structs:"emissive_texture,omitempty" json:"emissive_texture,omitempty"`
	EmissiveFactor         Vec3        `structs:"emissive_factor,omitempty" json:"emissive_factor,omitempty"`
	UseAlpha               bool        `structs:"use_alpha,omitempty" json:"use_alpha,omitempty"`
	AlphaCutoff            float64     `structs:"alpha_cutoff,omitempty" json:"alpha_cutoff,omitempty"`
	DoubleSided            bool        `structs:"double_sided,omitempty" json:"double_sided,omitempty"`
}

// DefaultMaterial mirrors the Python constructor defaults.
func DefaultMaterial() Material {
	return Material{
		PBRInfo:                DefaultPBRInfo(),
		OcclusionTextureFactor: 1.0,
		EmissiveFactor:         Vec3{1, 1, 1},
		AlphaCutoff:            0.5,
	}
}

type Image struct {
	Base
	BufferSource *BufferID `structs:"buffer_source,omitempty" json:"buffer_source,omitempty"`
	URISource    *string   `structs:"uri_source,omitempty" json:"uri_source,omitempty"`
}

type Texture struct {
	Base
	Image   ImageID    `structs:"image" json:"image"`
	Sampler *SamplerID `structs:"sampler,omitempty" json:"sampler,omitempty"`
}

type Sampler struct {
	Base
	MagFilter MagFilter   `structs:"mag_filter,omitempty" json:"mag_filter,omitempty"`
	MinFilter MinFilter   `structs:"min_filter,omitempty" json:"min_filter,omitempty"`
	WrapS     SamplerMode `structs:"wrap_s,omitempty" json:"wrap_s,omitempty"`
	WrapT     SamplerMode `structs:"wrap_t,omitempty" json:"wrap_t,omitempty"`
}

// DefaultSampler mirrors the Python constructor defaults.
func DefaultSampler() Sampler {
	return Sampler{
		MagFilter: MagFilterLinear,
		MinFilter: MinFilterLinearMipmapLinear,
		WrapS:     SamplerRepeat,
		WrapT:     SamplerRepeat,
	}
}

type Light struct {
	Base
	Color       RGB               `structs:"color,omitempty" json:"color,omitempty"`
	Intensity   float64           `structs:"intensity,omitempty" json:"intensity,omitempty"`
	Point       *PointLight       `structs:"point,omitempty" json:"point,omitempty"`
	Spot        *SpotLight        `structs:"spot,omitempty" json:"spot,omitempty"`
	Directional *DirectionalLight `structs:"directional,omitempty" json:"directional,omitempty"`
}

// DefaultLight mirrors the Python constructor defaults.
func DefaultLight() Light {
	return Light{Color: RGB{1, 1, 1}, Intensity: 1}
}

type Geometry struct {
	Base
	Patches []GeometryPatch `structs:"patches" json:"patches"`
}

type Table struct {
	Base
	Meta        *string    `structs:"meta,omitempty" json:"meta,omitempty"`
	MethodsList []MethodID `structs:"methods_list,omitempty" json:"methods_list,omitempty"`
	SignalsList []SignalID `structs:"signals_list,omitempty" json:"signals_list,omitempty"`
}

// --- communication records (never registered, never given an ID) -----------

type Invoke struct {
	ID         SignalID           `structs:"id" json:"id"`
	Context    *InvocationContext `structs:"context,omitempty" json:"context,omitempty"`
	SignalData []any              `structs:"signal_data" json:"signal_data"`
}

type Reply struct {
	InvokeID        string           `structs:"invoke_id" json:"invoke_id"`
	Result          any              `structs:"result,omitempty" json:"result,omitempty"`
	MethodException *MethodException `structs:"method_exception,omitempty" json:"method_exception,omitempty"`
}
