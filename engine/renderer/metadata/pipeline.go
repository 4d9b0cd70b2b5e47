package metadata

/** @brief Entry point name shared by every shader stage. */
const SHADER_ENTRY_POINT = "main"

/**
 * @brief A single programmable stage of a graphics pipeline.
 */
type ShaderStageDescription struct {
	/** @brief The stage this module runs in. Exactly one bit. */
	Stage ShaderStage
	/** @brief The module holding the SPIR-V code. */
	Module ShaderModule
	/** @brief The entry point to invoke. */
	EntryPoint string
}

/**
 * @brief Vertex fetch configuration. Left empty when vertex data is pulled
 * from a storage buffer instead.
 */
type VertexInputState struct {
	Bindings   []VertexInputBinding
	Attributes []VertexInputAttribute
}

type VertexInputBinding struct {
	Binding uint32
	Stride  uint32
}

type VertexInputAttribute struct {
	Location uint32
	Binding  uint32
	Offset   uint32
}

type RasterizationState struct {
	CullMode    FaceCullMode
	FrontFace   FrontFace
	PolygonMode PolygonMode
	LineWidth   float32
}

type StencilOpState struct {
	FailOp      StencilOp
	PassOp      StencilOp
	DepthFailOp StencilOp
	CompareOp   CompareOp
	CompareMask uint32
	WriteMask   uint32
	Reference   uint32
}

/** @brief Stencil state that leaves the stencil buffer untouched. */
var NoopStencilState = StencilOpState{
	FailOp:      StencilOpKeep,
	PassOp:      StencilOpKeep,
	DepthFailOp: StencilOpKeep,
	CompareOp:   CompareOpAlways,
}

type DepthStencilState struct {
	DepthTestEnable   bool
	DepthWriteEnable  bool
	DepthCompareOp    CompareOp
	StencilTestEnable bool
	Front             StencilOpState
	Back              StencilOpState
}

type ColorBlendAttachment struct {
	BlendEnable         bool
	SrcColorBlendFactor BlendFactor
	DstColorBlendFactor BlendFactor
	ColorBlendOp        BlendOp
	SrcAlphaBlendFactor BlendFactor
	DstAlphaBlendFactor BlendFactor
	AlphaBlendOp        BlendOp
	ColorWriteMask      ColorComponentFlags
}

/**
 * @brief Everything a backend needs to build a graphics pipeline. Two equal
 * descriptions always produce equivalent pipelines.
 */
type GraphicsPipelineDescription struct {
	Stages        []ShaderStageDescription
	VertexInput   VertexInputState
	Topology      PrimitiveTopology
	ViewportCount uint32
	ScissorCount  uint32
	Rasterization RasterizationState
	Samples       SampleCount
	DepthStencil  DepthStencilState
	/** @brief One entry per colour attachment of the subpass. */
	ColorBlendAttachments []ColorBlendAttachment
	DynamicStates         []DynamicState
	Layout                PipelineLayout
	RenderPass            RenderPass
	Subpass               uint32
}
