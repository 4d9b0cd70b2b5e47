package metadata

// GPU object handles are opaque identifiers minted by a Device. The zero
// value of every handle type is the null handle.
type (
	ShaderModule        uint64
	DescriptorSetLayout uint64
	DescriptorPool      uint64
	DescriptorSet       uint64
	PipelineLayout      uint64
	Pipeline            uint64
	PipelineCache       uint64
	RenderPass          uint64
	Buffer              uint64
)

/** @brief The kind of object a handle refers to. Used for debug naming and lifetime tracking. */
type ObjectType int

const (
	OBJECT_TYPE_UNKNOWN ObjectType = iota
	OBJECT_TYPE_SHADER_MODULE
	OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT
	OBJECT_TYPE_DESCRIPTOR_POOL
	OBJECT_TYPE_DESCRIPTOR_SET
	OBJECT_TYPE_PIPELINE_LAYOUT
	OBJECT_TYPE_PIPELINE
	OBJECT_TYPE_PIPELINE_CACHE
	OBJECT_TYPE_RENDER_PASS
	OBJECT_TYPE_BUFFER
)

func (o ObjectType) String() string {
	switch o {
	case OBJECT_TYPE_SHADER_MODULE:
		return "shader_module"
	case OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT:
		return "descriptor_set_layout"
	case OBJECT_TYPE_DESCRIPTOR_POOL:
		return "descriptor_pool"
	case OBJECT_TYPE_DESCRIPTOR_SET:
		return "descriptor_set"
	case OBJECT_TYPE_PIPELINE_LAYOUT:
		return "pipeline_layout"
	case OBJECT_TYPE_PIPELINE:
		return "pipeline"
	case OBJECT_TYPE_PIPELINE_CACHE:
		return "pipeline_cache"
	case OBJECT_TYPE_RENDER_PASS:
		return "render_pass"
	case OBJECT_TYPE_BUFFER:
		return "buffer"
	default:
		return "unknown"
	}
}
