package metadata

/**
 * @brief The object-creation side of a GPU backend. Create calls return a
 * non-null handle or an error; Destroy calls never fail and must be given
 * handles created by the same Device.
 */
type Device interface {
	CreateShaderModule(code []uint32) (ShaderModule, error)
	DestroyShaderModule(module ShaderModule)

	CreateDescriptorSetLayout(bindings []DescriptorSetLayoutBinding) (DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(layout DescriptorSetLayout)

	CreateDescriptorPool(maxSets uint32, sizes []DescriptorPoolSize) (DescriptorPool, error)
	/** @brief Destroys the pool and implicitly frees every set allocated from it. */
	DestroyDescriptorPool(pool DescriptorPool)
	AllocateDescriptorSet(pool DescriptorPool, layout DescriptorSetLayout) (DescriptorSet, error)
	UpdateDescriptorSets(writes []WriteDescriptorSet) error

	/** @brief Creates a pipeline layout; set i of the layout is setLayouts[i]. */
	CreatePipelineLayout(setLayouts []DescriptorSetLayout) (PipelineLayout, error)
	DestroyPipelineLayout(layout PipelineLayout)

	CreateGraphicsPipeline(cache PipelineCache, description *GraphicsPipelineDescription) (Pipeline, error)
	DestroyPipeline(pipeline Pipeline)

	/** @brief Creates a host-writable buffer of the given size in bytes. */
	CreateBuffer(size uint64, usage BufferUsage) (Buffer, error)
	DestroyBuffer(buffer Buffer)
	WriteBuffer(buffer Buffer, offset uint64, data []byte) error

	/** @brief Attaches a debug name to an object for tooling. Best effort. */
	SetObjectName(objectType ObjectType, handle uint64, name string)
}

/**
 * @brief Appends commands to a command buffer that is currently recording.
 * Nothing is executed until the caller submits the buffer.
 */
type CommandRecorder interface {
	BindPipeline(bindPoint PipelineBindPoint, pipeline Pipeline)
	BindDescriptorSets(bindPoint PipelineBindPoint, layout PipelineLayout, firstSet uint32, sets []DescriptorSet)
	DrawIndirect(buffer Buffer, offset uint64, drawCount uint32, stride uint32)
}

/**
 * @brief Shared rendering state owned by the frame setup. It must outlive
 * every renderer built against it and does not change while they exist.
 */
type RenderContext interface {
	Device() Device
	/** @brief Layout of descriptor set 0, bound by the frame setup for every renderer. */
	CommonLayout() DescriptorSetLayout
	RenderPass() RenderPass
	Subpass() uint32
	PipelineCache() PipelineCache
}
