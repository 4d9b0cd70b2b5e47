package metadata

/** @brief Range value meaning "from offset to the end of the buffer". */
const WHOLE_SIZE uint64 = ^uint64(0)

type DescriptorType int

const (
	DescriptorTypeUniformBuffer DescriptorType = iota
	DescriptorTypeStorageBuffer
	DescriptorTypeCombinedImageSampler
)

/**
 * @brief One slot of a descriptor set layout.
 */
type DescriptorSetLayoutBinding struct {
	/** @brief The binding index inside the set. */
	Binding         uint32
	DescriptorType  DescriptorType
	DescriptorCount uint32
	/** @brief Shader stages that can access the binding. */
	StageFlags ShaderStage
}

type DescriptorPoolSize struct {
	Type            DescriptorType
	DescriptorCount uint32
}

type DescriptorBufferInfo struct {
	Buffer Buffer
	Offset uint64
	Range  uint64
}

/**
 * @brief A write of buffer descriptors into a set.
 */
type WriteDescriptorSet struct {
	DstSet          DescriptorSet
	DstBinding      uint32
	DstArrayElement uint32
	DescriptorType  DescriptorType
	BufferInfo      []DescriptorBufferInfo
}
