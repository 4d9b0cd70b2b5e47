package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

/**
 * @brief A buffer backed by its own host-visible, host-coherent allocation.
 */
type vulkanBuffer struct {
	handle vk.Buffer
	memory vk.DeviceMemory
	size   uint64
}

func (d *VulkanDevice) CreateBuffer(size uint64, usage metadata.BufferUsage) (metadata.Buffer, error) {
	if size == 0 {
		return 0, fmt.Errorf("vkCreateBuffer: size is 0: %w", core.ErrPrecondition)
	}

	createInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       vulkanBufferUsage(usage),
		SharingMode: vk.SharingModeExclusive,
	}

	buffer := &vulkanBuffer{size: size}
	if err := d.lockPool.SafeCall(BufferManagement, func() error {
		result := vk.CreateBuffer(d.LogicalDevice, &createInfo, d.Allocator, &buffer.handle)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("vkCreateBuffer failed with %s", VulkanResultString(result, true))
			core.LogError("%s", err.Error())
			return err
		}
		return nil
	}); err != nil {
		return 0, err
	}

	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(d.LogicalDevice, buffer.handle, &requirements)
	requirements.Deref()

	properties := uint32(vk.MemoryPropertyHostVisibleBit) | uint32(vk.MemoryPropertyHostCoherentBit)
	memoryIndex := d.FindMemoryIndex(requirements.MemoryTypeBits, properties)
	if memoryIndex == -1 {
		vk.DestroyBuffer(d.LogicalDevice, buffer.handle, d.Allocator)
		err := fmt.Errorf("unable to create buffer because the required memory type index was not found")
		core.LogError("%s", err.Error())
		return 0, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: uint32(memoryIndex),
	}

	if err := d.lockPool.SafeCall(MemoryManagement, func() error {
		result := vk.AllocateMemory(d.LogicalDevice, &allocateInfo, d.Allocator, &buffer.memory)
		if !VulkanResultIsSuccess(result) {
			return fmt.Errorf("vkAllocateMemory failed with %s", VulkanResultString(result, true))
		}
		result = vk.BindBufferMemory(d.LogicalDevice, buffer.handle, buffer.memory, 0)
		if !VulkanResultIsSuccess(result) {
			vk.FreeMemory(d.LogicalDevice, buffer.memory, d.Allocator)
			return fmt.Errorf("vkBindBufferMemory failed with %s", VulkanResultString(result, true))
		}
		return nil
	}); err != nil {
		core.LogError("%s", err.Error())
		vk.DestroyBuffer(d.LogicalDevice, buffer.handle, d.Allocator)
		return 0, err
	}

	return metadata.Buffer(d.registry.add(metadata.OBJECT_TYPE_BUFFER, buffer, false)), nil
}

func (d *VulkanDevice) DestroyBuffer(handle metadata.Buffer) {
	object, err := d.registry.remove(metadata.OBJECT_TYPE_BUFFER, uint64(handle))
	if err != nil {
		core.LogWarn("DestroyBuffer: %s", err)
		return
	}
	buffer := object.(*vulkanBuffer)
	_ = d.lockPool.SafeCall(BufferManagement, func() error {
		vk.DestroyBuffer(d.LogicalDevice, buffer.handle, d.Allocator)
		vk.FreeMemory(d.LogicalDevice, buffer.memory, d.Allocator)
		return nil
	})
}

func (d *VulkanDevice) WriteBuffer(handle metadata.Buffer, offset uint64, data []byte) error {
	object, err := d.registry.get(metadata.OBJECT_TYPE_BUFFER, uint64(handle))
	if err != nil {
		return err
	}
	buffer := object.(*vulkanBuffer)
	if offset > buffer.size || uint64(len(data)) > buffer.size-offset {
		return fmt.Errorf("write of %d bytes at %d exceeds buffer size %d: %w", len(data), offset, buffer.size, core.ErrPrecondition)
	}
	if len(data) == 0 {
		return nil
	}

	return d.lockPool.SafeCall(MemoryManagement, func() error {
		var mapped unsafe.Pointer
		result := vk.MapMemory(d.LogicalDevice, buffer.memory, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &mapped)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("vkMapMemory failed with %s", VulkanResultString(result, true))
			core.LogError("%s", err.Error())
			return err
		}
		vk.Memcopy(mapped, data)
		vk.UnmapMemory(d.LogicalDevice, buffer.memory)
		return nil
	})
}
