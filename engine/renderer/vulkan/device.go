package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

var (
	_ metadata.Device          = (*VulkanDevice)(nil)
	_ metadata.RenderContext   = (*VulkanContext)(nil)
	_ metadata.CommandRecorder = (*VulkanCommandBuffer)(nil)
)

/**
 * @brief A function attaching a debug name to a Vulkan object, supplied by the
 * frame setup when a debug-utils messenger is active.
 */
type DebugNamer func(objectType metadata.ObjectType, object interface{}, name string)

/**
 * @brief The logical device the renderers create their objects on. Instance,
 * physical device selection, queues and swapchain belong to the frame setup;
 * this type only wraps what they hand over and implements metadata.Device on
 * top of it.
 */
type VulkanDevice struct {
	PhysicalDevice vk.PhysicalDevice
	LogicalDevice  vk.Device
	Memory         vk.PhysicalDeviceMemoryProperties
	Allocator      *vk.AllocationCallbacks

	// Optional. When nil, names are only logged.
	DebugNamer DebugNamer

	lockPool *VulkanLockPool
	registry *handleRegistry
}

func NewVulkanDevice(physical vk.PhysicalDevice, logical vk.Device, allocator *vk.AllocationCallbacks) (*VulkanDevice, error) {
	if physical == nil || logical == nil {
		return nil, fmt.Errorf("vulkan device: physical and logical device are required: %w", core.ErrPrecondition)
	}

	d := &VulkanDevice{
		PhysicalDevice: physical,
		LogicalDevice:  logical,
		Allocator:      allocator,
		lockPool:       NewVulkanLockPool(),
		registry:       newHandleRegistry(),
	}
	vk.GetPhysicalDeviceMemoryProperties(physical, &d.Memory)
	d.Memory.Deref()

	core.LogInfo("Vulkan device wrapped (%d memory types).", d.Memory.MemoryTypeCount)
	return d, nil
}

func (d *VulkanDevice) FindMemoryIndex(typeFilter, propertyFlags uint32) int32 {
	for i := uint32(0); i < d.Memory.MemoryTypeCount; i++ {
		// Check each memory type to see if its bit is set to 1.
		d.Memory.MemoryTypes[i].Deref()
		if (typeFilter&(1<<i)) != 0 && (uint32(d.Memory.MemoryTypes[i].PropertyFlags)&propertyFlags) == propertyFlags {
			return int32(i)
		}
	}
	core.LogWarn("Unable to find suitable memory type!")
	return -1
}

// Import registers an object created outside this device (a render pass, the
// frame's descriptor set layout) so it can be referred to by handle. Imported
// objects are never destroyed through this device.
func (d *VulkanDevice) Import(objectType metadata.ObjectType, object interface{}) uint64 {
	return d.registry.add(objectType, object, true)
}

func (d *VulkanDevice) SetObjectName(objectType metadata.ObjectType, handle uint64, name string) {
	object, err := d.registry.get(objectType, handle)
	if err != nil {
		core.LogWarn("cannot name %s: %s", objectType, err)
		return
	}
	if d.DebugNamer == nil {
		core.LogDebug("%s#%d is named '%s'", objectType, handle, name)
		return
	}
	d.DebugNamer(objectType, object, name)
}
