package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

/**
 * @brief The state the frame setup shares with every renderer: the device,
 * the layout of descriptor set 0, the main render pass and subpass, and the
 * pipeline cache. Implements metadata.RenderContext.
 */
type VulkanContext struct {
	device *VulkanDevice

	commonLayout  metadata.DescriptorSetLayout
	renderPass    metadata.RenderPass
	subpass       uint32
	pipelineCache metadata.PipelineCache
}

// NewVulkanContext imports the frame's objects into device. cache may be
// vk.NullPipelineCache.
func NewVulkanContext(
	device *VulkanDevice,
	commonLayout vk.DescriptorSetLayout,
	renderPass vk.RenderPass,
	subpass uint32,
	cache vk.PipelineCache,
) *VulkanContext {
	vc := &VulkanContext{
		device:       device,
		commonLayout: metadata.DescriptorSetLayout(device.Import(metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT, commonLayout)),
		renderPass:   metadata.RenderPass(device.Import(metadata.OBJECT_TYPE_RENDER_PASS, renderPass)),
		subpass:      subpass,
	}
	if cache != vk.NullPipelineCache {
		vc.pipelineCache = metadata.PipelineCache(device.Import(metadata.OBJECT_TYPE_PIPELINE_CACHE, cache))
	}
	return vc
}

func (vc *VulkanContext) Device() metadata.Device { return vc.device }

func (vc *VulkanContext) VulkanDevice() *VulkanDevice { return vc.device }

func (vc *VulkanContext) CommonLayout() metadata.DescriptorSetLayout { return vc.commonLayout }

func (vc *VulkanContext) RenderPass() metadata.RenderPass { return vc.renderPass }

func (vc *VulkanContext) Subpass() uint32 { return vc.subpass }

func (vc *VulkanContext) PipelineCache() metadata.PipelineCache { return vc.pipelineCache }
