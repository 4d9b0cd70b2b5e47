package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

/**
 * @brief A command buffer handed over by the frame setup, usually inside the
 * main render pass. Implements metadata.CommandRecorder by resolving handles
 * through the device that created them.
 */
type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState

	device *VulkanDevice
}

// WrapCommandBuffer adopts a command buffer allocated by the frame setup.
func WrapCommandBuffer(device *VulkanDevice, handle vk.CommandBuffer, state VulkanCommandBufferState) *VulkanCommandBuffer {
	return &VulkanCommandBuffer{Handle: handle, State: state, device: device}
}

func NewVulkanCommandBuffer(device *VulkanDevice, pool vk.CommandPool, isPrimary bool) (*VulkanCommandBuffer, error) {
	level := vk.CommandBufferLevelSecondary
	if isPrimary {
		level = vk.CommandBufferLevelPrimary
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              level,
	}

	handles := make([]vk.CommandBuffer, 1)
	if err := device.lockPool.SafeCall(CommandBufferManagement, func() error {
		result := vk.AllocateCommandBuffers(device.LogicalDevice, &allocateInfo, handles)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("vkAllocateCommandBuffers failed with %s", VulkanResultString(result, true))
			core.LogError("%s", err.Error())
			return err
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return WrapCommandBuffer(device, handles[0], COMMAND_BUFFER_STATE_READY), nil
}

func (v *VulkanCommandBuffer) Free(pool vk.CommandPool) {
	_ = v.device.lockPool.SafeCall(CommandBufferManagement, func() error {
		vk.FreeCommandBuffers(v.device.LogicalDevice, pool, 1, []vk.CommandBuffer{v.Handle})
		return nil
	})
	v.Handle = nil
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (v *VulkanCommandBuffer) Begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	beginInfo := &vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: 0,
	}
	if isSingleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderpassContinue {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}

	if result := vk.BeginCommandBuffer(v.Handle, beginInfo); !VulkanResultIsSuccess(result) {
		err := fmt.Errorf("vkBeginCommandBuffer failed with %s", VulkanResultString(result, true))
		core.LogError("%s", err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) End() error {
	if result := vk.EndCommandBuffer(v.Handle); !VulkanResultIsSuccess(result) {
		err := fmt.Errorf("vkEndCommandBuffer failed with %s", VulkanResultString(result, true))
		core.LogError("%s", err.Error())
		return err
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

func (v *VulkanCommandBuffer) Reset() {
	v.State = COMMAND_BUFFER_STATE_READY
}

func (v *VulkanCommandBuffer) recording() bool {
	if v.State == COMMAND_BUFFER_STATE_RECORDING || v.State == COMMAND_BUFFER_STATE_IN_RENDER_PASS {
		return true
	}
	core.LogWarn("command buffer is not recording (state %d), command dropped", v.State)
	return false
}

func (v *VulkanCommandBuffer) BindPipeline(bindPoint metadata.PipelineBindPoint, handle metadata.Pipeline) {
	if !v.recording() {
		return
	}
	pipeline, err := v.device.registry.get(metadata.OBJECT_TYPE_PIPELINE, uint64(handle))
	if err != nil {
		core.LogError("BindPipeline: %s", err)
		return
	}
	vk.CmdBindPipeline(v.Handle, vulkanBindPoint(bindPoint), pipeline.(vk.Pipeline))
}

func (v *VulkanCommandBuffer) BindDescriptorSets(bindPoint metadata.PipelineBindPoint, layoutHandle metadata.PipelineLayout, firstSet uint32, setHandles []metadata.DescriptorSet) {
	if !v.recording() {
		return
	}
	layout, err := v.device.registry.get(metadata.OBJECT_TYPE_PIPELINE_LAYOUT, uint64(layoutHandle))
	if err != nil {
		core.LogError("BindDescriptorSets: %s", err)
		return
	}
	sets := make([]vk.DescriptorSet, len(setHandles))
	for i, h := range setHandles {
		set, err := v.device.registry.get(metadata.OBJECT_TYPE_DESCRIPTOR_SET, uint64(h))
		if err != nil {
			core.LogError("BindDescriptorSets: %s", err)
			return
		}
		sets[i] = set.(vk.DescriptorSet)
	}
	vk.CmdBindDescriptorSets(v.Handle, vulkanBindPoint(bindPoint), layout.(vk.PipelineLayout), firstSet, uint32(len(sets)), sets, 0, nil)
}

func (v *VulkanCommandBuffer) DrawIndirect(handle metadata.Buffer, offset uint64, drawCount uint32, stride uint32) {
	if !v.recording() {
		return
	}
	buffer, err := v.device.registry.get(metadata.OBJECT_TYPE_BUFFER, uint64(handle))
	if err != nil {
		core.LogError("DrawIndirect: %s", err)
		return
	}
	vk.CmdDrawIndirect(v.Handle, buffer.(*vulkanBuffer).handle, vk.DeviceSize(offset), drawCount, stride)
}
