package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

func (d *VulkanDevice) CreateShaderModule(code []uint32) (metadata.ShaderModule, error) {
	if len(code) == 0 {
		return 0, fmt.Errorf("vkCreateShaderModule: empty code: %w", core.ErrInvalidShader)
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType: vk.StructureTypeShaderModuleCreateInfo,
		// Size in bytes.
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}

	var module vk.ShaderModule
	if err := d.lockPool.SafeCall(ShaderManagement, func() error {
		result := vk.CreateShaderModule(d.LogicalDevice, &createInfo, d.Allocator, &module)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("vkCreateShaderModule failed with %s", VulkanResultString(result, true))
			core.LogError("%s", err.Error())
			return err
		}
		return nil
	}); err != nil {
		return 0, err
	}

	return metadata.ShaderModule(d.registry.add(metadata.OBJECT_TYPE_SHADER_MODULE, module, false)), nil
}

func (d *VulkanDevice) DestroyShaderModule(handle metadata.ShaderModule) {
	object, err := d.registry.remove(metadata.OBJECT_TYPE_SHADER_MODULE, uint64(handle))
	if err != nil {
		core.LogWarn("DestroyShaderModule: %s", err)
		return
	}
	_ = d.lockPool.SafeCall(ShaderManagement, func() error {
		vk.DestroyShaderModule(d.LogicalDevice, object.(vk.ShaderModule), d.Allocator)
		return nil
	})
}

// shaderStages resolves the modules of a pipeline description. The entry
// point names are made NUL-terminated for the driver.
func (d *VulkanDevice) shaderStages(stages []metadata.ShaderStageDescription) ([]vk.PipelineShaderStageCreateInfo, error) {
	out := make([]vk.PipelineShaderStageCreateInfo, 0, len(stages))
	for _, stage := range stages {
		object, err := d.registry.get(metadata.OBJECT_TYPE_SHADER_MODULE, uint64(stage.Module))
		if err != nil {
			return nil, err
		}
		entryPoint := stage.EntryPoint
		if entryPoint == "" {
			entryPoint = metadata.SHADER_ENTRY_POINT
		}
		info := vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vulkanShaderStage(stage.Stage),
			Module: object.(vk.ShaderModule),
			PName:  VulkanSafeString(entryPoint),
		}
		info.Deref()
		out = append(out, info)
	}
	return out, nil
}
