package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

func (d *VulkanDevice) CreatePipelineLayout(setLayouts []metadata.DescriptorSetLayout) (metadata.PipelineLayout, error) {
	layouts := make([]vk.DescriptorSetLayout, len(setLayouts))
	for i, h := range setLayouts {
		object, err := d.registry.get(metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT, uint64(h))
		if err != nil {
			return 0, fmt.Errorf("pipeline layout set %d: %w", i, err)
		}
		layouts[i] = object.(vk.DescriptorSetLayout)
	}

	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:                  vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount:         uint32(len(layouts)),
		PSetLayouts:            layouts,
		PushConstantRangeCount: 0,
		PPushConstantRanges:    nil,
	}
	pipelineLayoutCreateInfo.Deref()

	var pipelineLayout vk.PipelineLayout
	if err := d.lockPool.SafeCall(PipelineManagement, func() error {
		result := vk.CreatePipelineLayout(d.LogicalDevice, &pipelineLayoutCreateInfo, d.Allocator, &pipelineLayout)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("vkCreatePipelineLayout failed with %s", VulkanResultString(result, true))
			core.LogError("%s", err.Error())
			return err
		}
		return nil
	}); err != nil {
		return 0, err
	}

	return metadata.PipelineLayout(d.registry.add(metadata.OBJECT_TYPE_PIPELINE_LAYOUT, pipelineLayout, false)), nil
}

func (d *VulkanDevice) DestroyPipelineLayout(handle metadata.PipelineLayout) {
	object, err := d.registry.remove(metadata.OBJECT_TYPE_PIPELINE_LAYOUT, uint64(handle))
	if err != nil {
		core.LogWarn("DestroyPipelineLayout: %s", err)
		return
	}
	_ = d.lockPool.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipelineLayout(d.LogicalDevice, object.(vk.PipelineLayout), d.Allocator)
		return nil
	})
}

func (d *VulkanDevice) CreateGraphicsPipeline(cacheHandle metadata.PipelineCache, config *metadata.GraphicsPipelineDescription) (metadata.Pipeline, error) {
	if config == nil {
		return 0, fmt.Errorf("vkCreateGraphicsPipelines: nil description: %w", core.ErrPrecondition)
	}

	cache := vk.NullPipelineCache
	if cacheHandle != 0 {
		object, err := d.registry.get(metadata.OBJECT_TYPE_PIPELINE_CACHE, uint64(cacheHandle))
		if err != nil {
			return 0, err
		}
		cache = object.(vk.PipelineCache)
	}
	layout, err := d.registry.get(metadata.OBJECT_TYPE_PIPELINE_LAYOUT, uint64(config.Layout))
	if err != nil {
		return 0, err
	}
	renderPass, err := d.registry.get(metadata.OBJECT_TYPE_RENDER_PASS, uint64(config.RenderPass))
	if err != nil {
		return 0, err
	}
	stages, err := d.shaderStages(config.Stages)
	if err != nil {
		return 0, err
	}

	// Viewport state. Viewports and scissors are dynamic.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: config.ViewportCount,
		ScissorCount:  config.ScissorCount,
	}
	viewportState.Deref()

	// Rasterizer
	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vulkanPolygonMode(config.Rasterization.PolygonMode),
		CullMode:                vulkanCullMode(config.Rasterization.CullMode),
		FrontFace:               vulkanFrontFace(config.Rasterization.FrontFace),
		LineWidth:               config.Rasterization.LineWidth,
		DepthBiasEnable:         vk.False,
	}
	rasterizerCreateInfo.Deref()

	// Multisampling.
	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  vulkanSampleCount(config.Samples),
		MinSampleShading:      1.0,
		PSampleMask:           nil,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}
	multisamplingCreateInfo.Deref()

	// Depth and stencil testing.
	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vulkanBool(config.DepthStencil.DepthTestEnable),
		DepthWriteEnable:      vulkanBool(config.DepthStencil.DepthWriteEnable),
		DepthCompareOp:        vulkanCompareOp(config.DepthStencil.DepthCompareOp),
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vulkanBool(config.DepthStencil.StencilTestEnable),
		Front:                 vulkanStencilOpState(config.DepthStencil.Front),
		Back:                  vulkanStencilOpState(config.DepthStencil.Back),
	}
	depthStencil.Deref()

	attachments := make([]vk.PipelineColorBlendAttachmentState, len(config.ColorBlendAttachments))
	for i, a := range config.ColorBlendAttachments {
		attachments[i] = vk.PipelineColorBlendAttachmentState{
			BlendEnable:         vulkanBool(a.BlendEnable),
			SrcColorBlendFactor: vulkanBlendFactor(a.SrcColorBlendFactor),
			DstColorBlendFactor: vulkanBlendFactor(a.DstColorBlendFactor),
			ColorBlendOp:        vulkanBlendOp(a.ColorBlendOp),
			SrcAlphaBlendFactor: vulkanBlendFactor(a.SrcAlphaBlendFactor),
			DstAlphaBlendFactor: vulkanBlendFactor(a.DstAlphaBlendFactor),
			AlphaBlendOp:        vulkanBlendOp(a.AlphaBlendOp),
			ColorWriteMask:      vulkanColorWriteMask(a.ColorWriteMask),
		}
		attachments[i].Deref()
	}

	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: uint32(len(attachments)),
		PAttachments:    attachments,
	}
	colorBlendStateCreateInfo.Deref()

	// Dynamic state
	dynamicStates := make([]vk.DynamicState, len(config.DynamicStates))
	for i, s := range config.DynamicStates {
		dynamicStates[i] = vulkanDynamicState(s)
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}
	dynamicStateCreateInfo.Deref()

	// Vertex input
	bindings := make([]vk.VertexInputBindingDescription, len(config.VertexInput.Bindings))
	for i, b := range config.VertexInput.Bindings {
		bindings[i] = vk.VertexInputBindingDescription{
			Binding:   b.Binding,
			Stride:    b.Stride,
			InputRate: vk.VertexInputRateVertex, // Move to next data entry for each vertex.
		}
	}
	attributes := make([]vk.VertexInputAttributeDescription, len(config.VertexInput.Attributes))
	for i, a := range config.VertexInput.Attributes {
		attributes[i] = vk.VertexInputAttributeDescription{
			Location: a.Location,
			Binding:  a.Binding,
			Offset:   a.Offset,
		}
	}
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   uint32(len(bindings)),
		PVertexBindingDescriptions:      bindings,
		VertexAttributeDescriptionCount: uint32(len(attributes)),
		PVertexAttributeDescriptions:    attributes,
	}
	vertexInputInfo.Deref()

	// Input assembly
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               vulkanTopology(config.Topology),
		PrimitiveRestartEnable: vk.False,
	}
	inputAssembly.Deref()

	// Pipeline create
	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		PTessellationState:  nil,
		Layout:              layout.(vk.PipelineLayout),
		RenderPass:          renderPass.(vk.RenderPass),
		Subpass:             config.Subpass,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}
	pipelineCreateInfo.Deref()

	pPipelines := make([]vk.Pipeline, 1)

	if err := d.lockPool.SafeCall(PipelineManagement, func() error {
		result := vk.CreateGraphicsPipelines(
			d.LogicalDevice,
			cache,
			1,
			[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
			d.Allocator,
			pPipelines)

		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("vkCreateGraphicsPipelines failed with %s", VulkanResultString(result, true))
			core.LogError("%s", err.Error())
			return err
		}
		return nil
	}); err != nil {
		return 0, err
	}

	if pPipelines[0] == vk.NullPipeline {
		err := fmt.Errorf("vulkan pipeline handle is nil")
		return 0, err
	}

	core.LogDebug("Graphics pipeline created!")
	return metadata.Pipeline(d.registry.add(metadata.OBJECT_TYPE_PIPELINE, pPipelines[0], false)), nil
}

func (d *VulkanDevice) DestroyPipeline(handle metadata.Pipeline) {
	object, err := d.registry.remove(metadata.OBJECT_TYPE_PIPELINE, uint64(handle))
	if err != nil {
		core.LogWarn("DestroyPipeline: %s", err)
		return
	}
	_ = d.lockPool.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipeline(d.LogicalDevice, object.(vk.Pipeline), d.Allocator)
		return nil
	})
}
