package voxels

import (
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

/** @brief Debug name given to the graphics pipeline. */
const PIPELINE_NAME = "voxels"

/** @brief Descriptor set index of the renderer's own set. Set 0 belongs to the frame. */
const LOCAL_SET = 1

/** @brief Binding of the vertex storage buffer inside the local set. */
const VERTEX_BUFFER_BINDING = 0

// LocalSetLayoutBindings describes the local set: the vertex storage buffer,
// visible to the vertex stage only.
func LocalSetLayoutBindings() []metadata.DescriptorSetLayoutBinding {
	return []metadata.DescriptorSetLayoutBinding{
		{
			Binding:         VERTEX_BUFFER_BINDING,
			DescriptorType:  metadata.DescriptorTypeStorageBuffer,
			DescriptorCount: 1,
			StageFlags:      metadata.ShaderStageVertex,
		},
	}
}

// PipelineDescription returns the fixed graphics pipeline state. Vertices are
// pulled from the storage buffer, so the vertex input state is empty.
func PipelineDescription(
	vertex, fragment metadata.ShaderModule,
	layout metadata.PipelineLayout,
	renderPass metadata.RenderPass,
	subpass uint32,
) metadata.GraphicsPipelineDescription {
	return metadata.GraphicsPipelineDescription{
		Stages: []metadata.ShaderStageDescription{
			{Stage: metadata.ShaderStageVertex, Module: vertex, EntryPoint: metadata.SHADER_ENTRY_POINT},
			{Stage: metadata.ShaderStageFragment, Module: fragment, EntryPoint: metadata.SHADER_ENTRY_POINT},
		},
		VertexInput:   metadata.VertexInputState{},
		Topology:      metadata.PrimitiveTopologyTriangleList,
		ViewportCount: 1,
		ScissorCount:  1,
		Rasterization: metadata.RasterizationState{
			CullMode:    metadata.FaceCullModeNone,
			FrontFace:   metadata.FrontFaceCounterClockwise,
			PolygonMode: metadata.PolygonModeFill,
			LineWidth:   1.0,
		},
		Samples: metadata.SampleCount1,
		// Reverse-Z: nearer fragments have larger depth.
		DepthStencil: metadata.DepthStencilState{
			DepthTestEnable:   true,
			DepthWriteEnable:  true,
			DepthCompareOp:    metadata.CompareOpGreaterOrEqual,
			StencilTestEnable: false,
			Front:             metadata.NoopStencilState,
			Back:              metadata.NoopStencilState,
		},
		ColorBlendAttachments: []metadata.ColorBlendAttachment{
			{
				BlendEnable:         true,
				SrcColorBlendFactor: metadata.BlendFactorOne,
				DstColorBlendFactor: metadata.BlendFactorOne,
				ColorBlendOp:        metadata.BlendOpAdd,
				SrcAlphaBlendFactor: metadata.BlendFactorZero,
				DstAlphaBlendFactor: metadata.BlendFactorZero,
				AlphaBlendOp:        metadata.BlendOpAdd,
				ColorWriteMask:      metadata.ColorComponentRGB,
			},
		},
		DynamicStates: []metadata.DynamicState{metadata.DynamicStateViewport, metadata.DynamicStateScissor},
		Layout:        layout,
		RenderPass:    renderPass,
		Subpass:       subpass,
	}
}
