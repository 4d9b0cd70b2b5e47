package vulkan

import (
	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

// Conversions from the backend-neutral vocabulary to Vulkan enums.

func vulkanCullMode(mode metadata.FaceCullMode) vk.CullModeFlags {
	switch mode {
	case metadata.FaceCullModeNone:
		return vk.CullModeFlags(vk.CullModeNone)
	case metadata.FaceCullModeFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	case metadata.FaceCullModeFrontAndBack:
		return vk.CullModeFlags(vk.CullModeFrontAndBack)
	default:
		fallthrough
	case metadata.FaceCullModeBack:
		return vk.CullModeFlags(vk.CullModeBackBit)
	}
}

func vulkanFrontFace(face metadata.FrontFace) vk.FrontFace {
	if face == metadata.FrontFaceClockwise {
		return vk.FrontFaceClockwise
	}
	return vk.FrontFaceCounterClockwise
}

func vulkanPolygonMode(mode metadata.PolygonMode) vk.PolygonMode {
	switch mode {
	case metadata.PolygonModeLine:
		return vk.PolygonModeLine
	case metadata.PolygonModePoint:
		return vk.PolygonModePoint
	default:
		return vk.PolygonModeFill
	}
}

func vulkanTopology(topology metadata.PrimitiveTopology) vk.PrimitiveTopology {
	switch topology {
	case metadata.PrimitiveTopologyPointList:
		return vk.PrimitiveTopologyPointList
	case metadata.PrimitiveTopologyLineList:
		return vk.PrimitiveTopologyLineList
	case metadata.PrimitiveTopologyLineStrip:
		return vk.PrimitiveTopologyLineStrip
	case metadata.PrimitiveTopologyTriangleStrip:
		return vk.PrimitiveTopologyTriangleStrip
	default:
		return vk.PrimitiveTopologyTriangleList
	}
}

func vulkanShaderStage(stage metadata.ShaderStage) vk.ShaderStageFlagBits {
	if stage == metadata.ShaderStageFragment {
		return vk.ShaderStageFragmentBit
	}
	return vk.ShaderStageVertexBit
}

func vulkanShaderStageFlags(stages metadata.ShaderStage) vk.ShaderStageFlags {
	var flags vk.ShaderStageFlags
	if stages&metadata.ShaderStageVertex != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageVertexBit)
	}
	if stages&metadata.ShaderStageFragment != 0 {
		flags |= vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	}
	return flags
}

func vulkanCompareOp(op metadata.CompareOp) vk.CompareOp {
	switch op {
	case metadata.CompareOpNever:
		return vk.CompareOpNever
	case metadata.CompareOpLess:
		return vk.CompareOpLess
	case metadata.CompareOpEqual:
		return vk.CompareOpEqual
	case metadata.CompareOpLessOrEqual:
		return vk.CompareOpLessOrEqual
	case metadata.CompareOpGreater:
		return vk.CompareOpGreater
	case metadata.CompareOpNotEqual:
		return vk.CompareOpNotEqual
	case metadata.CompareOpGreaterOrEqual:
		return vk.CompareOpGreaterOrEqual
	default:
		return vk.CompareOpAlways
	}
}

func vulkanStencilOp(op metadata.StencilOp) vk.StencilOp {
	switch op {
	case metadata.StencilOpZero:
		return vk.StencilOpZero
	case metadata.StencilOpReplace:
		return vk.StencilOpReplace
	case metadata.StencilOpIncrementAndClamp:
		return vk.StencilOpIncrementAndClamp
	case metadata.StencilOpDecrementAndClamp:
		return vk.StencilOpDecrementAndClamp
	case metadata.StencilOpInvert:
		return vk.StencilOpInvert
	case metadata.StencilOpIncrementAndWrap:
		return vk.StencilOpIncrementAndWrap
	case metadata.StencilOpDecrementAndWrap:
		return vk.StencilOpDecrementAndWrap
	default:
		return vk.StencilOpKeep
	}
}

func vulkanStencilOpState(state metadata.StencilOpState) vk.StencilOpState {
	return vk.StencilOpState{
		FailOp:      vulkanStencilOp(state.FailOp),
		PassOp:      vulkanStencilOp(state.PassOp),
		DepthFailOp: vulkanStencilOp(state.DepthFailOp),
		CompareOp:   vulkanCompareOp(state.CompareOp),
		CompareMask: state.CompareMask,
		WriteMask:   state.WriteMask,
		Reference:   state.Reference,
	}
}

func vulkanBlendFactor(factor metadata.BlendFactor) vk.BlendFactor {
	switch factor {
	case metadata.BlendFactorOne:
		return vk.BlendFactorOne
	case metadata.BlendFactorSrcColor:
		return vk.BlendFactorSrcColor
	case metadata.BlendFactorOneMinusSrcColor:
		return vk.BlendFactorOneMinusSrcColor
	case metadata.BlendFactorDstColor:
		return vk.BlendFactorDstColor
	case metadata.BlendFactorOneMinusDstColor:
		return vk.BlendFactorOneMinusDstColor
	case metadata.BlendFactorSrcAlpha:
		return vk.BlendFactorSrcAlpha
	case metadata.BlendFactorOneMinusSrcAlpha:
		return vk.BlendFactorOneMinusSrcAlpha
	case metadata.BlendFactorDstAlpha:
		return vk.BlendFactorDstAlpha
	case metadata.BlendFactorOneMinusDstAlpha:
		return vk.BlendFactorOneMinusDstAlpha
	default:
		return vk.BlendFactorZero
	}
}

func vulkanBlendOp(op metadata.BlendOp) vk.BlendOp {
	switch op {
	case metadata.BlendOpSubtract:
		return vk.BlendOpSubtract
	case metadata.BlendOpReverseSubtract:
		return vk.BlendOpReverseSubtract
	case metadata.BlendOpMin:
		return vk.BlendOpMin
	case metadata.BlendOpMax:
		return vk.BlendOpMax
	default:
		return vk.BlendOpAdd
	}
}

func vulkanColorWriteMask(mask metadata.ColorComponentFlags) vk.ColorComponentFlags {
	var flags vk.ColorComponentFlags
	if mask&metadata.ColorComponentR != 0 {
		flags |= vk.ColorComponentFlags(vk.ColorComponentRBit)
	}
	if mask&metadata.ColorComponentG != 0 {
		flags |= vk.ColorComponentFlags(vk.ColorComponentGBit)
	}
	if mask&metadata.ColorComponentB != 0 {
		flags |= vk.ColorComponentFlags(vk.ColorComponentBBit)
	}
	if mask&metadata.ColorComponentA != 0 {
		flags |= vk.ColorComponentFlags(vk.ColorComponentABit)
	}
	return flags
}

func vulkanDynamicState(state metadata.DynamicState) vk.DynamicState {
	switch state {
	case metadata.DynamicStateScissor:
		return vk.DynamicStateScissor
	case metadata.DynamicStateLineWidth:
		return vk.DynamicStateLineWidth
	default:
		return vk.DynamicStateViewport
	}
}

func vulkanSampleCount(samples metadata.SampleCount) vk.SampleCountFlagBits {
	switch samples {
	case metadata.SampleCount2:
		return vk.SampleCount2Bit
	case metadata.SampleCount4:
		return vk.SampleCount4Bit
	case metadata.SampleCount8:
		return vk.SampleCount8Bit
	default:
		return vk.SampleCount1Bit
	}
}

func vulkanDescriptorType(t metadata.DescriptorType) vk.DescriptorType {
	switch t {
	case metadata.DescriptorTypeStorageBuffer:
		return vk.DescriptorTypeStorageBuffer
	case metadata.DescriptorTypeCombinedImageSampler:
		return vk.DescriptorTypeCombinedImageSampler
	default:
		return vk.DescriptorTypeUniformBuffer
	}
}

func vulkanBindPoint(bp metadata.PipelineBindPoint) vk.PipelineBindPoint {
	if bp == metadata.PipelineBindPointCompute {
		return vk.PipelineBindPointCompute
	}
	return vk.PipelineBindPointGraphics
}

func vulkanBufferUsage(usage metadata.BufferUsage) vk.BufferUsageFlags {
	var flags vk.BufferUsageFlags
	for _, pair := range []struct {
		from metadata.BufferUsage
		to   vk.BufferUsageFlagBits
	}{
		{metadata.BufferUsageTransferSrc, vk.BufferUsageTransferSrcBit},
		{metadata.BufferUsageTransferDst, vk.BufferUsageTransferDstBit},
		{metadata.BufferUsageUniform, vk.BufferUsageUniformBufferBit},
		{metadata.BufferUsageStorage, vk.BufferUsageStorageBufferBit},
		{metadata.BufferUsageVertex, vk.BufferUsageVertexBufferBit},
		{metadata.BufferUsageIndirect, vk.BufferUsageIndirectBufferBit},
	} {
		if usage&pair.from != 0 {
			flags |= vk.BufferUsageFlags(pair.to)
		}
	}
	return flags
}

func vulkanBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

func vulkanDeviceSize(size uint64) vk.DeviceSize {
	if size == metadata.WHOLE_SIZE {
		return vk.DeviceSize(vk.WholeSize)
	}
	return vk.DeviceSize(size)
}
