package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

func TestVoxelStateTranslation(t *testing.T) {
	if got := vulkanCullMode(metadata.FaceCullModeNone); got != vk.CullModeFlags(vk.CullModeNone) {
		t.Errorf("cull none = %v", got)
	}
	if got := vulkanFrontFace(metadata.FrontFaceCounterClockwise); got != vk.FrontFaceCounterClockwise {
		t.Errorf("front face = %v", got)
	}
	if got := vulkanTopology(metadata.PrimitiveTopologyTriangleList); got != vk.PrimitiveTopologyTriangleList {
		t.Errorf("topology = %v", got)
	}
	if got := vulkanCompareOp(metadata.CompareOpGreaterOrEqual); got != vk.CompareOpGreaterOrEqual {
		t.Errorf("compare op = %v", got)
	}
	if got := vulkanSampleCount(metadata.SampleCount1); got != vk.SampleCount1Bit {
		t.Errorf("samples = %v", got)
	}
	if got := vulkanDescriptorType(metadata.DescriptorTypeStorageBuffer); got != vk.DescriptorTypeStorageBuffer {
		t.Errorf("descriptor type = %v", got)
	}
}

func TestStencilOpStateTranslation(t *testing.T) {
	got := vulkanStencilOpState(metadata.NoopStencilState)
	want := vk.StencilOpState{
		FailOp:      vk.StencilOpKeep,
		PassOp:      vk.StencilOpKeep,
		DepthFailOp: vk.StencilOpKeep,
		CompareOp:   vk.CompareOpAlways,
	}
	if got.FailOp != want.FailOp || got.PassOp != want.PassOp || got.DepthFailOp != want.DepthFailOp ||
		got.CompareOp != want.CompareOp || got.CompareMask != 0 || got.WriteMask != 0 || got.Reference != 0 {
		t.Errorf("noop stencil = %+v, want %+v", got, want)
	}
}

func TestFlagTranslation(t *testing.T) {
	rgb := vk.ColorComponentFlags(vk.ColorComponentRBit) | vk.ColorComponentFlags(vk.ColorComponentGBit) | vk.ColorComponentFlags(vk.ColorComponentBBit)
	if got := vulkanColorWriteMask(metadata.ColorComponentRGB); got != rgb {
		t.Errorf("RGB mask = %#x, want %#x", got, rgb)
	}
	if got := vulkanColorWriteMask(metadata.ColorComponentRGBA); got&vk.ColorComponentFlags(vk.ColorComponentABit) == 0 {
		t.Errorf("RGBA mask %#x lacks alpha", got)
	}

	if got := vulkanShaderStageFlags(metadata.ShaderStageVertex); got != vk.ShaderStageFlags(vk.ShaderStageVertexBit) {
		t.Errorf("vertex stage flags = %#x", got)
	}
	both := vk.ShaderStageFlags(vk.ShaderStageVertexBit) | vk.ShaderStageFlags(vk.ShaderStageFragmentBit)
	if got := vulkanShaderStageFlags(metadata.ShaderStageVertex | metadata.ShaderStageFragment); got != both {
		t.Errorf("vertex|fragment stage flags = %#x, want %#x", got, both)
	}

	usage := vulkanBufferUsage(metadata.BufferUsageStorage | metadata.BufferUsageTransferDst)
	want := vk.BufferUsageFlags(vk.BufferUsageStorageBufferBit) | vk.BufferUsageFlags(vk.BufferUsageTransferDstBit)
	if usage != want {
		t.Errorf("buffer usage = %#x, want %#x", usage, want)
	}
}

func TestDeviceSizeTranslation(t *testing.T) {
	tests := []struct {
		in   uint64
		want vk.DeviceSize
	}{
		{0, 0},
		{16, 16},
		{metadata.WHOLE_SIZE, vk.DeviceSize(vk.WholeSize)},
	}
	for _, tt := range tests {
		if got := vulkanDeviceSize(tt.in); got != tt.want {
			t.Errorf("vulkanDeviceSize(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
