package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

func (d *VulkanDevice) CreateDescriptorSetLayout(bindings []metadata.DescriptorSetLayoutBinding) (metadata.DescriptorSetLayout, error) {
	vkBindings := make([]vk.DescriptorSetLayoutBinding, len(bindings))
	for i, b := range bindings {
		vkBindings[i] = vk.DescriptorSetLayoutBinding{
			Binding:         b.Binding,
			DescriptorType:  vulkanDescriptorType(b.DescriptorType),
			DescriptorCount: b.DescriptorCount,
			StageFlags:      vulkanShaderStageFlags(b.StageFlags),
		}
	}

	createInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(vkBindings)),
		PBindings:    vkBindings,
	}

	var layout vk.DescriptorSetLayout
	if err := d.lockPool.SafeCall(DescriptorManagement, func() error {
		result := vk.CreateDescriptorSetLayout(d.LogicalDevice, &createInfo, d.Allocator, &layout)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("vkCreateDescriptorSetLayout failed with %s", VulkanResultString(result, true))
			core.LogError("%s", err.Error())
			return err
		}
		return nil
	}); err != nil {
		return 0, err
	}

	return metadata.DescriptorSetLayout(d.registry.add(metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT, layout, false)), nil
}

func (d *VulkanDevice) DestroyDescriptorSetLayout(handle metadata.DescriptorSetLayout) {
	object, err := d.registry.remove(metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT, uint64(handle))
	if err != nil {
		core.LogWarn("DestroyDescriptorSetLayout: %s", err)
		return
	}
	_ = d.lockPool.SafeCall(DescriptorManagement, func() error {
		vk.DestroyDescriptorSetLayout(d.LogicalDevice, object.(vk.DescriptorSetLayout), d.Allocator)
		return nil
	})
}

func (d *VulkanDevice) CreateDescriptorPool(maxSets uint32, sizes []metadata.DescriptorPoolSize) (metadata.DescriptorPool, error) {
	poolSizes := make([]vk.DescriptorPoolSize, len(sizes))
	for i, s := range sizes {
		poolSizes[i] = vk.DescriptorPoolSize{
			Type:            vulkanDescriptorType(s.Type),
			DescriptorCount: s.DescriptorCount,
		}
	}

	// Sets are never freed individually, they go away with the pool.
	createInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}

	var pool vk.DescriptorPool
	if err := d.lockPool.SafeCall(DescriptorManagement, func() error {
		result := vk.CreateDescriptorPool(d.LogicalDevice, &createInfo, d.Allocator, &pool)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("vkCreateDescriptorPool failed with %s", VulkanResultString(result, true))
			core.LogError("%s", err.Error())
			return err
		}
		return nil
	}); err != nil {
		return 0, err
	}

	return metadata.DescriptorPool(d.registry.add(metadata.OBJECT_TYPE_DESCRIPTOR_POOL, pool, false)), nil
}

func (d *VulkanDevice) DestroyDescriptorPool(handle metadata.DescriptorPool) {
	d.registry.removeChildren(uint64(handle))
	object, err := d.registry.remove(metadata.OBJECT_TYPE_DESCRIPTOR_POOL, uint64(handle))
	if err != nil {
		core.LogWarn("DestroyDescriptorPool: %s", err)
		return
	}
	_ = d.lockPool.SafeCall(DescriptorManagement, func() error {
		vk.DestroyDescriptorPool(d.LogicalDevice, object.(vk.DescriptorPool), d.Allocator)
		return nil
	})
}

func (d *VulkanDevice) AllocateDescriptorSet(poolHandle metadata.DescriptorPool, layoutHandle metadata.DescriptorSetLayout) (metadata.DescriptorSet, error) {
	pool, err := d.registry.get(metadata.OBJECT_TYPE_DESCRIPTOR_POOL, uint64(poolHandle))
	if err != nil {
		return 0, err
	}
	layout, err := d.registry.get(metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT, uint64(layoutHandle))
	if err != nil {
		return 0, err
	}

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     pool.(vk.DescriptorPool),
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{layout.(vk.DescriptorSetLayout)},
	}

	var set vk.DescriptorSet
	if err := d.lockPool.SafeCall(DescriptorManagement, func() error {
		result := vk.AllocateDescriptorSets(d.LogicalDevice, &allocateInfo, &set)
		if !VulkanResultIsSuccess(result) {
			err := fmt.Errorf("vkAllocateDescriptorSets failed with %s", VulkanResultString(result, true))
			core.LogError("%s", err.Error())
			return err
		}
		return nil
	}); err != nil {
		return 0, err
	}

	return metadata.DescriptorSet(d.registry.addChild(metadata.OBJECT_TYPE_DESCRIPTOR_SET, set, uint64(poolHandle))), nil
}

func (d *VulkanDevice) UpdateDescriptorSets(writes []metadata.WriteDescriptorSet) error {
	vkWrites := make([]vk.WriteDescriptorSet, 0, len(writes))
	for _, w := range writes {
		set, err := d.registry.get(metadata.OBJECT_TYPE_DESCRIPTOR_SET, uint64(w.DstSet))
		if err != nil {
			return err
		}
		infos := make([]vk.DescriptorBufferInfo, len(w.BufferInfo))
		for i, info := range w.BufferInfo {
			buffer, err := d.registry.get(metadata.OBJECT_TYPE_BUFFER, uint64(info.Buffer))
			if err != nil {
				return err
			}
			infos[i] = vk.DescriptorBufferInfo{
				Buffer: buffer.(*vulkanBuffer).handle,
				Offset: vk.DeviceSize(info.Offset),
				Range:  vulkanDeviceSize(info.Range),
			}
		}
		vkWrites = append(vkWrites, vk.WriteDescriptorSet{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set.(vk.DescriptorSet),
			DstBinding:      w.DstBinding,
			DstArrayElement: w.DstArrayElement,
			DescriptorCount: uint32(len(infos)),
			DescriptorType:  vulkanDescriptorType(w.DescriptorType),
			PBufferInfo:     infos,
		})
	}

	return d.lockPool.SafeCall(DescriptorManagement, func() error {
		vk.UpdateDescriptorSets(d.LogicalDevice, uint32(len(vkWrites)), vkWrites, 0, nil)
		return nil
	})
}
