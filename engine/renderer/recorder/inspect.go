package recorder

import (
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

// Events returns a copy of the lifecycle log in call order.
func (d *Device) Events() []LifecycleEvent {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.events)
}

// Destroyed returns the object types of every destruction in call order.
func (d *Device) Destroyed() []metadata.ObjectType {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []metadata.ObjectType
	for _, e := range d.events {
		if e.Op == OP_DESTROY {
			out = append(out, e.ObjectType)
		}
	}
	return out
}

// Created counts every successful creation of objectType, including objects
// already destroyed.
func (d *Device) Created(objectType metadata.ObjectType) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, e := range d.events {
		if e.Op == OP_CREATE && e.ObjectType == objectType {
			n++
		}
	}
	return n
}

// Live counts objects of objectType created through this device that still
// exist. Imported objects are not counted.
func (d *Device) Live(objectType metadata.ObjectType) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, obj := range d.live {
		if obj.objectType == objectType && !obj.imported {
			n++
		}
	}
	return n
}

// LiveTotal counts every non-imported object still alive.
func (d *Device) LiveTotal() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, obj := range d.live {
		if !obj.imported {
			n++
		}
	}
	return n
}

func (d *Device) Violations() []error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.violations)
}

func (d *Device) ShaderCode(module metadata.ShaderModule) ([]uint32, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	code, ok := d.shaderCode[module]
	return slices.Clone(code), ok
}

func (d *Device) SetLayoutBindings(layout metadata.DescriptorSetLayout) ([]metadata.DescriptorSetLayoutBinding, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.setLayouts[layout]
	return slices.Clone(b), ok
}

func (d *Device) PoolSizes(pool metadata.DescriptorPool) ([]metadata.DescriptorPoolSize, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.poolSizes[pool]
	return slices.Clone(s), ok
}

func (d *Device) PipelineLayoutSets(layout metadata.PipelineLayout) ([]metadata.DescriptorSetLayout, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, ok := d.pipelineLayout[layout]
	return slices.Clone(s), ok
}

func (d *Device) PipelineDescription(pipeline metadata.Pipeline) (metadata.GraphicsPipelineDescription, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	desc, ok := d.pipelines[pipeline]
	if !ok {
		return metadata.GraphicsPipelineDescription{}, false
	}
	return cloneDescription(&desc), true
}

func (d *Device) DescriptorWrites(set metadata.DescriptorSet) []metadata.WriteDescriptorSet {
	d.mu.Lock()
	defer d.mu.Unlock()

	return slices.Clone(d.writes[set])
}

// BufferContents returns a copy of the bytes last written to buffer.
func (d *Device) BufferContents(buffer metadata.Buffer) ([]byte, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	b, ok := d.buffers[buffer]
	return slices.Clone(b), ok
}

func (d *Device) BufferUsage(buffer metadata.Buffer) (metadata.BufferUsage, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	u, ok := d.bufferUsage[buffer]
	return u, ok
}

func (d *Device) ObjectName(handle uint64) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.names[handle]
}
