// Package recorder implements the renderer backend contracts without a GPU.
// Every object creation and destruction is kept in a lifecycle log and every
// recorded command is captured, so callers can inspect what a renderer would
// have asked a real driver to do.
package recorder

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

type LifecycleOp int

const (
	OP_CREATE LifecycleOp = iota
	OP_DESTROY
	OP_IMPORT
)

func (op LifecycleOp) String() string {
	switch op {
	case OP_CREATE:
		return "create"
	case OP_DESTROY:
		return "destroy"
	case OP_IMPORT:
		return "import"
	default:
		return "unknown"
	}
}

// LifecycleEvent is one entry of the device lifecycle log.
type LifecycleEvent struct {
	Op         LifecycleOp
	ObjectType metadata.ObjectType
	Handle     uint64
}

func (e LifecycleEvent) String() string {
	return fmt.Sprintf("%s %s#%d", e.Op, e.ObjectType, e.Handle)
}

type object struct {
	objectType metadata.ObjectType
	imported   bool
	// pool a descriptor set was allocated from
	pool metadata.DescriptorPool
}

// Device is a metadata.Device that only records what is asked of it.
// It is safe for concurrent use.
type Device struct {
	mu sync.Mutex

	next   uint64
	live   map[uint64]object
	events []LifecycleEvent

	// Misuse detected while recording: double destroys, unknown handles.
	violations []error

	failures map[metadata.ObjectType]error

	shaderCode     map[metadata.ShaderModule][]uint32
	setLayouts     map[metadata.DescriptorSetLayout][]metadata.DescriptorSetLayoutBinding
	poolSizes      map[metadata.DescriptorPool][]metadata.DescriptorPoolSize
	pipelineLayout map[metadata.PipelineLayout][]metadata.DescriptorSetLayout
	pipelines      map[metadata.Pipeline]metadata.GraphicsPipelineDescription
	writes         map[metadata.DescriptorSet][]metadata.WriteDescriptorSet
	buffers        map[metadata.Buffer][]byte
	bufferUsage    map[metadata.Buffer]metadata.BufferUsage
	names          map[uint64]string
}

func NewDevice() *Device {
	return &Device{
		live:           make(map[uint64]object),
		failures:       make(map[metadata.ObjectType]error),
		shaderCode:     make(map[metadata.ShaderModule][]uint32),
		setLayouts:     make(map[metadata.DescriptorSetLayout][]metadata.DescriptorSetLayoutBinding),
		poolSizes:      make(map[metadata.DescriptorPool][]metadata.DescriptorPoolSize),
		pipelineLayout: make(map[metadata.PipelineLayout][]metadata.DescriptorSetLayout),
		pipelines:      make(map[metadata.Pipeline]metadata.GraphicsPipelineDescription),
		writes:         make(map[metadata.DescriptorSet][]metadata.WriteDescriptorSet),
		buffers:        make(map[metadata.Buffer][]byte),
		bufferUsage:    make(map[metadata.Buffer]metadata.BufferUsage),
		names:          make(map[uint64]string),
	}
}

// FailCreate makes every following creation of objectType fail with err.
// A nil err clears the failure.
func (d *Device) FailCreate(objectType metadata.ObjectType, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err == nil {
		delete(d.failures, objectType)
		return
	}
	d.failures[objectType] = err
}

// Import registers a handle owned by someone else (the frame setup). Imported
// objects are never destroyed through this device.
func (d *Device) Import(objectType metadata.ObjectType) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.next++
	h := d.next
	d.live[h] = object{objectType: objectType, imported: true}
	d.events = append(d.events, LifecycleEvent{Op: OP_IMPORT, ObjectType: objectType, Handle: h})
	return h
}

// create must be called with d.mu held.
func (d *Device) create(objectType metadata.ObjectType) (uint64, error) {
	if err := d.failures[objectType]; err != nil {
		return 0, fmt.Errorf("create %s: %w", objectType, err)
	}
	d.next++
	h := d.next
	d.live[h] = object{objectType: objectType}
	d.events = append(d.events, LifecycleEvent{Op: OP_CREATE, ObjectType: objectType, Handle: h})
	return h, nil
}

// destroy must be called with d.mu held. It reports whether the handle was live.
func (d *Device) destroy(objectType metadata.ObjectType, h uint64) bool {
	obj, ok := d.live[h]
	switch {
	case h == 0:
		d.violations = append(d.violations, fmt.Errorf("destroy %s: null handle", objectType))
		return false
	case !ok:
		d.violations = append(d.violations, fmt.Errorf("destroy %s#%d: %w", objectType, h, core.ErrUnknownHandle))
		return false
	case obj.objectType != objectType:
		d.violations = append(d.violations, fmt.Errorf("destroy %s#%d: handle is a %s", objectType, h, obj.objectType))
		return false
	case obj.imported:
		d.violations = append(d.violations, fmt.Errorf("destroy %s#%d: handle is imported", objectType, h))
		return false
	}
	delete(d.live, h)
	d.events = append(d.events, LifecycleEvent{Op: OP_DESTROY, ObjectType: objectType, Handle: h})
	return true
}

// check must be called with d.mu held.
func (d *Device) check(objectType metadata.ObjectType, h uint64) error {
	obj, ok := d.live[h]
	if !ok || obj.objectType != objectType {
		err := fmt.Errorf("%s#%d: %w", objectType, h, core.ErrUnknownHandle)
		d.violations = append(d.violations, err)
		return err
	}
	return nil
}

func (d *Device) CreateShaderModule(code []uint32) (metadata.ShaderModule, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(code) == 0 {
		return 0, fmt.Errorf("create shader module: %w", core.ErrInvalidShader)
	}
	h, err := d.create(metadata.OBJECT_TYPE_SHADER_MODULE)
	if err != nil {
		return 0, err
	}
	d.shaderCode[metadata.ShaderModule(h)] = append([]uint32(nil), code...)
	return metadata.ShaderModule(h), nil
}

func (d *Device) DestroyShaderModule(module metadata.ShaderModule) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroy(metadata.OBJECT_TYPE_SHADER_MODULE, uint64(module)) {
		delete(d.shaderCode, module)
	}
}

func (d *Device) CreateDescriptorSetLayout(bindings []metadata.DescriptorSetLayoutBinding) (metadata.DescriptorSetLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	h, err := d.create(metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT)
	if err != nil {
		return 0, err
	}
	d.setLayouts[metadata.DescriptorSetLayout(h)] = append([]metadata.DescriptorSetLayoutBinding(nil), bindings...)
	return metadata.DescriptorSetLayout(h), nil
}

func (d *Device) DestroyDescriptorSetLayout(layout metadata.DescriptorSetLayout) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.destroy(metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT, uint64(layout))
}

func (d *Device) CreateDescriptorPool(maxSets uint32, sizes []metadata.DescriptorPoolSize) (metadata.DescriptorPool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if maxSets == 0 {
		return 0, fmt.Errorf("create descriptor pool: maxSets is 0: %w", core.ErrPrecondition)
	}
	h, err := d.create(metadata.OBJECT_TYPE_DESCRIPTOR_POOL)
	if err != nil {
		return 0, err
	}
	d.poolSizes[metadata.DescriptorPool(h)] = append([]metadata.DescriptorPoolSize(nil), sizes...)
	return metadata.DescriptorPool(h), nil
}

func (d *Device) DestroyDescriptorPool(pool metadata.DescriptorPool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.destroy(metadata.OBJECT_TYPE_DESCRIPTOR_POOL, uint64(pool)) {
		return
	}
	// Sets go away with their pool.
	for h, obj := range d.live {
		if obj.objectType == metadata.OBJECT_TYPE_DESCRIPTOR_SET && obj.pool == pool {
			delete(d.live, h)
			delete(d.writes, metadata.DescriptorSet(h))
		}
	}
}

func (d *Device) AllocateDescriptorSet(pool metadata.DescriptorPool, layout metadata.DescriptorSetLayout) (metadata.DescriptorSet, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.check(metadata.OBJECT_TYPE_DESCRIPTOR_POOL, uint64(pool)); err != nil {
		return 0, err
	}
	if err := d.check(metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT, uint64(layout)); err != nil {
		return 0, err
	}
	h, err := d.create(metadata.OBJECT_TYPE_DESCRIPTOR_SET)
	if err != nil {
		return 0, err
	}
	d.live[h] = object{objectType: metadata.OBJECT_TYPE_DESCRIPTOR_SET, pool: pool}
	return metadata.DescriptorSet(h), nil
}

func (d *Device) UpdateDescriptorSets(writes []metadata.WriteDescriptorSet) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, w := range writes {
		if err := d.check(metadata.OBJECT_TYPE_DESCRIPTOR_SET, uint64(w.DstSet)); err != nil {
			return err
		}
		for _, info := range w.BufferInfo {
			if err := d.check(metadata.OBJECT_TYPE_BUFFER, uint64(info.Buffer)); err != nil {
				return err
			}
		}
		w.BufferInfo = append([]metadata.DescriptorBufferInfo(nil), w.BufferInfo...)
		d.writes[w.DstSet] = append(d.writes[w.DstSet], w)
	}
	return nil
}

func (d *Device) CreatePipelineLayout(setLayouts []metadata.DescriptorSetLayout) (metadata.PipelineLayout, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, l := range setLayouts {
		if err := d.check(metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT, uint64(l)); err != nil {
			return 0, err
		}
	}
	h, err := d.create(metadata.OBJECT_TYPE_PIPELINE_LAYOUT)
	if err != nil {
		return 0, err
	}
	d.pipelineLayout[metadata.PipelineLayout(h)] = append([]metadata.DescriptorSetLayout(nil), setLayouts...)
	return metadata.PipelineLayout(h), nil
}

func (d *Device) DestroyPipelineLayout(layout metadata.PipelineLayout) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.destroy(metadata.OBJECT_TYPE_PIPELINE_LAYOUT, uint64(layout))
}

func (d *Device) CreateGraphicsPipeline(cache metadata.PipelineCache, description *metadata.GraphicsPipelineDescription) (metadata.Pipeline, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if description == nil {
		return 0, fmt.Errorf("create graphics pipeline: nil description: %w", core.ErrPrecondition)
	}
	if cache != 0 {
		if err := d.check(metadata.OBJECT_TYPE_PIPELINE_CACHE, uint64(cache)); err != nil {
			return 0, err
		}
	}
	if err := d.check(metadata.OBJECT_TYPE_PIPELINE_LAYOUT, uint64(description.Layout)); err != nil {
		return 0, err
	}
	if err := d.check(metadata.OBJECT_TYPE_RENDER_PASS, uint64(description.RenderPass)); err != nil {
		return 0, err
	}
	for _, s := range description.Stages {
		if err := d.check(metadata.OBJECT_TYPE_SHADER_MODULE, uint64(s.Module)); err != nil {
			return 0, err
		}
	}
	h, err := d.create(metadata.OBJECT_TYPE_PIPELINE)
	if err != nil {
		return 0, err
	}
	d.pipelines[metadata.Pipeline(h)] = cloneDescription(description)
	return metadata.Pipeline(h), nil
}

func (d *Device) DestroyPipeline(pipeline metadata.Pipeline) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.destroy(metadata.OBJECT_TYPE_PIPELINE, uint64(pipeline))
}

func (d *Device) CreateBuffer(size uint64, usage metadata.BufferUsage) (metadata.Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if size == 0 {
		return 0, fmt.Errorf("create buffer: size is 0: %w", core.ErrPrecondition)
	}
	h, err := d.create(metadata.OBJECT_TYPE_BUFFER)
	if err != nil {
		return 0, err
	}
	d.buffers[metadata.Buffer(h)] = make([]byte, size)
	d.bufferUsage[metadata.Buffer(h)] = usage
	return metadata.Buffer(h), nil
}

func (d *Device) DestroyBuffer(buffer metadata.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.destroy(metadata.OBJECT_TYPE_BUFFER, uint64(buffer)) {
		delete(d.buffers, buffer)
		delete(d.bufferUsage, buffer)
	}
}

func (d *Device) WriteBuffer(buffer metadata.Buffer, offset uint64, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.check(metadata.OBJECT_TYPE_BUFFER, uint64(buffer)); err != nil {
		return err
	}
	mem := d.buffers[buffer]
	if offset > uint64(len(mem)) || uint64(len(data)) > uint64(len(mem))-offset {
		return fmt.Errorf("write buffer#%d: range [%d, %d) exceeds size %d: %w", buffer, offset, offset+uint64(len(data)), len(mem), core.ErrPrecondition)
	}
	copy(mem[offset:], data)
	return nil
}

func (d *Device) SetObjectName(objectType metadata.ObjectType, handle uint64, name string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.check(objectType, handle); err != nil {
		return
	}
	d.names[handle] = name
}

func cloneDescription(desc *metadata.GraphicsPipelineDescription) metadata.GraphicsPipelineDescription {
	c := *desc
	c.Stages = append([]metadata.ShaderStageDescription(nil), desc.Stages...)
	c.VertexInput.Bindings = append([]metadata.VertexInputBinding(nil), desc.VertexInput.Bindings...)
	c.VertexInput.Attributes = append([]metadata.VertexInputAttribute(nil), desc.VertexInput.Attributes...)
	c.ColorBlendAttachments = append([]metadata.ColorBlendAttachment(nil), desc.ColorBlendAttachments...)
	c.DynamicStates = append([]metadata.DynamicState(nil), desc.DynamicStates...)
	return c
}
