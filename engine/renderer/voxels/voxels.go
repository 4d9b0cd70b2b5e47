// Package voxels renders terrain chunks stored in a draw buffer with a single
// fixed graphics pipeline and one indirect draw per chunk.
package voxels

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

/**
 * @brief The renderer's view of the chunk storage: a vertex storage buffer,
 * an indirect buffer and the location of each chunk's draw record in it.
 */
type DrawBuffer interface {
	VertexBuffer() metadata.Buffer
	IndirectBuffer() metadata.Buffer
	/** @brief Byte offset of the chunk's 16-byte draw record, or an error wrapping core.ErrUnknownChunk. */
	IndirectOffset(chunk metadata.Chunk) (uint64, error)
}

/** @brief SPIR-V code of the two programs, both with a "main" entry point. */
type ShaderSet struct {
	Vertex   []uint32
	Fragment []uint32
}

/**
 * @brief Owns the terrain pipeline, its layouts and the descriptor set bound
 * to the draw buffer's vertex buffer. Draw only reads immutable handles and
 * may be called concurrently on distinct recorders.
 */
type Voxels struct {
	id     uuid.UUID
	device metadata.Device

	setLayout      metadata.DescriptorSetLayout
	descriptorPool metadata.DescriptorPool
	descriptorSet  metadata.DescriptorSet
	pipelineLayout metadata.PipelineLayout
	pipeline       metadata.Pipeline

	vertexBuffer metadata.Buffer

	destroyed atomic.Bool
}

// New builds the pipeline resources against ctx and binds the descriptor set
// to buffer's vertex buffer. On failure every object created so far is
// released before returning.
func New(ctx metadata.RenderContext, buffer DrawBuffer, shaders ShaderSet) (*Voxels, error) {
	switch {
	case ctx == nil || ctx.Device() == nil:
		return nil, fmt.Errorf("voxels: nil render context: %w", core.ErrPrecondition)
	case buffer == nil:
		return nil, fmt.Errorf("voxels: nil draw buffer: %w", core.ErrPrecondition)
	case len(shaders.Vertex) == 0 || len(shaders.Fragment) == 0:
		return nil, fmt.Errorf("voxels: empty shader code: %w", core.ErrPrecondition)
	case buffer.VertexBuffer() == 0:
		return nil, fmt.Errorf("voxels: null vertex buffer: %w", core.ErrPrecondition)
	}

	v := &Voxels{
		id:           uuid.New(),
		device:       ctx.Device(),
		vertexBuffer: buffer.VertexBuffer(),
	}
	if err := v.create(ctx, shaders); err != nil {
		v.release()
		core.LogError("voxels renderer %s: %s", v.id, err)
		return nil, fmt.Errorf("voxels: %w: %w", core.ErrRendererInitialization, err)
	}

	core.LogDebug("voxels renderer %s created (pipeline %d, set %d)", v.id, v.pipeline, v.descriptorSet)
	return v, nil
}

func (v *Voxels) create(ctx metadata.RenderContext, shaders ShaderSet) error {
	device := v.device

	vert, err := device.CreateShaderModule(shaders.Vertex)
	if err != nil {
		return fmt.Errorf("vertex shader module: %w", err)
	}
	defer device.DestroyShaderModule(vert)

	frag, err := device.CreateShaderModule(shaders.Fragment)
	if err != nil {
		return fmt.Errorf("fragment shader module: %w", err)
	}
	defer device.DestroyShaderModule(frag)

	v.setLayout, err = device.CreateDescriptorSetLayout(LocalSetLayoutBindings())
	if err != nil {
		return fmt.Errorf("descriptor set layout: %w", err)
	}

	v.descriptorPool, err = device.CreateDescriptorPool(1, []metadata.DescriptorPoolSize{
		{Type: metadata.DescriptorTypeStorageBuffer, DescriptorCount: 1},
	})
	if err != nil {
		return fmt.Errorf("descriptor pool: %w", err)
	}

	v.descriptorSet, err = device.AllocateDescriptorSet(v.descriptorPool, v.setLayout)
	if err != nil {
		return fmt.Errorf("descriptor set: %w", err)
	}

	err = device.UpdateDescriptorSets([]metadata.WriteDescriptorSet{
		{
			DstSet:          v.descriptorSet,
			DstBinding:      VERTEX_BUFFER_BINDING,
			DstArrayElement: 0,
			DescriptorType:  metadata.DescriptorTypeStorageBuffer,
			BufferInfo: []metadata.DescriptorBufferInfo{
				{Buffer: v.vertexBuffer, Offset: 0, Range: metadata.WHOLE_SIZE},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("descriptor write: %w", err)
	}

	v.pipelineLayout, err = device.CreatePipelineLayout([]metadata.DescriptorSetLayout{ctx.CommonLayout(), v.setLayout})
	if err != nil {
		return fmt.Errorf("pipeline layout: %w", err)
	}

	description := PipelineDescription(vert, frag, v.pipelineLayout, ctx.RenderPass(), ctx.Subpass())
	v.pipeline, err = device.CreateGraphicsPipeline(ctx.PipelineCache(), &description)
	if err != nil {
		return fmt.Errorf("graphics pipeline: %w", err)
	}
	device.SetObjectName(metadata.OBJECT_TYPE_PIPELINE, uint64(v.pipeline), PIPELINE_NAME)

	return nil
}

// release destroys whatever has been created, in reverse creation order.
// Sets are freed with their pool.
func (v *Voxels) release() {
	if v.pipeline != 0 {
		v.device.DestroyPipeline(v.pipeline)
		v.pipeline = 0
	}
	if v.pipelineLayout != 0 {
		v.device.DestroyPipelineLayout(v.pipelineLayout)
		v.pipelineLayout = 0
	}
	if v.setLayout != 0 {
		v.device.DestroyDescriptorSetLayout(v.setLayout)
		v.setLayout = 0
	}
	if v.descriptorPool != 0 {
		v.device.DestroyDescriptorPool(v.descriptorPool)
		v.descriptorPool = 0
		v.descriptorSet = 0
	}
}

func (v *Voxels) ID() uuid.UUID { return v.id }

// BoundVertexBuffer returns the buffer the descriptor set was written with.
func (v *Voxels) BoundVertexBuffer() metadata.Buffer { return v.vertexBuffer }

func (v *Voxels) Pipeline() metadata.Pipeline { return v.pipeline }

func (v *Voxels) PipelineLayout() metadata.PipelineLayout { return v.pipelineLayout }

func (v *Voxels) DescriptorSet() metadata.DescriptorSet { return v.descriptorSet }

// Draw records the commands drawing one chunk: bind the pipeline, bind the
// local set at index 1, draw indirect with the chunk's record. Nothing is
// recorded when the chunk is unknown to buffer.
func (v *Voxels) Draw(cmd metadata.CommandRecorder, buffer DrawBuffer, chunk metadata.Chunk) error {
	if err := v.checkDraw(cmd, buffer); err != nil {
		return err
	}
	offset, err := buffer.IndirectOffset(chunk)
	if err != nil {
		return fmt.Errorf("voxels: draw chunk %d: %w", chunk, wrapUnknownChunk(err))
	}

	v.bind(cmd)
	cmd.DrawIndirect(buffer.IndirectBuffer(), offset, 1, metadata.DRAW_INDIRECT_COMMAND_SIZE)
	return nil
}

// DrawAll binds the pipeline and set once and issues one indirect draw per
// chunk. Every chunk is resolved first, so an unknown chunk records nothing.
func (v *Voxels) DrawAll(cmd metadata.CommandRecorder, buffer DrawBuffer, chunks []metadata.Chunk) error {
	if err := v.checkDraw(cmd, buffer); err != nil {
		return err
	}
	if len(chunks) == 0 {
		return nil
	}

	offsets := make([]uint64, len(chunks))
	for i, chunk := range chunks {
		off, err := buffer.IndirectOffset(chunk)
		if err != nil {
			return fmt.Errorf("voxels: draw chunk %d: %w", chunk, wrapUnknownChunk(err))
		}
		offsets[i] = off
	}

	v.bind(cmd)
	indirect := buffer.IndirectBuffer()
	for _, off := range offsets {
		cmd.DrawIndirect(indirect, off, 1, metadata.DRAW_INDIRECT_COMMAND_SIZE)
	}
	return nil
}

func (v *Voxels) checkDraw(cmd metadata.CommandRecorder, buffer DrawBuffer) error {
	if v == nil {
		return fmt.Errorf("voxels: draw: nil renderer: %w", core.ErrPrecondition)
	}
	if v.destroyed.Load() {
		return fmt.Errorf("voxels: draw: %w", core.ErrRendererDestroyed)
	}
	if v.pipeline == 0 || v.descriptorSet == 0 {
		return fmt.Errorf("voxels: draw: renderer was not built with New: %w", core.ErrPrecondition)
	}
	if cmd == nil {
		return fmt.Errorf("voxels: draw: nil command recorder: %w", core.ErrPrecondition)
	}
	if buffer == nil {
		return fmt.Errorf("voxels: draw: nil draw buffer: %w", core.ErrPrecondition)
	}
	// The descriptor set only sees the vertex buffer it was written with.
	if vb := buffer.VertexBuffer(); vb != v.vertexBuffer {
		return fmt.Errorf("voxels: draw: vertex buffer %d is not the bound buffer %d: %w", vb, v.vertexBuffer, core.ErrPrecondition)
	}
	return nil
}

func (v *Voxels) bind(cmd metadata.CommandRecorder) {
	cmd.BindPipeline(metadata.PipelineBindPointGraphics, v.pipeline)
	cmd.BindDescriptorSets(metadata.PipelineBindPointGraphics, v.pipelineLayout, LOCAL_SET, []metadata.DescriptorSet{v.descriptorSet})
}

func wrapUnknownChunk(err error) error {
	if errors.Is(err, core.ErrUnknownChunk) {
		return err
	}
	return fmt.Errorf("%w: %w", core.ErrUnknownChunk, err)
}

// Destroy releases the pipeline, the pipeline layout, the set layout and the
// descriptor pool, in that order. It does not wait for the GPU: the caller
// must ensure no submitted work still uses them. Calling it again does nothing.
func (v *Voxels) Destroy() error {
	if !v.destroyed.CompareAndSwap(false, true) {
		return nil
	}
	v.release()
	core.LogDebug("voxels renderer %s destroyed", v.id)
	return nil
}
