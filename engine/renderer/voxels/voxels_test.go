package voxels

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/drawbuffer"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
	"github.com/spaghettifunk/terravox/engine/renderer/recorder"
)

var testShaders = ShaderSet{
	Vertex:   []uint32{0x07230203, 0x00010000, 1},
	Fragment: []uint32{0x07230203, 0x00010000, 2},
}

type fixture struct {
	ctx    *recorder.Context
	dev    *recorder.Device
	buffer *drawbuffer.DrawBuffer
	chunks []metadata.Chunk
}

func newFixture(t *testing.T, chunks int) *fixture {
	t.Helper()
	ctx := recorder.NewContext()
	buffer, err := drawbuffer.New(ctx.Device(), drawbuffer.Config{Chunks: 8, VerticesPerChunk: 36})
	if err != nil {
		t.Fatalf("drawbuffer.New: %v", err)
	}
	f := &fixture{ctx: ctx, dev: ctx.Recorder(), buffer: buffer}
	for i := 0; i < chunks; i++ {
		c, err := buffer.Alloc()
		if err != nil {
			t.Fatalf("Alloc: %v", err)
		}
		f.chunks = append(f.chunks, c)
	}
	return f
}

func newVoxels(t *testing.T, f *fixture) *Voxels {
	t.Helper()
	v, err := New(f.ctx, f.buffer, testShaders)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return v
}

func TestNewBindsVertexBuffer(t *testing.T) {
	f := newFixture(t, 0)
	v := newVoxels(t, f)

	if v.BoundVertexBuffer() != f.buffer.VertexBuffer() {
		t.Errorf("BoundVertexBuffer() = %d, want %d", v.BoundVertexBuffer(), f.buffer.VertexBuffer())
	}

	writes := f.dev.DescriptorWrites(v.DescriptorSet())
	if len(writes) != 1 {
		t.Fatalf("descriptor writes = %d, want 1", len(writes))
	}
	w := writes[0]
	if w.DstBinding != 0 || w.DescriptorType != metadata.DescriptorTypeStorageBuffer {
		t.Errorf("write = %+v, want binding 0 storage buffer", w)
	}
	want := []metadata.DescriptorBufferInfo{{Buffer: f.buffer.VertexBuffer(), Offset: 0, Range: metadata.WHOLE_SIZE}}
	if !reflect.DeepEqual(w.BufferInfo, want) {
		t.Errorf("buffer info = %+v, want %+v", w.BufferInfo, want)
	}

	bindings, _ := f.dev.SetLayoutBindings(v.setLayout)
	if !reflect.DeepEqual(bindings, LocalSetLayoutBindings()) {
		t.Errorf("set layout bindings = %+v", bindings)
	}
	sizes, _ := f.dev.PoolSizes(v.descriptorPool)
	if !reflect.DeepEqual(sizes, []metadata.DescriptorPoolSize{{Type: metadata.DescriptorTypeStorageBuffer, DescriptorCount: 1}}) {
		t.Errorf("pool sizes = %+v", sizes)
	}

	sets, _ := f.dev.PipelineLayoutSets(v.PipelineLayout())
	if len(sets) != 2 || sets[0] != f.ctx.CommonLayout() || sets[1] != v.setLayout {
		t.Errorf("pipeline layout sets = %v, want [common local]", sets)
	}

	if got := f.dev.ObjectName(uint64(v.Pipeline())); got != PIPELINE_NAME {
		t.Errorf("pipeline name = %q, want %q", got, PIPELINE_NAME)
	}
	if got := f.dev.Live(metadata.OBJECT_TYPE_SHADER_MODULE); got != 0 {
		t.Errorf("live shader modules after New = %d, want 0", got)
	}
}

func TestPipelineState(t *testing.T) {
	f := newFixture(t, 0)
	f.ctx.SetSubpass(2)
	v := newVoxels(t, f)

	desc, ok := f.dev.PipelineDescription(v.Pipeline())
	if !ok {
		t.Fatal("pipeline description not recorded")
	}

	if desc.Layout != v.PipelineLayout() || desc.RenderPass != f.ctx.RenderPass() || desc.Subpass != 2 {
		t.Errorf("layout/render pass/subpass = %d/%d/%d", desc.Layout, desc.RenderPass, desc.Subpass)
	}
	if len(desc.Stages) != 2 {
		t.Fatalf("stages = %d, want 2", len(desc.Stages))
	}
	for i, stage := range []metadata.ShaderStage{metadata.ShaderStageVertex, metadata.ShaderStageFragment} {
		if desc.Stages[i].Stage != stage || desc.Stages[i].EntryPoint != "main" {
			t.Errorf("stage %d = %+v", i, desc.Stages[i])
		}
	}
	if len(desc.VertexInput.Bindings) != 0 || len(desc.VertexInput.Attributes) != 0 {
		t.Errorf("vertex input = %+v, want empty", desc.VertexInput)
	}
	if desc.Topology != metadata.PrimitiveTopologyTriangleList {
		t.Errorf("topology = %v", desc.Topology)
	}
	if desc.ViewportCount != 1 || desc.ScissorCount != 1 {
		t.Errorf("viewport/scissor count = %d/%d", desc.ViewportCount, desc.ScissorCount)
	}
	if !reflect.DeepEqual(desc.DynamicStates, []metadata.DynamicState{metadata.DynamicStateViewport, metadata.DynamicStateScissor}) {
		t.Errorf("dynamic states = %v", desc.DynamicStates)
	}
	if desc.Rasterization.CullMode != metadata.FaceCullModeNone || desc.Rasterization.PolygonMode != metadata.PolygonModeFill || desc.Rasterization.LineWidth != 1 {
		t.Errorf("rasterization = %+v", desc.Rasterization)
	}
	if desc.Samples != metadata.SampleCount1 {
		t.Errorf("samples = %d", desc.Samples)
	}

	ds := desc.DepthStencil
	if !ds.DepthTestEnable || !ds.DepthWriteEnable || ds.DepthCompareOp != metadata.CompareOpGreaterOrEqual {
		t.Errorf("depth = %+v", ds)
	}
	if ds.StencilTestEnable || ds.Front != metadata.NoopStencilState || ds.Back != metadata.NoopStencilState {
		t.Errorf("stencil = %+v", ds)
	}

	if len(desc.ColorBlendAttachments) != 1 {
		t.Fatalf("colour attachments = %d, want 1", len(desc.ColorBlendAttachments))
	}
	blend := desc.ColorBlendAttachments[0]
	if !blend.BlendEnable || blend.SrcColorBlendFactor != metadata.BlendFactorOne || blend.DstColorBlendFactor != metadata.BlendFactorOne || blend.ColorBlendOp != metadata.BlendOpAdd {
		t.Errorf("colour blend = %+v", blend)
	}
	if blend.ColorWriteMask != metadata.ColorComponentRGB {
		t.Errorf("write mask = %#x, want RGB without alpha", blend.ColorWriteMask)
	}
}

func TestPipelineDescriptionIsDeterministic(t *testing.T) {
	a := PipelineDescription(1, 2, 3, 4, 0)
	b := PipelineDescription(1, 2, 3, 4, 0)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("descriptions differ:\n%+v\n%+v", a, b)
	}

	f := newFixture(t, 0)
	v1 := newVoxels(t, f)
	v2 := newVoxels(t, f)
	d1, _ := f.dev.PipelineDescription(v1.Pipeline())
	d2, _ := f.dev.PipelineDescription(v2.Pipeline())
	d1.Stages, d2.Stages = nil, nil
	d1.Layout, d2.Layout = 0, 0
	if !reflect.DeepEqual(d1, d2) {
		t.Errorf("two renderers built different fixed-function state")
	}
	if v1.ID() == v2.ID() {
		t.Errorf("renderers share id %s", v1.ID())
	}
}

func TestDrawRecordsBindAndIndirect(t *testing.T) {
	f := newFixture(t, 2)
	v := newVoxels(t, f)
	cmd := recorder.NewCommandBuffer()

	if err := v.Draw(cmd, f.buffer, f.chunks[1]); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	want := []recorder.Command{
		{Kind: recorder.COMMAND_BIND_PIPELINE, BindPoint: metadata.PipelineBindPointGraphics, Pipeline: v.Pipeline()},
		{Kind: recorder.COMMAND_BIND_DESCRIPTOR_SETS, BindPoint: metadata.PipelineBindPointGraphics, Layout: v.PipelineLayout(), FirstSet: 1, Sets: []metadata.DescriptorSet{v.DescriptorSet()}},
		{Kind: recorder.COMMAND_DRAW_INDIRECT, Buffer: f.buffer.IndirectBuffer(), Offset: 16, DrawCount: 1, Stride: 16},
	}
	if got := cmd.Commands(); !reflect.DeepEqual(got, want) {
		t.Errorf("commands =\n%v\nwant\n%v", got, want)
	}
}

func TestDrawThreeChunks(t *testing.T) {
	f := newFixture(t, 3)
	v := newVoxels(t, f)
	cmd := recorder.NewCommandBuffer()

	for _, c := range f.chunks {
		if err := v.Draw(cmd, f.buffer, c); err != nil {
			t.Fatalf("Draw(%d): %v", c, err)
		}
	}

	var offsets []uint64
	cmds := cmd.Commands()
	if len(cmds) != 9 {
		t.Fatalf("len(commands) = %d, want 9", len(cmds))
	}
	for i, c := range cmds {
		if i%3 != 2 {
			continue
		}
		if c.Kind != recorder.COMMAND_DRAW_INDIRECT || c.DrawCount != 1 || c.Stride != 16 {
			t.Errorf("command %d = %v", i, c)
		}
		offsets = append(offsets, c.Offset)
	}
	if !reflect.DeepEqual(offsets, []uint64{0, 16, 32}) {
		t.Errorf("offsets = %v, want [0 16 32]", offsets)
	}
}

func TestDrawAll(t *testing.T) {
	f := newFixture(t, 3)
	v := newVoxels(t, f)
	cmd := recorder.NewCommandBuffer()

	if err := v.DrawAll(cmd, f.buffer, f.chunks); err != nil {
		t.Fatalf("DrawAll: %v", err)
	}
	cmds := cmd.Commands()
	if len(cmds) != 5 {
		t.Fatalf("len(commands) = %d, want 5", len(cmds))
	}
	if cmds[0].Kind != recorder.COMMAND_BIND_PIPELINE || cmds[1].Kind != recorder.COMMAND_BIND_DESCRIPTOR_SETS {
		t.Errorf("DrawAll did not bind first: %v", cmds[:2])
	}
	for i, c := range cmds[2:] {
		if c.Offset != uint64(i)*16 {
			t.Errorf("draw %d offset = %d, want %d", i, c.Offset, i*16)
		}
	}

	cmd.Reset()
	err := v.DrawAll(cmd, f.buffer, []metadata.Chunk{f.chunks[0], 7})
	if !errors.Is(err, core.ErrUnknownChunk) {
		t.Errorf("DrawAll with unknown chunk error = %v, want ErrUnknownChunk", err)
	}
	if len(cmd.Commands()) != 0 {
		t.Errorf("DrawAll with unknown chunk recorded %v", cmd.Commands())
	}
}

func TestDrawUnknownChunkRecordsNothing(t *testing.T) {
	f := newFixture(t, 1)
	v := newVoxels(t, f)
	cmd := recorder.NewCommandBuffer()

	if err := f.buffer.Free(f.chunks[0]); err != nil {
		t.Fatalf("Free: %v", err)
	}
	for _, c := range []metadata.Chunk{f.chunks[0], 5, 100} {
		if err := v.Draw(cmd, f.buffer, c); !errors.Is(err, core.ErrUnknownChunk) {
			t.Errorf("Draw(%d) error = %v, want ErrUnknownChunk", c, err)
		}
	}
	if len(cmd.Commands()) != 0 {
		t.Errorf("commands = %v, want none", cmd.Commands())
	}
}

func TestDrawAllocatesNothing(t *testing.T) {
	f := newFixture(t, 1)
	v := newVoxels(t, f)
	before := len(f.dev.Events())

	cmd := recorder.NewCommandBuffer()
	for i := 0; i < 10; i++ {
		if err := v.Draw(cmd, f.buffer, f.chunks[0]); err != nil {
			t.Fatalf("Draw: %v", err)
		}
	}
	if after := len(f.dev.Events()); after != before {
		t.Errorf("Draw created or destroyed %d objects", after-before)
	}
}

func TestConcurrentDraw(t *testing.T) {
	f := newFixture(t, 4)
	v := newVoxels(t, f)

	var wg sync.WaitGroup
	cmds := make([]*recorder.CommandBuffer, 8)
	for i := range cmds {
		cmds[i] = recorder.NewCommandBuffer()
		wg.Add(1)
		go func(cmd *recorder.CommandBuffer) {
			defer wg.Done()
			for _, c := range f.chunks {
				if err := v.Draw(cmd, f.buffer, c); err != nil {
					t.Errorf("Draw: %v", err)
				}
			}
		}(cmds[i])
	}
	wg.Wait()

	for i, cmd := range cmds {
		if got := len(cmd.Commands()); got != 12 {
			t.Errorf("recorder %d has %d commands, want 12", i, got)
		}
	}
}

func TestDestroyOrder(t *testing.T) {
	for _, draws := range []int{0, 1, 5} {
		f := newFixture(t, 1)
		v := newVoxels(t, f)
		cmd := recorder.NewCommandBuffer()
		for i := 0; i < draws; i++ {
			if err := v.Draw(cmd, f.buffer, f.chunks[0]); err != nil {
				t.Fatalf("Draw: %v", err)
			}
		}

		if err := v.Destroy(); err != nil {
			t.Fatalf("Destroy: %v", err)
		}
		if err := v.Destroy(); err != nil {
			t.Fatalf("second Destroy: %v", err)
		}

		want := []metadata.ObjectType{
			metadata.OBJECT_TYPE_SHADER_MODULE,
			metadata.OBJECT_TYPE_SHADER_MODULE,
			metadata.OBJECT_TYPE_PIPELINE,
			metadata.OBJECT_TYPE_PIPELINE_LAYOUT,
			metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT,
			metadata.OBJECT_TYPE_DESCRIPTOR_POOL,
		}
		if got := f.dev.Destroyed(); !reflect.DeepEqual(got, want) {
			t.Errorf("after %d draws destroyed = %v, want %v", draws, got, want)
		}
		if vs := f.dev.Violations(); len(vs) != 0 {
			t.Errorf("violations: %v", vs)
		}

		f.buffer.Destroy()
		if got := f.dev.LiveTotal(); got != 0 {
			t.Errorf("live objects after teardown = %d, want 0", got)
		}

		err := v.Draw(cmd, f.buffer, f.chunks[0])
		if !errors.Is(err, core.ErrRendererDestroyed) {
			t.Errorf("Draw after Destroy error = %v, want ErrRendererDestroyed", err)
		}
	}
}

func TestNewFailureReleasesEverything(t *testing.T) {
	steps := []metadata.ObjectType{
		metadata.OBJECT_TYPE_SHADER_MODULE,
		metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT,
		metadata.OBJECT_TYPE_DESCRIPTOR_POOL,
		metadata.OBJECT_TYPE_DESCRIPTOR_SET,
		metadata.OBJECT_TYPE_PIPELINE_LAYOUT,
		metadata.OBJECT_TYPE_PIPELINE,
	}
	boom := errors.New("VK_ERROR_OUT_OF_DEVICE_MEMORY")

	for _, step := range steps {
		t.Run(step.String(), func(t *testing.T) {
			f := newFixture(t, 0)
			f.dev.FailCreate(step, boom)

			v, err := New(f.ctx, f.buffer, testShaders)
			if v != nil {
				t.Fatal("New returned a renderer on failure")
			}
			if !errors.Is(err, core.ErrRendererInitialization) || !errors.Is(err, boom) {
				t.Errorf("error = %v, want ErrRendererInitialization wrapping the cause", err)
			}

			f.buffer.Destroy()
			if got := f.dev.LiveTotal(); got != 0 {
				t.Errorf("%d objects leaked", got)
			}
			if vs := f.dev.Violations(); len(vs) != 0 {
				t.Errorf("violations: %v", vs)
			}
		})
	}
}

func TestNewPreconditions(t *testing.T) {
	f := newFixture(t, 0)

	tests := []struct {
		name    string
		ctx     metadata.RenderContext
		buffer  DrawBuffer
		shaders ShaderSet
	}{
		{"nil context", nil, f.buffer, testShaders},
		{"nil buffer", f.ctx, nil, testShaders},
		{"empty vertex shader", f.ctx, f.buffer, ShaderSet{Fragment: testShaders.Fragment}},
		{"empty fragment shader", f.ctx, f.buffer, ShaderSet{Vertex: testShaders.Vertex}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.ctx, tt.buffer, tt.shaders); !errors.Is(err, core.ErrPrecondition) {
				t.Errorf("error = %v, want ErrPrecondition", err)
			}
		})
	}
	if got := f.dev.Created(metadata.OBJECT_TYPE_SHADER_MODULE); got != 0 {
		t.Errorf("created %d shader modules on invalid input", got)
	}
}

func TestDrawPreconditions(t *testing.T) {
	f := newFixture(t, 1)
	v := newVoxels(t, f)

	if err := v.Draw(nil, f.buffer, f.chunks[0]); !errors.Is(err, core.ErrPrecondition) {
		t.Errorf("Draw(nil recorder) error = %v, want ErrPrecondition", err)
	}
	if err := v.Draw(recorder.NewCommandBuffer(), nil, f.chunks[0]); !errors.Is(err, core.ErrPrecondition) {
		t.Errorf("Draw(nil buffer) error = %v, want ErrPrecondition", err)
	}
}

func TestDrawWithoutConstruction(t *testing.T) {
	f := newFixture(t, 1)

	var zero Voxels
	var failed *Voxels
	tests := []struct {
		name string
		v    *Voxels
	}{
		{"zero value", &zero},
		{"nil after failed New", failed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := recorder.NewCommandBuffer()
			if err := tt.v.Draw(cmd, f.buffer, f.chunks[0]); !errors.Is(err, core.ErrPrecondition) {
				t.Errorf("Draw() error = %v, want ErrPrecondition", err)
			}
			if err := tt.v.DrawAll(cmd, f.buffer, f.chunks); !errors.Is(err, core.ErrPrecondition) {
				t.Errorf("DrawAll() error = %v, want ErrPrecondition", err)
			}
			if got := cmd.Commands(); len(got) != 0 {
				t.Errorf("recorded %v, want nothing", got)
			}
		})
	}
}

func TestDrawRejectsForeignDrawBuffer(t *testing.T) {
	f := newFixture(t, 1)
	v := newVoxels(t, f)

	other, err := drawbuffer.New(f.ctx.Device(), drawbuffer.Config{Chunks: 2, VerticesPerChunk: 36})
	if err != nil {
		t.Fatal(err)
	}
	chunk, err := other.Alloc()
	if err != nil {
		t.Fatal(err)
	}

	cmd := recorder.NewCommandBuffer()
	if err := v.Draw(cmd, other, chunk); !errors.Is(err, core.ErrPrecondition) {
		t.Errorf("Draw(other buffer) error = %v, want ErrPrecondition", err)
	}
	if err := v.DrawAll(cmd, other, []metadata.Chunk{chunk}); !errors.Is(err, core.ErrPrecondition) {
		t.Errorf("DrawAll(other buffer) error = %v, want ErrPrecondition", err)
	}
	if got := cmd.Commands(); len(got) != 0 {
		t.Errorf("recorded %v, want nothing", got)
	}

	// The construction buffer still draws.
	if err := v.Draw(cmd, f.buffer, f.chunks[0]); err != nil {
		t.Errorf("Draw(bound buffer) error = %v", err)
	}
}
