package recorder

import (
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

var (
	_ metadata.Device          = (*Device)(nil)
	_ metadata.RenderContext   = (*Context)(nil)
	_ metadata.CommandRecorder = (*CommandBuffer)(nil)
)

// Context is a metadata.RenderContext backed by a recording Device. The
// common layout, render pass and pipeline cache are imported handles, the way
// a frame setup would hand them over.
type Context struct {
	device       *Device
	commonLayout metadata.DescriptorSetLayout
	renderPass   metadata.RenderPass
	subpass      uint32
	cache        metadata.PipelineCache
}

func NewContext() *Context {
	d := NewDevice()
	return &Context{
		device:       d,
		commonLayout: metadata.DescriptorSetLayout(d.Import(metadata.OBJECT_TYPE_DESCRIPTOR_SET_LAYOUT)),
		renderPass:   metadata.RenderPass(d.Import(metadata.OBJECT_TYPE_RENDER_PASS)),
		cache:        metadata.PipelineCache(d.Import(metadata.OBJECT_TYPE_PIPELINE_CACHE)),
	}
}

func (c *Context) Device() metadata.Device { return c.device }

// Recorder returns the concrete device for inspection.
func (c *Context) Recorder() *Device { return c.device }

func (c *Context) CommonLayout() metadata.DescriptorSetLayout { return c.commonLayout }

func (c *Context) RenderPass() metadata.RenderPass { return c.renderPass }

func (c *Context) Subpass() uint32 { return c.subpass }

func (c *Context) PipelineCache() metadata.PipelineCache { return c.cache }

// SetSubpass changes the subpass index handed to renderers built afterwards.
func (c *Context) SetSubpass(subpass uint32) { c.subpass = subpass }
