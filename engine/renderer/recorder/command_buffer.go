package recorder

import (
	"fmt"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

type CommandKind int

const (
	COMMAND_BIND_PIPELINE CommandKind = iota
	COMMAND_BIND_DESCRIPTOR_SETS
	COMMAND_DRAW_INDIRECT
)

func (k CommandKind) String() string {
	switch k {
	case COMMAND_BIND_PIPELINE:
		return "BindPipeline"
	case COMMAND_BIND_DESCRIPTOR_SETS:
		return "BindDescriptorSets"
	case COMMAND_DRAW_INDIRECT:
		return "DrawIndirect"
	default:
		return "Unknown"
	}
}

// Command is one captured call. Only the fields relevant to Kind are set.
type Command struct {
	Kind      CommandKind
	BindPoint metadata.PipelineBindPoint

	// BindPipeline
	Pipeline metadata.Pipeline

	// BindDescriptorSets
	Layout   metadata.PipelineLayout
	FirstSet uint32
	Sets     []metadata.DescriptorSet

	// DrawIndirect
	Buffer    metadata.Buffer
	Offset    uint64
	DrawCount uint32
	Stride    uint32
}

func (c Command) String() string {
	switch c.Kind {
	case COMMAND_BIND_PIPELINE:
		return fmt.Sprintf("%s(pipeline=%d)", c.Kind, c.Pipeline)
	case COMMAND_BIND_DESCRIPTOR_SETS:
		return fmt.Sprintf("%s(layout=%d, first=%d, sets=%v)", c.Kind, c.Layout, c.FirstSet, c.Sets)
	case COMMAND_DRAW_INDIRECT:
		return fmt.Sprintf("%s(buffer=%d, offset=%d, count=%d, stride=%d)", c.Kind, c.Buffer, c.Offset, c.DrawCount, c.Stride)
	default:
		return c.Kind.String()
	}
}

// CommandBuffer is a metadata.CommandRecorder that keeps every command it is
// given, in order.
type CommandBuffer struct {
	mu       sync.Mutex
	commands []Command
}

func NewCommandBuffer() *CommandBuffer {
	return &CommandBuffer{}
}

func (cb *CommandBuffer) BindPipeline(bindPoint metadata.PipelineBindPoint, pipeline metadata.Pipeline) {
	cb.append(Command{Kind: COMMAND_BIND_PIPELINE, BindPoint: bindPoint, Pipeline: pipeline})
}

func (cb *CommandBuffer) BindDescriptorSets(bindPoint metadata.PipelineBindPoint, layout metadata.PipelineLayout, firstSet uint32, sets []metadata.DescriptorSet) {
	cb.append(Command{
		Kind:      COMMAND_BIND_DESCRIPTOR_SETS,
		BindPoint: bindPoint,
		Layout:    layout,
		FirstSet:  firstSet,
		Sets:      slices.Clone(sets),
	})
}

func (cb *CommandBuffer) DrawIndirect(buffer metadata.Buffer, offset uint64, drawCount uint32, stride uint32) {
	cb.append(Command{
		Kind:      COMMAND_DRAW_INDIRECT,
		Buffer:    buffer,
		Offset:    offset,
		DrawCount: drawCount,
		Stride:    stride,
	})
}

func (cb *CommandBuffer) append(c Command) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.commands = append(cb.commands, c)
}

// Commands returns a copy of the captured commands.
func (cb *CommandBuffer) Commands() []Command {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	return slices.Clone(cb.commands)
}

// Reset drops every captured command, like resetting a command buffer
// before recording the next frame.
func (cb *CommandBuffer) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.commands = cb.commands[:0]
}
