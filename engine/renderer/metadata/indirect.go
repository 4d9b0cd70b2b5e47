package metadata

import (
	"encoding/binary"
	"fmt"
)

/** @brief Size in bytes of a DrawIndirectCommand as read by the GPU. */
const DRAW_INDIRECT_COMMAND_SIZE = 16

/**
 * @brief Identity of a chunk of voxel geometry in a draw buffer.
 */
type Chunk uint32

/**
 * @brief Parameters of one non-indexed draw, read by the GPU from an indirect
 * buffer. Encoded little-endian as four consecutive u32.
 */
type DrawIndirectCommand struct {
	VertexCount   uint32
	InstanceCount uint32
	FirstVertex   uint32
	FirstInstance uint32
}

// AppendBinary appends the 16-byte GPU encoding of the command to b.
func (c DrawIndirectCommand) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, c.VertexCount)
	b = binary.LittleEndian.AppendUint32(b, c.InstanceCount)
	b = binary.LittleEndian.AppendUint32(b, c.FirstVertex)
	b = binary.LittleEndian.AppendUint32(b, c.FirstInstance)
	return b, nil
}

func (c DrawIndirectCommand) MarshalBinary() ([]byte, error) {
	return c.AppendBinary(make([]byte, 0, DRAW_INDIRECT_COMMAND_SIZE))
}

func (c *DrawIndirectCommand) UnmarshalBinary(data []byte) error {
	if len(data) != DRAW_INDIRECT_COMMAND_SIZE {
		return fmt.Errorf("draw indirect command: expected %d bytes, got %d", DRAW_INDIRECT_COMMAND_SIZE, len(data))
	}
	c.VertexCount = binary.LittleEndian.Uint32(data[0:4])
	c.InstanceCount = binary.LittleEndian.Uint32(data[4:8])
	c.FirstVertex = binary.LittleEndian.Uint32(data[8:12])
	c.FirstInstance = binary.LittleEndian.Uint32(data[12:16])
	return nil
}
