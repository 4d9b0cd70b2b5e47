package drawbuffer

import (
	"encoding/binary"
	"fmt"
	"math"
)

/** @brief Size in bytes of one packed vertex in the storage buffer. */
const VERTEX_SIZE = 16

/**
 * @brief A terrain vertex as the vertex shader pulls it from the storage
 * buffer: a position and one word of packed per-vertex data (material index
 * in the low 16 bits, normal index and ambient occlusion above).
 */
type Vertex struct {
	X, Y, Z float32
	Packed  uint32
}

// PackVertexData packs a material, a face normal index (0-5) and an
// occlusion level (0-3) into the Packed word.
func PackVertexData(material uint16, normal uint8, occlusion uint8) uint32 {
	return uint32(material) | uint32(normal&0x7)<<16 | uint32(occlusion&0x3)<<19
}

func (v Vertex) AppendBinary(b []byte) ([]byte, error) {
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.X))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.Y))
	b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v.Z))
	b = binary.LittleEndian.AppendUint32(b, v.Packed)
	return b, nil
}

func (v *Vertex) UnmarshalBinary(data []byte) error {
	if len(data) != VERTEX_SIZE {
		return fmt.Errorf("vertex: expected %d bytes, got %d", VERTEX_SIZE, len(data))
	}
	v.X = math.Float32frombits(binary.LittleEndian.Uint32(data[0:4]))
	v.Y = math.Float32frombits(binary.LittleEndian.Uint32(data[4:8]))
	v.Z = math.Float32frombits(binary.LittleEndian.Uint32(data[8:12]))
	v.Packed = binary.LittleEndian.Uint32(data[12:16])
	return nil
}

// EncodeVertices returns the storage-buffer encoding of vertices.
func EncodeVertices(vertices []Vertex) []byte {
	b := make([]byte, 0, len(vertices)*VERTEX_SIZE)
	for _, v := range vertices {
		b, _ = v.AppendBinary(b)
	}
	return b
}
