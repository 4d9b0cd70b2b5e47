// Package drawbuffer stores the geometry of many terrain chunks in two
// shared GPU buffers: one with packed vertices, one with an indirect draw
// record per chunk.
package drawbuffer

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
)

// MAX_VERTICES bounds Chunks*VerticesPerChunk: FirstVertex in the draw record is a u32.
const MAX_VERTICES uint64 = math.MaxUint32

type Config struct {
	/** @brief Number of chunk slots. */
	Chunks uint32
	/** @brief Vertex capacity of every slot. */
	VerticesPerChunk uint32
}

/**
 * @brief Fixed-capacity chunk storage. Slot i owns vertices
 * [i*VerticesPerChunk, (i+1)*VerticesPerChunk) and the indirect record at byte
 * offset i*16. Buffers are never reallocated, so their handles are stable
 * for the lifetime of the DrawBuffer.
 */
type DrawBuffer struct {
	mu sync.Mutex

	device metadata.Device
	config Config

	vertices metadata.Buffer
	indirect metadata.Buffer

	allocated []bool
	// free slots, kept sorted so the lowest slot is reused first
	free []metadata.Chunk
	// next slot never handed out
	next uint32

	destroyed bool
}

func New(device metadata.Device, config Config) (*DrawBuffer, error) {
	if device == nil {
		return nil, fmt.Errorf("draw buffer: nil device: %w", core.ErrPrecondition)
	}
	if config.Chunks == 0 || config.VerticesPerChunk == 0 {
		return nil, fmt.Errorf("draw buffer: %d chunks of %d vertices: %w", config.Chunks, config.VerticesPerChunk, core.ErrPrecondition)
	}
	if total := uint64(config.Chunks) * uint64(config.VerticesPerChunk); total > MAX_VERTICES {
		return nil, fmt.Errorf("draw buffer: %d vertices in total exceed %d: %w", total, MAX_VERTICES, core.ErrPrecondition)
	}

	vertexSize := uint64(config.Chunks) * uint64(config.VerticesPerChunk) * VERTEX_SIZE
	vertices, err := device.CreateBuffer(vertexSize, metadata.BufferUsageStorage|metadata.BufferUsageTransferDst)
	if err != nil {
		return nil, fmt.Errorf("draw buffer: vertex buffer: %w", err)
	}
	indirect, err := device.CreateBuffer(uint64(config.Chunks)*metadata.DRAW_INDIRECT_COMMAND_SIZE, metadata.BufferUsageIndirect|metadata.BufferUsageTransferDst)
	if err != nil {
		device.DestroyBuffer(vertices)
		return nil, fmt.Errorf("draw buffer: indirect buffer: %w", err)
	}
	device.SetObjectName(metadata.OBJECT_TYPE_BUFFER, uint64(vertices), "voxel vertices")
	device.SetObjectName(metadata.OBJECT_TYPE_BUFFER, uint64(indirect), "voxel indirect")

	core.LogDebug("draw buffer created: %d chunks, %d vertices per chunk (%d bytes)", config.Chunks, config.VerticesPerChunk, vertexSize)

	return &DrawBuffer{
		device:    device,
		config:    config,
		vertices:  vertices,
		indirect:  indirect,
		allocated: make([]bool, config.Chunks),
	}, nil
}

func (db *DrawBuffer) VertexBuffer() metadata.Buffer { return db.vertices }

func (db *DrawBuffer) IndirectBuffer() metadata.Buffer { return db.indirect }

func (db *DrawBuffer) Config() Config { return db.config }

// IndirectOffset returns the byte offset of the chunk's draw record.
func (db *DrawBuffer) IndirectOffset(chunk metadata.Chunk) (uint64, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(chunk); err != nil {
		return 0, err
	}
	return uint64(chunk) * metadata.DRAW_INDIRECT_COMMAND_SIZE, nil
}

// Alloc reserves a chunk slot. Its draw record is zeroed, so drawing it before
// Upload draws nothing.
func (db *DrawBuffer) Alloc() (metadata.Chunk, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.destroyed {
		return 0, fmt.Errorf("draw buffer: alloc after destroy: %w", core.ErrPrecondition)
	}

	var chunk metadata.Chunk
	switch {
	case len(db.free) > 0:
		chunk = db.free[0]
		db.free = slices.Delete(db.free, 0, 1)
	case db.next < db.config.Chunks:
		chunk = metadata.Chunk(db.next)
		db.next++
	default:
		return 0, fmt.Errorf("draw buffer: all %d slots in use: %w", db.config.Chunks, core.ErrDrawBufferFull)
	}
	if err := db.writeRecordLocked(chunk, metadata.DrawIndirectCommand{}); err != nil {
		i, _ := slices.BinarySearch(db.free, chunk)
		db.free = slices.Insert(db.free, i, chunk)
		return 0, err
	}
	db.allocated[chunk] = true
	return chunk, nil
}

// Free releases the slot and zeroes its draw record.
func (db *DrawBuffer) Free(chunk metadata.Chunk) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(chunk); err != nil {
		return err
	}
	if err := db.writeRecordLocked(chunk, metadata.DrawIndirectCommand{}); err != nil {
		return err
	}
	db.allocated[chunk] = false
	i, _ := slices.BinarySearch(db.free, chunk)
	db.free = slices.Insert(db.free, i, chunk)
	return nil
}

// Upload replaces the chunk's geometry and rewrites its draw record.
func (db *DrawBuffer) Upload(chunk metadata.Chunk, vertices []Vertex) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if err := db.checkLocked(chunk); err != nil {
		return err
	}
	if uint64(len(vertices)) > uint64(db.config.VerticesPerChunk) {
		return fmt.Errorf("draw buffer: chunk %d: %d vertices exceed slot capacity %d: %w", chunk, len(vertices), db.config.VerticesPerChunk, core.ErrPrecondition)
	}

	firstVertex := uint32(chunk) * db.config.VerticesPerChunk
	if len(vertices) > 0 {
		if err := db.device.WriteBuffer(db.vertices, uint64(firstVertex)*VERTEX_SIZE, EncodeVertices(vertices)); err != nil {
			return fmt.Errorf("draw buffer: chunk %d vertices: %w", chunk, err)
		}
	}
	return db.writeRecordLocked(chunk, metadata.DrawIndirectCommand{
		VertexCount:   uint32(len(vertices)),
		InstanceCount: 1,
		FirstVertex:   firstVertex,
		FirstInstance: 0,
	})
}

// Chunks returns the allocated slots in ascending order.
func (db *DrawBuffer) Chunks() []metadata.Chunk {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []metadata.Chunk
	for i, ok := range db.allocated {
		if ok {
			out = append(out, metadata.Chunk(i))
		}
	}
	return out
}

// Destroy releases both buffers. Calling it again does nothing.
func (db *DrawBuffer) Destroy() {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.destroyed {
		return
	}
	db.destroyed = true
	db.device.DestroyBuffer(db.indirect)
	db.device.DestroyBuffer(db.vertices)
}

func (db *DrawBuffer) checkLocked(chunk metadata.Chunk) error {
	if db.destroyed {
		return fmt.Errorf("draw buffer: chunk %d: buffer destroyed: %w", chunk, core.ErrUnknownChunk)
	}
	if uint32(chunk) >= db.config.Chunks || !db.allocated[chunk] {
		return fmt.Errorf("draw buffer: chunk %d: %w", chunk, core.ErrUnknownChunk)
	}
	return nil
}

func (db *DrawBuffer) writeRecordLocked(chunk metadata.Chunk, record metadata.DrawIndirectCommand) error {
	data, _ := record.MarshalBinary()
	if err := db.device.WriteBuffer(db.indirect, uint64(chunk)*metadata.DRAW_INDIRECT_COMMAND_SIZE, data); err != nil {
		return fmt.Errorf("draw buffer: chunk %d record: %w", chunk, err)
	}
	return nil
}
