package drawbuffer

import (
	"errors"
	"math"
	"testing"

	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
	"github.com/spaghettifunk/terravox/engine/renderer/recorder"
)

func newTestBuffer(t *testing.T, chunks uint32) (*DrawBuffer, *recorder.Device) {
	t.Helper()
	dev := recorder.NewDevice()
	db, err := New(dev, Config{Chunks: chunks, VerticesPerChunk: 6})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return db, dev
}

func TestOffsetsAreDisjoint(t *testing.T) {
	db, _ := newTestBuffer(t, 8)

	seen := map[uint64]metadata.Chunk{}
	for i := 0; i < 8; i++ {
		chunk, err := db.Alloc()
		if err != nil {
			t.Fatalf("Alloc: %v", err)
		}
		off, err := db.IndirectOffset(chunk)
		if err != nil {
			t.Fatalf("IndirectOffset(%d): %v", chunk, err)
		}
		if off%metadata.DRAW_INDIRECT_COMMAND_SIZE != 0 {
			t.Errorf("offset %d of chunk %d is not 16-byte aligned", off, chunk)
		}
		if other, ok := seen[off]; ok {
			t.Errorf("chunks %d and %d share offset %d", other, chunk, off)
		}
		seen[off] = chunk
	}

	if _, err := db.Alloc(); !errors.Is(err, core.ErrDrawBufferFull) {
		t.Errorf("Alloc on full buffer error = %v, want ErrDrawBufferFull", err)
	}
}

func TestFreeReusesLowestSlot(t *testing.T) {
	db, _ := newTestBuffer(t, 4)

	for i := 0; i < 4; i++ {
		if _, err := db.Alloc(); err != nil {
			t.Fatalf("Alloc: %v", err)
		}
	}
	for _, c := range []metadata.Chunk{3, 1} {
		if err := db.Free(c); err != nil {
			t.Fatalf("Free(%d): %v", c, err)
		}
	}
	if _, err := db.IndirectOffset(1); !errors.Is(err, core.ErrUnknownChunk) {
		t.Errorf("IndirectOffset of freed chunk error = %v, want ErrUnknownChunk", err)
	}

	got, err := db.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	if got != 1 {
		t.Errorf("Alloc() = %d, want 1", got)
	}
}

func TestUploadWritesRecord(t *testing.T) {
	db, dev := newTestBuffer(t, 4)

	if _, err := db.Alloc(); err != nil {
		t.Fatalf("Alloc: %v", err)
	}
	chunk, err := db.Alloc()
	if err != nil {
		t.Fatalf("Alloc: %v", err)
	}

	verts := []Vertex{
		{X: 0, Y: 0, Z: 0, Packed: PackVertexData(3, 1, 2)},
		{X: 1, Y: 0, Z: 0, Packed: PackVertexData(3, 1, 2)},
		{X: 0, Y: 1, Z: 0, Packed: PackVertexData(3, 1, 2)},
	}
	if err := db.Upload(chunk, verts); err != nil {
		t.Fatalf("Upload: %v", err)
	}

	indirect, _ := dev.BufferContents(db.IndirectBuffer())
	var record metadata.DrawIndirectCommand
	if err := record.UnmarshalBinary(indirect[16:32]); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	want := metadata.DrawIndirectCommand{VertexCount: 3, InstanceCount: 1, FirstVertex: 6}
	if record != want {
		t.Errorf("record = %+v, want %+v", record, want)
	}

	vertices, _ := dev.BufferContents(db.VertexBuffer())
	var v Vertex
	if err := v.UnmarshalBinary(vertices[7*VERTEX_SIZE : 8*VERTEX_SIZE]); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if v != verts[1] {
		t.Errorf("vertex 7 = %+v, want %+v", v, verts[1])
	}

	if err := db.Free(chunk); err != nil {
		t.Fatalf("Free: %v", err)
	}
	indirect, _ = dev.BufferContents(db.IndirectBuffer())
	for i, b := range indirect[16:32] {
		if b != 0 {
			t.Fatalf("freed record byte %d = %d, want 0", i, b)
		}
	}
}

func TestUploadRejectsOversizedChunk(t *testing.T) {
	db, _ := newTestBuffer(t, 1)
	chunk, _ := db.Alloc()

	err := db.Upload(chunk, make([]Vertex, 7))
	if !errors.Is(err, core.ErrPrecondition) {
		t.Errorf("Upload error = %v, want ErrPrecondition", err)
	}
}

func TestNewRejectsVertexIndexOverflow(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"small", Config{Chunks: 4, VerticesPerChunk: 6}, false},
		{"one past u32", Config{Chunks: 2, VerticesPerChunk: math.MaxUint32/2 + 1}, true},
		{"far past u32", Config{Chunks: 1 << 16, VerticesPerChunk: 1 << 16}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := recorder.NewDevice()
			db, err := New(dev, tt.config)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("New() error: %v", err)
				}
				db.Destroy()
				return
			}
			if !errors.Is(err, core.ErrPrecondition) {
				t.Errorf("New() error = %v, want ErrPrecondition", err)
			}
			if got := dev.Created(metadata.OBJECT_TYPE_BUFFER); got != 0 {
				t.Errorf("created %d buffers before rejecting", got)
			}
		})
	}
}

func TestDestroyReleasesBuffers(t *testing.T) {
	db, dev := newTestBuffer(t, 2)

	db.Destroy()
	db.Destroy()

	if got := dev.Live(metadata.OBJECT_TYPE_BUFFER); got != 0 {
		t.Errorf("live buffers = %d, want 0", got)
	}
	if v := dev.Violations(); len(v) != 0 {
		t.Errorf("violations: %v", v)
	}
}

func TestPackVertexData(t *testing.T) {
	tests := []struct {
		material  uint16
		normal    uint8
		occlusion uint8
		want      uint32
	}{
		{0, 0, 0, 0},
		{0xffff, 0, 0, 0xffff},
		{1, 5, 0, 1 | 5<<16},
		{2, 0, 3, 2 | 3<<19},
	}
	for _, tt := range tests {
		if got := PackVertexData(tt.material, tt.normal, tt.occlusion); got != tt.want {
			t.Errorf("PackVertexData(%d, %d, %d) = %#x, want %#x", tt.material, tt.normal, tt.occlusion, got, tt.want)
		}
	}
}

func BenchmarkEncodeVertices(b *testing.B) {
	verts := make([]Vertex, 4096)
	for i := range verts {
		verts[i] = Vertex{X: float32(i), Y: 1, Z: 2, Packed: uint32(i)}
	}
	b.SetBytes(int64(len(verts) * VERTEX_SIZE))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = EncodeVertices(verts)
	}
}
