package engine

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/exp/rand"

	"github.com/spaghettifunk/terravox/engine/assets"
	"github.com/spaghettifunk/terravox/engine/assets/loaders"
	"github.com/spaghettifunk/terravox/engine/core"
	"github.com/spaghettifunk/terravox/engine/renderer/metadata"
	"github.com/spaghettifunk/terravox/engine/renderer/recorder"
	"github.com/spaghettifunk/terravox/engine/terraingen"
)

func spirvConfig(t *testing.T) *core.Config {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{assets.VOXELS_VERTEX_SHADER, assets.VOXELS_FRAGMENT_SHADER} {
		b := binary.LittleEndian.AppendUint32(nil, loaders.SPIRV_MAGIC)
		b = binary.LittleEndian.AppendUint32(b, 0x00010000)
		if err := os.WriteFile(filepath.Join(dir, name+loaders.SPIRV_EXTENSION), b, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	cfg := core.DefaultConfig()
	cfg.Shaders.Source = core.SHADER_SOURCE_SPIRV
	cfg.Shaders.Directory = dir
	cfg.DrawBuffer.Chunks = 8
	cfg.DrawBuffer.VerticesPerChunk = 512
	cfg.Capture.Frames = 2
	cfg.Capture.Chunks = 3
	return cfg
}

func TestCaptureLifecycle(t *testing.T) {
	e, err := New(spirvConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if len(e.chunks) != 3 {
		t.Fatalf("filled %d chunks, want 3", len(e.chunks))
	}
	if err := e.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if got := e.metrics.TotalDraws(); got != 6 {
		t.Errorf("TotalDraws() = %d, want 6", got)
	}
	captures := e.Captures()
	if len(captures) != 2 {
		t.Fatalf("kept %d captures, want 2", len(captures))
	}
	for i, frame := range captures {
		// bind pipeline, bind set, one draw per chunk
		if len(frame) != 5 {
			t.Fatalf("frame %d has %d commands, want 5", i, len(frame))
		}
		if frame[4].Kind != recorder.COMMAND_DRAW_INDIRECT || frame[4].Offset != 32 {
			t.Errorf("frame %d last command = %s", i, frame[4])
		}
	}
	if err := e.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error: %v", err)
	}

	rec := e.context.Recorder()
	if live := rec.LiveTotal(); live != 0 {
		t.Errorf("%d objects alive after Shutdown", live)
	}
	if v := rec.Violations(); len(v) != 0 {
		t.Errorf("lifecycle violations: %v", v)
	}
}

func TestRunRequiresInitialize(t *testing.T) {
	e, err := New(spirvConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Run(); err == nil {
		t.Error("Run() before Initialize() should fail")
	}
}

func TestShadersChangedRebuildsRenderer(t *testing.T) {
	e, err := New(spirvConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	first := e.renderer.ID()

	ctx := core.EventContext{}
	ctx.Data.C[1] = assets.VOXELS_FRAGMENT_SHADER
	e.Events().Fire(core.EVENT_CODE_SHADERS_CHANGED, t, ctx)

	if e.renderer.ID() == first {
		t.Fatal("renderer was not rebuilt")
	}
	rec := e.context.Recorder()
	if got := rec.Created(metadata.OBJECT_TYPE_PIPELINE); got != 2 {
		t.Errorf("created %d pipelines, want 2", got)
	}
	if got := rec.Live(metadata.OBJECT_TYPE_PIPELINE); got != 1 {
		t.Errorf("%d live pipelines, want 1", got)
	}
}

func TestQuitStopsWatchingRun(t *testing.T) {
	cfg := spirvConfig(t)
	cfg.Shaders.Watch = true
	e, err := New(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if err := e.Initialize(); err != nil {
		t.Fatal(err)
	}
	defer e.Shutdown()

	e.Quit()
	e.Quit()
	if err := e.Run(); err != nil {
		t.Fatalf("Run() error: %v", err)
	}
}

func TestSyntheticChunk(t *testing.T) {
	tests := []struct {
		name        string
		maxVertices uint32
		want        int
	}{
		{"full chunk", CHUNK_SIZE * CHUNK_SIZE * QUAD_VERTICES * 2, CHUNK_SIZE * CHUNK_SIZE * QUAD_VERTICES},
		{"capped", 100, 96},
		{"too small", 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vertices := syntheticChunk(rand.New(rand.NewSource(7)), 0, 0, tt.maxVertices)
			if len(vertices) != tt.want {
				t.Fatalf("got %d vertices, want %d", len(vertices), tt.want)
			}
			for i, v := range vertices {
				if terraingen.Material(v.Packed&0xffff) == terraingen.MaterialVoid {
					t.Fatalf("vertex %d has no material", i)
				}
			}
		})
	}
}

func TestSyntheticChunkIsDeterministic(t *testing.T) {
	a := syntheticChunk(rand.New(rand.NewSource(42)), 16, 0, 1024)
	b := syntheticChunk(rand.New(rand.NewSource(42)), 16, 0, 1024)
	if len(a) != len(b) {
		t.Fatalf("lengths differ: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("vertex %d differs: %+v vs %+v", i, a[i], b[i])
		}
	}
}
