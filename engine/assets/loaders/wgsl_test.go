package loaders

import (
	"testing"
	"testing/fstest"
)

const testFragment = `
@fragment
fn main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 0.0, 0.0, 1.0);
}
`

func TestWGSLLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"src/red.frag.wgsl": &fstest.MapFile{Data: []byte(testFragment)},
	}
	l := &WGSLLoader{FS: fsys, Dir: "src"}

	code, err := l.Load("red.frag")
	if err != nil {
		t.Skipf("naga cannot compile the test shader: %v", err)
	}
	if code[0] != SPIRV_MAGIC {
		t.Errorf("first word = 0x%08x, want SPIR-V magic", code[0])
	}

	if _, err := l.Load("missing"); err == nil {
		t.Error("Load(missing) should fail")
	}
}
