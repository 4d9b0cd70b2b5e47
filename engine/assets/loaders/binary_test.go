package loaders

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spaghettifunk/terravox/engine/core"
)

func spirvBytes(words ...uint32) []byte {
	b := make([]byte, 0, len(words)*4)
	for _, w := range words {
		b = binary.LittleEndian.AppendUint32(b, w)
	}
	return b
}

func TestDecodeSPIRV(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []uint32
		wantErr bool
	}{
		{"valid", spirvBytes(SPIRV_MAGIC, 0x00010000, 7), []uint32{SPIRV_MAGIC, 0x00010000, 7}, false},
		{"empty", nil, nil, true},
		{"truncated", spirvBytes(SPIRV_MAGIC)[:3], nil, true},
		{"odd length", append(spirvBytes(SPIRV_MAGIC), 0), nil, true},
		{"bad magic", spirvBytes(0x03022307, 1), nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSPIRV(tt.data)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidShader) {
					t.Fatalf("DecodeSPIRV() error = %v, want ErrInvalidShader", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeSPIRV() unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("DecodeSPIRV() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("word %d = 0x%08x, want 0x%08x", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSPIRVLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "ok.spv"), spirvBytes(SPIRV_MAGIC, 42), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.spv"), []byte("not spir-v"), 0o644); err != nil {
		t.Fatal(err)
	}

	l := &SPIRVLoader{Directory: dir}

	code, err := l.Load("ok")
	if err != nil {
		t.Fatalf("Load(ok) error: %v", err)
	}
	if len(code) != 2 || code[1] != 42 {
		t.Errorf("Load(ok) = %v", code)
	}

	if _, err := l.Load("broken"); !errors.Is(err, core.ErrInvalidShader) {
		t.Errorf("Load(broken) error = %v, want ErrInvalidShader", err)
	}
	if _, err := l.Load("missing"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Load(missing) error = %v, want os.ErrNotExist", err)
	}
}
