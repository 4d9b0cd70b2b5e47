package core

import (
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config is the engine configuration, usually read from terravox.toml.
type Config struct {
	Log        LogConfig        `toml:"log"`
	Shaders    ShaderConfig     `toml:"shaders"`
	DrawBuffer DrawBufferConfig `toml:"draw_buffer"`
	Capture    CaptureConfig    `toml:"capture"`
}

type LogConfig struct {
	// One of debug, info, warn, error, fatal.
	Level string `toml:"level"`
}

type ShaderSource string

const (
	// Shaders compiled at startup from the WGSL sources embedded in the binary.
	SHADER_SOURCE_EMBEDDED ShaderSource = "embedded"
	// Shaders loaded as SPIR-V binaries from ShaderConfig.Directory.
	SHADER_SOURCE_SPIRV ShaderSource = "spirv"
)

type ShaderConfig struct {
	Source    ShaderSource `toml:"source"`
	Directory string       `toml:"directory"`
	// Rebuild the renderer whenever a SPIR-V binary in Directory changes.
	Watch bool `toml:"watch"`
}

type DrawBufferConfig struct {
	// Number of chunk slots.
	Chunks uint32 `toml:"chunks"`
	// Vertex capacity of a single chunk slot.
	VerticesPerChunk uint32 `toml:"vertices_per_chunk"`
}

type CaptureConfig struct {
	Frames uint32 `toml:"frames"`
	// Number of chunks filled with synthetic geometry for the capture.
	Chunks uint32 `toml:"chunks"`
	Seed   uint64 `toml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Shaders: ShaderConfig{
			Source:    SHADER_SOURCE_EMBEDDED,
			Directory: "assets/shaders",
		},
		// Room for the captured chunks plus a few spare slots. A full
		// synthetic chunk is 16*16 quads of 6 vertices.
		DrawBuffer: DrawBufferConfig{
			Chunks:           8,
			VerticesPerChunk: 16 * 16 * 6,
		},
		Capture: CaptureConfig{
			Frames: 1,
			Chunks: 3,
			Seed:   1,
		},
	}
}

// LoadConfig reads a TOML file on top of DefaultConfig. Keys missing from the
// file keep their default value.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Shaders.Source {
	case SHADER_SOURCE_EMBEDDED, SHADER_SOURCE_SPIRV:
	default:
		return fmt.Errorf("unknown shader source %q", c.Shaders.Source)
	}
	if c.Shaders.Source == SHADER_SOURCE_SPIRV && c.Shaders.Directory == "" {
		return fmt.Errorf("shader directory is required for spirv shaders")
	}
	if c.Shaders.Watch && c.Shaders.Source != SHADER_SOURCE_SPIRV {
		return fmt.Errorf("shader watching requires spirv shaders")
	}
	if c.DrawBuffer.Chunks == 0 {
		return fmt.Errorf("draw buffer needs at least one chunk slot")
	}
	if c.DrawBuffer.VerticesPerChunk == 0 {
		return fmt.Errorf("draw buffer needs a non-zero vertex capacity per chunk")
	}
	if total := uint64(c.DrawBuffer.Chunks) * uint64(c.DrawBuffer.VerticesPerChunk); total > math.MaxUint32 {
		return fmt.Errorf("draw buffer holds %d vertices, more than a u32 first vertex can address", total)
	}
	if c.Capture.Chunks > c.DrawBuffer.Chunks {
		return fmt.Errorf("capture uses %d chunks but the draw buffer only has %d slots", c.Capture.Chunks, c.DrawBuffer.Chunks)
	}
	return nil
}
