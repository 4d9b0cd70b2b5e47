package loaders

import (
	"fmt"
	"io/fs"
	"path"

	"github.com/gogpu/naga"
)

const WGSL_EXTENSION = ".wgsl"

/**
 * @brief Compiles WGSL sources found in FS to SPIR-V. Sources are looked up
 * as Dir/<name>.wgsl.
 */
type WGSLLoader struct {
	FS  fs.FS
	Dir string
}

func (wl *WGSLLoader) Load(name string) ([]uint32, error) {
	file := path.Join(wl.Dir, name+WGSL_EXTENSION)
	source, err := fs.ReadFile(wl.FS, file)
	if err != nil {
		return nil, err
	}
	code, err := CompileWGSL(string(source))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file, err)
	}
	return code, nil
}

// CompileWGSL compiles a WGSL module to SPIR-V words.
func CompileWGSL(source string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to compile shader: %w", err)
	}
	return DecodeSPIRV(spirvBytes)
}
