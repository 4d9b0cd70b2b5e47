package loaders

import (
	"fmt"
	"os"
	"path/filepath"
)

const SPIRV_EXTENSION = ".spv"

// SPIRVLoader reads precompiled shaders, e.g. the output of `mage build:shaders`.
type SPIRVLoader struct {
	Directory string
}

func (sl *SPIRVLoader) Path(name string) string {
	return filepath.Join(sl.Directory, name+SPIRV_EXTENSION)
}

func (sl *SPIRVLoader) Load(name string) ([]uint32, error) {
	path := sl.Path(name)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	code, err := DecodeSPIRV(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return code, nil
}
