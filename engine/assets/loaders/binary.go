package loaders

import (
	"fmt"

	"github.com/spaghettifunk/terravox/engine/core"
)

// SPIRV_MAGIC is the first word of every SPIR-V module.
const SPIRV_MAGIC uint32 = 0x07230203

// DecodeSPIRV turns a little-endian SPIR-V binary into words and checks the header.
func DecodeSPIRV(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, fmt.Errorf("spir-v size %d is not a positive multiple of 4: %w", len(b), core.ErrInvalidShader)
	}
	code := bytesToBytecode(b)
	if code[0] != SPIRV_MAGIC {
		return nil, fmt.Errorf("bad spir-v magic 0x%08x: %w", code[0], core.ErrInvalidShader)
	}
	return code, nil
}

func bytesToBytecode(b []byte) []uint32 {
	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode
}
