//go:build mage

package main

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/gogpu/naga"
	"github.com/magefile/mage/mg"

	"github.com/spaghettifunk/terravox/engine/assets"
	"github.com/spaghettifunk/terravox/engine/assets/loaders"
)

const shaderOutputDir = "assets/shaders"

type Build mg.Namespace

// Compiles the embedded WGSL shaders to SPIR-V files in assets/shaders.
func (Build) Shaders() error {
	return buildShaders()
}

// Tidies go.mod and builds the capture tool.
func (Build) Capture() error {
	if err := goTidy(); err != nil {
		return err
	}
	if _, err := executeCmd("go", withArgs("build", "-o", "bin/terravox", "."), withStream()); err != nil {
		return err
	}
	return nil
}

func buildShaders() error {
	if err := os.MkdirAll(shaderOutputDir, 0o755); err != nil {
		return err
	}

	sources := assets.EmbeddedShaders()
	return fs.WalkDir(sources, "shaders", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != loaders.WGSL_EXTENSION {
			return err
		}
		source, err := fs.ReadFile(sources, p)
		if err != nil {
			return err
		}
		spirv, err := naga.Compile(string(source))
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}

		name := strings.TrimSuffix(path.Base(p), loaders.WGSL_EXTENSION)
		out := filepath.Join(shaderOutputDir, name+loaders.SPIRV_EXTENSION)
		fmt.Printf("Compiled %s -> %s (%d bytes)\n", p, out, len(spirv))
		return os.WriteFile(out, spirv, 0o644)
	})
}
