//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the headless capture with terravox.toml.
func (Run) Capture() error {
	fmt.Println("Run capture...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "terravox.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Compiles the shaders to SPIR-V, then captures with hot reload of the binaries.
func (Run) Watch() error {
	mg.Deps(Build.Shaders)
	fmt.Println("Run capture with shader watching...")
	if _, err := executeCmd("go", withArgs("run", ".", "-config", "terravox.watch.toml"), withStream()); err != nil {
		return err
	}
	return nil
}

// Runs every package test.
func (Run) Tests() error {
	if _, err := executeCmd("go", withArgs("test", "./..."), withStream()); err != nil {
		return err
	}
	return nil
}
