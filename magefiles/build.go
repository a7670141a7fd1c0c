//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

const (
	shaderSource = "shaders/shader.slang"
	shaderOutput = "shaders/shader.spv"
)

// Compiles the slang shader into a single SPIR-V module holding both entry points.
func (Build) Shaders() error {
	_, err := executeCmd("slangc", withArgs(
		shaderSource,
		"-target", "spirv",
		"-profile", "spirv_1_4",
		"-emit-spirv-directly",
		"-fvk-use-entrypoint-name",
		"-entry", "vertMain",
		"-entry", "fragMain",
		"-o", shaderOutput,
	), withStream())
	return err
}

// Builds the testbed binary.
func (Build) Engine() error {
	mg.Deps(Build.Shaders)
	_, err := executeCmd("go", withArgs("build", "-o", "bin/avenir", "."), withStream())
	return err
}
