//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

// Builds the simulator binary into bin/.
func (Build) Physim() error {
	return goCmd("build", "-o", "bin/physim", "./cmd/physim")
}

// Builds the benchmark binary into bin/.
func (Build) Bench() error {
	return goCmd("build", "-o", "bin/physim-bench", "./cmd/physim-bench")
}

// Builds every binary.
func (b Build) All() {
	mg.Deps(b.Physim, b.Bench)
}

// Runs the test suite with the race detector.
func Test() error {
	return goCmd("test", "-race", "./...")
}

// Runs go vet over the module.
func Vet() error {
	return goCmd("vet", "./...")
}

// Tidies go.mod and go.sum.
func Tidy() error {
	return goCmd("mod", "tidy")
}

// Vets, tests and builds.
func CI() {
	mg.SerialDeps(Vet, Test, Build{}.All)
}
