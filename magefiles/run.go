//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Run mg.Namespace

// Runs the simulator headless for 600 steps with debug logging.
func (Run) Headless() error {
	fmt.Println("Run headless simulation...")
	_, err := executeCmd("go",
		withArgs("run", "./cmd/physim", "-renderer", "headless", "-steps", "600"),
		withEnv("PHYSIM_LOG_LEVEL=DEBUG", "PHYSIM_LOG_FORMAT=text"),
		withStream(),
	)
	return err
}

// Runs the interactive terminal front end.
func (Run) Terminal() error {
	return goCmd("run", "./cmd/physim", "-renderer", "terminal")
}

// Runs the scaling benchmark, serial then threaded.
func (Run) Bench() error {
	if err := goCmd("run", "./cmd/physim-bench"); err != nil {
		return err
	}
	return goCmd("run", "./cmd/physim-bench", "-threads")
}
