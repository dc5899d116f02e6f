//go:build mage

package main

import (
	"fmt"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// cli runs the built binary with the given arguments.
func cli(args ...string) error {
	return sh.RunV(filepath.Join(binDir, binName), args...)
}

// Pipeline runs the full experiment for one benchmark: train, explain,
// evaluate, visualize.
func Pipeline(name string) error {
	mg.Deps(Build)
	for _, stage := range []string{"train", "explain", "evaluate", "visualize"} {
		fmt.Printf("== %s %s ==\n", stage, name)
		if err := cli(stage, name); err != nil {
			return fmt.Errorf("%s %s: %w", stage, name, err)
		}
	}
	return nil
}

// Evaluate scores a benchmark's importances and records the run.
func Evaluate(name string) error {
	mg.Deps(Build)
	return cli("evaluate", name)
}

// Report prints the Markdown report of all recorded runs.
func Report() error {
	mg.Deps(Build)
	return cli("results", "report")
}
