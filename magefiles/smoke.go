//go:build mage

package main

import (
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Smoke targets run the built binary against the live API.
type Smoke mg.Namespace

func bin() string { return filepath.Join(binDir, binName) }

// Terms lists the terms containing "memory".
func (Smoke) Terms() error {
	mg.Deps(Build)
	return sh.RunV(bin(), "terms", "--filter", "memory")
}

// Related looks up the terms related to "fear" and "pain".
func (Smoke) Related() error {
	mg.Deps(Build)
	return sh.RunV(bin(), "related", "fear", "pain")
}

// Studies runs a boolean study query limited to recent years.
func (Smoke) Studies() error {
	mg.Deps(Build)
	return sh.RunV(bin(), "studies", "pain AND NOT memory", "--from", "2010")
}

// Serve starts the web explorer on the default address.
func (Smoke) Serve() error {
	mg.Deps(Build)
	return sh.RunV(bin(), "serve", "-v")
}
