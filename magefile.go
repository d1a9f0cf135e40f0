//go:build mage

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary     = "voicelab"
	scriptsDir = "scripts/python"
)

// Default target when running plain "mage"
var Default = Build

// Build compiles the voicelab binary
func Build() error {
	mg.Deps(Vet)
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, "./cmd/voicelab")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Cover runs the tests with a coverage profile
func Cover() error {
	if err := sh.RunV("go", "test", "-coverprofile=coverage.out", "./..."); err != nil {
		return err
	}
	return sh.RunV("go", "tool", "cover", "-func=coverage.out")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Install installs voicelab into GOPATH/bin
func Install() error {
	return sh.RunV("go", "install", "./cmd/voicelab")
}

// Venv creates the Python environment the local models run in
func Venv() error {
	venv := filepath.Join(scriptsDir, ".venv")
	if _, err := os.Stat(venv); os.IsNotExist(err) {
		if err := sh.RunV("python3", "-m", "venv", venv); err != nil {
			return err
		}
	}
	return sh.RunV(filepath.Join(venv, "bin", "pip"), "install", "-r", filepath.Join(scriptsDir, "requirements.txt"))
}

// Clean removes build artifacts
func Clean() error {
	for _, f := range []string{binary, "coverage.out"} {
		if err := sh.Rm(f); err != nil {
			return err
		}
	}
	return nil
}
