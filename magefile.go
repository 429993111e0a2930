//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

// Build compiles every executable into ./bin.
func Build() error {
	mg.Deps(BuildProcessHits, BuildMeasureLoad)
	fmt.Println("Compilation finished")
	return nil
}

func BuildProcessHits() error {
	fmt.Println("Building processhits executable...")
	return goCgo("build", "-o", "./bin/processhits", "./processhits")
}

func BuildMeasureLoad() error {
	fmt.Println("Building measureLoad executable...")
	return goCgo("build", "-o", "./bin/measureLoad", "./measureLoad")
}

// Test runs the library tests. libhdf5 must be reachable through the CGO flags.
func Test() error {
	fmt.Println("Running tests...")
	return goCgo("test", "./pkg/...")
}

// goCgo runs the go tool with cgo enabled and the caller's CGO flags.
func goCgo(args ...string) error {
	cmd := exec.Command("go", args...)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", os.Getenv("CGO_LDFLAGS")),
		fmt.Sprintf("CGO_CFLAGS=%s", os.Getenv("CGO_CFLAGS")))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
