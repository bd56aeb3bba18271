//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	coverFile     = "coverage.out"
	redisAddrEnv  = "SHELF_TEST_REDIS_ADDR"
	redisTestPkgs = "./internal/redisstore/..."
)

// Test groups test targets.
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs all tests with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./...")
}

// Cover runs all tests and prints per-function coverage.
func (Test) Cover() error {
	if err := sh.RunV(binGo, "test", "-coverprofile="+coverFile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func="+coverFile)
}

// Redis runs the redis backend tests. They skip unless SHELF_TEST_REDIS_ADDR
// names a reachable server.
func (Test) Redis() error {
	addr := os.Getenv(redisAddrEnv)
	if addr == "" {
		return fmt.Errorf("%s is not set", redisAddrEnv)
	}
	return sh.RunWithV(map[string]string{redisAddrEnv: addr}, binGo, "test", "-v", "-count=1", redisTestPkgs)
}
